package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/forum/internal/model"
)

// NotificationRepository 通知只增不删，只能由接收者标记已读
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*model.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	GetForRecipient(ctx context.Context, id, recipientID string) (*model.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Omit("Recipient", "Sender", "Post", "Comment").Create(n).Error
}

// ListByRecipient 最新在前，附带发送者、帖子与评论
func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*model.Notification, error) {
	var res []*model.Notification
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Post").
		Preload("Comment").
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&n).Error
	return n, err
}

func (r *notificationRepository) GetForRecipient(ctx context.Context, id, recipientID string) (*model.Notification, error) {
	var n model.Notification
	if err := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&model.Notification{}).Where("id = ?", id).Update("is_read", true).Error
}
