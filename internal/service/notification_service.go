package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/d60-Lab/forum/internal/mention"
	"github.com/d60-Lab/forum/internal/model"
	"github.com/d60-Lab/forum/internal/repository"
	"github.com/d60-Lab/forum/pkg/logger"
)

// NotificationListLimit 通知列表最多返回条数
const NotificationListLimit = 50

// MentionTarget 提及发生的位置，CommentID 仅评论提及时设置
type MentionTarget struct {
	Type      model.NotificationType
	PostID    string
	CommentID *string
}

// NotificationService 提及通知
type NotificationService interface {
	NotifyMentions(ctx context.Context, sender *model.User, content string, target MentionTarget) error
	DispatchMention(ctx context.Context, sender *model.User, username string, target MentionTarget) error
	List(ctx context.Context, userID string) ([]*model.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id, userID string) (*model.Notification, error)
}

type notificationService struct {
	users         repository.UserRepository
	notifications repository.NotificationRepository
	cache         UnreadCache
}

func NewNotificationService(users repository.UserRepository, notifications repository.NotificationRepository, cache UnreadCache) NotificationService {
	return &notificationService{users: users, notifications: notifications, cache: cache}
}

// NotifyMentions 逐个分发，不包在一个事务里：中途失败时已写入的通知保留
func (s *notificationService) NotifyMentions(ctx context.Context, sender *model.User, content string, target MentionTarget) error {
	for _, username := range mention.Extract(content) {
		if err := s.DispatchMention(ctx, sender, username, target); err != nil {
			return err
		}
	}
	return nil
}

// DispatchMention 跳过自己与不存在的用户，其余每次调用写入一条通知
func (s *notificationService) DispatchMention(ctx context.Context, sender *model.User, username string, target MentionTarget) error {
	if username == sender.Username {
		return nil
	}
	recipient, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	postID := target.PostID
	n := &model.Notification{
		Type:        target.Type,
		RecipientID: recipient.ID,
		SenderID:    sender.ID,
		PostID:      &postID,
		CommentID:   target.CommentID,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.InvalidateUnread(ctx, recipient.ID)
	}
	logger.Debug("mention notification created",
		zap.String("type", string(target.Type)),
		zap.String("sender", sender.Username),
		zap.String("recipient", recipient.Username),
	)
	return nil
}

func (s *notificationService) List(ctx context.Context, userID string) ([]*model.Notification, error) {
	res, err := s.notifications.ListByRecipient(ctx, userID, NotificationListLimit)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = []*model.Notification{}
	}
	return res, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if s.cache == nil {
		return s.notifications.CountUnread(ctx, userID)
	}
	if n, ok := s.cache.GetUnread(ctx, userID); ok {
		return n, nil
	}
	// 先取版本再查库，查库期间的新通知会让这次回填失效
	version := s.cache.UnreadVersion(ctx, userID)
	n, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.cache.SetUnread(ctx, userID, n, version)
	return n, nil
}

// MarkRead 只有接收者可以标记；不存在或属于他人的通知一律返回未找到
func (s *notificationService) MarkRead(ctx context.Context, id, userID string) (*model.Notification, error) {
	n, err := s.notifications.GetForRecipient(ctx, id, userID)
	if err != nil {
		return nil, notFoundAs(err, ErrNotificationNotFound)
	}
	if !n.IsRead {
		if err := s.notifications.MarkRead(ctx, id); err != nil {
			return nil, err
		}
		n.IsRead = true
		if s.cache != nil {
			s.cache.InvalidateUnread(ctx, userID)
		}
	}
	return n, nil
}
