package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/forum/internal/model"
)

type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	ListByPost(ctx context.Context, postID string, offset, limit int) ([]*model.Comment, int64, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Omit("Author").Create(c).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	if err := r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByPost 按时间正序分页
func (r *commentRepository) ListByPost(ctx context.Context, postID string, offset, limit int) ([]*model.Comment, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Comment{}).Where("post_id = ?", postID).Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var res []*model.Comment
	err := q.Preload("Author").Order("created_at ASC").Offset(offset).Limit(limit).Find(&res).Error
	return res, total, err
}

func (r *commentRepository) UpdateContent(ctx context.Context, id, content string) error {
	return r.db.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", id).Update("content", content).Error
}

// Delete 删除评论，引用它的通知置空 comment_id
func (r *commentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Notification{}).Where("comment_id = ?", id).
			Update("comment_id", gorm.Expr("NULL")).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Comment{}).Error
	})
}
