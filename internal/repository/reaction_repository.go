package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/forum/internal/model"
)

// ReactionRepository 反应账本，(user_id, post_id) 唯一
type ReactionRepository interface {
	Find(ctx context.Context, userID, postID string) (*model.Reaction, error)
	Create(ctx context.Context, r *model.Reaction) error
	UpdateType(ctx context.Context, id string, t model.ReactionType) error
	Delete(ctx context.Context, id string) (bool, error)
	CountByPost(ctx context.Context, postID string) (int64, error)
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository { return &reactionRepository{db: db} }

func (r *reactionRepository) Find(ctx context.Context, userID, postID string) (*model.Reaction, error) {
	var rc model.Reaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&rc).Error; err != nil {
		return nil, err
	}
	return &rc, nil
}

func (r *reactionRepository) Create(ctx context.Context, rc *model.Reaction) error {
	if rc.ID == "" {
		rc.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Omit("User").Create(rc).Error
}

func (r *reactionRepository) UpdateType(ctx context.Context, id string, t model.ReactionType) error {
	return r.db.WithContext(ctx).Model(&model.Reaction{}).Where("id = ?", id).Update("type", t).Error
}

// Delete 返回是否确实删除；并发撤销时只有一方会成功
func (r *reactionRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Reaction{})
	return res.RowsAffected > 0, res.Error
}

func (r *reactionRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Reaction{}).Where("post_id = ?", postID).Count(&n).Error
	return n, err
}
