package service

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/forum/internal/model"
	"github.com/d60-Lab/forum/internal/repository"
	"github.com/d60-Lab/forum/pkg/logger"
)

// ReactionService 反应切换与声望记账
type ReactionService interface {
	Toggle(ctx context.Context, actor *model.User, postID string, t model.ReactionType) (*model.Post, error)
}

type reactionService struct {
	db *gorm.DB
}

func NewReactionService(db *gorm.DB) ReactionService { return &reactionService{db: db} }

// Toggle 状态迁移：
//
//	无     + T -> T   作者声望 +1
//	T      + T -> 无  作者声望 -1
//	T      + U -> U   声望不变
//
// 账本变更与声望更新在同一事务内完成。
func (s *reactionService) Toggle(ctx context.Context, actor *model.User, postID string, t model.ReactionType) (*model.Post, error) {
	if !t.Valid() {
		return nil, ErrInvalidReactionType
	}

	var delta int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		posts := repository.NewPostRepository(tx)
		reactions := repository.NewReactionRepository(tx)
		users := repository.NewUserRepository(tx)

		post, err := posts.GetByID(ctx, postID)
		if err != nil {
			return notFoundAs(err, ErrPostNotFound)
		}

		existing, err := reactions.Find(ctx, actor.ID, postID)
		switch {
		case isNotFound(err):
			if err := reactions.Create(ctx, &model.Reaction{Type: t, UserID: actor.ID, PostID: postID}); err != nil {
				return err
			}
			delta = 1
		case err != nil:
			return err
		case existing.Type == t:
			deleted, err := reactions.Delete(ctx, existing.ID)
			if err != nil {
				return err
			}
			// 已被并发请求撤销时不重复扣减
			if deleted {
				delta = -1
			}
		default:
			if err := reactions.UpdateType(ctx, existing.ID, t); err != nil {
				return err
			}
		}
		return users.AddReputation(ctx, post.AuthorID, delta)
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("reaction toggled",
		zap.String("post_id", postID),
		zap.String("user_id", actor.ID),
		zap.String("type", string(t)),
		zap.Int64("delta", delta),
	)
	return repository.NewPostRepository(s.db).GetDetail(ctx, postID)
}
