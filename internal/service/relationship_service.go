package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/d60-Lab/forum/internal/model"
	"github.com/d60-Lab/forum/internal/repository"
	"github.com/d60-Lab/forum/pkg/logger"
	"github.com/d60-Lab/forum/pkg/pagination"
)

// RelationshipService 关注关系
type RelationshipService interface {
	Follow(ctx context.Context, actor *model.User, targetID string) error
	Unfollow(ctx context.Context, actor *model.User, targetID string) error
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	ListFollowers(ctx context.Context, userID string, p pagination.Params) (pagination.Page[*UserSummary], error)
	ListFollowing(ctx context.Context, userID string, p pagination.Params) (pagination.Page[*UserSummary], error)
}

type relationshipService struct {
	follows repository.FollowRepository
	users   repository.UserRepository
	cache   FollowCache
}

func NewRelationshipService(follows repository.FollowRepository, users repository.UserRepository, cache FollowCache) RelationshipService {
	return &relationshipService{follows: follows, users: users, cache: cache}
}

func (s *relationshipService) Follow(ctx context.Context, actor *model.User, targetID string) error {
	if actor.ID == targetID {
		return ErrFollowSelf
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return notFoundAs(err, ErrUserNotFound)
	}
	exists, err := s.follows.Exists(ctx, actor.ID, targetID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyFollowing
	}
	if err := s.follows.Create(ctx, actor.ID, targetID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.InvalidateFollow(ctx, actor.ID, targetID)
	}
	logger.Debug("user followed", zap.String("follower_id", actor.ID), zap.String("following_id", targetID))
	return nil
}

func (s *relationshipService) Unfollow(ctx context.Context, actor *model.User, targetID string) error {
	deleted, err := s.follows.Delete(ctx, actor.ID, targetID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFollowing
	}
	if s.cache != nil {
		s.cache.InvalidateFollow(ctx, actor.ID, targetID)
	}
	return nil
}

func (s *relationshipService) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	return s.follows.Exists(ctx, followerID, followingID)
}

func (s *relationshipService) ListFollowers(ctx context.Context, userID string, p pagination.Params) (pagination.Page[*UserSummary], error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return pagination.Page[*UserSummary]{}, notFoundAs(err, ErrUserNotFound)
	}
	if s.cache != nil {
		load := func(ctx context.Context) ([]string, error) { return s.follows.FollowerIDs(ctx, userID) }
		ids, total, err := s.cache.FollowerPage(ctx, userID, p.Offset(), p.Limit, load)
		if err != nil {
			return pagination.Page[*UserSummary]{}, err
		}
		return s.resolve(ctx, ids, total, p)
	}
	users, total, err := s.follows.ListFollowers(ctx, userID, p.Offset(), p.Limit)
	if err != nil {
		return pagination.Page[*UserSummary]{}, err
	}
	return pagination.NewPage(toSummaries(users), total, p), nil
}

func (s *relationshipService) ListFollowing(ctx context.Context, userID string, p pagination.Params) (pagination.Page[*UserSummary], error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return pagination.Page[*UserSummary]{}, notFoundAs(err, ErrUserNotFound)
	}
	if s.cache != nil {
		load := func(ctx context.Context) ([]string, error) { return s.follows.FollowingIDs(ctx, userID) }
		ids, total, err := s.cache.FollowingPage(ctx, userID, p.Offset(), p.Limit, load)
		if err != nil {
			return pagination.Page[*UserSummary]{}, err
		}
		return s.resolve(ctx, ids, total, p)
	}
	users, total, err := s.follows.ListFollowing(ctx, userID, p.Offset(), p.Limit)
	if err != nil {
		return pagination.Page[*UserSummary]{}, err
	}
	return pagination.NewPage(toSummaries(users), total, p), nil
}

// resolve 按缓存中的 id 顺序批量加载用户
func (s *relationshipService) resolve(ctx context.Context, ids []string, total int64, p pagination.Params) (pagination.Page[*UserSummary], error) {
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return pagination.Page[*UserSummary]{}, err
	}
	return pagination.NewPage(toSummaries(users), total, p), nil
}
