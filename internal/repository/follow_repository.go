package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/forum/internal/model"
)

type FollowRepository interface {
	Create(ctx context.Context, followerID, followingID string) error
	Delete(ctx context.Context, followerID, followingID string) (bool, error)
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	ListFollowers(ctx context.Context, userID string, offset, limit int) ([]*model.User, int64, error)
	ListFollowing(ctx context.Context, userID string, offset, limit int) ([]*model.User, int64, error)
	FollowerIDs(ctx context.Context, userID string) ([]string, error)
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
	Counts(ctx context.Context, userID string) (followers, following int64, err error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

// Create 写入关注边，重复关注由 ux_follow_pair 唯一键拒绝
func (r *followRepository) Create(ctx context.Context, followerID, followingID string) error {
	f := &model.Follow{ID: uuid.New().String(), FollowerID: followerID, FollowingID: followingID}
	return r.db.WithContext(ctx).Omit("Follower", "Following").Create(f).Error
}

// Delete 返回是否确实删除了一条边
func (r *followRepository) Delete(ctx context.Context, followerID, followingID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&model.Follow{})
	return res.RowsAffected > 0, res.Error
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// ListFollowers 关注 userID 的用户，最近关注的在前
func (r *followRepository) ListFollowers(ctx context.Context, userID string, offset, limit int) ([]*model.User, int64, error) {
	return r.listEdge(ctx, "follower_id", "following_id", userID, offset, limit)
}

// ListFollowing userID 关注的用户，最近关注的在前
func (r *followRepository) ListFollowing(ctx context.Context, userID string, offset, limit int) ([]*model.User, int64, error) {
	return r.listEdge(ctx, "following_id", "follower_id", userID, offset, limit)
}

func (r *followRepository) listEdge(ctx context.Context, joinCol, whereCol, userID string, offset, limit int) ([]*model.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where(whereCol+" = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var res []*model.User
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Joins("JOIN follows ON follows."+joinCol+" = users.id").
		Where("follows."+whereCol+" = ?", userID).
		Order("follows.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, total, err
}

// FollowerIDs 全量粉丝 id（最近在前），供缓存索引使用
func (r *followRepository) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("following_id = ?", userID).
		Order("created_at DESC").
		Pluck("follower_id", &ids).Error
	return ids, err
}

// FollowingIDs 全量关注 id（最近在前）
func (r *followRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ?", userID).
		Order("created_at DESC").
		Pluck("following_id", &ids).Error
	return ids, err
}

func (r *followRepository) Counts(ctx context.Context, userID string) (int64, int64, error) {
	var followers, following int64
	if err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("following_id = ?", userID).Count(&followers).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ?", userID).Count(&following).Error; err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}
