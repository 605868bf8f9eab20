// Package cache 基于 Redis 的读缓存：未读通知数与关注关系 id 索引。
// 缓存失效只影响性能，读写失败时调用方回落到数据库。
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/forum/config"
	"github.com/d60-Lab/forum/pkg/logger"
)

// Store 缓存访问入口
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient 按配置创建 redis 客户端并检查连通性
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

func New(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func unreadKey(userID string) string    { return fmt.Sprintf("notifications:unread:%s", userID) }
func unreadVerKey(userID string) string { return fmt.Sprintf("notifications:unread:ver:%s", userID) }
func followersKey(userID string) string { return fmt.Sprintf("followers:index:%s", userID) }
func followingKey(userID string) string { return fmt.Sprintf("following:index:%s", userID) }

// GetUnread 命中时返回缓存的未读数
func (s *Store) GetUnread(ctx context.Context, userID string) (int64, bool) {
	v, err := s.rdb.Get(ctx, unreadKey(userID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("cache get unread failed", zap.String("user_id", userID), zap.Error(err))
		}
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// UnreadVersion 回填前读取版本号；读取失败返回 -1，之后的 SetUnread 不会生效
func (s *Store) UnreadVersion(ctx context.Context, userID string) int64 {
	v, err := s.rdb.Get(ctx, unreadVerKey(userID)).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0
	case err != nil:
		logger.Warn("cache get unread version failed", zap.String("user_id", userID), zap.Error(err))
		return -1
	}
	return v
}

// setUnreadIfVersion 版本号未变时才写入计数
var setUnreadIfVersion = redis.NewScript(`
local v = redis.call('GET', KEYS[2]) or '0'
if v ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// SetUnread 回填数据库中的未读数。version 须在查询数据库之前通过 UnreadVersion 取得，
// 期间有 InvalidateUnread 发生时本次回填被丢弃。
func (s *Store) SetUnread(ctx context.Context, userID string, n, version int64) {
	if version < 0 {
		return
	}
	err := setUnreadIfVersion.Run(ctx, s.rdb,
		[]string{unreadKey(userID), unreadVerKey(userID)},
		version, n, s.ttl.Milliseconds(),
	).Err()
	if err != nil {
		logger.Warn("cache set unread failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// InvalidateUnread 新通知或标记已读提交后调用：版本号 +1 并删除计数
func (s *Store) InvalidateUnread(ctx context.Context, userID string) {
	pipe := s.rdb.TxPipeline()
	pipe.Incr(ctx, unreadVerKey(userID))
	pipe.Expire(ctx, unreadVerKey(userID), 2*s.ttl)
	pipe.Del(ctx, unreadKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("cache invalidate unread failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// FollowerPage 返回 userID 的粉丝 id 分页与总数
func (s *Store) FollowerPage(ctx context.Context, userID string, offset, limit int, load func(context.Context) ([]string, error)) ([]string, int64, error) {
	return s.idPage(ctx, followersKey(userID), offset, limit, load)
}

// FollowingPage 返回 userID 关注的 id 分页与总数
func (s *Store) FollowingPage(ctx context.Context, userID string, offset, limit int, load func(context.Context) ([]string, error)) ([]string, int64, error) {
	return s.idPage(ctx, followingKey(userID), offset, limit, load)
}

// InvalidateFollow 关注边变化时清除双方的索引
func (s *Store) InvalidateFollow(ctx context.Context, followerID, followingID string) {
	if err := s.rdb.Del(ctx, followersKey(followingID), followingKey(followerID)).Err(); err != nil {
		logger.Warn("cache invalidate follow failed",
			zap.String("follower_id", followerID),
			zap.String("following_id", followingID),
			zap.Error(err),
		)
	}
}

// idPage 以 Redis List 保存完整 id 索引，LRANGE 只取需要的一页。
// 未命中时通过 load 读库并整体回填。
func (s *Store) idPage(ctx context.Context, key string, offset, limit int, load func(context.Context) ([]string, error)) ([]string, int64, error) {
	start, end := int64(offset), int64(offset+limit-1)

	pipe := s.rdb.Pipeline()
	llen := pipe.LLen(ctx, key)
	lrange := pipe.LRange(ctx, key, start, end)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		logger.Warn("cache read id index failed", zap.String("key", key), zap.Error(err))
	} else if total := llen.Val(); total > 0 {
		return lrange.Val(), total, nil
	}

	all, err := load(ctx)
	if err != nil {
		return nil, 0, err
	}
	s.storeIndex(ctx, key, all)

	total := int64(len(all))
	if offset >= len(all) {
		return []string{}, total, nil
	}
	stop := offset + limit
	if stop > len(all) {
		stop = len(all)
	}
	return all[offset:stop], total, nil
}

func (s *Store) storeIndex(ctx context.Context, key string, ids []string) {
	// 空列表无法存入 Redis List，交给下一次读库
	if len(ids) == 0 {
		return
	}
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.RPush(ctx, key, interfaceSlice(ids)...)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("cache store id index failed", zap.String("key", key), zap.Error(err))
	}
}

func interfaceSlice(strs []string) []interface{} {
	result := make([]interface{}, len(strs))
	for i, s := range strs {
		result[i] = s
	}
	return result
}
