package service

import "context"

// UnreadCache 未读数缓存，nil 表示不启用
type UnreadCache interface {
	GetUnread(ctx context.Context, userID string) (int64, bool)
	UnreadVersion(ctx context.Context, userID string) int64
	SetUnread(ctx context.Context, userID string, n, version int64)
	InvalidateUnread(ctx context.Context, userID string)
}

// FollowCache 关注关系 id 索引缓存，nil 表示不启用
type FollowCache interface {
	FollowerPage(ctx context.Context, userID string, offset, limit int, load func(context.Context) ([]string, error)) ([]string, int64, error)
	FollowingPage(ctx context.Context, userID string, offset, limit int, load func(context.Context) ([]string, error)) ([]string, int64, error)
	InvalidateFollow(ctx context.Context, followerID, followingID string)
}
