package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/forum/internal/cache"
	"github.com/d60-Lab/forum/internal/model"
	"github.com/d60-Lab/forum/internal/repository"
	"github.com/d60-Lab/forum/internal/testutil"
	"github.com/d60-Lab/forum/pkg/pagination"
)

func newCacheStore(t *testing.T) *cache.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.New(rdb, time.Minute)
}

func TestCachedUnreadCountStaysCorrect(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	store := newCacheStore(t)
	users := repository.NewUserRepository(db)
	svc := NewNotificationService(users, repository.NewNotificationRepository(db), store)

	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, a, "p")

	n, err := svc.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	target := MentionTarget{Type: model.NotificationMentionPost, PostID: post.ID}
	require.NoError(t, svc.NotifyMentions(ctx, a, "hey @bob", target))
	n, err = svc.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "dispatch must invalidate the cached count")

	list, err := svc.List(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	_, err = svc.MarkRead(ctx, list[0].ID, b.ID)
	require.NoError(t, err)

	n, err = svc.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

// racingUnreadCache 在回填写入前插入一次提及，模拟查库与回填之间的并发写
type racingUnreadCache struct {
	*cache.Store
	before func()
}

func (c *racingUnreadCache) SetUnread(ctx context.Context, userID string, n, version int64) {
	if c.before != nil {
		c.before()
		c.before = nil
	}
	c.Store.SetUnread(ctx, userID, n, version)
}

func TestCachedUnreadCount_MentionDuringRefill(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	rc := &racingUnreadCache{Store: newCacheStore(t)}
	svc := NewNotificationService(repository.NewUserRepository(db), repository.NewNotificationRepository(db), rc)

	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, a, "p")
	rc.before = func() {
		require.NoError(t, svc.NotifyMentions(ctx, a, "hey @bob", MentionTarget{Type: model.NotificationMentionPost, PostID: post.ID}))
	}

	n, err := svc.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n, "count read before the mention was written")

	n, err = svc.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "stale refill must not be cached")
}

func TestCachedFollowListsStayCorrect(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	store := newCacheStore(t)
	svc := NewRelationshipService(repository.NewFollowRepository(db), repository.NewUserRepository(db), store)

	hub := testutil.CreateUser(t, db, "hub")
	fans := []*model.User{
		testutil.CreateUser(t, db, "f1"),
		testutil.CreateUser(t, db, "f2"),
		testutil.CreateUser(t, db, "f3"),
	}
	for _, f := range fans {
		require.NoError(t, svc.Follow(ctx, f, hub.ID))
	}

	page, err := svc.ListFollowers(ctx, hub.ID, pagination.New(1, 2))
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Meta.Total)
	assert.Len(t, page.Data, 2)

	require.NoError(t, svc.Unfollow(ctx, fans[0], hub.ID))
	page, err = svc.ListFollowers(ctx, hub.ID, pagination.New(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Meta.Total)
	names := []string{}
	for _, u := range page.Data {
		names = append(names, u.Username)
	}
	assert.ElementsMatch(t, []string{"f2", "f3"}, names)

	following, err := svc.ListFollowing(ctx, fans[1].ID, pagination.New(1, 10))
	require.NoError(t, err)
	require.Len(t, following.Data, 1)
	assert.Equal(t, "hub", following.Data[0].Username)
}
