package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/forum/internal/model"
	"github.com/d60-Lab/forum/internal/testutil"
)

func TestPostRepository_ListPagination(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "alice")

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		p := &model.Post{Title: fmt.Sprintf("p%02d", i), Content: "c", AuthorID: author.ID, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.Create(ctx, p))
	}

	items, total, err := repo.List(ctx, PostFilter{}, 10, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 15, total)
	require.Len(t, items, 5)
	// 最新在前，第二页是最早的 5 篇
	assert.Equal(t, "p04", items[0].Title)
	assert.Equal(t, "p00", items[4].Title)
	require.NotNil(t, items[0].Author)
	assert.Equal(t, "alice", items[0].Author.Username)
}

func TestPostRepository_ListFiltersAndCounts(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	news := &model.Post{Title: "n", Content: "c", Category: "News", AuthorID: alice.ID}
	require.NoError(t, repo.Create(ctx, news))
	general := &model.Post{Title: "g", Content: "c", AuthorID: bob.ID}
	require.NoError(t, repo.Create(ctx, general))
	assert.Equal(t, model.DefaultCategory, general.Category)

	require.NoError(t, NewCommentRepository(db).Create(ctx, &model.Comment{Content: "x", AuthorID: bob.ID, PostID: news.ID}))
	require.NoError(t, NewCommentRepository(db).Create(ctx, &model.Comment{Content: "y", AuthorID: bob.ID, PostID: news.ID}))
	require.NoError(t, NewReactionRepository(db).Create(ctx, &model.Reaction{Type: model.ReactionLike, UserID: bob.ID, PostID: news.ID}))

	items, total, err := repo.List(ctx, PostFilter{Category: "News"}, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.EqualValues(t, 2, items[0].CommentCount)
	assert.EqualValues(t, 1, items[0].ReactionCount)

	items, total, err = repo.List(ctx, PostFilter{AuthorID: bob.ID}, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, general.ID, items[0].ID)
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	posts := NewPostRepository(db)
	comments := NewCommentRepository(db)
	reactions := NewReactionRepository(db)
	notifications := NewNotificationRepository(db)

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice, "hello")
	other := testutil.CreatePost(t, db, alice, "other")

	c := &model.Comment{Content: "hi @alice", AuthorID: bob.ID, PostID: post.ID}
	require.NoError(t, comments.Create(ctx, c))
	require.NoError(t, reactions.Create(ctx, &model.Reaction{Type: model.ReactionLove, UserID: bob.ID, PostID: post.ID}))
	require.NoError(t, reactions.Create(ctx, &model.Reaction{Type: model.ReactionLike, UserID: bob.ID, PostID: other.ID}))
	n := &model.Notification{Type: model.NotificationMentionComment, RecipientID: alice.ID, SenderID: bob.ID, PostID: &post.ID, CommentID: &c.ID}
	require.NoError(t, notifications.Create(ctx, n))

	require.NoError(t, posts.Delete(ctx, post.ID))

	_, err := posts.GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = comments.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	cnt, err := reactions.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, cnt)

	// 其它帖子不受影响
	cnt, err = reactions.CountByPost(ctx, other.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cnt)

	// 通知保留，引用被置空
	kept, err := notifications.GetForRecipient(ctx, n.ID, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.PostID)
	assert.Nil(t, kept.CommentID)
}

func TestPostRepository_GetDetail(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice, "hello")
	require.NoError(t, NewCommentRepository(db).Create(ctx, &model.Comment{Content: "first", AuthorID: bob.ID, PostID: post.ID}))
	require.NoError(t, NewReactionRepository(db).Create(ctx, &model.Reaction{Type: model.ReactionSupport, UserID: bob.ID, PostID: post.ID}))

	got, err := NewPostRepository(db).GetDetail(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Author)
	assert.Equal(t, "alice", got.Author.Username)
	require.Len(t, got.Comments, 1)
	require.NotNil(t, got.Comments[0].Author)
	assert.Equal(t, "bob", got.Comments[0].Author.Username)
	require.Len(t, got.Reactions, 1)
	require.NotNil(t, got.Reactions[0].User)
	assert.Equal(t, model.ReactionSupport, got.Reactions[0].Type)
}

func TestReactionRepository_UniquePerUserPost(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewReactionRepository(db)
	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice, "p")

	require.NoError(t, repo.Create(ctx, &model.Reaction{Type: model.ReactionLike, UserID: alice.ID, PostID: post.ID}))
	assert.Error(t, repo.Create(ctx, &model.Reaction{Type: model.ReactionLove, UserID: alice.ID, PostID: post.ID}))

	r, err := repo.Find(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateType(ctx, r.ID, model.ReactionLove))
	r, err = repo.Find(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReactionLove, r.Type)
}

func TestUserRepository(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	u := &model.User{Username: "carol", Email: "carol@example.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, model.RoleUser, u.Role)

	byLogin, err := repo.GetByLogin(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byLogin.ID)

	nameTaken, emailTaken, err := repo.ExistsByUsernameOrEmail(ctx, "carol", "other@example.com")
	require.NoError(t, err)
	assert.True(t, nameTaken)
	assert.False(t, emailTaken)

	require.NoError(t, repo.AddReputation(ctx, u.ID, 2))
	require.NoError(t, repo.AddReputation(ctx, u.ID, -1))
	require.NoError(t, repo.UpdateRole(ctx, u.ID, model.RoleAdmin))
	require.NoError(t, repo.SetActive(ctx, u.ID, false))

	got, err := repo.GetByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Reputation)
	assert.Equal(t, model.RoleAdmin, got.Role)
	assert.True(t, got.IsAdmin)
	assert.False(t, got.IsActive)

	dave := testutil.CreateUser(t, db, "dave")
	ordered, err := repo.GetByIDs(ctx, []string{dave.ID, "missing", u.ID})
	require.NoError(t, err)
	require.Len(t, ordered, 2)
	assert.Equal(t, dave.ID, ordered[0].ID)
	assert.Equal(t, u.ID, ordered[1].ID)
}

func TestFollowRepository(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewFollowRepository(db)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")

	require.NoError(t, repo.Create(ctx, bob.ID, alice.ID))
	require.NoError(t, repo.Create(ctx, carol.ID, alice.ID))
	require.NoError(t, repo.Create(ctx, alice.ID, bob.ID))
	assert.Error(t, repo.Create(ctx, bob.ID, alice.ID), "duplicate edge")

	ok, err := repo.Exists(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	followers, total, err := repo.ListFollowers(ctx, alice.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, followers, 2)

	following, total, err := repo.ListFollowing(ctx, alice.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, following, 1)
	assert.Equal(t, "bob", following[0].Username)

	ids, err := repo.FollowerIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{bob.ID, carol.ID}, ids)

	nFollowers, nFollowing, err := repo.Counts(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, nFollowers)
	assert.EqualValues(t, 1, nFollowing)

	deleted, err := repo.Delete(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = repo.Delete(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestNotificationRepository(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewNotificationRepository(db)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, bob, "hey")

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &model.Notification{
			Type: model.NotificationMentionPost, RecipientID: alice.ID, SenderID: bob.ID, PostID: &post.ID,
		}))
	}

	list, err := repo.ListByRecipient(ctx, alice.ID, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].Sender)
	assert.Equal(t, "bob", list[0].Sender.Username)
	require.NotNil(t, list[0].Post)

	unread, err := repo.CountUnread(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, unread)

	_, err = repo.GetForRecipient(ctx, list[0].ID, bob.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.MarkRead(ctx, list[0].ID))
	unread, err = repo.CountUnread(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)
}

func TestForumAndTopicRepository(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	forums := NewForumRepository(db)
	topics := NewTopicRepository(db)
	posts := NewPostRepository(db)
	alice := testutil.CreateUser(t, db, "alice")

	cat := &model.Category{Name: "General", Slug: "general", DisplayOrder: 1}
	require.NoError(t, forums.CreateCategory(ctx, cat))
	f := &model.Forum{CategoryID: cat.ID, Name: "Chat", Slug: "chat"}
	require.NoError(t, forums.CreateForum(ctx, f))

	exists, err := forums.ForumSlugExists(ctx, cat.ID, "chat")
	require.NoError(t, err)
	assert.True(t, exists)

	now := time.Now().UTC()
	old := &model.Topic{ForumID: f.ID, AuthorID: alice.ID, Title: "Old", Slug: "old", LastPostAt: now.Add(-time.Hour)}
	fresh := &model.Topic{ForumID: f.ID, AuthorID: alice.ID, Title: "Fresh", Slug: "fresh", LastPostAt: now}
	pinned := &model.Topic{ForumID: f.ID, AuthorID: alice.ID, Title: "Pinned", Slug: "pinned", LastPostAt: now.Add(-2 * time.Hour)}
	for _, tp := range []*model.Topic{old, fresh, pinned} {
		require.NoError(t, topics.Create(ctx, tp))
	}
	require.NoError(t, topics.Update(ctx, pinned.ID, map[string]interface{}{"is_pinned": true}))
	require.NoError(t, posts.Create(ctx, &model.Post{Title: "Fresh", Content: "c", AuthorID: alice.ID, TopicID: &fresh.ID}))
	require.NoError(t, posts.Create(ctx, &model.Post{Title: "Re: Fresh", Content: "c", AuthorID: alice.ID, TopicID: &fresh.ID}))

	list, total, err := topics.ListByForum(ctx, f.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Pinned", "Fresh", "Old"}, []string{list[0].Title, list[1].Title, list[2].Title})
	assert.EqualValues(t, 2, list[1].PostCount)

	cats, err := forums.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	require.Len(t, cats[0].Forums, 1)
	assert.EqualValues(t, 3, cats[0].Forums[0].TopicCount)
	assert.EqualValues(t, 2, cats[0].Forums[0].PostCount)

	bySlug, err := forums.GetForumBySlugs(ctx, "general", "chat")
	require.NoError(t, err)
	assert.Equal(t, f.ID, bySlug.ID)

	require.NoError(t, topics.IncrementViews(ctx, fresh.ID))
	got, err := topics.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.ViewCount)

	require.NoError(t, topics.Delete(ctx, fresh.ID))
	_, n, err := posts.List(ctx, PostFilter{TopicID: fresh.ID}, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, n)
}
