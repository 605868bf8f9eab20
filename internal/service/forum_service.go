package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/forum/internal/authz"
	"github.com/d60-Lab/forum/internal/model"
	"github.com/d60-Lab/forum/internal/repository"
	"github.com/d60-Lab/forum/pkg/errcode"
	"github.com/d60-Lab/forum/pkg/logger"
	"github.com/d60-Lab/forum/pkg/pagination"
	"github.com/d60-Lab/forum/pkg/slug"
)

type CategoryInput struct {
	Name         string
	Slug         string
	Description  string
	DisplayOrder int
}

type ForumInput struct {
	CategoryID   string
	Name         string
	Slug         string
	Description  string
	DisplayOrder int
}

type CreateTopicInput struct {
	ForumID string
	Title   string
	Content string
}

// ForumView 版块及其主题分页
type ForumView struct {
	Forum  *model.Forum                  `json:"forum"`
	Topics pagination.Page[*model.Topic] `json:"topics"`
}

// TopicView 主题及其帖子分页（时间正序）
type TopicView struct {
	Topic *model.Topic                 `json:"topic"`
	Posts pagination.Page[*model.Post] `json:"posts"`
}

// ForumService 分类/版块/主题
type ForumService interface {
	ListCategories(ctx context.Context) ([]*model.Category, error)
	GetForum(ctx context.Context, categorySlug, forumSlug string, p pagination.Params) (*ForumView, error)
	CreateCategory(ctx context.Context, in CategoryInput) (*model.Category, error)
	CreateForum(ctx context.Context, in ForumInput) (*model.Forum, error)
	GetTopic(ctx context.Context, id string, p pagination.Params) (*TopicView, error)
	CreateTopic(ctx context.Context, actor *model.User, in CreateTopicInput) (*TopicView, error)
	UpdateTopic(ctx context.Context, actor *model.User, id, title string) (*model.Topic, error)
	DeleteTopic(ctx context.Context, actor *model.User, id string) error
	TogglePin(ctx context.Context, actor *model.User, id string) (*model.Topic, error)
	ToggleLock(ctx context.Context, actor *model.User, id string) (*model.Topic, error)
}

type forumService struct {
	db       *gorm.DB
	forums   repository.ForumRepository
	topics   repository.TopicRepository
	posts    repository.PostRepository
	notifier NotificationService
}

func NewForumService(db *gorm.DB, notifier NotificationService) ForumService {
	return &forumService{
		db:       db,
		forums:   repository.NewForumRepository(db),
		topics:   repository.NewTopicRepository(db),
		posts:    repository.NewPostRepository(db),
		notifier: notifier,
	}
}

func (s *forumService) ListCategories(ctx context.Context) ([]*model.Category, error) {
	cats, err := s.forums.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []*model.Category{}
	}
	return cats, nil
}

func (s *forumService) GetForum(ctx context.Context, categorySlug, forumSlug string, p pagination.Params) (*ForumView, error) {
	f, err := s.forums.GetForumBySlugs(ctx, categorySlug, forumSlug)
	if err != nil {
		return nil, notFoundAs(err, ErrForumNotFound)
	}
	topics, total, err := s.topics.ListByForum(ctx, f.ID, p.Offset(), p.Limit)
	if err != nil {
		return nil, err
	}
	return &ForumView{Forum: f, Topics: pagination.NewPage(topics, total, p)}, nil
}

func (s *forumService) CreateCategory(ctx context.Context, in CategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(in.Name)
	sl := slug.Make(firstNonEmpty(in.Slug, name), "category")
	exists, err := s.forums.CategorySlugExists(ctx, sl)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errcode.BadRequest("category slug %q already exists", sl)
	}
	c := &model.Category{Name: name, Slug: sl, Description: in.Description, DisplayOrder: in.DisplayOrder}
	if err := s.forums.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	c.Forums = []model.Forum{}
	return c, nil
}

func (s *forumService) CreateForum(ctx context.Context, in ForumInput) (*model.Forum, error) {
	if _, err := s.forums.GetCategoryByID(ctx, in.CategoryID); err != nil {
		return nil, notFoundAs(err, ErrCategoryNotFound)
	}
	name := strings.TrimSpace(in.Name)
	sl := slug.Make(firstNonEmpty(in.Slug, name), "forum")
	exists, err := s.forums.ForumSlugExists(ctx, in.CategoryID, sl)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errcode.BadRequest("forum slug %q already exists in this category", sl)
	}
	f := &model.Forum{CategoryID: in.CategoryID, Name: name, Slug: sl, Description: in.Description, DisplayOrder: in.DisplayOrder}
	if err := s.forums.CreateForum(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// GetTopic 每次查看计数 +1
func (s *forumService) GetTopic(ctx context.Context, id string, p pagination.Params) (*TopicView, error) {
	if err := s.topics.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	return s.topicView(ctx, id, p)
}

func (s *forumService) topicView(ctx context.Context, id string, p pagination.Params) (*TopicView, error) {
	t, err := s.topics.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrTopicNotFound)
	}
	posts, total, err := s.posts.List(ctx, repository.PostFilter{TopicID: id, OldestFirst: true}, p.Offset(), p.Limit)
	if err != nil {
		return nil, err
	}
	return &TopicView{Topic: t, Posts: pagination.NewPage(posts, total, p)}, nil
}

// CreateTopic 主题与首帖在同一事务内写入，提交后再分发提及
func (s *forumService) CreateTopic(ctx context.Context, actor *model.User, in CreateTopicInput) (*TopicView, error) {
	f, err := s.forums.GetForumByID(ctx, in.ForumID)
	if err != nil {
		return nil, notFoundAs(err, ErrForumNotFound)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	topic := &model.Topic{ForumID: f.ID, AuthorID: actor.ID, Title: title, Slug: slug.Make(title, "topic")}
	var first *model.Post
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewTopicRepository(tx).Create(ctx, topic); err != nil {
			return err
		}
		first = &model.Post{Title: title, Content: in.Content, AuthorID: actor.ID, TopicID: &topic.ID}
		return repository.NewPostRepository(tx).Create(ctx, first)
	})
	if err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyMentions(ctx, actor, first.Content, MentionTarget{
		Type:   model.NotificationMentionPost,
		PostID: first.ID,
	}); err != nil {
		return nil, err
	}
	logger.Info("topic created", zap.String("topic_id", topic.ID), zap.String("forum_id", f.ID))
	return s.topicView(ctx, topic.ID, pagination.New(1, 0))
}

func (s *forumService) UpdateTopic(ctx context.Context, actor *model.User, id, title string) (*model.Topic, error) {
	t, err := s.topics.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrTopicNotFound)
	}
	if !authz.CanModify(actor, t.AuthorID) {
		return nil, ErrForbidden
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if err := s.topics.Update(ctx, id, map[string]interface{}{"title": title, "slug": slug.Make(title, "topic")}); err != nil {
		return nil, err
	}
	return s.topics.GetByID(ctx, id)
}

func (s *forumService) DeleteTopic(ctx context.Context, actor *model.User, id string) error {
	t, err := s.topics.GetByID(ctx, id)
	if err != nil {
		return notFoundAs(err, ErrTopicNotFound)
	}
	if !authz.CanModify(actor, t.AuthorID) {
		return ErrForbidden
	}
	if err := s.topics.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("topic deleted", zap.String("topic_id", id), zap.String("actor_id", actor.ID))
	return nil
}

func (s *forumService) TogglePin(ctx context.Context, actor *model.User, id string) (*model.Topic, error) {
	return s.toggle(ctx, actor, id, "is_pinned", func(t *model.Topic) bool { return t.IsPinned })
}

func (s *forumService) ToggleLock(ctx context.Context, actor *model.User, id string) (*model.Topic, error) {
	return s.toggle(ctx, actor, id, "is_locked", func(t *model.Topic) bool { return t.IsLocked })
}

func (s *forumService) toggle(ctx context.Context, actor *model.User, id, column string, current func(*model.Topic) bool) (*model.Topic, error) {
	if !authz.IsElevated(actor) {
		return nil, ErrForbidden
	}
	t, err := s.topics.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrTopicNotFound)
	}
	if err := s.topics.Update(ctx, id, map[string]interface{}{column: !current(t)}); err != nil {
		return nil, err
	}
	return s.topics.GetByID(ctx, id)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
