package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/forum/internal/authz"
	"github.com/d60-Lab/forum/internal/model"
	"github.com/d60-Lab/forum/internal/repository"
	"github.com/d60-Lab/forum/pkg/logger"
	"github.com/d60-Lab/forum/pkg/pagination"
)

type CreatePostInput struct {
	Title    string
	Content  string
	Category string
	TopicID  *string
}

// UpdatePostInput nil 字段保持不变
type UpdatePostInput struct {
	Title    *string
	Content  *string
	Category *string
}

// PostService 帖子
type PostService interface {
	Create(ctx context.Context, actor *model.User, in CreatePostInput) (*model.Post, error)
	Get(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context, category string, p pagination.Params) (pagination.Page[*model.Post], error)
	ListByAuthor(ctx context.Context, username string, p pagination.Params) (pagination.Page[*model.Post], error)
	Update(ctx context.Context, actor *model.User, id string, in UpdatePostInput) (*model.Post, error)
	Delete(ctx context.Context, actor *model.User, id string) error
}

type postService struct {
	posts    repository.PostRepository
	users    repository.UserRepository
	topics   repository.TopicRepository
	notifier NotificationService
}

func NewPostService(posts repository.PostRepository, users repository.UserRepository, topics repository.TopicRepository, notifier NotificationService) PostService {
	return &postService{posts: posts, users: users, topics: topics, notifier: notifier}
}

func (s *postService) Create(ctx context.Context, actor *model.User, in CreatePostInput) (*model.Post, error) {
	title := strings.TrimSpace(in.Title)
	var topic *model.Topic
	if in.TopicID != nil && *in.TopicID != "" {
		t, err := s.topics.GetByID(ctx, *in.TopicID)
		if err != nil {
			return nil, notFoundAs(err, ErrTopicNotFound)
		}
		if t.IsLocked && !authz.IsElevated(actor) {
			return nil, ErrTopicLocked
		}
		topic = t
		if title == "" {
			title = "Re: " + t.Title
		}
	}
	if title == "" {
		return nil, ErrTitleRequired
	}

	post := &model.Post{
		Title:    title,
		Content:  in.Content,
		Category: strings.TrimSpace(in.Category),
		AuthorID: actor.ID,
	}
	if topic != nil {
		post.TopicID = &topic.ID
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	if topic != nil {
		if err := s.topics.TouchLastPost(ctx, topic.ID, time.Now().UTC()); err != nil {
			logger.Warn("touch topic last post failed", zap.String("topic_id", topic.ID), zap.Error(err))
		}
	}

	if err := s.notifier.NotifyMentions(ctx, actor, post.Content, MentionTarget{
		Type:   model.NotificationMentionPost,
		PostID: post.ID,
	}); err != nil {
		return nil, err
	}
	return s.posts.GetDetail(ctx, post.ID)
}

func (s *postService) Get(ctx context.Context, id string) (*model.Post, error) {
	p, err := s.posts.GetDetail(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrPostNotFound)
	}
	return p, nil
}

func (s *postService) List(ctx context.Context, category string, p pagination.Params) (pagination.Page[*model.Post], error) {
	items, total, err := s.posts.List(ctx, repository.PostFilter{Category: category}, p.Offset(), p.Limit)
	if err != nil {
		return pagination.Page[*model.Post]{}, err
	}
	return pagination.NewPage(items, total, p), nil
}

func (s *postService) ListByAuthor(ctx context.Context, username string, p pagination.Params) (pagination.Page[*model.Post], error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return pagination.Page[*model.Post]{}, notFoundAs(err, ErrUserNotFound)
	}
	items, total, err := s.posts.List(ctx, repository.PostFilter{AuthorID: author.ID}, p.Offset(), p.Limit)
	if err != nil {
		return pagination.Page[*model.Post]{}, err
	}
	return pagination.NewPage(items, total, p), nil
}

// Update 编辑不会重新分发提及通知
func (s *postService) Update(ctx context.Context, actor *model.User, id string, in UpdatePostInput) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrPostNotFound)
	}
	if !authz.CanModify(actor, post.AuthorID) {
		return nil, ErrForbidden
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		fields["title"] = title
	}
	if in.Content != nil {
		fields["content"] = *in.Content
	}
	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		if category == "" {
			category = model.DefaultCategory
		}
		fields["category"] = category
	}
	if len(fields) > 0 {
		fields["is_edited"] = true
		if err := s.posts.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.posts.GetDetail(ctx, id)
}

func (s *postService) Delete(ctx context.Context, actor *model.User, id string) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return notFoundAs(err, ErrPostNotFound)
	}
	if !authz.CanModify(actor, post.AuthorID) {
		return ErrForbidden
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("post deleted", zap.String("post_id", id), zap.String("actor_id", actor.ID))
	return nil
}
