package service

import (
	"context"

	"github.com/d60-Lab/forum/internal/authz"
	"github.com/d60-Lab/forum/internal/model"
	"github.com/d60-Lab/forum/internal/repository"
	"github.com/d60-Lab/forum/pkg/pagination"
)

type CommentService interface {
	Create(ctx context.Context, actor *model.User, postID, content string) (*model.Comment, error)
	ListByPost(ctx context.Context, postID string, p pagination.Params) (pagination.Page[*model.Comment], error)
	Update(ctx context.Context, actor *model.User, id, content string) (*model.Comment, error)
	Delete(ctx context.Context, actor *model.User, id string) error
}

type commentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	notifier NotificationService
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, notifier NotificationService) CommentService {
	return &commentService{comments: comments, posts: posts, notifier: notifier}
}

func (s *commentService) Create(ctx context.Context, actor *model.User, postID, content string) (*model.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, notFoundAs(err, ErrPostNotFound)
	}
	c := &model.Comment{Content: content, AuthorID: actor.ID, PostID: postID}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	commentID := c.ID
	if err := s.notifier.NotifyMentions(ctx, actor, content, MentionTarget{
		Type:      model.NotificationMentionComment,
		PostID:    postID,
		CommentID: &commentID,
	}); err != nil {
		return nil, err
	}
	return s.comments.GetByID(ctx, c.ID)
}

func (s *commentService) ListByPost(ctx context.Context, postID string, p pagination.Params) (pagination.Page[*model.Comment], error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return pagination.Page[*model.Comment]{}, notFoundAs(err, ErrPostNotFound)
	}
	items, total, err := s.comments.ListByPost(ctx, postID, p.Offset(), p.Limit)
	if err != nil {
		return pagination.Page[*model.Comment]{}, err
	}
	return pagination.NewPage(items, total, p), nil
}

func (s *commentService) Update(ctx context.Context, actor *model.User, id, content string) (*model.Comment, error) {
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrCommentNotFound)
	}
	if !authz.CanModify(actor, c.AuthorID) {
		return nil, ErrForbidden
	}
	if err := s.comments.UpdateContent(ctx, id, content); err != nil {
		return nil, err
	}
	return s.comments.GetByID(ctx, id)
}

func (s *commentService) Delete(ctx context.Context, actor *model.User, id string) error {
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return notFoundAs(err, ErrCommentNotFound)
	}
	if !authz.CanModify(actor, c.AuthorID) {
		return ErrForbidden
	}
	return s.comments.Delete(ctx, id)
}
