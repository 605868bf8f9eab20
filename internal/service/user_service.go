package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/d60-Lab/forum/internal/model"
	"github.com/d60-Lab/forum/internal/repository"
	"github.com/d60-Lab/forum/internal/storage"
	"github.com/d60-Lab/forum/pkg/errcode"
	"github.com/d60-Lab/forum/pkg/logger"
	"github.com/d60-Lab/forum/pkg/pagination"
)

// UpdateProfileInput Avatar 为 nil 时不修改头像
type UpdateProfileInput struct {
	Bio    *string
	Avatar *storage.Object
}

// UserService 用户主页与管理
type UserService interface {
	GetProfile(ctx context.Context, username string) (*Profile, error)
	UpdateProfile(ctx context.Context, actor *model.User, in UpdateProfileInput) (*Profile, error)
	List(ctx context.Context, p pagination.Params) (pagination.Page[*Account], error)
	UpdateRole(ctx context.Context, username, role string) (*Account, error)
	ToggleActive(ctx context.Context, actor *model.User, username string) (*Account, error)
}

type userService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	avatars storage.Store
}

func NewUserService(users repository.UserRepository, follows repository.FollowRepository, avatars storage.Store) UserService {
	return &userService{users: users, follows: follows, avatars: avatars}
}

func (s *userService) GetProfile(ctx context.Context, username string) (*Profile, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	return s.profile(ctx, u)
}

func (s *userService) UpdateProfile(ctx context.Context, actor *model.User, in UpdateProfileInput) (*Profile, error) {
	fields := map[string]interface{}{}
	if in.Bio != nil {
		fields["bio"] = strings.TrimSpace(*in.Bio)
	}
	if in.Avatar != nil {
		if s.avatars == nil {
			return nil, errcode.BadRequest("avatar uploads are disabled")
		}
		url, err := s.avatars.Put(ctx, *in.Avatar)
		if err != nil {
			return nil, err
		}
		fields["avatar_url"] = url
		logger.Info("avatar uploaded", zap.String("user_id", actor.ID), zap.String("url", url))
	}
	if err := s.users.UpdateProfile(ctx, actor.ID, fields); err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	return s.profile(ctx, u)
}

func (s *userService) List(ctx context.Context, p pagination.Params) (pagination.Page[*Account], error) {
	items, total, err := s.users.List(ctx, p.Offset(), p.Limit)
	if err != nil {
		return pagination.Page[*Account]{}, err
	}
	return pagination.NewPage(toAccounts(items), total, p), nil
}

func (s *userService) UpdateRole(ctx context.Context, username, role string) (*Account, error) {
	if !model.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	if err := s.users.UpdateRole(ctx, u.ID, role); err != nil {
		return nil, err
	}
	logger.Info("user role changed", zap.String("user_id", u.ID), zap.String("from", u.Role), zap.String("to", role))
	u.Role = role
	u.IsAdmin = role == model.RoleAdmin
	return toAccount(u), nil
}

func (s *userService) ToggleActive(ctx context.Context, actor *model.User, username string) (*Account, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	if u.ID == actor.ID {
		return nil, ErrDeactivateSelf
	}
	u.IsActive = !u.IsActive
	if err := s.users.SetActive(ctx, u.ID, u.IsActive); err != nil {
		return nil, err
	}
	logger.Info("user active flag toggled", zap.String("user_id", u.ID), zap.Bool("active", u.IsActive))
	return toAccount(u), nil
}

func (s *userService) profile(ctx context.Context, u *model.User) (*Profile, error) {
	followers, following, err := s.follows.Counts(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return toProfile(u, followers, following), nil
}
