package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/forum/internal/model"
	"github.com/d60-Lab/forum/internal/repository"
	"github.com/d60-Lab/forum/pkg/errcode"
	"github.com/d60-Lab/forum/pkg/jwt"
	"github.com/d60-Lab/forum/pkg/logger"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult 注册/登录返回的用户与令牌
type AuthResult struct {
	User  *Account `json:"user"`
	Token string   `json:"token"`
}

// AuthService 注册、登录与令牌校验
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, login, password string) (*AuthResult, error)
	Me(ctx context.Context, userID string) (*Account, error)
	ChangePassword(ctx context.Context, actor *model.User, current, next string) error
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	users      repository.UserRepository
	tokens     *jwt.Manager
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(users repository.UserRepository, tokens *jwt.Manager, bcryptCost int) AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{users: users, tokens: tokens, bcryptCost: bcryptCost, now: time.Now}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.checkTaken(ctx, in.Username, email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Username:     in.Username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// 并发注册时预检查会漏过，由唯一索引兜底，再查一次给出具体原因
		if taken := s.checkTaken(ctx, u.Username, email); taken != nil {
			return nil, taken
		}
		return nil, err
	}
	logger.Info("user registered", zap.String("user_id", u.ID), zap.String("username", u.Username))
	return s.issue(u)
}

func (s *authService) checkTaken(ctx context.Context, username, email string) error {
	usernameTaken, emailTaken, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return err
	}
	if usernameTaken {
		return ErrUsernameTaken
	}
	if emailTaken {
		return ErrEmailTaken
	}
	return nil
}

func (s *authService) Login(ctx context.Context, login, password string) (*AuthResult, error) {
	u, err := s.users.GetByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		return nil, notFoundAs(err, ErrInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}
	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, u.ID, now); err != nil {
		logger.Warn("update last login failed", zap.String("user_id", u.ID), zap.Error(err))
	} else {
		u.LastLoginAt = &now
	}
	return s.issue(u)
}

func (s *authService) Me(ctx context.Context, userID string) (*Account, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	return toAccount(u), nil
}

func (s *authService) ChangePassword(ctx context.Context, actor *model.User, current, next string) error {
	u, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return notFoundAs(err, ErrUserNotFound)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return ErrWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, u.ID, string(hash))
}

// Authenticate 校验令牌并加载当前用户；用户不存在或已停用视为未认证
func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, errcode.Unauthorized("invalid or expired token")
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, errcode.Unauthorized("user not found")
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, errcode.Unauthorized("account is disabled")
	}
	return u, nil
}

func (s *authService) issue(u *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(u.ID, u.Username, u.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: toAccount(u), Token: token}, nil
}
