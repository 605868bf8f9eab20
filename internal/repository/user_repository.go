package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/forum/internal/model"
)

// UserRepository 用户目录
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByLogin(ctx context.Context, usernameOrEmail string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)
	List(ctx context.Context, offset, limit int) ([]*model.User, int64, error)
	UpdateProfile(ctx context.Context, id string, fields map[string]interface{}) error
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateRole(ctx context.Context, id, role string) error
	SetActive(ctx context.Context, id string, active bool) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	AddReputation(ctx context.Context, id string, delta int64) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	u.IsAdmin = u.Role == model.RoleAdmin
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByLogin 按用户名或邮箱查找，登录时使用
func (r *userRepository) GetByLogin(ctx context.Context, usernameOrEmail string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", usernameOrEmail, strings.ToLower(usernameOrEmail)).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByIDs 批量加载，结果顺序与 ids 一致，缺失的 id 被跳过
func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	var rows []*model.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]*model.User, len(rows))
	for _, u := range rows {
		byID[u.ID] = u
	}
	out := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, bool, error) {
	var rows []model.User
	if err := r.db.WithContext(ctx).
		Select("username", "email").
		Where("username = ? OR email = ?", username, email).
		Find(&rows).Error; err != nil {
		return false, false, err
	}
	var usernameTaken, emailTaken bool
	for _, u := range rows {
		if u.Username == username {
			usernameTaken = true
		}
		if u.Email == email {
			emailTaken = true
		}
	}
	return usernameTaken, emailTaken, nil
}

func (r *userRepository) List(ctx context.Context, offset, limit int) ([]*model.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var res []*model.User
	err := r.db.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, total, err
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("password_hash", hash).Error
}

// UpdateRole 同时写入 role 与 is_admin，两列保持一致
func (r *userRepository) UpdateRole(ctx context.Context, id, role string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"role":     role,
		"is_admin": role == model.RoleAdmin,
	}).Error
}

func (r *userRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("is_active", active).Error
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).UpdateColumn("last_login_at", at).Error
}

// AddReputation 原子地累加声望，避免读改写竞争
func (r *userRepository) AddReputation(ctx context.Context, id string, delta int64) error {
	if delta == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		UpdateColumn("reputation", gorm.Expr("reputation + ?", delta)).Error
}
