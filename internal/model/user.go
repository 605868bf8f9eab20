package model

import "time"

// 角色
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User 用户；Reputation 只由反应账本修改，IsAdmin 随 Role 一起写入。
// 邮箱不参与 JSON 序列化，本人与管理员通过 service.Account 读取
type User struct {
	ID           string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex:ux_users_email;not null" json:"-"`
	Username     string     `gorm:"type:varchar(50);uniqueIndex:ux_users_username;not null" json:"username"`
	PasswordHash string     `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Bio          string     `gorm:"type:text" json:"bio"`
	AvatarURL    string     `gorm:"type:varchar(512)" json:"avatar_url"`
	Reputation   int64      `gorm:"not null;default:0" json:"reputation"`
	Role         string     `gorm:"type:varchar(16);not null;default:user;index" json:"role"`
	IsAdmin      bool       `gorm:"not null;default:false" json:"is_admin"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// ValidRole 是否为已知角色
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}
