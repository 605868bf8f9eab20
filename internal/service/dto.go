package service

import (
	"time"

	"github.com/jinzhu/copier"

	"github.com/d60-Lab/forum/internal/model"
)

// UserSummary 公开的用户摘要，不含邮箱
type UserSummary struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Bio        string `json:"bio"`
	AvatarURL  string `json:"avatar_url"`
	Reputation int64  `json:"reputation"`
	Role       string `json:"role"`
}

// Profile 用户主页
type Profile struct {
	UserSummary
	IsAdmin        bool      `json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
	FollowersCount int64     `json:"followers_count"`
	FollowingCount int64     `json:"following_count"`
}

// Account 本人或管理员可见的账号信息，含邮箱
type Account struct {
	UserSummary
	Email       string     `json:"email"`
	IsAdmin     bool       `json:"is_admin"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toAccount(u *model.User) *Account {
	var a Account
	_ = copier.Copy(&a, u)
	return &a
}

func toAccounts(users []*model.User) []*Account {
	out := make([]*Account, len(users))
	for i, u := range users {
		out[i] = toAccount(u)
	}
	return out
}

func toSummary(u *model.User) *UserSummary {
	var s UserSummary
	_ = copier.Copy(&s, u)
	return &s
}

func toSummaries(users []*model.User) []*UserSummary {
	out := make([]*UserSummary, len(users))
	for i, u := range users {
		out[i] = toSummary(u)
	}
	return out
}

func toProfile(u *model.User, followers, following int64) *Profile {
	p := &Profile{FollowersCount: followers, FollowingCount: following}
	_ = copier.Copy(p, u)
	return p
}
