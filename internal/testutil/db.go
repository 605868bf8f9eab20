// Package testutil 提供测试用的内存数据库与固定数据
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/forum/internal/model"
	"github.com/d60-Lab/forum/pkg/database"
)

// NewDB 打开独立的 sqlite 内存库并完成迁移。
// 单连接保证所有语句落在同一个内存库上。
func NewDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		tb.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateUser 直接写入一个普通用户，密码哈希为占位值
func CreateUser(tb testing.TB, db *gorm.DB, username string) *model.User {
	tb.Helper()
	u := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "x",
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// CreateUserWithRole 写入指定角色的用户
func CreateUserWithRole(tb testing.TB, db *gorm.DB, username, role string) *model.User {
	tb.Helper()
	u := CreateUser(tb, db, username)
	u.Role = role
	u.IsAdmin = role == model.RoleAdmin
	if err := db.Model(u).Updates(map[string]interface{}{"role": role, "is_admin": u.IsAdmin}).Error; err != nil {
		tb.Fatalf("set role: %v", err)
	}
	return u
}

// CreatePost 写入一篇帖子
func CreatePost(tb testing.TB, db *gorm.DB, author *model.User, title string) *model.Post {
	tb.Helper()
	p := &model.Post{
		ID:       uuid.New().String(),
		Title:    title,
		Content:  title + " body",
		Category: model.DefaultCategory,
		AuthorID: author.ID,
	}
	if err := db.Create(p).Error; err != nil {
		tb.Fatalf("create post: %v", err)
	}
	return p
}
