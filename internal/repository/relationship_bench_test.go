package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"gorm.io/gorm"

	"github.com/d60-Lab/forum/internal/model"
	"github.com/d60-Lab/forum/internal/testutil"
)

func seedBenchUsers(b *testing.B, db *gorm.DB, n int) []model.User {
	users := make([]model.User, n)
	for i := range users {
		users[i] = model.User{
			ID:           fmt.Sprintf("u%05d", i),
			Username:     fmt.Sprintf("u%05d", i),
			Email:        fmt.Sprintf("u%05d@example.com", i),
			PasswordHash: "p",
			Role:         model.RoleUser,
			IsActive:     true,
		}
	}
	if err := db.CreateInBatches(&users, 500).Error; err != nil {
		b.Fatalf("seed users: %v", err)
	}
	return users
}

func BenchmarkFollowWrite(b *testing.B) {
	db := testutil.NewDB(b)
	followRepo := NewFollowRepository(db)
	ctx := context.Background()
	users := seedBenchUsers(b, db, 1000)

	rng := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		from := users[rng.Intn(len(users))].ID
		to := users[rng.Intn(len(users))].ID
		if from == to {
			continue
		}
		// 重复边被唯一键拒绝，忽略错误
		_ = followRepo.Create(ctx, from, to)
	}
}

func BenchmarkListFollowersAndFollowing(b *testing.B) {
	db := testutil.NewDB(b)
	followRepo := NewFollowRepository(db)
	ctx := context.Background()

	// u00000 有 N 个粉丝，同时关注这 N 个用户
	const N = 2000
	users := seedBenchUsers(b, db, N+1)
	hub := users[0].ID
	for _, u := range users[1:] {
		_ = followRepo.Create(ctx, u.ID, hub)
		_ = followRepo.Create(ctx, hub, u.ID)
	}

	b.ResetTimer()
	b.Run("ListFollowers", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _, _ = followRepo.ListFollowers(ctx, hub, 0, 50)
		}
	})
	b.Run("ListFollowing", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _, _ = followRepo.ListFollowing(ctx, hub, 0, 50)
		}
	})
	b.Run("FollowerIDs", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = followRepo.FollowerIDs(ctx, hub)
		}
	})
}
