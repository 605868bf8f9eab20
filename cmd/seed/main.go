// seed 通过服务层写入演示数据：用户、关注、带 @提及 的帖子、反应与一个示例版块
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/d60-Lab/forum/config"
	"github.com/d60-Lab/forum/internal/model"
	"github.com/d60-Lab/forum/internal/repository"
	"github.com/d60-Lab/forum/internal/service"
	"github.com/d60-Lab/forum/pkg/database"
	"github.com/d60-Lab/forum/pkg/jwt"
	"github.com/d60-Lab/forum/pkg/logger"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

var reactionTypes = []model.ReactionType{model.ReactionLike, model.ReactionLove, model.ReactionSupport}

func main() {
	cfg := must(config.Load())
	if err := logger.Init(cfg.Server.Mode); err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	db := must(database.InitDB(cfg))
	defer func() { _ = database.Close(db) }()

	N := envInt("N", 50)
	CONC := envInt("CONC", 4)
	POSTS := envInt("POSTS", 3)
	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "Forum123!"
	}

	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	notifier := service.NewNotificationService(users, repository.NewNotificationRepository(db), nil)
	auth := service.NewAuthService(users, jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer), cfg.Bcrypt.Cost)
	postSvc := service.NewPostService(posts, users, repository.NewTopicRepository(db), notifier)
	relSvc := service.NewRelationshipService(repository.NewFollowRepository(db), users, nil)
	reactSvc := service.NewReactionService(db)
	forumSvc := service.NewForumService(db, notifier)

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	t0 := time.Now()

	// users: seed0 为管理员
	seeded := make([]*model.User, N)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(CONC)
	suffix := strconv.FormatInt(time.Now().Unix()%100000, 36)
	for i := 0; i < N; i++ {
		i := i
		g.Go(func() error {
			name := fmt.Sprintf("seed%d_%s", i, suffix)
			res, err := auth.Register(gctx, service.RegisterInput{
				Username: name,
				Email:    name + "@example.com",
				Password: password,
			})
			if err != nil {
				return fmt.Errorf("register %s: %w", name, err)
			}
			u, err := users.GetByID(gctx, res.User.ID)
			if err != nil {
				return err
			}
			seeded[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		panic(err)
	}
	if err := users.UpdateRole(ctx, seeded[0].ID, model.RoleAdmin); err != nil {
		panic(err)
	}

	// follows: 每人随机关注若干人
	var follows int
	for _, u := range seeded {
		for _, j := range rng.Perm(N)[:min(5, N)] {
			if seeded[j].ID == u.ID {
				continue
			}
			if err := relSvc.Follow(ctx, u, seeded[j].ID); err == nil {
				follows++
			}
		}
	}

	// posts: 内容提及一个随机用户，其余用户随机反应
	var created []*model.Post
	for _, u := range seeded {
		for k := 0; k < POSTS; k++ {
			mention := seeded[rng.Intn(N)].Username
			p, err := postSvc.Create(ctx, u, service.CreatePostInput{
				Title:    fmt.Sprintf("%s #%d", u.Username, k+1),
				Content:  fmt.Sprintf("Hello @%s, this is post %d.", mention, k+1),
				Category: []string{"general", "go", "help"}[rng.Intn(3)],
			})
			if err != nil {
				panic(err)
			}
			created = append(created, p)
		}
	}
	var reactions int
	for _, p := range created {
		for _, j := range rng.Perm(N)[:min(3, N)] {
			if _, err := reactSvc.Toggle(ctx, seeded[j], p.ID, reactionTypes[rng.Intn(len(reactionTypes))]); err == nil {
				reactions++
			}
		}
	}

	cat := must(forumSvc.CreateCategory(ctx, service.CategoryInput{Name: "Community " + suffix}))
	forum := must(forumSvc.CreateForum(ctx, service.ForumInput{CategoryID: cat.ID, Name: "Introductions"}))
	for _, u := range seeded[:min(5, N)] {
		must(forumSvc.CreateTopic(ctx, u, service.CreateTopicInput{
			ForumID: forum.ID,
			Title:   "Hi, I'm " + u.Username,
			Content: "Nice to meet everyone!",
		}))
	}

	logger.Info("seed finished",
		zap.Int("users", N),
		zap.Int("follows", follows),
		zap.Int("posts", len(created)),
		zap.Int("reactions", reactions),
		zap.String("admin", seeded[0].Username),
		zap.String("forum", cat.Slug+"/"+forum.Slug),
		zap.Duration("elapsed", time.Since(t0)),
	)
}
