package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/forum/config"
	"github.com/d60-Lab/forum/internal/api/handler"
	"github.com/d60-Lab/forum/internal/cache"
	"github.com/d60-Lab/forum/internal/health"
	"github.com/d60-Lab/forum/internal/repository"
	"github.com/d60-Lab/forum/internal/router"
	"github.com/d60-Lab/forum/internal/service"
	"github.com/d60-Lab/forum/internal/storage"
	"github.com/d60-Lab/forum/pkg/database"
	"github.com/d60-Lab/forum/pkg/jwt"
	"github.com/d60-Lab/forum/pkg/logger"
	"github.com/d60-Lab/forum/pkg/pagination"
	"github.com/d60-Lab/forum/pkg/response"
	"github.com/d60-Lab/forum/pkg/sentry"
	"github.com/d60-Lab/forum/pkg/tracing"
	"github.com/d60-Lab/forum/pkg/validator"
)

// @title Forum API
// @version 1.0
// @description 论坛后端：帖子、评论、反应、关注、@提及通知、分类/版块/主题
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer <token>
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Server.Mode); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	response.SetExposeErrors(!cfg.IsProduction())
	pagination.Configure(cfg.Pagination.DefaultLimit, cfg.Pagination.MaxLimit)
	if err := validator.Register(); err != nil {
		return err
	}

	if err := sentry.Init(cfg.Sentry, cfg.Env); err != nil {
		return err
	}
	defer sentry.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Init(ctx, cfg.Tracing)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(sctx)
		}()
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	// redis 不可用时降级为直接查库
	var (
		rdb   *redis.Client
		store *cache.Store
	)
	if cfg.Redis.Enabled {
		rdb, err = cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, caching disabled", zap.Error(err))
			rdb = nil
		} else {
			defer func() { _ = rdb.Close() }()
			store = cache.New(rdb, cfg.Redis.TTL)
		}
	}

	avatars, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	follows := repository.NewFollowRepository(db)

	// 未启用缓存时接口保持 nil
	var (
		unread service.UnreadCache
		graph  service.FollowCache
	)
	if store != nil {
		unread, graph = store, store
	}
	notifier := service.NewNotificationService(users, repository.NewNotificationRepository(db), unread)
	auth := service.NewAuthService(users, jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer), cfg.Bcrypt.Cost)

	h := handler.New(handler.Services{
		Auth:           auth,
		Users:          service.NewUserService(users, follows, avatars),
		Posts:          service.NewPostService(posts, users, repository.NewTopicRepository(db), notifier),
		Comments:       service.NewCommentService(repository.NewCommentRepository(db), posts, notifier),
		Reactions:      service.NewReactionService(db),
		Relations:      service.NewRelationshipService(follows, users, graph),
		Notifications:  notifier,
		Forums:         service.NewForumService(db, notifier),
		Health:         health.New(db, rdb),
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router.Setup(cfg, h, auth),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
