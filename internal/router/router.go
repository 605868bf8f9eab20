package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/forum/config"
	_ "github.com/d60-Lab/forum/docs"
	"github.com/d60-Lab/forum/internal/api/handler"
	"github.com/d60-Lab/forum/internal/api/middleware"
	"github.com/d60-Lab/forum/internal/model"
)

// Setup 注册全部路由与中间件
func Setup(cfg *config.Config, h *handler.Handler, authn middleware.Authenticator) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.ReportErrors(),
		middleware.CORS(cfg.Server.CORSOrigins),
		gzip.Gzip(gzip.DefaultCompression),
	)
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}

	r.GET("/health", h.Health)
	if cfg.Storage.Driver == "local" || cfg.Storage.Driver == "" {
		r.Static(cfg.Storage.URLPrefix, cfg.Storage.UploadDir)
	}
	if cfg.Swagger.Enabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// 限流：全局 api 桶，登录/注册与内容创建各自独立的桶
	limit := func(bucket config.BucketConfig, msg string) gin.HandlerFunc {
		if !cfg.RateLimit.Enabled {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimit(middleware.NewIPRateLimiter(bucket), msg)
	}
	authLimit := limit(cfg.RateLimit.Auth, "too many authentication attempts, please try again later")
	createLimit := limit(cfg.RateLimit.Create, "you are posting too fast, please slow down")

	auth := middleware.Auth(authn)
	admin := middleware.RequireRole(model.RoleAdmin)
	moderator := middleware.RequireRole(model.RoleModerator)

	api := r.Group("/api/v1", limit(cfg.RateLimit.API, "too many requests, please try again later"))

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authLimit, h.Register)
		authGroup.POST("/login", authLimit, h.Login)
		authGroup.GET("/me", auth, h.Me)
		authGroup.POST("/change-password", auth, h.ChangePassword)
	}

	posts := api.Group("/posts")
	{
		posts.GET("", h.ListPosts)
		posts.GET("/:id", h.GetPost)
		posts.POST("", auth, createLimit, h.CreatePost)
		posts.PUT("/:id", auth, h.UpdatePost)
		posts.DELETE("/:id", auth, h.DeletePost)
		posts.GET("/:id/comments", h.ListComments)
		posts.POST("/:id/comments", auth, createLimit, h.CreateComment)
	}

	comments := api.Group("/comments", auth)
	{
		comments.PUT("/:id", h.UpdateComment)
		comments.DELETE("/:id", h.DeleteComment)
	}

	api.POST("/reactions", auth, h.ToggleReaction)

	follows := api.Group("/follows")
	{
		follows.POST("/:user_id", auth, h.Follow)
		follows.DELETE("/:user_id", auth, h.Unfollow)
		follows.GET("/:user_id/followers", h.ListFollowers)
		follows.GET("/:user_id/following", h.ListFollowing)
		follows.GET("/:user_id/check", auth, h.CheckFollowing)
	}

	notifications := api.Group("/notifications", auth)
	{
		notifications.GET("", h.ListNotifications)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.PATCH("/:id/read", h.MarkNotificationRead)
	}

	users := api.Group("/users")
	{
		users.GET("", auth, admin, h.ListUsers)
		users.PATCH("/profile", auth, h.UpdateProfile)
		users.GET("/:username", h.GetProfile)
		users.GET("/:username/posts", h.ListUserPosts)
		users.PUT("/:username/role", auth, admin, h.UpdateRole)
		users.POST("/:username/toggle-active", auth, admin, h.ToggleActive)
	}

	forums := api.Group("/forums")
	{
		forums.GET("", h.ListForums)
		forums.GET("/:category_slug/:forum_slug", h.GetForum)
		forums.POST("/categories", auth, admin, h.CreateCategory)
		forums.POST("", auth, admin, h.CreateForum)
	}

	topics := api.Group("/topics")
	{
		topics.GET("/:id", h.GetTopic)
		topics.POST("", auth, createLimit, h.CreateTopic)
		topics.PUT("/:id", auth, h.UpdateTopic)
		topics.DELETE("/:id", auth, h.DeleteTopic)
		topics.POST("/:id/pin", auth, moderator, h.PinTopic)
		topics.POST("/:id/lock", auth, moderator, h.LockTopic)
	}

	return r
}
