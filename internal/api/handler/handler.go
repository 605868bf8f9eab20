package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/forum/internal/api/middleware"
	"github.com/d60-Lab/forum/internal/model"
	"github.com/d60-Lab/forum/internal/service"
	"github.com/d60-Lab/forum/pkg/response"
)

// Handler 聚合全部 HTTP 处理函数
type Handler struct {
	authService         service.AuthService
	userService         service.UserService
	postService         service.PostService
	commentService      service.CommentService
	reactionService     service.ReactionService
	relService          service.RelationshipService
	notificationService service.NotificationService
	forumService        service.ForumService
	health              HealthChecker
	maxUploadBytes      int64
}

// Services 构造 Handler 所需的服务
type Services struct {
	Auth          service.AuthService
	Users         service.UserService
	Posts         service.PostService
	Comments      service.CommentService
	Reactions     service.ReactionService
	Relations     service.RelationshipService
	Notifications service.NotificationService
	Forums        service.ForumService
	Health        HealthChecker
	// MaxUploadBytes 限制 multipart 请求体大小，<=0 时使用头像上限
	MaxUploadBytes int64
}

func New(s Services) *Handler {
	return &Handler{
		authService:         s.Auth,
		userService:         s.Users,
		postService:         s.Posts,
		commentService:      s.Comments,
		reactionService:     s.Reactions,
		relService:          s.Relations,
		notificationService: s.Notifications,
		forumService:        s.Forums,
		health:              s.Health,
		maxUploadBytes:      s.MaxUploadBytes,
	}
}

// actor 取当前用户；路由未挂 Auth 时直接返回 401
func actor(c *gin.Context) (*model.User, bool) {
	u := middleware.CurrentUser(c)
	if u == nil {
		response.Unauthorized(c, "authentication required")
		return nil, false
	}
	return u, true
}

// bindJSON 绑定失败时写入 400 并返回 false
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.ValidationError(c, err)
		return false
	}
	return true
}
