package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/forum/internal/authz"
	"github.com/d60-Lab/forum/internal/model"
	"github.com/d60-Lab/forum/pkg/response"
)

const currentUserKey = "current_user"

// Authenticator 校验令牌并返回当前用户
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// Auth 要求 Authorization: Bearer <token>，成功后把用户放入上下文
func Auth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Unauthorized(c, "missing or malformed authorization header")
			return
		}
		user, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			return
		}
		SetCurrentUser(c, user)
		c.Next()
	}
}

// RequireRole 必须在 Auth 之后使用
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authz.HasRole(CurrentUser(c), roles...) {
			response.Forbidden(c, "insufficient permissions")
			return
		}
		c.Next()
	}
}

// CurrentUser 未认证时返回 nil
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}

// SetCurrentUser 写入当前用户，RequireRole 与各 handler 经 CurrentUser 读取
func SetCurrentUser(c *gin.Context, u *model.User) { c.Set(currentUserKey, u) }

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
