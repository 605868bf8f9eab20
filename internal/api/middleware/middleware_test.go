package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/d60-Lab/forum/config"
	"github.com/d60-Lab/forum/internal/model"
	"github.com/d60-Lab/forum/pkg/errcode"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeAuth map[string]*model.User

func (f fakeAuth) Authenticate(_ context.Context, token string) (*model.User, error) {
	if u, ok := f[token]; ok {
		return u, nil
	}
	return nil, errcode.Unauthorized("invalid or expired token")
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAndRequireRole(t *testing.T) {
	users := fakeAuth{
		"user-token":  {ID: "u1", Username: "u", Role: model.RoleUser},
		"mod-token":   {ID: "m1", Username: "m", Role: model.RoleModerator},
		"admin-token": {ID: "a1", Username: "a", Role: model.RoleAdmin, IsAdmin: true},
	}
	r := gin.New()
	r.GET("/me", Auth(users), func(c *gin.Context) { c.String(http.StatusOK, CurrentUser(c).ID) })
	r.GET("/mod", Auth(users), RequireRole(model.RoleModerator), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/admin", Auth(users), RequireRole(model.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	bearer := func(tok string) http.Header { return http.Header{"Authorization": {"Bearer " + tok}} }

	assert.Equal(t, http.StatusUnauthorized, serve(r, "GET", "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "GET", "/me", http.Header{"Authorization": {"Token abc"}}).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "GET", "/me", bearer("bogus")).Code)

	w := serve(r, "GET", "/me", bearer("user-token"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	assert.Equal(t, http.StatusForbidden, serve(r, "GET", "/mod", bearer("user-token")).Code)
	assert.Equal(t, http.StatusOK, serve(r, "GET", "/mod", bearer("mod-token")).Code)
	assert.Equal(t, http.StatusOK, serve(r, "GET", "/mod", bearer("admin-token")).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, "GET", "/admin", bearer("mod-token")).Code)
	assert.Equal(t, http.StatusOK, serve(r, "GET", "/admin", bearer("admin-token")).Code)
}

func TestRequireRole_InjectedUser(t *testing.T) {
	inject := func(u *model.User) gin.HandlerFunc {
		return func(c *gin.Context) { SetCurrentUser(c, u) }
	}
	ok := func(c *gin.Context) { c.String(http.StatusOK, CurrentUser(c).Username) }

	r := gin.New()
	r.GET("/anon", RequireRole(model.RoleModerator), ok)
	r.GET("/user", inject(&model.User{ID: "u1", Username: "u", Role: model.RoleUser}), RequireRole(model.RoleModerator), ok)
	r.GET("/mod", inject(&model.User{ID: "m1", Username: "m", Role: model.RoleModerator}), RequireRole(model.RoleModerator), ok)

	assert.Equal(t, http.StatusForbidden, serve(r, "GET", "/anon", nil).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, "GET", "/user", nil).Code)
	w := serve(r, "GET", "/mod", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "m", w.Body.String())
}

func TestRateLimit(t *testing.T) {
	l := NewIPRateLimiter(config.BucketConfig{RPS: 0.001, Burst: 3})
	r := gin.New()
	r.GET("/", RateLimit(l, "too many requests"), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, "GET", "/", nil).Code, "request %d", i)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(r, "GET", "/", nil).Code)

	// 其它 IP 拥有独立的令牌桶
	assert.True(t, l.Allow("203.0.113.9"))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := serve(r, "GET", "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "kaboom")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestIDPassthrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, "GET", "/", http.Header{RequestIDHeader: {"req-123"}})
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}
