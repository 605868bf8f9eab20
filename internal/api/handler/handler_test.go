package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeHealth map[string]error

func (f fakeHealth) Check(context.Context) map[string]error { return f }

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	return w
}

func TestHealth(t *testing.T) {
	r := gin.New()
	r.GET("/ok", New(Services{Health: fakeHealth{"database": nil}}).Health)
	r.GET("/down", New(Services{Health: fakeHealth{"database": nil, "redis": errors.New("connection refused")}}).Health)
	r.GET("/none", New(Services{}).Health)

	w := get(r, "/ok")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"database":"ok"}}`, w.Body.String())

	w = get(r, "/down")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"database":"ok","redis":"connection refused"}}`, w.Body.String())

	assert.Equal(t, http.StatusOK, get(r, "/none").Code)
}

// 路由漏挂 Auth 时写操作返回 401 而不是 panic
func TestActorRequired(t *testing.T) {
	h := New(Services{})
	r := gin.New()
	r.POST("/posts", h.CreatePost)
	r.GET("/notifications", h.ListNotifications)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/posts", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/notifications").Code)
}
