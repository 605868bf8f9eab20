package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/forum/config"
	"github.com/d60-Lab/forum/internal/api/handler"
	"github.com/d60-Lab/forum/internal/health"
	"github.com/d60-Lab/forum/internal/model"
	"github.com/d60-Lab/forum/internal/repository"
	"github.com/d60-Lab/forum/internal/service"
	"github.com/d60-Lab/forum/internal/storage"
	"github.com/d60-Lab/forum/internal/testutil"
	"github.com/d60-Lab/forum/pkg/jwt"
	"github.com/d60-Lab/forum/pkg/validator"
)

type app struct {
	t         *testing.T
	db        *gorm.DB
	r         *gin.Engine
	uploadDir string
}

func newApp(t *testing.T, mutate ...func(*config.Config)) *app {
	t.Helper()
	require.NoError(t, validator.Register())

	db := testutil.NewDB(t)
	dir := t.TempDir()
	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: gin.TestMode, CORSOrigins: []string{"*"}},
		Storage: config.StorageConfig{Driver: "local", UploadDir: dir, URLPrefix: "/uploads"},
	}
	for _, m := range mutate {
		m(cfg)
	}
	avatars, err := storage.NewLocal(dir, "/uploads")
	require.NoError(t, err)

	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	follows := repository.NewFollowRepository(db)
	notifier := service.NewNotificationService(users, repository.NewNotificationRepository(db), nil)
	auth := service.NewAuthService(users, jwt.NewManager("router-test", time.Hour, "forum-test"), bcrypt.MinCost)

	h := handler.New(handler.Services{
		Auth:          auth,
		Users:         service.NewUserService(users, follows, avatars),
		Posts:         service.NewPostService(posts, users, repository.NewTopicRepository(db), notifier),
		Comments:      service.NewCommentService(repository.NewCommentRepository(db), posts, notifier),
		Reactions:     service.NewReactionService(db),
		Relations:     service.NewRelationshipService(follows, users, nil),
		Notifications: notifier,
		Forums:        service.NewForumService(db, notifier),
		Health:        health.New(db, nil),
	})
	return &app{t: t, db: db, r: Setup(cfg, h, auth), uploadDir: dir}
}

type envelope struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Meta    json.RawMessage   `json:"meta"`
	Details map[string]string `json:"details"`
}

func (a *app) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.serve(req, token)
}

func (a *app) serve(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

// register 注册并返回用户ID与令牌
func (a *app) register(username string) (string, string) {
	a.t.Helper()
	w, env := a.do("POST", "/api/v1/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "Secret123!",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	res := decode[service.AuthResult](a.t, env.Data)
	return res.User.ID, res.Token
}

func (a *app) promote(username, role string) {
	a.t.Helper()
	require.NoError(a.t, a.db.Model(&model.User{}).Where("username = ?", username).
		Updates(map[string]interface{}{"role": role, "is_admin": role == model.RoleAdmin}).Error)
}

func TestAuthFlow(t *testing.T) {
	a := newApp(t)

	w, env := a.do("POST", "/api/v1/auth/register", "", gin.H{"username": "x", "email": "bad", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Details, "username")
	assert.Contains(t, env.Details, "email")
	assert.Contains(t, env.Details, "password")

	a.register("alice")
	w, _ = a.do("POST", "/api/v1/auth/register", "", gin.H{"username": "alice", "email": "other@example.com", "password": "Secret123!"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = a.do("POST", "/api/v1/auth/login", "", gin.H{"username_or_email": "ALICE@example.com", "password": "Secret123!"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[service.AuthResult](t, env.Data).Token

	w, _ = a.do("POST", "/api/v1/auth/login", "", gin.H{"username_or_email": "alice", "password": "Wrong123!"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = a.do("GET", "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[service.Account](t, env.Data)
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, "alice@example.com", me.Email)
	assert.NotContains(t, string(env.Data), "password")

	w, _ = a.do("GET", "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPostMentionAndReactionFlow(t *testing.T) {
	a := newApp(t)
	aliceID, alice := a.register("alice")
	_, bob := a.register("bob")

	w, env := a.do("POST", "/api/v1/posts", alice, gin.H{"title": "hi", "content": "hello @bob and @nobody"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	post := decode[model.Post](t, env.Data)

	w, env = a.do("GET", "/api/v1/notifications/unread-count", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1}`, string(env.Data))

	_, env = a.do("GET", "/api/v1/notifications", bob, nil)
	list := decode[[]model.Notification](t, env.Data)
	require.Len(t, list, 1)
	assert.Equal(t, model.NotificationMentionPost, list[0].Type)

	// 只有接收者本人可以标记已读
	w, _ = a.do("PATCH", "/api/v1/notifications/"+list[0].ID+"/read", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = a.do("PATCH", "/api/v1/notifications/"+list[0].ID+"/read", bob, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	_, env = a.do("GET", "/api/v1/notifications/unread-count", bob, nil)
	assert.JSONEq(t, `{"count":0}`, string(env.Data))

	w, env = a.do("POST", "/api/v1/reactions", bob, gin.H{"post_id": post.ID, "type": "LIKE"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[model.Post](t, env.Data).Reactions, 1)

	w, env = a.do("POST", "/api/v1/reactions", bob, gin.H{"post_id": post.ID, "type": "ANGRY"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Details, "type")

	_, env = a.do("GET", "/api/v1/users/alice", "", nil)
	profile := decode[service.Profile](t, env.Data)
	assert.Equal(t, aliceID, profile.ID)
	assert.EqualValues(t, 1, profile.Reputation)

	w, _ = a.do("POST", "/api/v1/posts/"+post.ID+"/comments", bob, gin.H{"content": "nice"})
	assert.Equal(t, http.StatusCreated, w.Code)
	_, env = a.do("GET", "/api/v1/posts/"+post.ID+"/comments", "", nil)
	assert.Len(t, decode[[]model.Comment](t, env.Data), 1)

	// 非作者不能删除
	w, _ = a.do("DELETE", "/api/v1/posts/"+post.ID, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = a.do("DELETE", "/api/v1/posts/"+post.ID, alice, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = a.do("GET", "/api/v1/posts/"+post.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicResponsesHideEmail(t *testing.T) {
	a := newApp(t)
	_, alice := a.register("alice")
	_, bob := a.register("bob")

	w, env := a.do("POST", "/api/v1/posts", alice, gin.H{"title": "hi", "content": "hello @bob"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	post := decode[model.Post](t, env.Data)
	w, _ = a.do("POST", "/api/v1/posts/"+post.ID+"/comments", bob, gin.H{"content": "hey"})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = a.do("POST", "/api/v1/reactions", bob, gin.H{"post_id": post.ID, "type": "LOVE"})
	require.Equal(t, http.StatusOK, w.Code)

	for _, path := range []string{
		"/api/v1/posts/" + post.ID,
		"/api/v1/posts",
		"/api/v1/posts/" + post.ID + "/comments",
		"/api/v1/users/alice",
	} {
		w, _ := a.do("GET", path, "", nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.NotContains(t, w.Body.String(), `"email"`, path)
		assert.NotContains(t, w.Body.String(), "@example.com", path)
	}

	w, _ = a.do("GET", "/api/v1/notifications", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "alice@example.com")
}

func TestPostListPagination(t *testing.T) {
	a := newApp(t)
	_, alice := a.register("alice")
	for i := 0; i < 15; i++ {
		w, _ := a.do("POST", "/api/v1/posts", alice, gin.H{"title": fmt.Sprintf("p%d", i), "content": "body", "category": "go"})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, env := a.do("GET", "/api/v1/posts?category=go&page=2&limit=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Post](t, env.Data), 5)
	assert.JSONEq(t, `{"total":15,"page":2,"limit":10,"total_pages":2}`, string(env.Meta))

	_, env = a.do("GET", "/api/v1/users/alice/posts?limit=100", "", nil)
	assert.Len(t, decode[[]model.Post](t, env.Data), 15)
}

func TestFollowRoutes(t *testing.T) {
	a := newApp(t)
	aliceID, alice := a.register("alice")
	bobID, bob := a.register("bob")

	w, _ := a.do("POST", "/api/v1/follows/"+bobID, alice, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = a.do("POST", "/api/v1/follows/"+bobID, alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = a.do("POST", "/api/v1/follows/"+aliceID, alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, env := a.do("GET", "/api/v1/follows/"+bobID+"/check", alice, nil)
	assert.JSONEq(t, `{"is_following":true}`, string(env.Data))
	_, env = a.do("GET", "/api/v1/follows/"+aliceID+"/check", bob, nil)
	assert.JSONEq(t, `{"is_following":false}`, string(env.Data))

	_, env = a.do("GET", "/api/v1/follows/"+bobID+"/followers", "", nil)
	followers := decode[[]service.UserSummary](t, env.Data)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Username)

	w, _ = a.do("DELETE", "/api/v1/follows/"+bobID, alice, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	_, env = a.do("GET", "/api/v1/follows/"+aliceID+"/following", "", nil)
	assert.Empty(t, decode[[]service.UserSummary](t, env.Data))
}

func TestAdminAndForumRoutes(t *testing.T) {
	a := newApp(t)
	_, root := a.register("root")
	a.promote("root", model.RoleAdmin)
	_, mod := a.register("mod")
	a.promote("mod", model.RoleModerator)
	_, alice := a.register("alice")

	w, _ := a.do("GET", "/api/v1/users", alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, env := a.do("GET", "/api/v1/users", root, nil)
	require.Equal(t, http.StatusOK, w.Code)
	accounts := decode[[]service.Account](t, env.Data)
	require.Len(t, accounts, 3)
	assert.NotEmpty(t, accounts[0].Email)

	w, _ = a.do("POST", "/api/v1/forums/categories", alice, gin.H{"name": "General"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, env = a.do("POST", "/api/v1/forums/categories", root, gin.H{"name": "General Talk"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cat := decode[model.Category](t, env.Data)
	assert.Equal(t, "general-talk", cat.Slug)

	w, env = a.do("POST", "/api/v1/forums", root, gin.H{"category_id": cat.ID, "name": "Go"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	forum := decode[model.Forum](t, env.Data)

	w, env = a.do("POST", "/api/v1/topics", alice, gin.H{"forum_id": forum.ID, "title": "Generics?", "content": "thoughts"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	topic := decode[service.TopicView](t, env.Data).Topic

	w, _ = a.do("POST", "/api/v1/topics/"+topic.ID+"/lock", alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = a.do("POST", "/api/v1/topics/"+topic.ID+"/lock", mod, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = a.do("POST", "/api/v1/posts", alice, gin.H{"content": "reply", "topic_id": topic.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = a.do("GET", "/api/v1/forums/general-talk/go", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[service.ForumView](t, env.Data)
	require.Len(t, view.Topics.Data, 1)
	assert.True(t, view.Topics.Data[0].IsLocked)

	w, env = a.do("GET", "/api/v1/topics/"+topic.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[service.TopicView](t, env.Data).Topic.ViewCount)

	w, env = a.do("PUT", "/api/v1/users/alice/role", root, gin.H{"role": "overlord"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Details, "role")
	w, _ = a.do("POST", "/api/v1/users/alice/toggle-active", root, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = a.do("GET", "/api/v1/auth/me", alice, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAvatarUpload(t *testing.T) {
	a := newApp(t)
	_, alice := a.register("alice")

	png := []byte("\x89PNG\r\n\x1a\nfake")
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("bio", "gopher"))
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="avatar"; filename="me.png"`)
	hdr.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(png)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("PATCH", "/api/v1/users/profile", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w, env := a.serve(req, alice)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	profile := decode[service.Profile](t, env.Data)
	assert.Equal(t, "gopher", profile.Bio)
	require.True(t, strings.HasPrefix(profile.AvatarURL, "/uploads/"), profile.AvatarURL)

	stored, err := os.ReadFile(filepath.Join(a.uploadDir, strings.TrimPrefix(profile.AvatarURL, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, png, stored)

	w, _ = a.serve(httptest.NewRequest("GET", profile.AvatarURL, nil), "")
	assert.Equal(t, http.StatusOK, w.Code)

	// JSON 只修改简介
	w, env = a.do("PATCH", "/api/v1/users/profile", alice, gin.H{"bio": "still a gopher"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, profile.AvatarURL, decode[service.Profile](t, env.Data).AvatarURL)
}

func TestHealthAndRateLimit(t *testing.T) {
	a := newApp(t, func(c *config.Config) {
		c.RateLimit = config.RateLimitConfig{
			Enabled: true,
			API:     config.BucketConfig{RPS: 100, Burst: 100},
			Auth:    config.BucketConfig{RPS: 0.001, Burst: 2},
			Create:  config.BucketConfig{RPS: 100, Burst: 100},
		}
	})

	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"database":"ok"}}`, w.Body.String())

	login := gin.H{"username_or_email": "nobody", "password": "Secret123!"}
	for i := 0; i < 2; i++ {
		w, _ := a.do("POST", "/api/v1/auth/login", "", login)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w, _ = a.do("POST", "/api/v1/auth/login", "", login)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// 其余接口不受认证桶影响
	w, _ = a.do("GET", "/api/v1/posts", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
