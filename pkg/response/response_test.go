package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/forum/pkg/errcode"
)

func record(fn func(c *gin.Context)) (*httptest.ResponseRecorder, Response) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/x", nil)
	fn(c)
	var body Response
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestErrorMapping(t *testing.T) {
	w, body := record(func(c *gin.Context) { Error(c, errcode.Forbidden("nope")) })
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "nope", body.Message)

	SetExposeErrors(false)
	t.Cleanup(func() { SetExposeErrors(true) })
	w, body = record(func(c *gin.Context) { Error(c, errors.New("db exploded")) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", body.Message)
}

func TestPaged(t *testing.T) {
	w, _ := record(func(c *gin.Context) { Paged(c, []int{1}, gin.H{"total": 1}) })
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":0,"message":"success","data":[1],"meta":{"total":1}}`, w.Body.String())
}
