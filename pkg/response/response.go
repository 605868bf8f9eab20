package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/d60-Lab/forum/pkg/errcode"
	"github.com/d60-Lab/forum/pkg/logger"
	pkgvalidator "github.com/d60-Lab/forum/pkg/validator"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// exposeErrors 为 false 时 500 响应只返回通用信息
var exposeErrors = true

// SetExposeErrors 生产环境关闭内部错误透出
func SetExposeErrors(expose bool) { exposeErrors = expose }

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "created", Data: data})
}

func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Message: msg})
}

func Unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Code: http.StatusUnauthorized, Message: msg})
}

func Forbidden(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusForbidden, Response{Code: http.StatusForbidden, Message: msg})
}

func NotFound(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusNotFound, Response{Code: http.StatusNotFound, Message: msg})
}

func TooManyRequests(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, Response{Code: http.StatusTooManyRequests, Message: msg})
}

// InternalError 记录错误并返回 500
func InternalError(c *gin.Context, err error) {
	logger.Error("internal error",
		zap.Error(err),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
	)
	_ = c.Error(err)
	msg := "internal server error"
	if exposeErrors && err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, Response{Code: http.StatusInternalServerError, Message: msg})
}

// ValidationError 将 validator 错误展开为字段级信息
func ValidationError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.AbortWithStatusJSON(http.StatusBadRequest, Response{
			Code:    http.StatusBadRequest,
			Message: "validation error",
			Details: pkgvalidator.FieldErrors(verrs),
		})
		return
	}
	BadRequest(c, err.Error())
}

// Error 根据 errcode 分类返回对应状态码，未分类的错误按 500 处理
func Error(c *gin.Context, err error) {
	if e, ok := errcode.As(err); ok {
		status := e.Status()
		c.AbortWithStatusJSON(status, Response{Code: status, Message: e.Message})
		return
	}
	InternalError(c, err)
}

// PagedResponse 列表响应，data 与 meta 位于顶层
type PagedResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Meta    interface{} `json:"meta"`
}

func Paged(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, PagedResponse{Code: 0, Message: "success", Data: data, Meta: meta})
}

// NoContent 删除成功等无返回体的场景
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
