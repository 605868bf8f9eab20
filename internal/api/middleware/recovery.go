package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/forum/pkg/logger"
	"github.com/d60-Lab/forum/pkg/response"
	"github.com/d60-Lab/forum/pkg/sentry"
)

// Recovery 捕获 panic：记录日志、上报 Sentry，返回通用 500，不向客户端输出堆栈
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", c.GetString(requestIDKey)),
					zap.Stack("stack"),
				)
				sentry.CapturePanic(c.Request, r)
				_ = c.Error(fmt.Errorf("panic: %v", r))
				c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
					Code:    http.StatusInternalServerError,
					Message: "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// ReportErrors 把处理过程中记录的 5xx 错误上报 Sentry
func ReportErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() < http.StatusInternalServerError {
			return
		}
		for _, e := range c.Errors {
			sentry.CaptureError(c.Request, e.Err)
		}
	}
}
