// Package sentry 封装 sentry-go 的初始化与异常上报
package sentry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/d60-Lab/forum/config"
)

var enabled bool

// Init DSN 为空时不启用，上报函数变为空操作
func Init(cfg config.SentryConfig, env string) error {
	if cfg.DSN == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      env,
		EnableTracing:    cfg.TracesSampleRate > 0,
		TracesSampleRate: cfg.TracesSampleRate,
		AttachStacktrace: true,
	}); err != nil {
		return fmt.Errorf("init sentry: %w", err)
	}
	enabled = true
	return nil
}

func Enabled() bool { return enabled }

// CapturePanic 上报 recover 得到的值，附带请求信息
func CapturePanic(r *http.Request, recovered interface{}) {
	if !enabled {
		return
	}
	hub := sentry.CurrentHub().Clone()
	hub.Scope().SetRequest(r)
	hub.RecoverWithContext(r.Context(), recovered)
}

// CaptureError 上报未分类的内部错误
func CaptureError(r *http.Request, err error) {
	if !enabled || err == nil {
		return
	}
	hub := sentry.CurrentHub().Clone()
	hub.Scope().SetRequest(r)
	hub.CaptureException(err)
}

// Flush 退出前等待事件发送完成
func Flush(timeout time.Duration) {
	if enabled {
		sentry.Flush(timeout)
	}
}
