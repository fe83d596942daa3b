// Package sentry 封装 Sentry 的初始化与 gin 集成；未配置 DSN 时所有函数都是空操作
package sentry

import (
	"fmt"
	"time"

	"challenge-settlement-system/config"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// CodedError 带业务码的错误，见 response.Error
type CodedError interface {
	error
	GetCode() int32
}

const release = "challenge-settlement-system@1.0.0"

func enabled() bool {
	return config.Get().Sentry.Dsn != ""
}

func Init() error {
	if !enabled() {
		return nil
	}
	cfg := config.Get()
	rate := cfg.Sentry.SampleRate
	if rate <= 0 {
		rate = 1.0
	}
	env := cfg.Sentry.Environment
	if env == "" {
		env = string(cfg.Mode)
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.Dsn,
		Environment:      env,
		Release:          release,
		SampleRate:       1.0,
		EnableTracing:    true,
		TracesSampleRate: rate,
		EnableLogs:       true,
	})
	if err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	return nil
}

// Middleware Repanic 交给后面的 Recovery 统一返回 500
func Middleware() gin.HandlerFunc {
	if !enabled() {
		return func(c *gin.Context) { c.Next() }
	}
	return sentrygin.New(sentrygin.Options{
		Repanic: true,
		Timeout: 2 * time.Second,
	})
}

// CaptureException 只上报 5xx，业务错误（未就绪、已领取、无权限等）不上报
func CaptureException(c *gin.Context, err error) {
	if !enabled() || !shouldReport(err) {
		return
	}
	hub := sentrygin.GetHubFromContext(c)
	if hub == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(c.Request)
		scope.SetTag("route", c.FullPath())
		if id := c.Param("challenge_id"); id != "" {
			scope.SetTag("challenge_id", id)
		}
		if id := c.GetString("request_id"); id != "" {
			scope.SetTag("request_id", id)
		}
		if payload, ok := c.Get("payload"); ok {
			scope.SetUser(sentry.User{Data: map[string]string{"payload": fmt.Sprintf("%+v", payload)}})
		}
		hub.CaptureException(err)
	})
}

func shouldReport(err error) bool {
	e, ok := err.(CodedError)
	if !ok {
		return true
	}
	code := e.GetCode()
	return (code >= 500 && code < 600) || (code >= 50000 && code < 60000)
}

// Flush 退出前调用
func Flush(timeout time.Duration) {
	if enabled() {
		sentry.Flush(timeout)
	}
}
