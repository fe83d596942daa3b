package middleware

import (
	"bytes"
	"log/slog"
	"time"

	"challenge-settlement-system/internal/global/logger"

	sentrylib "github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// maxBodyLog 响应体最多记录 10KB
const maxBodyLog = 10 * 1024

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	if room := maxBodyLog - w.body.Len(); room > 0 {
		w.body.Write(b[:min(len(b), room)])
	}
	return w.ResponseWriter.Write(b)
}

// Logger release 模式下的请求日志，4xx 记 Warn，5xx 记 Error
func Logger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		body := rec.body.String()
		if rec.body.Len() >= maxBodyLog {
			body += "...(truncated)"
		}
		level := slog.LevelInfo
		switch status := c.Writer.Status(); {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		logger.WithContext(log, c).Log(c.Request.Context(), level, "HTTP Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"response_body", body,
		)
	}
}

// SentryEnrichIP 放在 sentry 中间件之后，后续上报都带客户端 IP
func SentryEnrichIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.ConfigureScope(func(scope *sentrylib.Scope) {
				ip := c.ClientIP()
				scope.SetUser(sentrylib.User{IPAddress: ip})
				scope.SetTag("client_ip", ip)
				if v := c.GetHeader("X-Forwarded-For"); v != "" {
					scope.SetTag("x_forwarded_for", v)
				}
			})
		}
		c.Next()
	}
}
