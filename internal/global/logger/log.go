// Package logger 全局 slog：debug 输出到控制台，release 写入轮转文件；
// 配置了 Sentry DSN 时 Warn 以上同时发往 Sentry
package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"challenge-settlement-system/config"

	sentryslog "github.com/getsentry/sentry-go/slog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	instance *slog.Logger
	once     sync.Once
)

// fanout 把一条记录交给所有启用了该级别的 handler
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// Get 第一次调用时按当前配置构建，之后配置变化不再生效
func Get() *slog.Logger {
	once.Do(func() {
		cfg := config.Get()
		release := cfg.Mode == config.ModeRelease
		opts := &slog.HandlerOptions{AddSource: release, Level: parseLevel(cfg.Log.Level)}

		var handler slog.Handler
		if release && cfg.Log.FilePath != "" {
			var w io.Writer = &lumberjack.Logger{
				Filename:   cfg.Log.FilePath,
				MaxSize:    cfg.Log.MaxSize,
				MaxBackups: cfg.Log.MaxBackups,
				MaxAge:     cfg.Log.MaxAge,
				Compress:   cfg.Log.Compress,
			}
			handler = slog.NewJSONHandler(w, opts)
		} else {
			handler = slog.NewTextHandler(os.Stdout, opts)
		}

		if cfg.Sentry.Dsn != "" {
			handler = fanout{handler, sentryslog.Option{
				EventLevel: []slog.Level{slog.LevelError},
				LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
				AddSource:  release,
			}.NewSentryHandler(context.Background())}
		}

		instance = slog.New(handler).With(
			"app_name", "challenge-settlement-system",
			"env", string(cfg.Mode),
		)
	})
	return instance
}

// New 带 module 字段的子 logger
func New(module string) *slog.Logger {
	return Get().With("module", module)
}

// RequestIDKey gin.Context 中请求 ID 的键，由 middleware.RequestID 写入
const RequestIDKey = "request_id"

// WithContext 带上请求 ID 与客户端 IP，业务日志可以和请求日志对上
func WithContext(base *slog.Logger, c interface {
	ClientIP() string
	GetString(string) string
}) *slog.Logger {
	l := base.With("client_ip", c.ClientIP())
	if id := c.GetString(RequestIDKey); id != "" {
		l = l.With(RequestIDKey, id)
	}
	return l
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
