// Package tracing 把数据库和 Redis 操作挂到请求的 Sentry transaction 下
package tracing

import (
	"context"
	"time"

	"challenge-settlement-system/config"

	"github.com/getsentry/sentry-go"
)

// IsEnabled 配置了 DSN 才注册插件
func IsEnabled() bool {
	return config.Get().Sentry.Dsn != ""
}

// startChild ctx 中没有父 span 时返回 nil
func startChild(ctx context.Context, operation, description string) *sentry.Span {
	if ctx == nil {
		return nil
	}
	parent := sentry.SpanFromContext(ctx)
	if parent == nil {
		return nil
	}
	span := parent.StartChild(operation)
	span.Description = description
	return span
}

// finish 低于阈值的 span 不上报；threshold 为 0 时全部上报
func finish(span *sentry.Span, elapsed, threshold time.Duration, err error) {
	if threshold > 0 && elapsed < threshold {
		span.Sampled = sentry.SampledFalse
	}
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		span.SetData("error", err.Error())
	} else {
		span.Status = sentry.SpanStatusOK
	}
	span.Finish()
}
