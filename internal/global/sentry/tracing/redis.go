package tracing

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"challenge-settlement-system/config"

	"github.com/redis/go-redis/v9"
)

// RedisHook 每条命令或每个 pipeline 一个 span，只记命令名
type RedisHook struct {
	slowThreshold time.Duration
}

func NewRedisHook() *RedisHook {
	ms := config.Get().Sentry.Tracing.RedisSlowThresholdMs
	return &RedisHook{slowThreshold: time.Duration(ms) * time.Millisecond}
}

func (h *RedisHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *RedisHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		span := startChild(ctx, "db.redis", strings.ToUpper(cmd.Name()))
		if span == nil {
			return next(ctx, cmd)
		}
		span.SetData("db.system", "redis")
		err := next(span.Context(), cmd)
		// SET NX 未抢到锁、GET 不存在都不算错误
		if errors.Is(err, redis.Nil) {
			finish(span, time.Since(start), h.slowThreshold, nil)
		} else {
			finish(span, time.Since(start), h.slowThreshold, err)
		}
		return err
	}
}

func (h *RedisHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		span := startChild(ctx, "db.redis.pipeline", pipelineDescription(cmds))
		if span == nil {
			return next(ctx, cmds)
		}
		span.SetData("db.system", "redis")
		span.SetData("redis.pipeline_length", len(cmds))
		err := next(span.Context(), cmds)
		finish(span, time.Since(start), h.slowThreshold, err)
		return err
	}
}

// pipelineDescription 最多列出前三条命令
func pipelineDescription(cmds []redis.Cmder) string {
	names := make([]string, 0, 3)
	for i, cmd := range cmds {
		if i == 3 {
			names = append(names, "...")
			break
		}
		names = append(names, strings.ToUpper(cmd.Name()))
	}
	return "PIPELINE: " + strings.Join(names, ", ")
}
