package redis

import (
	"context"
	"net"
	"time"

	"challenge-settlement-system/config"
	"challenge-settlement-system/internal/global/sentry/tracing"
	"challenge-settlement-system/tools"

	"github.com/redis/go-redis/v9"
)

// Client 未启用 redis 时为 nil，使用方需判空
var Client *redis.Client

func Init() {
	cfg := config.Get().Redis
	if !cfg.Enable {
		return
	}
	Client = redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if tracing.IsEnabled() {
		Client.AddHook(tracing.NewRedisHook())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	tools.PanicOnErr(Client.Ping(ctx).Err())
}
