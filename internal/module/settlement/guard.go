package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Guard 跨进程的结算运行互斥，拿不到时直接返回 ErrBusy，不在行锁上排队
type Guard interface {
	// Acquire ok 为 false 表示已有其他运行持有；release 可以重复调用
	Acquire(ctx context.Context, challengeID uint) (release func(), ok bool, err error)
}

// NewGuard client 为 nil 时不做任何限制，只依赖数据库行锁
func NewGuard(client *redis.Client, ttl time.Duration, log *slog.Logger) Guard {
	if client == nil {
		return noopGuard{}
	}
	return &redisGuard{client: client, ttl: ttl, log: log}
}

type noopGuard struct{}

func (noopGuard) Acquire(context.Context, uint) (func(), bool, error) {
	return func() {}, true, nil
}

// 只删除自己持有的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisGuard struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

func guardKey(challengeID uint) string {
	return fmt.Sprintf("settlement:run:%d", challengeID)
}

func (g *redisGuard) Acquire(ctx context.Context, challengeID uint) (func(), bool, error) {
	key, token := guardKey(challengeID), uuid.NewString()
	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	released := false
	return func() {
		if released {
			return
		}
		released = true
		if err := releaseScript.Run(context.Background(), g.client, []string{key}, token).Err(); err != nil {
			g.log.Warn("释放结算锁失败", "challenge_id", challengeID, "error", err)
		}
	}, true, nil
}
