package settlement

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Sweep 结算所有已到期但还没冻结的挑战，返回本次结算成功的数量
// 单个挑战失败只记录日志，不影响其他挑战
func (e *Engine) Sweep(ctx context.Context) (int, error) {
	now := e.now().In(e.loc)
	// 结束日不晚于昨天的挑战才到期
	y, m, d := now.Date()
	before := time.Date(y, m, d-1, 0, 0, 0, 0, time.UTC)

	ids, err := e.store.ListDueChallenges(ctx, before)
	if err != nil {
		return 0, err
	}
	settled := 0
	for _, id := range ids {
		if _, err := e.Run(ctx, id); err != nil {
			if !errors.Is(err, ErrBusy) && !errors.Is(err, ErrNotReady) {
				e.log.Error("定时结算失败", "challenge_id", id, "error", err)
			}
			continue
		}
		settled++
	}
	return settled, nil
}

// StartSweeper 定时补结算没人查询过的挑战，上一轮没跑完时跳过本轮
func StartSweeper(e *Engine, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(e.loc))
	if err != nil {
		return nil, err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			n, err := e.Sweep(ctx)
			if err != nil {
				e.log.Error("查询待结算挑战失败", "error", err)
				return
			}
			if n > 0 {
				e.log.Info("定时结算完成", "settled", n)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("settlement-sweep"),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}
	sched.Start()
	return sched, nil
}
