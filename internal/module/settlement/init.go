package settlement

import (
	"log/slog"
	"time"

	"challenge-settlement-system/config"
	"challenge-settlement-system/internal/global/database"
	"challenge-settlement-system/internal/global/logger"
	"challenge-settlement-system/internal/global/redis"
	"challenge-settlement-system/internal/module/wallet"
	"challenge-settlement-system/tools"

	"github.com/go-co-op/gocron/v2"
)

var (
	log    *slog.Logger
	engine *Engine
	sweep  gocron.Scheduler
)

type ModuleSettlement struct{}

func (*ModuleSettlement) GetName() string {
	return "Settlement"
}

// Init 依赖 Wallet 模块先初始化
func (*ModuleSettlement) Init() {
	log = logger.New("Settlement")
	cfg := config.Get().Settlement

	loc, err := time.LoadLocation(cfg.Timezone)
	tools.PanicOnErr(err)

	ttl := time.Duration(cfg.RunGuardTTLSeconds) * time.Second
	engine = NewEngine(
		NewGormStore(database.DB),
		wallet.Default(),
		NewGuard(redis.Client, ttl, log),
		loc,
	)

	if cfg.Sweep.Enable {
		interval := time.Duration(cfg.Sweep.IntervalMinutes) * time.Minute
		sweep, err = StartSweeper(engine, interval)
		tools.PanicOnErr(err)
		log.Info("定时结算已启动", "interval", interval)
	}
}

// Stop 停止定时结算，等待正在执行的一轮结束
func Stop() {
	if sweep == nil {
		return
	}
	if err := sweep.Shutdown(); err != nil {
		log.Error("停止定时结算失败", "error", err)
	}
}
