package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"challenge-settlement-system/config"
	"challenge-settlement-system/internal/global/database"
	"challenge-settlement-system/internal/global/logger"
	"challenge-settlement-system/internal/global/middleware"
	internalOtel "challenge-settlement-system/internal/global/otel"
	"challenge-settlement-system/internal/global/redis"
	"challenge-settlement-system/internal/global/sentry"
	"challenge-settlement-system/internal/module"
	"challenge-settlement-system/internal/module/settlement"
	"challenge-settlement-system/tools"

	"github.com/gin-gonic/gin"
)

var log *slog.Logger

func Init() {
	config.Init()
	log = logger.New("Server")

	if err := sentry.Init(); err != nil {
		log.Error("Sentry 初始化失败", "error", err)
	}

	database.Init()
	redis.Init()

	if config.Get().OTel.Enable {
		log.Info("OTel Enabled")
		internalOtel.Init()
	}

	for _, m := range module.Modules {
		log.Info(fmt.Sprintf("Init Module: %s", m.GetName()))
		m.Init()
	}
}

func Run() {
	gin.SetMode(string(config.Get().Mode))
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(sentry.Middleware())
	r.Use(middleware.SentryEnrichIP())
	switch config.Get().Mode {
	case config.ModeRelease:
		r.Use(middleware.Logger(logger.Get()))
	case config.ModeDebug:
		r.Use(gin.Logger())
	}
	r.Use(middleware.Cors())
	r.Use(middleware.Recovery())

	if config.Get().OTel.Enable {
		r.Use(middleware.Trace())
	}

	for _, m := range module.Modules {
		log.Info(fmt.Sprintf("Init Router: %s", m.GetName()))
		m.InitRouter(r.Group("/" + config.Get().Prefix))
	}

	srv := &http.Server{
		Addr:    net.JoinHostPort(config.Get().Host, config.Get().Port),
		Handler: r,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			tools.PanicOnErr(err)
		}
	}()
	log.Info("Server started", "addr", srv.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", "error", err)
	}
	settlement.Stop()
	if err := internalOtel.Shutdown(ctx); err != nil {
		log.Error("Failed to shutdown TracerProvider", "error", err)
	}
	sentry.Flush(2 * time.Second)
	log.Info("Server exited")
}
