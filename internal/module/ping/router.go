package ping

import (
	"context"
	"time"

	"challenge-settlement-system/internal/global/database"
	"challenge-settlement-system/internal/global/redis"
	"challenge-settlement-system/internal/global/response"

	"github.com/gin-gonic/gin"
)

func (p *ModulePing) InitRouter(r *gin.RouterGroup) {
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"version": "1.0.0",
		})
	})
	r.GET("/health", Health)
}

// Health 检查 MySQL 与 Redis 连通性，任一失败返回 500
func Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := database.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		log.Error("MySQL 健康检查失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	redisStatus := "disabled"
	if redis.Client != nil {
		if err = redis.Client.Ping(ctx).Err(); err != nil {
			log.Error("Redis 健康检查失败", "error", err)
			response.Fail(c, response.ErrInternal.WithOrigin(err))
			return
		}
		redisStatus = "ok"
	}
	response.Success(c, gin.H{"mysql": "ok", "redis": redisStatus})
}
