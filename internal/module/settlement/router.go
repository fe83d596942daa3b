package settlement

import (
	"challenge-settlement-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (*ModuleSettlement) InitRouter(r *gin.RouterGroup) {
	settlementGroup := r.Group("/settlement/:challenge_id")
	settlementGroup.Use(middleware.Auth(0))
	{
		settlementGroup.GET("/status", GetStatus)
		settlementGroup.POST("/claim", Claim)
	}

	adminGroup := r.Group("/settlement/:challenge_id")
	adminGroup.Use(middleware.Auth(1))
	{
		adminGroup.POST("/run", Run)
		adminGroup.GET("/export", Export)
	}
}
