package wallet

import (
	"challenge-settlement-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (*ModuleWallet) InitRouter(r *gin.RouterGroup) {
	walletGroup := r.Group("/wallet")
	walletGroup.Use(middleware.Auth(0))
	{
		walletGroup.GET("", GetBalance)
		walletGroup.POST("/charge", Charge)
		walletGroup.GET("/history", ListHistory)
	}
}
