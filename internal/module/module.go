package module

import (
	"challenge-settlement-system/internal/module/ping"
	"challenge-settlement-system/internal/module/settlement"
	"challenge-settlement-system/internal/module/wallet"

	"github.com/gin-gonic/gin"
)

type Module interface {
	GetName() string
	Init()
	InitRouter(r *gin.RouterGroup)
}

var Modules []Module

func registerModule(m []Module) {
	Modules = append(Modules, m...)
}

func init() {
	// 按顺序初始化，Settlement 依赖 Wallet
	registerModule([]Module{
		&ping.ModulePing{},
		&wallet.ModuleWallet{},
		&settlement.ModuleSettlement{},
	})
}
