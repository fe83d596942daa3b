package wallet

import (
	"log/slog"

	"challenge-settlement-system/internal/global/database"
	"challenge-settlement-system/internal/global/logger"
)

var (
	log    *slog.Logger
	ledger *Ledger
)

type ModuleWallet struct{}

func (*ModuleWallet) GetName() string {
	return "Wallet"
}

func (*ModuleWallet) Init() {
	log = logger.New("Wallet")
	ledger = NewLedger(NewGormStore(database.DB))
}

// Default 供结算模块在领取时记账
func Default() *Ledger {
	return ledger
}
