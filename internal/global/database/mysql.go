package database

import (
	"fmt"

	"challenge-settlement-system/config"
	"challenge-settlement-system/internal/global/sentry/tracing"
	"challenge-settlement-system/internal/model"
	"challenge-settlement-system/tools"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var DB *gorm.DB

// autoMigrateModels 需要自动迁移的模型
// 挑战、参与、认证三张表由外部模块写入，这里只保证表结构存在
var autoMigrateModels = []any{
	&model.User{},
	&model.PointHistory{},
	&model.Challenge{},
	&model.ChallengeMember{},
	&model.ProofRecord{},
	&model.Settlement{},
	&model.SettlementDetail{},
}

func Init() {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.Get().Mysql.Username,
		config.Get().Mysql.Password,
		config.Get().Mysql.Host,
		config.Get().Mysql.Port,
		config.Get().Mysql.DBName,
	)
	gormConfig := &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	}

	switch config.Get().Mode {
	case config.ModeDebug:
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	case config.ModeRelease:
		gormConfig.Logger = logger.Discard
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	tools.PanicOnErr(err)

	if tracing.IsEnabled() {
		tools.PanicOnErr(db.Use(tracing.NewGormPlugin()))
	}
	DB = db

	tools.PanicOnErr(DB.AutoMigrate(autoMigrateModels...))
}
