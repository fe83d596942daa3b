package config

import (
	"errors"
	"os"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

var (
	cfg  = defaultConfig()
	once sync.Once
)

func defaultConfig() *Config {
	return &Config{
		Host:   "0.0.0.0",
		Port:   "8080",
		Prefix: "api",
		Mode:   ModeDebug,
		Log: Log{
			Level:      "info",
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     30,
		},
		OTel: OTel{ServiceName: "challenge-settlement-system"},
		Settlement: Settlement{
			Timezone:           "Asia/Seoul",
			RunGuardTTLSeconds: 30,
			Sweep:              Sweep{IntervalMinutes: 10},
		},
	}
}

// Init 读取配置文件（CONFIG_PATH，默认 ./config.yaml），再用 APP_ 前缀的环境变量覆盖
// 配置文件不存在不视为错误
func Init() {
	once.Do(func() {
		v := viper.New()
		path := os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./config.yaml"
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				panic(err)
			}
		} else if err = v.Unmarshal(cfg); err != nil {
			panic(err)
		}
		if err := envconfig.Process("APP", cfg); err != nil {
			panic(err)
		}
	})
}

func Get() *Config {
	return cfg
}
