package config

type Mode string

const (
	ModeDebug   Mode = "debug"
	ModeRelease Mode = "release"
)

type Config struct {
	Host       string     `envconfig:"HOST" mapstructure:"host"`
	Port       string     `envconfig:"PORT" mapstructure:"port"`
	Prefix     string     `envconfig:"PREFIX" mapstructure:"prefix"`
	Mode       Mode       `envconfig:"MODE" mapstructure:"mode"`
	Mysql      Mysql      `mapstructure:"mysql"`
	Redis      Redis      `mapstructure:"redis"`
	JWT        JWT        `mapstructure:"jwt"`
	Log        Log        `mapstructure:"log"`
	Sentry     Sentry     `mapstructure:"sentry"`
	OTel       OTel       `mapstructure:"otel"`
	Settlement Settlement `mapstructure:"settlement"`
}

type Mysql struct {
	Host     string `envconfig:"HOST" mapstructure:"host"`
	Port     string `envconfig:"PORT" mapstructure:"port"`
	Username string `envconfig:"USERNAME" mapstructure:"username"`
	Password string `envconfig:"PASSWORD" mapstructure:"password"`
	DBName   string `envconfig:"DB_NAME" mapstructure:"db_name"`
}

type Redis struct {
	Enable   bool   `envconfig:"ENABLE" mapstructure:"enable"`
	Host     string `envconfig:"HOST" mapstructure:"host"`
	Port     string `envconfig:"PORT" mapstructure:"port"`
	Password string `envconfig:"PASSWORD" mapstructure:"password"`
	DB       int    `envconfig:"DB" mapstructure:"db"`
}

type JWT struct {
	AccessSecret string `envconfig:"ACCESS_SECRET" mapstructure:"access_secret"`
	AccessExpire int64  `envconfig:"ACCESS_EXPIRE" mapstructure:"access_expire"`
}

type Log struct {
	FilePath   string `envconfig:"LOG_FILE_PATH" mapstructure:"file_path"`     // 日志文件路径
	Level      string `envconfig:"LOG_LEVEL" mapstructure:"level"`             // 日志级别：debug, info, warn, error
	MaxSize    int    `envconfig:"LOG_MAX_SIZE" mapstructure:"max_size"`       // 日志文件最大大小（MB）
	MaxBackups int    `envconfig:"LOG_MAX_BACKUPS" mapstructure:"max_backups"` // 保留的旧日志文件数
	MaxAge     int    `envconfig:"LOG_MAX_AGE" mapstructure:"max_age"`         // 日志文件保留天数
	Compress   bool   `envconfig:"LOG_COMPRESS" mapstructure:"compress"`       // 是否压缩旧日志文件
}

type Sentry struct {
	Dsn         string        `envconfig:"DSN" mapstructure:"dsn"`
	Environment string        `envconfig:"ENVIRONMENT" mapstructure:"environment"`
	SampleRate  float64       `envconfig:"SAMPLE_RATE" mapstructure:"sample_rate"` // 性能追踪采样率
	Tracing     SentryTracing `mapstructure:"tracing"`
}

type SentryTracing struct {
	DBSlowThresholdMs    int `envconfig:"DB_SLOW_THRESHOLD_MS" mapstructure:"db_slow_threshold_ms"`
	RedisSlowThresholdMs int `envconfig:"REDIS_SLOW_THRESHOLD_MS" mapstructure:"redis_slow_threshold_ms"`
}

type OTel struct {
	Enable      bool   `envconfig:"ENABLE" mapstructure:"enable"`
	AgentHost   string `envconfig:"AGENT_HOST" mapstructure:"agent_host"`
	AgentPort   string `envconfig:"AGENT_PORT" mapstructure:"agent_port"`
	ServiceName string `envconfig:"SERVICE_NAME" mapstructure:"service_name"`
}

type Settlement struct {
	// Timezone 结算日界所用时区，scheduled_at 为结束日次日零点
	Timezone string `envconfig:"TIMEZONE" mapstructure:"timezone"`
	// RunGuardTTLSeconds redis 结算运行锁的过期时间
	RunGuardTTLSeconds int   `envconfig:"RUN_GUARD_TTL_SECONDS" mapstructure:"run_guard_ttl_seconds"`
	Sweep              Sweep `mapstructure:"sweep"`
}

type Sweep struct {
	Enable          bool `envconfig:"ENABLE" mapstructure:"enable"`
	IntervalMinutes int  `envconfig:"INTERVAL_MINUTES" mapstructure:"interval_minutes"`
}
