package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte(`
port: "9090"
mode: release
settlement:
  timezone: UTC
  sweep:
    enable: true
`)
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("APP_SETTLEMENT_SWEEP_INTERVAL_MINUTES", "5")

	Init()
	cfg := Get()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, ModeRelease, cfg.Mode)
	assert.Equal(t, "UTC", cfg.Settlement.Timezone)
	assert.True(t, cfg.Settlement.Sweep.Enable)
	assert.Equal(t, 5, cfg.Settlement.Sweep.IntervalMinutes)
	// 未出现在文件和环境变量中的保持默认值
	assert.Equal(t, "api", cfg.Prefix)
	assert.Equal(t, 30, cfg.Settlement.RunGuardTTLSeconds)
}
