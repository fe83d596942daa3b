package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestFanout(t *testing.T) {
	var info, errOnly bytes.Buffer
	h := fanout{
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&errOnly, &slog.HandlerOptions{Level: slog.LevelError}),
	}
	l := slog.New(h).With("module", "Settlement")

	l.Info("结算完成", "challenge_id", 7)
	assert.Contains(t, info.String(), "challenge_id=7")
	assert.Contains(t, info.String(), "module=Settlement")
	assert.Empty(t, errOnly.String())

	l.Error("结算失败")
	assert.Contains(t, errOnly.String(), "结算失败")
	require.False(t, h.Enabled(context.Background(), slog.LevelDebug))
}

type ginLike map[string]string

func (g ginLike) ClientIP() string          { return "10.0.0.1" }
func (g ginLike) GetString(k string) string { return g[k] }

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	WithContext(base, ginLike{RequestIDKey: "abc"}).Info("x")
	assert.Contains(t, buf.String(), "request_id=abc")
	assert.Contains(t, buf.String(), "client_ip=10.0.0.1")

	buf.Reset()
	WithContext(base, ginLike{}).Info("y")
	assert.NotContains(t, buf.String(), "request_id")
}
