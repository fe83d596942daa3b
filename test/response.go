package test

import (
	"testing"

	"challenge-settlement-system/internal/global/response"

	"github.com/stretchr/testify/require"
)

func ErrorEqual(t *testing.T, expected *response.Error, resp response.ResponseBody) {
	require.Equal(t, expected.Code, resp.Code)
	require.Contains(t, resp.Msg, expected.Message)
}

func NoError(t *testing.T, resp response.ResponseBody) {
	require.Equal(t, int32(200), resp.Code, resp.Msg)
}

// DataMap 把 Data 当作 JSON 对象取出
func DataMap(t *testing.T, resp response.ResponseBody) map[string]any {
	m, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	return m
}
