package tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type inner struct {
	Name string `excel:"姓名"`
}

type row struct {
	inner
	Points  int64      `excel:"积分"`
	OK      bool       `excel:"达标"`
	At      *time.Time `excel:"时间"`
	Ignored string     `excel:"-"`
}

func TestWriteSheet(t *testing.T) {
	at := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	rows := []row{
		{inner: inner{Name: "a"}, Points: 10, OK: true, At: &at},
		{inner: inner{Name: "b"}, Points: 0},
	}
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, WriteSheet(f, "结算", rows))

	got, err := f.GetRows("结算")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"姓名", "积分", "达标", "时间"}, got[0])
	assert.Equal(t, []string{"a", "10", "是", "2025-03-02 10:00:00"}, got[1])
	require.GreaterOrEqual(t, len(got[2]), 3)
	assert.Equal(t, []string{"b", "0", "否"}, got[2][:3])
}

func TestWriteSheet_Rejects(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	assert.Error(t, WriteSheet(f, "", 3))
	assert.Error(t, WriteSheet(f, "", []int{1}))
}

func TestWriteSheet_EmptyWritesHeader(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, WriteSheet(f, "", []row{}))
	got, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, got, 1)
}
