package tools

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGetPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		query               string
		page, offset, limit int
	}{
		{"", 1, 0, 30},
		{"?page=3&page_size=10", 3, 20, 10},
		{"?page=0&page_size=-1", 1, 0, 30},
		{"?page=2&page_size=1000", 2, 300, 300},
		{"?page=abc", 1, 0, 30},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/x"+tc.query, nil)
		page, offset, limit := GetPage(c)
		assert.Equal(t, tc.page, page, tc.query)
		assert.Equal(t, tc.offset, offset, tc.query)
		assert.Equal(t, tc.limit, limit, tc.query)
	}
}
