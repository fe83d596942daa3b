package tools

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 30
	maxPageSize     = 300
)

// GetPage 从 query 的 page / page_size 计算 offset 与 limit，page 从 1 开始
func GetPage(c *gin.Context) (page, offset, limit int) {
	limit, err := strconv.Atoi(c.Query("page_size"))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	} else if limit > maxPageSize {
		limit = maxPageSize
	}
	page, err = strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return page, (page - 1) * limit, limit
}
