package handlers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func pageParams(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	switch {
	case pageSize > 100:
		pageSize = 100
	case pageSize <= 0:
		pageSize = 20
	}
	return page, pageSize
}

// Paginate is a gorm scope driven by the page/pageSize query parameters.
func Paginate(c *gin.Context) func(db *gorm.DB) *gorm.DB {
	page, pageSize := pageParams(c)
	offset := (page - 1) * pageSize
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(offset).Limit(pageSize)
	}
}

// CreatePaginatedResponse wraps a page of rows with paging metadata.
func CreatePaginatedResponse(c *gin.Context, data interface{}, totalRows int64) gin.H {
	page, pageSize := pageParams(c)
	totalPages := int(math.Ceil(float64(totalRows) / float64(pageSize)))
	return gin.H{
		"data":       data,
		"page":       page,
		"pageSize":   pageSize,
		"totalRows":  totalRows,
		"totalPages": totalPages,
	}
}
