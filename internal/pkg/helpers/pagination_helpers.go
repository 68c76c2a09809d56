package helpers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/learnway/member/internal/app/models/dto"
)

const (
	DefaultPageSize = 5
	MaxPageSize     = 100
	DefaultPage     = 0 // Pages are 0-based
)

// NormalizePage clamps page and size to the accepted range
func NormalizePage(page, size int) (int, int) {
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	if page < 0 {
		page = DefaultPage
	}
	return page, size
}

// CalculateOffsetLimit calculates the offset and limit for SQL queries based on a 0-based page index.
func CalculateOffsetLimit(page, size int) (offset uint64, limit uint64) {
	page, size = NormalizePage(page, size)
	return uint64(page) * uint64(size), uint64(size)
}

// NewPaginationInfo creates a standard PaginationInfo DTO.
// page should be the 0-based page number.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	page, size = NormalizePage(page, size)

	totalPages := 0
	if totalItems > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(size)))
	}

	return dto.PaginationInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}

// ParsePaginationParams extracts and validates pagination parameters from the request
func ParsePaginationParams(c *gin.Context) (page, size int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil {
		page = DefaultPage
	}

	size, err = strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultPageSize)))
	if err != nil {
		size = DefaultPageSize
	}

	return NormalizePage(page, size)
}
