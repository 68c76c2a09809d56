package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(12, 0, 5)
	assert.Equal(t, 0, info.CurrentPage)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 5, info.PageSize)
	assert.Equal(t, int64(12), info.TotalItems)

	empty := NewPaginationInfo(0, 0, 5)
	assert.Equal(t, 0, empty.TotalPages)

	exact := NewPaginationInfo(10, 1, 5)
	assert.Equal(t, 2, exact.TotalPages)
}

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(2, 5)
	assert.Equal(t, uint64(10), offset)
	assert.Equal(t, uint64(5), limit)

	offset, limit = CalculateOffsetLimit(-3, 500)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, uint64(DefaultPageSize), limit)
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		query      string
		page, size int
	}{
		{"", 0, 5},
		{"?page=2&size=20", 2, 20},
		{"?page=-1&size=0", 0, 5},
		{"?page=abc&size=1000", 0, 5},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/api/v1/admin/members"+tc.query, nil)

		page, size := ParsePaginationParams(c)
		assert.Equal(t, tc.page, page, tc.query)
		assert.Equal(t, tc.size, size, tc.query)
	}
}
