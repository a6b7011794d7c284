package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(1, 12, DefaultEventPageSize)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, 12, limit)

	offset, limit = CalculateOffsetLimit(3, 10, DefaultEventPageSize)
	assert.Equal(t, uint64(20), offset)
	assert.Equal(t, 10, limit)
}

func TestCalculateOffsetLimitClampsSize(t *testing.T) {
	_, limit := CalculateOffsetLimit(1, 0, DefaultEventPageSize)
	assert.Equal(t, DefaultEventPageSize, limit)

	_, limit = CalculateOffsetLimit(1, MaxPageSize+1, DefaultEventPageSize)
	assert.Equal(t, DefaultEventPageSize, limit)
}

func TestCalculateOffsetLimitClampsPage(t *testing.T) {
	offset, _ := CalculateOffsetLimit(0, 10, DefaultEventPageSize)
	assert.Equal(t, uint64(0), offset)

	offset, _ = CalculateOffsetLimit(-5, 10, DefaultEventPageSize)
	assert.Equal(t, uint64(0), offset)
}

func TestNewPaginationInfoRoundsPagesUp(t *testing.T) {
	info := NewPaginationInfo(25, 1, 12)
	assert.Equal(t, 1, info.CurrentPage)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 12, info.PageSize)
	assert.Equal(t, int64(25), info.TotalItems)
}

func TestNewPaginationInfoEmptyResultIsOnePage(t *testing.T) {
	info := NewPaginationInfo(0, 1, 12)
	assert.Equal(t, 1, info.TotalPages)
	assert.Equal(t, 1, info.CurrentPage)
}

func TestNewPaginationInfoClampsPageToTotal(t *testing.T) {
	info := NewPaginationInfo(10, 9, 12)
	assert.Equal(t, 1, info.CurrentPage)
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		query    string
		wantPage int
		wantSize int
	}{
		{name: "defaults", query: "", wantPage: 1, wantSize: DefaultEventPageSize},
		{name: "explicit", query: "?page=2&size=20", wantPage: 2, wantSize: 20},
		{name: "bad page", query: "?page=abc", wantPage: 1, wantSize: DefaultEventPageSize},
		{name: "zero page", query: "?page=0", wantPage: 1, wantSize: DefaultEventPageSize},
		{name: "oversized", query: "?size=999", wantPage: 1, wantSize: DefaultEventPageSize},
		{name: "negative size", query: "?size=-1", wantPage: 1, wantSize: DefaultEventPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/events"+tt.query, nil)

			page, size := ParsePaginationParams(c, DefaultEventPageSize)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantSize, size)
		})
	}
}
