package helpers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kickabout/kickabout/internal/app/models/dto"
)

const (
	// DefaultEventPageSize is the page size for game event listings.
	DefaultEventPageSize = 12
	// DefaultDiscussionPageSize is the page size for discussion feeds.
	DefaultDiscussionPageSize = 15
	// MaxPageSize caps any client-requested page size.
	MaxPageSize = 50
	// DefaultPage is the 1-based first page.
	DefaultPage = 1
)

// CalculateOffsetLimit converts a 1-based page index into an SQL offset
// and limit, clamping size with the given default.
func CalculateOffsetLimit(page, size, defaultSize int) (offset uint64, limit int) {
	if size <= 0 || size > MaxPageSize {
		limit = defaultSize
	} else {
		limit = size
	}

	if page < 1 {
		page = DefaultPage
	}

	offset = uint64((page - 1) * limit)
	return offset, limit
}

// NewPaginationInfo creates a standard PaginationInfo DTO.
// page should be the 1-based page number.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	if size <= 0 {
		size = DefaultEventPageSize
	}
	if page < 1 {
		page = DefaultPage
	}

	totalPages := 0
	if totalItems > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(size)))
	} else if page == 1 {
		// An empty result set still reads as one empty page.
		totalPages = 1
	}

	currentPage := page
	if totalPages > 0 && currentPage > totalPages {
		currentPage = totalPages
	}

	return dto.PaginationInfo{
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}

// ParsePaginationParams extracts and validates pagination parameters from
// the request, falling back to defaultSize when size is absent or out of
// range.
func ParsePaginationParams(c *gin.Context, defaultSize int) (page, size int) {
	pageStr := c.DefaultQuery("page", "1")
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = DefaultPage
	}

	sizeStr := c.DefaultQuery("size", strconv.Itoa(defaultSize))
	size, err = strconv.Atoi(sizeStr)
	if err != nil || size <= 0 || size > MaxPageSize {
		size = defaultSize
	}

	return page, size
}
