package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// PaginationMeta defines the structure for pagination metadata.
type PaginationMeta struct {
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
}

// PaginatedResponse defines the structure for a paginated list of any type.
type PaginatedResponse[T any] struct {
	Data []T            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// NewPaginatedResponse creates a new PaginatedResponse.
func NewPaginatedResponse[T any](data []T, totalItems int64, page, limit int) PaginatedResponse[T] {
	if limit <= 0 {
		limit = 1
	}
	return PaginatedResponse[T]{
		Data: data,
		Meta: PaginationMeta{
			TotalItems:  totalItems,
			TotalPages:  totalPages(totalItems, limit),
			CurrentPage: page,
			PageSize:    limit,
		},
	}
}

func totalPages(totalItems int64, limit int) int {
	pages := totalItems / int64(limit)
	if totalItems%int64(limit) != 0 {
		pages++
	}
	return int(pages)
}

// Page slices an already ordered list.
func Page[T any](items []T, page, limit int) PaginatedResponse[T] {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	start := len(items)
	// Compare before multiplying so a huge page cannot overflow.
	if page-1 <= len(items)/limit {
		start = min((page-1)*limit, len(items))
	}
	end := start + min(limit, len(items)-start)
	data := make([]T, end-start)
	copy(data, items[start:end])
	return NewPaginatedResponse(data, int64(len(items)), page, limit)
}

// pageParams reads page and limit query parameters, defaulting to 1 and 10, capping limit at 100.
func pageParams(c *gin.Context) (page, limit int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100 // Max limit
	}
	return page, limit
}
