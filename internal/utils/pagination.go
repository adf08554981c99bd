package utils

import (
	"math"
	"strconv"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PaginationMeta represents pagination metadata
type PaginationMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// CalculatePagination calculates pagination metadata
func CalculatePagination(total int64, page, limit int) PaginationMeta {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}

	return PaginationMeta{
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: pages,
	}
}

// ParsePageParams converts raw query values to a 1-based page and a bounded limit.
// Invalid values fall back to page 1 and DefaultPageLimit.
func ParsePageParams(pageStr, limitStr string) (page, limit int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}

	limit, err = strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	return page, limit
}

// Offset returns the row offset for a 1-based page
func Offset(page, limit int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * limit
}
