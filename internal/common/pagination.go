// File: internal/common/pagination.go
package common

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListQuery holds the catalog listing parameters taken from the request query.
type ListQuery struct {
	Page   int
	Limit  int
	Search string
}

// Skip is the number of records before the requested page. It saturates at math.MaxInt64
// for pages too large to address.
func (q ListQuery) Skip() int64 {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	pages, limit := int64(q.Page-1), int64(q.Limit)
	if pages > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return pages * limit
}

// GetListQuery extracts page, limit and search from the query string.
// A non-numeric or non-positive limit is ErrInvalidLimit; a bad page is a validation error.
func GetListQuery(c *gin.Context) (ListQuery, error) {
	return ParseListQuery(
		c.DefaultQuery("page", strconv.Itoa(DefaultPage)),
		c.DefaultQuery("limit", strconv.Itoa(DefaultPageSize)),
		c.Query("search"),
	)
}

func ParseListQuery(rawPage, rawLimit, rawSearch string) (ListQuery, error) {
	page, err := strconv.Atoi(strings.TrimSpace(rawPage))
	if err != nil || page < 1 {
		return ListQuery{}, NewValidationAPIError(map[string]string{"page": "The page parameter must be a positive integer."})
	}

	limit, err := strconv.Atoi(strings.TrimSpace(rawLimit))
	if err != nil || limit <= 0 {
		return ListQuery{}, ErrInvalidLimit
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	return ListQuery{Page: page, Limit: limit, Search: strings.TrimSpace(rawSearch)}, nil
}

// Pagination is the listing envelope metadata. The total count is serialized under
// CountKey (for example "totalProducts").
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalCount  int64
	HasNextPage bool
	HasPrevPage bool
	Limit       int
	CountKey    string
}

// NewPagination creates a pagination object.
func NewPagination(countKey string, totalItems int64, page, limit int) *Pagination {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}

	totalPages := int((totalItems + int64(limit) - 1) / int64(limit))

	return &Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  totalItems,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
		Limit:       limit,
		CountKey:    countKey,
	}
}

func (p *Pagination) MarshalJSON() ([]byte, error) {
	key := p.CountKey
	if key == "" {
		key = "total"
	}
	return json.Marshal(map[string]interface{}{
		"currentPage": p.CurrentPage,
		"totalPages":  p.TotalPages,
		key:           p.TotalCount,
		"hasNextPage": p.HasNextPage,
		"hasPrevPage": p.HasPrevPage,
		"limit":       p.Limit,
	})
}
