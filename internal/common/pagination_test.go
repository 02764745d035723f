package common

import (
	"encoding/json"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListQuery(t *testing.T) {
	tests := []struct {
		name           string
		page, limit, q string
		expected       ListQuery
		expectedErr    error
	}{
		{name: "defaults", page: "1", limit: "10", expected: ListQuery{Page: 1, Limit: 10}},
		{name: "search trimmed", page: "2", limit: "10", q: "  rtx ", expected: ListQuery{Page: 2, Limit: 10, Search: "rtx"}},
		{name: "limit clamped", page: "1", limit: "500", expected: ListQuery{Page: 1, Limit: MaxPageSize}},
		{name: "zero limit", page: "1", limit: "0", expectedErr: ErrInvalidLimit},
		{name: "negative limit", page: "1", limit: "-5", expectedErr: ErrInvalidLimit},
		{name: "non-numeric limit", page: "1", limit: "ten", expectedErr: ErrInvalidLimit},
		{name: "zero page", page: "0", limit: "10", expectedErr: ErrValidation},
		{name: "non-numeric page", page: "x", limit: "10", expectedErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseListQuery(tt.page, tt.limit, tt.q)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestListQuerySkip(t *testing.T) {
	tests := []struct {
		name     string
		q        ListQuery
		expected int64
	}{
		{name: "first page", q: ListQuery{Page: 1, Limit: 10}, expected: 0},
		{name: "second page", q: ListQuery{Page: 2, Limit: 10}, expected: 10},
		{name: "fifth page of five", q: ListQuery{Page: 5, Limit: 5}, expected: 20},
		{name: "unset page", q: ListQuery{Limit: 10}, expected: 0},
		{name: "overflowing page saturates", q: ListQuery{Page: math.MaxInt, Limit: 100}, expected: math.MaxInt64},
		{name: "largest exact window", q: ListQuery{Page: math.MaxInt/100 + 1, Limit: 100}, expected: math.MaxInt / 100 * 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.q.Skip())
		})
	}
}

func TestParseListQuery_HugePageStaysAddressable(t *testing.T) {
	q, err := ParseListQuery(strconv.Itoa(math.MaxInt), "100", "")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, q.Skip(), int64(0))

	p := NewPagination("totalProducts", 15, q.Page, q.Limit)
	assert.Equal(t, 1, p.TotalPages)
	assert.False(t, p.HasNextPage)
	assert.True(t, p.HasPrevPage)
}

func TestPaginationMarshalJSON(t *testing.T) {
	raw, err := json.Marshal(NewPagination("totalProducts", 15, 2, 10))
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, map[string]interface{}{
		"currentPage":   float64(2),
		"totalPages":    float64(2),
		"totalProducts": float64(15),
		"hasNextPage":   false,
		"hasPrevPage":   true,
		"limit":         float64(10),
	}, body)
}
