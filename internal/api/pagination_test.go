package api

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	cases := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 50, 0},
		{"explicit values", "?limit=10&offset=20", 10, 20},
		{"limit capped at 100", "?limit=500", 100, 0},
		{"limit floored at 1", "?limit=0", 1, 0},
		{"negative offset clamped", "?offset=-5", 50, 0},
		{"garbage ignored", "?limit=abc&offset=xyz", 50, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/materials"+tc.query, nil)
			limit, offset := parsePagination(r)
			assert.Equal(t, tc.wantLimit, limit)
			assert.Equal(t, tc.wantOffset, offset)
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2, 3}, paginate(items, 3, 0))
	assert.Equal(t, []int{4, 5}, paginate(items, 3, 3))
	assert.Empty(t, paginate(items, 3, 10))
	assert.Equal(t, items, paginate(items, 100, 0))
}
