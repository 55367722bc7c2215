package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		wantPage     int
		wantPageSize int
	}{
		{"defaults", "/users", 1, DefaultPageSize},
		{"explicit values", "/users?page=3&page_size=10", 3, 10},
		{"zero page falls back", "/users?page=0", 1, DefaultPageSize},
		{"negative page falls back", "/users?page=-2", 1, DefaultPageSize},
		{"garbage page falls back", "/users?page=abc", 1, DefaultPageSize},
		{"zero size falls back", "/users?page_size=0", 1, DefaultPageSize},
		{"oversized page_size is clamped", "/users?page_size=5000", 1, MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			p := FromRequest(r)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPageSize, p.PageSize)
		})
	}
}

func TestOffsetAndLimit(t *testing.T) {
	p := Params{Page: 3, PageSize: 25}
	assert.Equal(t, 50, p.Offset())
	assert.Equal(t, 25, p.Limit())

	first := Params{Page: 1, PageSize: 20}
	assert.Equal(t, 0, first.Offset())
}

func TestNewPage_NilResultsBecomesEmptySlice(t *testing.T) {
	page := NewPage[string](nil, 0, Params{Page: 1, PageSize: 20})
	assert.NotNil(t, page.Results)
	assert.Len(t, page.Results, 0)
	assert.Equal(t, int64(0), page.Count)
}

func TestNewPage_CarriesParams(t *testing.T) {
	page := NewPage([]int{1, 2, 3}, 42, Params{Page: 2, PageSize: 3})
	assert.Equal(t, int64(42), page.Count)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.PageSize)
	assert.Equal(t, []int{1, 2, 3}, page.Results)
}
