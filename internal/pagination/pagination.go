// Package pagination provides page-number pagination over counted result
// sets: page/page_size query parameters in, a counted page envelope out.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Params identifies one page of a result set.
type Params struct {
	Page     int
	PageSize int
}

// FromRequest reads page and page_size query parameters, falling back to
// page 1 and the default size. Out-of-range values are clamped rather than
// rejected.
func FromRequest(r *http.Request) Params {
	p := Params{Page: 1, PageSize: DefaultPageSize}

	if raw := r.URL.Query().Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			p.Page = page
		}
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			p.PageSize = size
		}
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the number of records to skip for this page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Limit returns the maximum number of records on this page.
func (p Params) Limit() int {
	return p.PageSize
}

// Page is the response envelope for a paginated listing.
type Page[T any] struct {
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Results  []T   `json:"results"`
}

// NewPage wraps one page of results with its total count. Results is never
// nil so the JSON encoding stays a list.
func NewPage[T any](results []T, count int64, p Params) *Page[T] {
	if results == nil {
		results = []T{}
	}
	return &Page[T]{
		Count:    count,
		Page:     p.Page,
		PageSize: p.PageSize,
		Results:  results,
	}
}
