package paging

import (
	"encoding/json"
	"math"

	"habittracker/internal/hateoas"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Result is the paginated response envelope. TotalPages and the has-page
// flags are derived from Page, PageSize and TotalCount.
type Result[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	TotalCount int
	Links      []hateoas.Link
}

// New builds a Result, clamping page and pageSize to at least one.
func New[T any](items []T, page, pageSize, totalCount int) Result[T] {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if totalCount < 0 {
		totalCount = 0
	}
	if items == nil {
		items = []T{}
	}
	return Result[T]{Items: items, Page: page, PageSize: pageSize, TotalCount: totalCount}
}

func (r Result[T]) TotalPages() int {
	if r.PageSize < 1 {
		return 0
	}
	return (r.TotalCount + r.PageSize - 1) / r.PageSize
}

func (r Result[T]) HasPreviousPage() bool { return r.Page > 1 }

func (r Result[T]) HasNextPage() bool { return r.Page < r.TotalPages() }

// Offset is the number of rows skipped before this page.
func (r Result[T]) Offset() int { return Offset(r.Page, r.PageSize) }

// MaxPage is the highest page whose offset still fits in an int.
func MaxPage(pageSize int) int {
	if pageSize < 1 {
		return math.MaxInt
	}
	return math.MaxInt / pageSize
}

// Offset computes the row offset of page. Pages past MaxPage are clamped.
func Offset(page, pageSize int) int {
	if page < 1 || pageSize < 1 {
		return 0
	}
	if page > MaxPage(pageSize) {
		page = MaxPage(pageSize)
	}
	return (page - 1) * pageSize
}

type envelope[T any] struct {
	Items           []T            `json:"items"`
	Page            int            `json:"page"`
	PageSize        int            `json:"pageSize"`
	TotalCount      int            `json:"totalCount"`
	TotalPages      int            `json:"totalPages"`
	HasPreviousPage bool           `json:"hasPreviousPage"`
	HasNextPage     bool           `json:"hasNextPage"`
	Links           []hateoas.Link `json:"links,omitempty"`
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	items := r.Items
	if items == nil {
		items = []T{}
	}
	return json.Marshal(envelope[T]{
		Items:           items,
		Page:            r.Page,
		PageSize:        r.PageSize,
		TotalCount:      r.TotalCount,
		TotalPages:      r.TotalPages(),
		HasPreviousPage: r.HasPreviousPage(),
		HasNextPage:     r.HasNextPage(),
		Links:           r.Links,
	})
}
