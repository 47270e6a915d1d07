package paging

import (
	"encoding/json"
	"math"
	"testing"

	"habittracker/internal/hateoas"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivedFields(t *testing.T) {
	cases := []struct {
		page           int
		totalPages     int
		hasPrev, hasNx bool
	}{
		{page: 1, totalPages: 5, hasPrev: false, hasNx: true},
		{page: 3, totalPages: 5, hasPrev: true, hasNx: true},
		{page: 5, totalPages: 5, hasPrev: true, hasNx: false},
		{page: 6, totalPages: 5, hasPrev: true, hasNx: false},
	}
	for _, tc := range cases {
		r := New([]int{}, tc.page, 10, 47)
		assert.Equal(t, tc.totalPages, r.TotalPages(), "page %d", tc.page)
		assert.Equal(t, tc.hasPrev, r.HasPreviousPage(), "page %d", tc.page)
		assert.Equal(t, tc.hasNx, r.HasNextPage(), "page %d", tc.page)
	}
}

func TestEmptyResult(t *testing.T) {
	r := New[string](nil, 1, 10, 0)
	assert.Equal(t, 0, r.TotalPages())
	assert.False(t, r.HasNextPage())
	assert.False(t, r.HasPreviousPage())

	raw, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"page":1,"pageSize":10,"totalCount":0,"totalPages":0,"hasPreviousPage":false,"hasNextPage":false}`, string(raw))
}

func TestNewClampsInvalidInput(t *testing.T) {
	r := New([]int{1}, 0, -3, -1)
	assert.Equal(t, DefaultPage, r.Page)
	assert.Equal(t, DefaultPageSize, r.PageSize)
	assert.Equal(t, 0, r.TotalCount)
	assert.Equal(t, 0, r.Offset())

	assert.Equal(t, 5, Offset(2, 5))
	assert.Equal(t, 0, Offset(0, 5))
	assert.Equal(t, 0, Offset(3, 0))
	assert.Equal(t, (math.MaxInt/10-1)*10, Offset(math.MaxInt, 10))
	assert.Equal(t, math.MaxInt/7, MaxPage(7))
}

func TestMarshalWithLinks(t *testing.T) {
	r := New([]string{"a"}, 2, 1, 3)
	r.Links = []hateoas.Link{{Href: "/habits?page=2", Rel: "self", Method: "GET"}}

	raw, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"items":["a"],"page":2,"pageSize":1,"totalCount":3,"totalPages":3,
		"hasPreviousPage":true,"hasNextPage":true,
		"links":[{"href":"/habits?page=2","rel":"self","method":"GET"}]
	}`, string(raw))
}
