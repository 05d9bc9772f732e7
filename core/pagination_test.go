package core

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		requested int
		size      int
		want      Pagination
	}{
		{name: "empty set", total: 0, requested: 1, size: 10, want: Pagination{Page: 1, TotalPages: 1, PageSize: 10}},
		{name: "empty set, page too far", total: 0, requested: 5, size: 10, want: Pagination{Page: 1, TotalPages: 1, PageSize: 10}},
		{name: "first page", total: 25, requested: 1, size: 10, want: Pagination{Page: 1, TotalPages: 3, PageSize: 10, Count: 25}},
		{name: "last partial page", total: 25, requested: 3, size: 10, want: Pagination{Page: 3, TotalPages: 3, PageSize: 10, Count: 25, Offset: 20}},
		{name: "clamped high", total: 25, requested: 9, size: 10, want: Pagination{Page: 3, TotalPages: 3, PageSize: 10, Count: 25, Offset: 20}},
		{name: "clamped low", total: 25, requested: -4, size: 10, want: Pagination{Page: 1, TotalPages: 3, PageSize: 10, Count: 25}},
		{name: "exact multiple", total: 20, requested: 2, size: 10, want: Pagination{Page: 2, TotalPages: 2, PageSize: 10, Count: 20, Offset: 10}},
		{name: "default size", total: 11, requested: 2, size: 0, want: Pagination{Page: 2, TotalPages: 2, PageSize: DefaultPageSize, Count: 11, Offset: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Paginate(tt.total, tt.requested, tt.size))
		})
	}
}

func TestPaginate_bounds(t *testing.T) {
	for total := int64(0); total <= 60; total++ {
		for size := 1; size <= 12; size++ {
			for requested := -2; requested <= 70; requested++ {
				p := Paginate(total, requested, size)
				if p.Page < 1 || p.Page > p.TotalPages || p.TotalPages < 1 || p.Offset < 0 {
					t.Fatalf("Paginate(%d, %d, %d) = %+v out of bounds", total, requested, size, p)
				}
				if p.Offset > 0 && int64(p.Offset) >= total {
					t.Fatalf("Paginate(%d, %d, %d) = %+v points past the data", total, requested, size, p)
				}
			}
		}
	}
}

func TestPagination_Links(t *testing.T) {
	q := url.Values{"subject": {"CS"}}

	t.Run("single page", func(t *testing.T) {
		assert.Equal(t, Links{}, Paginate(3, 1, 10).Links("/courses", q))
	})

	t.Run("first of many", func(t *testing.T) {
		links := Paginate(25, 1, 10).Links("/courses", q)
		assert.Equal(t, "/courses?page=2&subject=CS", links.NextPage)
		assert.Equal(t, "/courses?page=3&subject=CS", links.LastPage)
		assert.Empty(t, links.PrevPage)
		assert.Empty(t, links.FirstPage)
	})

	t.Run("middle", func(t *testing.T) {
		links := Paginate(25, 2, 10).Links("/courses", nil)
		assert.Equal(t, Links{
			NextPage:  "/courses?page=3",
			LastPage:  "/courses?page=3",
			PrevPage:  "/courses?page=1",
			FirstPage: "/courses?page=1",
		}, links)
	})

	t.Run("links use the clamped page", func(t *testing.T) {
		links := Paginate(25, 42, 10).Links("/courses", url.Values{"page": {"42"}})
		assert.Empty(t, links.NextPage)
		assert.Equal(t, "/courses?page=2", links.PrevPage)
	})
}
