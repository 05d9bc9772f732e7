package core

import (
	"net/url"
	"strconv"
)

const DefaultPageSize = 10

// Pagination describes one bounded window of a result set.
type Pagination struct {
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
	PageSize   int   `json:"pageSize"`
	Count      int64 `json:"count"`
	Offset     int   `json:"-"`
}

// Links holds HATEOAS links to the pages surrounding the current one.
type Links struct {
	NextPage  string `json:"nextPage,omitempty"`
	LastPage  string `json:"lastPage,omitempty"`
	PrevPage  string `json:"prevPage,omitempty"`
	FirstPage string `json:"firstPage,omitempty"`
}

// Paginate clamps the requested page into [1, TotalPages] and computes its offset.
// TotalPages is never less than 1, even for an empty result set.
func Paginate(total int64, requested, size int) Pagination {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	if totalPages < 1 {
		totalPages = 1
	}

	page := requested
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	return Pagination{
		Page:       page,
		TotalPages: totalPages,
		PageSize:   size,
		Count:      total,
		Offset:     (page - 1) * size,
	}
}

// Links builds neighbour links for path from the resolved page; other query params are kept.
func (p Pagination) Links(path string, query url.Values) Links {
	link := func(page int) string {
		q := make(url.Values, len(query)+1)
		for k, v := range query {
			q[k] = v
		}
		q.Set("page", strconv.Itoa(page))
		return path + "?" + q.Encode()
	}

	var links Links
	if p.Page < p.TotalPages {
		links.NextPage = link(p.Page + 1)
		links.LastPage = link(p.TotalPages)
	}
	if p.Page > 1 {
		links.PrevPage = link(p.Page - 1)
		links.FirstPage = link(1)
	}
	return links
}
