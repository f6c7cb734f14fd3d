package shared

import (
	"net/http"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 200
)

// ListFilters carries the standard list query knobs shared by the
// master data packages.
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string
}

// FiltersFromQuery reads pagination, search and sorting from a request.
func FiltersFromQuery(r *http.Request) ListFilters {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = DefaultPage
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return ListFilters{
		Page:    page,
		Limit:   limit,
		Search:  q.Get("search"),
		SortBy:  q.Get("sort"),
		SortDir: q.Get("dir"),
	}
}

// Offset converts page and limit into a SQL offset.
func (f ListFilters) Offset() int {
	offset := (f.Page - 1) * f.Limit
	if offset < 0 {
		return 0
	}
	return offset
}

// OrderBy picks a sort column from the allowed set, falling back to the
// first entry. Column names never come from user input directly.
func (f ListFilters) OrderBy(allowed ...string) string {
	col := allowed[0]
	for _, c := range allowed {
		if f.SortBy == c {
			col = c
			break
		}
	}
	dir := "ASC"
	if f.SortDir == "desc" {
		dir = "DESC"
	}
	return col + " " + dir
}
