// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/waffle/pantry/query"
)

// Page sizes used by the admin lists.
const (
	UserPageSize    = 10
	RequestPageSize = 20
	AuditPageSize   = 50
	RosterLimit     = 50
)

// ParsePage extracts the 1-based "page" query parameter.
// Returns 1 if not present or invalid.
func ParsePage(r *http.Request) int {
	s := query.Get(r, "page")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Window converts a 1-based page number into a store offset window.
func Window(page, pageSize int) repo.Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	return repo.Page{Offset: int64((page - 1) * pageSize), Limit: int64(pageSize)}
}

// Parse reads "page" from r and returns the matching window.
func Parse(r *http.Request, pageSize int) (int, repo.Page) {
	p := ParsePage(r)
	return p, Window(p, pageSize)
}

// Meta is the paging block returned alongside list results.
type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	Start      int   `json:"start"` // 1-based index of the first row shown, 0 if none
	End        int   `json:"end"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

// ComputeMeta describes page given the total row count and rows shown.
func ComputeMeta(page, pageSize int, total int64, shown int) Meta {
	if page < 1 {
		page = 1
	}
	m := Meta{Page: page, PageSize: pageSize, Total: total}
	if pageSize > 0 {
		m.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	if shown > 0 {
		m.Start = (page-1)*pageSize + 1
		m.End = m.Start + shown - 1
	}
	m.HasPrev = page > 1
	m.HasNext = int64(m.End) < total && shown > 0
	return m
}
