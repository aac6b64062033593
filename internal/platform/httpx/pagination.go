package httpx

import (
	"math"
	"net/http"
	"strconv"
)

// DefaultPerPage applies when a listing gets no perPage parameter.
const DefaultPerPage = 20

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes pagination metadata. Out-of-range inputs fall back
// to page 1 and DefaultPerPage.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// PaginationFromQuery reads ?page= and ?perPage=, capping perPage at max.
func PaginationFromQuery(r *http.Request, total, max int) Pagination {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
	if max > 0 && perPage > max {
		perPage = max
	}
	return NewPagination(page, perPage, total)
}

// Bounds returns the slice window [start, end) of the current page. Pages
// past the end, however large, yield an empty window at Total.
func (p Pagination) Bounds() (int, int) {
	if p.Page <= 0 || p.PerPage <= 0 || p.Total <= 0 {
		return 0, 0
	}
	if p.Page-1 > p.Total/p.PerPage {
		return p.Total, p.Total
	}
	start := min((p.Page-1)*p.PerPage, p.Total)
	end := p.Total
	if p.PerPage < p.Total-start {
		end = start + p.PerPage
	}
	return start, end
}
