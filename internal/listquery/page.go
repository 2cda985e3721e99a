package listquery

import (
	"strconv"
	"strings"

	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

// Pagination defaults. Malformed input is clamped, never rejected, with the
// single exception of pages so deep that the offset cannot be represented.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MaxOffset    = 1 << 30
)

// PageRequest is a validated page selection; Page and Limit are always >= 1.
type PageRequest struct {
	Page  int
	Limit int
}

// Limits configures the clamping policy.
type Limits struct {
	Default int
	Max     int
}

func (l Limits) normalised() Limits {
	if l.Default <= 0 {
		l.Default = DefaultLimit
	}
	if l.Max < l.Default {
		l.Max = MaxLimit
		if l.Max < l.Default {
			l.Max = l.Default
		}
	}
	return l
}

// ParsePageRequest applies the default limits.
func ParsePageRequest(page, limit string) (PageRequest, error) {
	return Limits{}.Parse(page, limit)
}

// Parse clamps raw page/limit strings: missing, non-numeric or < 1 values
// fall back to the defaults and limits above Max are reduced to Max.
func (l Limits) Parse(page, limit string) (PageRequest, error) {
	l = l.normalised()
	req := PageRequest{Page: DefaultPage, Limit: l.Default}
	if p, err := strconv.Atoi(strings.TrimSpace(page)); err == nil && p >= 1 {
		req.Page = p
	}
	if n, err := strconv.Atoi(strings.TrimSpace(limit)); err == nil && n >= 1 {
		req.Limit = n
	}
	if req.Limit > l.Max {
		req.Limit = l.Max
	}
	if req.Page-1 > MaxOffset/req.Limit {
		return PageRequest{}, appErrors.Clone(appErrors.ErrInvalidPagination, "page is out of range")
	}
	return req, nil
}

// Offset is the index of the first record on the page.
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

// Pagination is the metadata returned with every page.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// TotalPages is ceil(total/limit), 0 for an empty set.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// NewPagination echoes the requested page even when it lies past the last page.
func NewPagination(req PageRequest, total int) Pagination {
	return Pagination{
		CurrentPage:  req.Page,
		TotalPages:   TotalPages(total, req.Limit),
		TotalItems:   total,
		ItemsPerPage: req.Limit,
	}
}

// PageLen is the number of items the page holds for the given total.
func PageLen(req PageRequest, total int) int {
	remaining := total - req.Offset()
	if remaining <= 0 {
		return 0
	}
	if remaining > req.Limit {
		return req.Limit
	}
	return remaining
}
