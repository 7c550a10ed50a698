package models

import (
	"strings"

	dErrors "orgatlas/pkg/domain-errors"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 500
	DefaultSortBy   = "id"
)

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// Page selects a zero-based page and an ordering.
type Page struct {
	Page      int
	Size      int
	SortBy    string
	Direction SortDirection
}

// Normalize fills defaults and checks SortBy against the sortable fields of
// the entity being listed.
func (p Page) Normalize(sortable []string) (Page, error) {
	if p.Page < 0 {
		return p, dErrors.New(dErrors.CodeBadRequest, "page must not be negative")
	}
	if p.Size == 0 {
		p.Size = DefaultPageSize
	}
	if p.Size < 0 || p.Size > MaxPageSize {
		return p, dErrors.Newf(dErrors.CodeBadRequest, "size must be between 1 and %d", MaxPageSize)
	}
	if p.SortBy == "" {
		p.SortBy = DefaultSortBy
	}
	known := false
	for _, f := range sortable {
		if f == p.SortBy {
			known = true
			break
		}
	}
	if !known {
		return p, dErrors.Newf(dErrors.CodeBadRequest, "cannot sort by %q", p.SortBy)
	}
	switch SortDirection(strings.ToUpper(string(p.Direction))) {
	case "", SortAsc:
		p.Direction = SortAsc
	case SortDesc:
		p.Direction = SortDesc
	default:
		return p, dErrors.Newf(dErrors.CodeBadRequest, "unknown sort direction %q", string(p.Direction))
	}
	return p, nil
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int { return p.Page * p.Size }

// PageResult is one page of a listing plus the total match count.
type PageResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}

// Sortable fields per entity. Names are the JSON field names.
var (
	LocationSortFields      = []string{"id", "x", "y", "z", "name"}
	CoordinatesSortFields   = []string{"id", "x", "y"}
	AddressSortFields       = []string{"id", "zip_code"}
	OrganizationSortFields  = []string{"id", "name", "full_name", "type", "annual_turnover", "employees_count", "rating", "creation_date"}
	ImportHistorySortFields = []string{"id", "creation_date"}
)

// Filters use case-insensitive substring matching. Nil fields match all.
type LocationFilter struct {
	NameContains *string
}

type AddressFilter struct {
	ZipCodeContains *string
}

type OrganizationFilter struct {
	NameContains     *string
	FullNameContains *string
}

// ContainsFold reports whether needle occurs in s ignoring case. A nil
// needle matches everything; a nil s matches nothing else.
func ContainsFold(s *string, needle *string) bool {
	if needle == nil {
		return true
	}
	if s == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*s), strings.ToLower(*needle))
}
