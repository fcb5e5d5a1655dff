package models

import (
	"strings"

	dErrors "voterdata/pkg/domain-errors"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Sortable fields accepted by list queries.
const (
	SortCreatedAt = "createdAt"
	SortUpdatedAt = "updatedAt"
	SortName      = "name"
	SortEPICNo    = "epic_no"
	SortState     = "state"
	SortDistrict  = "district"
)

var sortable = map[string]bool{
	SortCreatedAt: true,
	SortUpdatedAt: true,
	SortName:      true,
	SortEPICNo:    true,
	SortState:     true,
	SortDistrict:  true,
}

// ListFilter holds exact-match filters. Empty fields do not filter.
type ListFilter struct {
	State      string
	District   string
	Gender     string
	DataSource DataSource
}

// ListOptions parameterises a paginated listing of non-disabled records.
type ListOptions struct {
	Page     int
	Limit    int
	SortBy   string
	SortDesc bool
	Search   string
	Filter   ListFilter
}

// NewListOptions validates raw query values and applies defaults.
// An empty sortOrder means descending.
func NewListOptions(page, limit int, sortBy, sortOrder, search string, filter ListFilter) (ListOptions, error) {
	opts := ListOptions{
		Page:   page,
		Limit:  limit,
		SortBy: strings.TrimSpace(sortBy),
		Search: strings.TrimSpace(search),
		Filter: filter,
	}
	if opts.Page < 1 {
		opts.Page = DefaultPage
	}
	if opts.Limit < 1 {
		opts.Limit = DefaultLimit
	}
	if opts.Limit > MaxLimit {
		opts.Limit = MaxLimit
	}
	if opts.SortBy == "" {
		opts.SortBy = SortCreatedAt
	}
	if !sortable[opts.SortBy] {
		return ListOptions{}, dErrors.New(dErrors.CodeBadRequest, "unsupported sortBy: "+opts.SortBy)
	}
	switch strings.ToLower(strings.TrimSpace(sortOrder)) {
	case "", "desc":
		opts.SortDesc = true
	case "asc":
		opts.SortDesc = false
	default:
		return ListOptions{}, dErrors.New(dErrors.CodeBadRequest, "sortOrder must be asc or desc")
	}
	if filter.DataSource != "" && !filter.DataSource.IsValid() {
		return ListOptions{}, dErrors.New(dErrors.CodeBadRequest, "unknown dataSource filter")
	}
	return opts, nil
}

// Offset is the number of records skipped before this page.
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Page is one page of a listing.
type Page struct {
	Data       []*VoterRecord `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// NewPage assembles a page from the records of one window and the total count.
func NewPage(records []*VoterRecord, total int, opts ListOptions) *Page {
	if records == nil {
		records = []*VoterRecord{}
	}
	totalPages := 0
	if opts.Limit > 0 {
		totalPages = (total + opts.Limit - 1) / opts.Limit
	}
	return &Page{
		Data: records,
		Pagination: Pagination{
			Total:      total,
			Page:       opts.Page,
			Limit:      opts.Limit,
			TotalPages: totalPages,
		},
	}
}
