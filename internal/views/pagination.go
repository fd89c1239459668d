package views

import (
	"strconv"

	"github.com/clipstream/backend/internal/apierr"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// PageParams is a validated pagination request. Page is 1-based.
type PageParams struct {
	Page  int
	Limit int
}

// ParsePageParams coerces the raw query values into pagination parameters.
// Empty values take the defaults; non-numeric or non-positive values are
// rejected rather than silently defaulted.
func ParsePageParams(page, limit string) (PageParams, error) {
	params := PageParams{Page: defaultPage, Limit: defaultLimit}

	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return PageParams{}, apierr.New(apierr.KindInvalidArgument, "page must be a positive integer")
		}
		params.Page = n
	}

	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			return PageParams{}, apierr.New(apierr.KindInvalidArgument, "limit must be a positive integer")
		}
		params.Limit = n
	}

	return params, nil
}

// Skip returns the number of items preceding the requested page.
func (p PageParams) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// Page is the contract response for every paginated view.
type Page[T any] struct {
	Items       []T   `json:"items"`
	TotalCount  int64 `json:"totalCount"`
	PageCount   int64 `json:"pageCount"`
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

// NewPage assembles the pagination envelope around an already-sliced item set.
func NewPage[T any](items []T, total int64, params PageParams) Page[T] {
	if items == nil {
		items = []T{}
	}

	pageCount := total / int64(params.Limit)
	if total%int64(params.Limit) != 0 {
		pageCount++
	}

	return Page[T]{
		Items:       items,
		TotalCount:  total,
		PageCount:   pageCount,
		CurrentPage: params.Page,
		Limit:       params.Limit,
		HasNext:     int64(params.Page)*int64(params.Limit) < total,
		HasPrev:     params.Page > 1,
	}
}

// slicePage cuts one page out of a fully materialized item set.
func slicePage[T any](items []T, params PageParams) []T {
	start := params.Skip()
	if start >= int64(len(items)) {
		return nil
	}
	end := start + int64(params.Limit)
	if end > int64(len(items)) {
		end = int64(len(items))
	}
	return items[start:end]
}
