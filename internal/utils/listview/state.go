// Package listview models the search, sort, filter and paging state of a list screen as
// an immutable value. Every reducer returns a new State and leaves its receiver untouched.
package listview

import (
	"sort"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// State is the view state of one list.
type State struct {
	Search   string
	SortBy   string
	SortDesc bool
	Page     int
	PageSize int
	Filters  map[string]string
}

// New returns the initial state of a list sorted by sortBy.
func New(sortBy string) State {
	return State{SortBy: sortBy, Page: 1, PageSize: DefaultPageSize}
}

// WithSearch sets the search term and goes back to the first page.
func (s State) WithSearch(term string) State {
	next := s.clone()
	next.Search = strings.TrimSpace(term)
	next.Page = 1
	return next
}

// ToggleSort sorts by field. Sorting again by the current field flips the direction;
// a new field starts ascending. The page is reset.
func (s State) ToggleSort(field string) State {
	next := s.clone()
	if next.SortBy == field {
		next.SortDesc = !next.SortDesc
	} else {
		next.SortBy = field
		next.SortDesc = false
	}
	next.Page = 1
	return next
}

// WithSort sets field and direction explicitly.
func (s State) WithSort(field string, desc bool) State {
	next := s.clone()
	next.SortBy = field
	next.SortDesc = desc
	next.Page = 1
	return next
}

// WithPage moves to page, never below 1.
func (s State) WithPage(page int) State {
	next := s.clone()
	if page < 1 {
		page = 1
	}
	next.Page = page
	return next
}

// WithPageSize changes the page size, clamped to [1, MaxPageSize], and resets the page.
func (s State) WithPageSize(size int) State {
	next := s.clone()
	switch {
	case size < 1:
		size = 1
	case size > MaxPageSize:
		size = MaxPageSize
	}
	next.PageSize = size
	next.Page = 1
	return next
}

// WithFilter sets or, for an empty value, clears a filter and resets the page.
func (s State) WithFilter(key, value string) State {
	next := s.clone()
	if value == "" {
		delete(next.Filters, key)
	} else {
		if next.Filters == nil {
			next.Filters = make(map[string]string)
		}
		next.Filters[key] = value
	}
	next.Page = 1
	return next
}

// Filter returns the value of a filter, or "".
func (s State) Filter(key string) string {
	return s.Filters[key]
}

// Normalize replaces an unknown sort field by fallback and fixes out-of-range paging.
func (s State) Normalize(allowedSort []string, fallback string) State {
	next := s.clone()
	if !contains(allowedSort, next.SortBy) {
		next.SortBy = fallback
		next.SortDesc = false
	}
	if next.Page < 1 {
		next.Page = 1
	}
	if next.PageSize < 1 {
		next.PageSize = DefaultPageSize
	}
	if next.PageSize > MaxPageSize {
		next.PageSize = MaxPageSize
	}
	return next
}

// Limit is the number of rows of one page.
func (s State) Limit() int {
	return s.PageSize
}

// Offset is the number of rows before the current page.
func (s State) Offset() int {
	return (s.Page - 1) * s.PageSize
}

// FilterKeys returns the filter keys in a stable order.
func (s State) FilterKeys() []string {
	keys := make([]string, 0, len(s.Filters))
	for k := range s.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s State) clone() State {
	next := s
	if s.Filters != nil {
		next.Filters = make(map[string]string, len(s.Filters))
		for k, v := range s.Filters {
			next.Filters[k] = v
		}
	}
	return next
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
