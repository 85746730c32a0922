package query

import (
	"strings"
)

const DefaultPageSize = 100

type SortOrder int

const (
	// Descending (newest first) is the zero value and the default.
	Descending SortOrder = iota
	Ascending
)

// ParseSortOrder reads "asc"/"ascending"/"oldest"; anything else is Descending.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "oldest":
		return Ascending
	}
	return Descending
}

func (o SortOrder) String() string {
	if o == Ascending {
		return "asc"
	}
	return "desc"
}

// State is the UI-owned query over one record set. It is a value: every With* method returns a
// modified copy, and any change other than the page resets Page to 1.
type State struct {
	SearchTerm string
	Sort       SortOrder
	Filters    map[string]string
	Page       int
	PageSize   int
}

func NewState() State {
	return State{Page: 1, PageSize: DefaultPageSize}
}

func (s State) WithSearch(term string) State {
	s.SearchTerm = term
	s.Page = 1
	return s
}

func (s State) WithSort(order SortOrder) State {
	s.Sort = order
	s.Page = 1
	return s
}

func (s State) ToggleSort() State {
	if s.Sort == Ascending {
		return s.WithSort(Descending)
	}
	return s.WithSort(Ascending)
}

// WithFilter sets a categorical filter; an empty value removes it.
func (s State) WithFilter(key, value string) State {
	filters := make(map[string]string, len(s.Filters)+1)
	for k, v := range s.Filters {
		filters[k] = v
	}
	if strings.TrimSpace(value) == "" {
		delete(filters, key)
	} else {
		filters[key] = value
	}
	s.Filters = filters
	s.Page = 1
	return s
}

func (s State) WithPage(page int) State {
	s.Page = page
	return s
}

func (s State) pageSize() int {
	if s.PageSize <= 0 {
		return DefaultPageSize
	}
	return s.PageSize
}
