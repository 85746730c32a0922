package query

import (
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/yeremiapane/restaurant-console/normalizer"
	"github.com/yeremiapane/restaurant-console/utils"
)

// Schema tells the engine how to read one record type.
type Schema[T any] struct {
	// SearchFields returns the texts free-text search looks at.
	SearchFields func(T) []string
	// Filters maps a filter key to the record value it is compared with.
	Filters map[string]func(T) string
	// Timestamp returns the value the chronological sort orders by.
	Timestamp func(T) string
}

type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// MapPage converts the items of p, keeping its pagination metadata.
func MapPage[T, R any](p Page[T], fn func(T) R) Page[R] {
	return Page[R]{
		Items:      lo.Map(p.Items, func(item T, _ int) R { return fn(item) }),
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
	}
}

// Apply searches, filters, sorts and paginates records. It never modifies records and can be
// called concurrently on the same input.
func Apply[T any](records []T, schema Schema[T], st State) Page[T] {
	matched := Search(records, schema, st.SearchTerm)
	matched = Filter(matched, schema, st.Filters)
	matched = SortByTime(matched, schema, st.Sort)
	return Paginate(matched, st.Page, st.pageSize())
}

// Search keeps records where any search field contains term, case-insensitively.
func Search[T any](records []T, schema Schema[T], term string) []T {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || schema.SearchFields == nil {
		return slices.Clone(records)
	}
	return lo.Filter(records, func(r T, _ int) bool {
		return lo.SomeBy(schema.SearchFields(r), func(field string) bool {
			return strings.Contains(strings.ToLower(field), term)
		})
	})
}

// Filter keeps records whose every filtered value matches exactly after token normalization.
// Unknown filter keys are ignored.
func Filter[T any](records []T, schema Schema[T], filters map[string]string) []T {
	active := lo.PickBy(filters, func(key, value string) bool {
		_, known := schema.Filters[key]
		return known && strings.TrimSpace(value) != ""
	})
	if len(active) == 0 {
		return slices.Clone(records)
	}

	want := lo.MapValues(active, func(value, _ string) string {
		return normalizer.NormalizeToken(value)
	})
	return lo.Filter(records, func(r T, _ int) bool {
		for key, value := range want {
			if normalizer.NormalizeToken(schema.Filters[key](r)) != value {
				return false
			}
		}
		return true
	})
}

// SortByTime orders records chronologically. Unparsable timestamps count as epoch 0 and ties
// keep their input order.
func SortByTime[T any](records []T, schema Schema[T], order SortOrder) []T {
	out := slices.Clone(records)
	if schema.Timestamp == nil {
		return out
	}

	keys := lo.Map(out, func(r T, _ int) int64 {
		return utils.TimestampMillis(schema.Timestamp(r))
	})
	idx := lo.Range(len(out))
	slices.SortStableFunc(idx, func(a, b int) int {
		ka, kb := keys[a], keys[b]
		if order == Descending {
			ka, kb = kb, ka
		}
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})
	return lo.Map(idx, func(i int, _ int) T { return out[i] })
}

// TotalPages is never less than 1.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// ClampPage forces page into [1, TotalPages(total, pageSize)].
func ClampPage(page, total, pageSize int) int {
	last := TotalPages(total, pageSize)
	if page < 1 {
		return 1
	}
	if page > last {
		return last
	}
	return page
}

func Paginate[T any](records []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(records)
	page = ClampPage(page, total, pageSize)

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	return Page[T]{
		Items:      slices.Clone(records[start:end]),
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: TotalPages(total, pageSize),
	}
}
