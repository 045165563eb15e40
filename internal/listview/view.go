// Package listview derives the visible page of a list screen from search text,
// categorical filters, a single sort column and fixed-size pagination.
package listview

import (
	"fmt"
	"sort"
	"strings"
)

// Direction of the active sort column.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Page sizes used by the list screens.
const (
	PageSizeSmall = 5
	PageSizeLarge = 7
)

// IsAll reports whether a filter value disables its filter.
func IsAll(value string) bool {
	return value == "" || strings.EqualFold(value, "all") || strings.EqualFold(value, "todos")
}

// ValidPageSize reports whether n is one of the supported page sizes.
func ValidPageSize(n int) bool {
	return n == PageSizeSmall || n == PageSizeLarge
}

// SortField extracts a sortable value. Number takes precedence over Text.
type SortField[T any] struct {
	Text   func(T) string
	Number func(T) float64
}

// Spec describes how a list screen searches, filters and sorts its items.
type Spec[T any] struct {
	Search          []func(T) string
	Filters         map[string]func(T) string
	Sorts           map[string]SortField[T]
	DefaultSort     string
	DefaultDir      Direction
	DefaultPageSize int
}

// Query is the state of a list screen.
type Query struct {
	Search   string            `json:"search"`
	Filters  map[string]string `json:"filters,omitempty"`
	SortKey  string            `json:"sort,omitempty"`
	SortDir  Direction         `json:"dir,omitempty"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// View is the derived page. When nothing matches, NoResults is set,
// TotalPages is 0 and Page stays 1, so a client renders the empty state from
// NoResults and never from Page.
type View[T any] struct {
	Items      []T       `json:"items"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
	TotalItems int       `json:"total_items"`
	NoResults  bool      `json:"no_results"`
	SortKey    string    `json:"sort,omitempty"`
	SortDir    Direction `json:"dir,omitempty"`
}

// Validate rejects sort keys and filters that s does not declare.
func (s *Spec[T]) Validate(q Query) error {
	if q.SortKey != "" {
		if _, ok := s.Sorts[q.SortKey]; !ok {
			return fmt.Errorf("unknown sort key %q", q.SortKey)
		}
	}
	if q.SortDir != "" && q.SortDir != Asc && q.SortDir != Desc {
		return fmt.Errorf("unknown sort direction %q", q.SortDir)
	}
	for key := range q.Filters {
		if _, ok := s.Filters[key]; !ok {
			return fmt.Errorf("unknown filter %q", key)
		}
	}
	if q.PageSize != 0 && !ValidPageSize(q.PageSize) {
		return fmt.Errorf("page size must be %d or %d", PageSizeSmall, PageSizeLarge)
	}
	return nil
}

// Derive computes the visible page. The input slice is never modified.
// Unknown sort keys and filters are ignored; use Validate to reject them.
func (s *Spec[T]) Derive(items []T, q Query) View[T] {
	matched := s.filter(items, q)

	sortKey, dir := q.SortKey, q.SortDir
	if sortKey == "" {
		sortKey, dir = s.DefaultSort, s.DefaultDir
	}
	if dir == "" {
		dir = Asc
	}
	if field, ok := s.Sorts[sortKey]; ok {
		sortItems(matched, field, dir)
	} else {
		sortKey, dir = "", ""
	}

	size := q.PageSize
	if !ValidPageSize(size) {
		size = s.DefaultPageSize
	}
	if size <= 0 {
		size = PageSizeLarge
	}

	total := len(matched)
	totalPages := (total + size - 1) / size
	page := q.Page
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	view := View[T]{
		Items:      []T{},
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
		TotalItems: total,
		NoResults:  total == 0,
		SortKey:    sortKey,
		SortDir:    dir,
	}
	if total == 0 {
		return view
	}

	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	view.Items = matched[start:end]
	return view
}

// Matching returns every item that passes search and filters, sorted like
// Derive would sort them, without pagination. Exports use it.
func (s *Spec[T]) Matching(items []T, q Query) []T {
	matched := s.filter(items, q)
	sortKey, dir := q.SortKey, q.SortDir
	if sortKey == "" {
		sortKey, dir = s.DefaultSort, s.DefaultDir
	}
	if dir == "" {
		dir = Asc
	}
	if field, ok := s.Sorts[sortKey]; ok {
		sortItems(matched, field, dir)
	}
	return matched
}

func (s *Spec[T]) filter(items []T, q Query) []T {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]T, 0, len(items))

	for _, item := range items {
		if needle != "" && !s.matchesSearch(item, needle) {
			continue
		}
		if !s.matchesFilters(item, q.Filters) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (s *Spec[T]) matchesSearch(item T, needle string) bool {
	for _, field := range s.Search {
		if strings.Contains(strings.ToLower(field(item)), needle) {
			return true
		}
	}
	return false
}

func (s *Spec[T]) matchesFilters(item T, filters map[string]string) bool {
	for key, want := range filters {
		if IsAll(want) {
			continue
		}
		get, ok := s.Filters[key]
		if !ok {
			continue
		}
		if !strings.EqualFold(get(item), want) {
			return false
		}
	}
	return true
}

func sortItems[T any](items []T, field SortField[T], dir Direction) {
	less := func(a, b T) bool {
		if field.Number != nil {
			return field.Number(a) < field.Number(b)
		}
		return strings.ToLower(field.Text(a)) < strings.ToLower(field.Text(b))
	}
	sort.SliceStable(items, func(i, j int) bool {
		if dir == Desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}
