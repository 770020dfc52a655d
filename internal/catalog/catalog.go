package catalog

import (
	"cmp"
	"slices"
	"strings"
)

// Direction orders sorted results.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// SortKey extracts the value items are ordered by. Exactly one of Text or
// Number is set; a zero SortKey leaves the order unchanged.
type SortKey[T any] struct {
	Text   func(T) string
	Number func(T) float64
}

// ByText orders items by a case-insensitive string field.
func ByText[T any](fn func(T) string) SortKey[T] {
	return SortKey[T]{Text: fn}
}

// ByNumber orders items by a numeric field.
func ByNumber[T any](fn func(T) float64) SortKey[T] {
	return SortKey[T]{Number: fn}
}

func (k SortKey[T]) compare(a, b T) int {
	switch {
	case k.Number != nil:
		return cmp.Compare(k.Number(a), k.Number(b))
	case k.Text != nil:
		return strings.Compare(strings.ToLower(k.Text(a)), strings.ToLower(k.Text(b)))
	default:
		return 0
	}
}

// Spec describes a filter and sort over a slice of T.
type Spec[T any] struct {
	// Query is matched case-insensitively as a substring of any SearchFields
	// value. Blank matches everything.
	Query        string
	SearchFields []func(T) string
	// Predicates must all hold for an item to be kept.
	Predicates []func(T) bool
	Sort       SortKey[T]
	Direction  Direction
}

// Apply returns the items matching spec, sorted stably. items is not
// modified.
func Apply[T any](items []T, spec Spec[T]) []T {
	query := strings.ToLower(strings.TrimSpace(spec.Query))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !matchesQuery(item, query, spec.SearchFields) {
			continue
		}
		if !matchesAll(item, spec.Predicates) {
			continue
		}
		out = append(out, item)
	}

	if spec.Sort.Text == nil && spec.Sort.Number == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b T) int {
		c := spec.Sort.compare(a, b)
		if spec.Direction == Desc {
			return -c
		}
		return c
	})
	return out
}

func matchesQuery[T any](item T, query string, fields []func(T) string) bool {
	if query == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field(item)), query) {
			return true
		}
	}
	return false
}

func matchesAll[T any](item T, predicates []func(T) bool) bool {
	for _, p := range predicates {
		if p != nil && !p(item) {
			return false
		}
	}
	return true
}

// Page is one slice of a longer result.
type Page[T any] struct {
	Items      []T
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// HasNext reports whether a later page exists.
func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages }

// HasPrev reports whether an earlier page exists.
func (p Page[T]) HasPrev() bool { return p.Page > 1 }

// Paginate returns the 1-based page of items. Out of range pages are clamped.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if perPage <= 0 {
		perPage = 20
	}
	total := len(items)
	pages := (total + perPage - 1) / perPage
	if pages == 0 {
		pages = 1
	}
	page = max(1, min(page, pages))

	start := (page - 1) * perPage
	end := min(start+perPage, total)
	return Page[T]{
		Items:      slices.Clone(items[start:end]),
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: pages,
	}
}

// containsFold reports whether values holds want, ignoring case.
func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), want) {
			return true
		}
	}
	return false
}
