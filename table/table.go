// Package table implements a generic sort/filter engine for tabular views.
//
// The engine is a pure function of its inputs: rows, a column descriptor
// set, optional per-column free-text filters and an optional sort key.
// Columns declare their capabilities (sortable, filterable, custom
// comparator) in a descriptor record, not via subclassing, so heterogeneous
// row types share one engine.
package table

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is the sort direction of a column.
type Direction int

const (
	// Unsorted means no sort is applied.
	Unsorted Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return "unsorted"
	}
}

// Column describes one column of a view: how to read a cell from a row and
// what the engine is allowed to do with it.
type Column[T any] struct {
	// Key identifies the column in filters and sort keys.
	Key string
	// Title is the display header. The engine ignores it.
	Title string
	// Sortable and Filterable gate the engine: a sort key or filter naming
	// a flagged-off column is ignored, even if the caller supplies one.
	Sortable   bool
	Filterable bool
	// Value returns the cell's string form for filtering and default
	// comparison.
	Value func(row T) string
	// Compare, when set, overrides the default comparison. It receives the
	// raw rows and returns negative/zero/positive.
	Compare func(a, b T) int
}

// Sort is a (column, direction) sort key.
type Sort struct {
	Key       string
	Direction Direction
}

// Toggle advances the three-state sort cycle for the given column:
// unsorted -> ascending -> descending -> unsorted. Toggling a different
// column always resets to ascending on that column.
func (s Sort) Toggle(key string) Sort {
	if s.Key != key || s.Direction == Unsorted {
		return Sort{Key: key, Direction: Ascending}
	}
	if s.Direction == Ascending {
		return Sort{Key: key, Direction: Descending}
	}
	return Sort{}
}

// Engine sorts and filters rows of type T. It carries only the target
// locale for text collation; every Query call is stateless.
type Engine[T any] struct {
	locale language.Tag
}

// NewEngine returns an engine collating text in the given locale. The
// locale must match the one used for display, not ordinal byte order.
func NewEngine[T any](locale language.Tag) *Engine[T] {
	return &Engine[T]{locale: locale}
}

// Query returns the rows filtered then sorted.
//
// Filtering keeps a row iff, for every filterable column with a non-empty
// filter string, the trimmed case-insensitive cell contains the trimmed
// case-insensitive filter (substring match). Filters on different columns
// compose with AND. Sorting applies only when sortKey names a sortable
// column with a non-Unsorted direction; it is stable, so equal keys keep
// their input order.
func (e *Engine[T]) Query(rows []T, columns []Column[T], filters map[string]string, sortKey *Sort) []T {
	byKey := make(map[string]*Column[T], len(columns))
	for i := range columns {
		byKey[columns[i].Key] = &columns[i]
	}

	out := make([]T, 0, len(rows))
	out = append(out, rows...)

	for key, filter := range filters {
		col, ok := byKey[key]
		if !ok || !col.Filterable || col.Value == nil {
			continue
		}
		needle := strings.ToLower(strings.TrimSpace(filter))
		if needle == "" {
			continue
		}
		kept := out[:0]
		for _, row := range out {
			cell := strings.ToLower(strings.TrimSpace(col.Value(row)))
			if strings.Contains(cell, needle) {
				kept = append(kept, row)
			}
		}
		out = kept
	}

	if sortKey == nil || sortKey.Direction == Unsorted {
		return out
	}
	col, ok := byKey[sortKey.Key]
	if !ok || !col.Sortable {
		return out
	}

	cmp := col.Compare
	if cmp == nil {
		if col.Value == nil {
			return out
		}
		cmp = e.defaultComparator(out, col)
	}
	// Descending is the negation of the ascending comparison, not a
	// separate code path.
	sign := 1
	if sortKey.Direction == Descending {
		sign = -1
	}
	sort.SliceStable(out, func(i, j int) bool {
		return sign*cmp(out[i], out[j]) < 0
	})
	return out
}

// defaultComparator picks the comparison for a column without a custom
// comparator. When every cell of the column coerces to a number the column
// compares numerically; one non-numeric cell makes the whole column fall
// back to locale-aware collation, so the ordering stays a total order.
func (e *Engine[T]) defaultComparator(rows []T, col *Column[T]) func(a, b T) int {
	numeric := true
	for _, row := range rows {
		if _, err := strconv.ParseFloat(strings.TrimSpace(col.Value(row)), 64); err != nil {
			numeric = false
			break
		}
	}
	if numeric {
		return func(a, b T) int {
			fa, _ := strconv.ParseFloat(strings.TrimSpace(col.Value(a)), 64)
			fb, _ := strconv.ParseFloat(strings.TrimSpace(col.Value(b)), 64)
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	collator := collate.New(e.locale)
	return func(a, b T) int { return collator.CompareString(col.Value(a), col.Value(b)) }
}
