// Package autofilter implements spreadsheet style column filters over an
// in-memory row snapshot.
//
// Each column may carry a set of allowed values. A row is visible when its
// value for every filtered column is allowed. The candidate values offered
// for a column are computed from the rows passing every other filter, so
// filters narrow each other the way spreadsheet AutoFilter does.
package autofilter

// Projector returns the string value of column for row.
// ok is false when the row has no such column.
type Projector[R any] func(row R, column string) (value string, ok bool)

// Engine holds a row snapshot and the active column filters.
// It is not safe for concurrent use.
type Engine[R any] struct {
	rows     []R
	project  Projector[R]
	filters  map[string]Set
	distinct map[string]Set // per-column values over the whole snapshot
}

// New creates an engine over a snapshot of rows
func New[R any](rows []R, project Projector[R]) *Engine[R] {
	e := &Engine[R]{project: project}
	e.Reset(rows)
	return e
}

// Reset replaces the snapshot and drops every filter
func (e *Engine[R]) Reset(rows []R) {
	e.rows = append([]R(nil), rows...)
	e.filters = make(map[string]Set)
	e.distinct = make(map[string]Set)
}

// Rows returns the full snapshot
func (e *Engine[R]) Rows() []R {
	return e.rows
}

// AvailableValues returns the distinct values of column among rows that pass
// every active filter except the one on column itself.
// A column no row has yields an empty set.
func (e *Engine[R]) AvailableValues(column string) Set {
	others := e.otherFilters(column)
	if len(others) == 0 {
		return e.distinctValues(column).Clone()
	}

	values := NewSet()
	for _, row := range e.rows {
		if !e.matches(row, others) {
			continue
		}
		if v, ok := e.project(row, column); ok {
			values.Add(v)
		}
	}
	return values
}

// distinctValues returns the cached values of column over the whole snapshot
func (e *Engine[R]) distinctValues(column string) Set {
	if s, ok := e.distinct[column]; ok {
		return s
	}
	s := NewSet()
	for _, row := range e.rows {
		if v, ok := e.project(row, column); ok {
			s.Add(v)
		}
	}
	e.distinct[column] = s
	return s
}

// ApplyFilter sets the allowed values for column.
// Values the column never takes are dropped from selected. nil removes the
// filter, and so does a selection left empty or one covering every value
// currently available for the column.
func (e *Engine[R]) ApplyFilter(column string, selected Set) {
	if selected == nil {
		delete(e.filters, column)
		return
	}

	kept := selected.Intersect(e.distinctValues(column))
	if kept.Len() == 0 || kept.Covers(e.AvailableValues(column)) {
		delete(e.filters, column)
		return
	}
	e.filters[column] = kept
}

// ClearFilter removes the filter on column
func (e *Engine[R]) ClearFilter(column string) {
	e.ApplyFilter(column, nil)
}

// ClearAll removes every filter
func (e *Engine[R]) ClearAll() {
	e.filters = make(map[string]Set)
}

// IsFiltered reports whether column has an active filter
func (e *Engine[R]) IsFiltered(column string) bool {
	_, ok := e.filters[column]
	return ok
}

// Filter returns a copy of the allowed values for column, or nil
func (e *Engine[R]) Filter(column string) Set {
	if s, ok := e.filters[column]; ok {
		return s.Clone()
	}
	return nil
}

// ActiveFilters returns a copy of every active filter
func (e *Engine[R]) ActiveFilters() map[string]Set {
	out := make(map[string]Set, len(e.filters))
	for col, s := range e.filters {
		out[col] = s.Clone()
	}
	return out
}

// VisibleRows returns the rows passing every active filter in snapshot order
func (e *Engine[R]) VisibleRows() []R {
	if len(e.filters) == 0 {
		return append([]R(nil), e.rows...)
	}

	var visible []R
	for _, row := range e.rows {
		if e.matches(row, e.filters) {
			visible = append(visible, row)
		}
	}
	return visible
}

func (e *Engine[R]) otherFilters(column string) map[string]Set {
	if len(e.filters) == 0 {
		return nil
	}
	if _, own := e.filters[column]; own && len(e.filters) == 1 {
		return nil
	}

	others := make(map[string]Set, len(e.filters))
	for col, s := range e.filters {
		if col != column {
			others[col] = s
		}
	}
	return others
}

// matches reports whether row passes every filter in filters.
// A row lacking a filtered column never matches.
func (e *Engine[R]) matches(row R, filters map[string]Set) bool {
	for col, allowed := range filters {
		v, ok := e.project(row, col)
		if !ok || !allowed.Has(v) {
			return false
		}
	}
	return true
}
