// Package tablesort orders table rows by a single user-selected column.
package tablesort

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

type Kind int

const (
	Text Kind = iota
	Number
	// Date columns keep rows with no value at the bottom in both directions.
	Date
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// State is the active sort column and direction. The zero value means unsorted.
type State struct {
	Column    string
	Direction Direction
}

// Toggle returns the state after the user clicks column: a new column sorts
// ascending, the active column flips direction.
func (s State) Toggle(column string) State {
	if s.Column != column {
		return State{Column: column, Direction: Asc}
	}
	if s.Direction == Asc {
		return State{Column: column, Direction: Desc}
	}
	return State{Column: column, Direction: Asc}
}

// Parse builds a state from query parameters, dropping unknown directions.
func Parse(column, direction string) State {
	column = strings.TrimSpace(column)
	if column == "" {
		return State{}
	}
	d := Direction(strings.ToLower(direction))
	if d != Desc {
		d = Asc
	}
	return State{Column: column, Direction: d}
}

// Column describes how to read one sortable field of T. Only the accessor
// matching Kind is used.
type Column[T any] struct {
	Key    string
	Label  string
	Kind   Kind
	Text   func(T) string
	Number func(T) float64
	Date   func(T) *time.Time
}

func (c Column[T]) compare(a, b T, dir Direction) int {
	var n int
	switch c.Kind {
	case Number:
		n = cmp.Compare(c.Number(a), c.Number(b))
	case Date:
		da, db := c.Date(a), c.Date(b)
		switch {
		case da == nil && db == nil:
			return 0
		case da == nil:
			return 1
		case db == nil:
			return -1
		}
		n = da.Compare(*db)
	default:
		n = strings.Compare(c.Text(a), c.Text(b))
	}
	if dir == Desc {
		return -n
	}
	return n
}

// Sort returns a stably sorted copy of items. Unknown columns and the zero
// state return the items in their original order.
func Sort[T any](items []T, columns []Column[T], st State) []T {
	out := slices.Clone(items)
	idx := slices.IndexFunc(columns, func(c Column[T]) bool { return c.Key == st.Column })
	if idx < 0 {
		return out
	}
	col := columns[idx]
	slices.SortStableFunc(out, func(a, b T) int {
		return col.compare(a, b, st.Direction)
	})
	return out
}
