// Package batch implements a query-batching client over pooled database
// sessions. Callers enqueue read queries with result callbacks, then trigger
// a single Execute that dispatches every queued query concurrently, invokes
// each callback as its result arrives, and blocks until the whole batch has
// completed or failed.
package batch

import (
	"github.com/sathwikv/batchq/internal/database"
	"github.com/sathwikv/batchq/internal/errs"
)

// ShapeMode selects the transformation applied to raw query rows before the
// result is handed to a callback.
type ShapeMode int

const (
	// ShapeRow delivers the first matching row as a column→value map.
	ShapeRow ShapeMode = iota

	// ShapeColumn delivers a flat list of values: every row's columns
	// appended in row order. A query selecting a single column therefore
	// yields that column across all rows.
	ShapeColumn

	// ShapeKeyedRows delivers all rows as a map of maps, keyed by the
	// value of a designated column in each row.
	ShapeKeyedRows

	// ShapeRows delivers all rows as a list of row value lists.
	ShapeRows
)

func (m ShapeMode) String() string {
	switch m {
	case ShapeRow:
		return "row"
	case ShapeColumn:
		return "column"
	case ShapeKeyedRows:
		return "keyed_rows"
	case ShapeRows:
		return "rows"
	default:
		return "unknown"
	}
}

// Callback types, one per ShapeMode. The second argument is the session the
// query ran on, for callers that need direct driver access in the callback.
type (
	RowFunc       func(row map[string]any, conn database.Conn)
	ColumnFunc    func(values []any, conn database.Conn)
	KeyedRowsFunc func(rows map[string]map[string]any, conn database.Conn)
	RowsFunc      func(rows [][]any, conn database.Conn)
)

// allColumns marks a ShapeColumn descriptor with no column restriction.
const allColumns = -1

// Descriptor records one deferred query and its callback. It is immutable
// once queued and consumed exactly once, when the dispatcher fires it.
type Descriptor struct {
	SQL      string
	Mode     ShapeMode
	KeyField string // column the result map is keyed by; ShapeKeyedRows only
	Column   int    // column restriction for ShapeColumn; allColumns selects every column
	Args     []any

	onRow    RowFunc
	onColumn ColumnFunc
	onKeyed  KeyedRowsFunc
	onRows   RowsFunc
}

// validate reports usage errors before any query is dispatched.
func (d *Descriptor) validate() error {
	if d.SQL == "" {
		return errs.New(errs.ErrKindInvalidInput, "empty SQL statement")
	}

	switch d.Mode {
	case ShapeRow:
		if d.onRow == nil {
			return errs.New(errs.ErrKindInvalidInput, "row query queued without a callback")
		}
	case ShapeColumn:
		if d.onColumn == nil {
			return errs.New(errs.ErrKindInvalidInput, "column query queued without a callback")
		}
		if d.Column < allColumns {
			return errs.Newf(errs.ErrKindInvalidInput, "negative column index %d", d.Column)
		}
	case ShapeKeyedRows:
		if d.onKeyed == nil {
			return errs.New(errs.ErrKindInvalidInput, "keyed-rows query queued without a callback")
		}
		if d.KeyField == "" {
			return errs.New(errs.ErrKindInvalidInput, "keyed-rows query queued without a key field")
		}
	case ShapeRows:
		if d.onRows == nil {
			return errs.New(errs.ErrKindInvalidInput, "rows query queued without a callback")
		}
	default:
		return errs.Newf(errs.ErrKindInvalidInput, "unknown shape mode %d", d.Mode)
	}
	return nil
}

// deliver shapes the materialised result and invokes the callback.
// It is called at most once per descriptor.
func (d *Descriptor) deliver(grid *database.Grid, conn database.Conn) error {
	switch d.Mode {
	case ShapeRow:
		d.onRow(shapeRow(grid), conn)
	case ShapeColumn:
		values, err := shapeColumn(grid, d.Column)
		if err != nil {
			return err
		}
		d.onColumn(values, conn)
	case ShapeKeyedRows:
		rows, err := shapeKeyedRows(grid, d.KeyField)
		if err != nil {
			return err
		}
		d.onKeyed(rows, conn)
	case ShapeRows:
		d.onRows(shapeRows(grid), conn)
	}
	return nil
}
