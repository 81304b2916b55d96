package database

import "github.com/sathwikv/batchq/internal/errs"

// Grid is a fully materialised result set: column names plus every row's
// values in select-list order. All result shaping in the batch layer is
// derived from a Grid, so each query is scanned exactly once.
type Grid struct {
	Columns []string
	Rows    [][]any
}

// ColumnIndex returns the position of the named column, or -1 when the
// result set has no such column.
func (g *Grid) ColumnIndex(name string) int {
	for i, c := range g.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ReadGrid drains the result set into a Grid, with each value in the
// Go-native representation chosen by the driver.
//
// The Rows slice is always non-nil (empty on zero rows).
// ReadGrid always closes rows — callers do not need to call Close().
func ReadGrid(rows Rows) (*Grid, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to read column names", err)
	}

	grid := &Grid{
		Columns: columns,
		Rows:    make([][]any, 0),
	}

	for rows.Next() {
		// Allocate scan targets as *any so the driver can write any type.
		dest := make([]any, len(columns))
		destPtrs := make([]any, len(columns))
		for i := range dest {
			destPtrs[i] = &dest[i]
		}

		if err := rows.Scan(destPtrs...); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan row", err)
		}

		grid.Rows = append(grid.Rows, dest)
	}

	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error during row iteration", err)
	}

	return grid, nil
}
