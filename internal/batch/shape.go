package batch

import (
	"fmt"

	"github.com/sathwikv/batchq/internal/database"
	"github.com/sathwikv/batchq/internal/errs"
)

// shapeRow returns the first row as a column→value map,
// or nil when the query matched no rows.
func shapeRow(g *database.Grid) map[string]any {
	if len(g.Rows) == 0 {
		return nil
	}
	row := make(map[string]any, len(g.Columns))
	for i, col := range g.Columns {
		row[col] = g.Rows[0][i]
	}
	return row
}

// shapeColumn flattens the result into a single value list, row-major.
// With column == allColumns every selected column contributes; otherwise
// only the value at the given index is taken from each row.
func shapeColumn(g *database.Grid, column int) ([]any, error) {
	if column != allColumns && column >= len(g.Columns) {
		return nil, errs.Newf(errs.ErrKindInvalidInput,
			"column index %d out of range (result has %d columns)", column, len(g.Columns))
	}

	values := make([]any, 0, len(g.Rows))
	for _, row := range g.Rows {
		if column == allColumns {
			values = append(values, row...)
		} else {
			values = append(values, row[column])
		}
	}
	return values, nil
}

// shapeKeyedRows maps each row by the stringified value of the key column.
// Rows sharing a key value overwrite each other; the driver's completion
// order decides the survivor, matching the no-ordering contract of a batch.
func shapeKeyedRows(g *database.Grid, keyField string) (map[string]map[string]any, error) {
	keyIdx := g.ColumnIndex(keyField)
	if keyIdx < 0 {
		return nil, errs.Newf(errs.ErrKindInvalidInput,
			"key field %q not present in result columns %v", keyField, g.Columns)
	}

	keyed := make(map[string]map[string]any, len(g.Rows))
	for _, row := range g.Rows {
		m := make(map[string]any, len(g.Columns))
		for i, col := range g.Columns {
			m[col] = row[i]
		}
		keyed[fmt.Sprint(row[keyIdx])] = m
	}
	return keyed, nil
}

// shapeRows returns the rows as-is: a list of row value lists.
// The slice is always non-nil.
func shapeRows(g *database.Grid) [][]any {
	return g.Rows
}
