package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sathwikv/batchq/internal/database"
	"github.com/sathwikv/batchq/internal/errs"
)

func grid(cols []string, rows ...[]any) *database.Grid {
	if rows == nil {
		// ReadGrid never produces a nil row slice.
		rows = [][]any{}
	}
	return &database.Grid{Columns: cols, Rows: rows}
}

func TestShapeRow(t *testing.T) {
	g := grid([]string{"id", "name"},
		[]any{1, "ada"},
		[]any{2, "grace"},
	)

	assert.Equal(t, map[string]any{"id": 1, "name": "ada"}, shapeRow(g))
	assert.Nil(t, shapeRow(grid([]string{"id"})), "no rows shapes to nil")
}

func TestShapeColumn(t *testing.T) {
	g := grid([]string{"id", "name"},
		[]any{1, "ada"},
		[]any{2, "grace"},
	)

	tests := []struct {
		name   string
		column int
		want   []any
	}{
		{name: "all columns flatten row-major", column: allColumns, want: []any{1, "ada", 2, "grace"}},
		{name: "first column only", column: 0, want: []any{1, 2}},
		{name: "second column only", column: 1, want: []any{"ada", "grace"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := shapeColumn(g, tt.column)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShapeColumn_IndexOutOfRange(t *testing.T) {
	g := grid([]string{"id"}, []any{1})

	_, err := shapeColumn(g, 3)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestShapeColumn_EmptyResult(t *testing.T) {
	got, err := shapeColumn(grid([]string{"id"}), allColumns)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestShapeKeyedRows(t *testing.T) {
	g := grid([]string{"id", "name"},
		[]any{1, "ada"},
		[]any{2, "grace"},
	)

	keyed, err := shapeKeyedRows(g, "id")
	require.NoError(t, err)

	// Key values are stringified so non-string key columns still work.
	assert.Equal(t, map[string]map[string]any{
		"1": {"id": 1, "name": "ada"},
		"2": {"id": 2, "name": "grace"},
	}, keyed)
}

func TestShapeKeyedRows_MissingKeyColumn(t *testing.T) {
	g := grid([]string{"name"}, []any{"ada"})

	_, err := shapeKeyedRows(g, "id")
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestShapeRows(t *testing.T) {
	g := grid([]string{"id"}, []any{1}, []any{2})
	assert.Equal(t, [][]any{{1}, {2}}, shapeRows(g))

	empty := shapeRows(grid([]string{"id"}))
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
