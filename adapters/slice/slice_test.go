package slice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/fyne-datatable/datatable"
)

func TestNewFromMaps(t *testing.T) {
	src, err := NewFromMaps([]map[string]any{
		{"name": "Ann", "age": 31.0},
		{"name": "Bob", "city": "Oslo"},
		{"name": "Cid", "age": "n/a"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, src.RowCount())
	require.Equal(t, 3, src.ColumnCount())

	var names []string
	for i := 0; i < src.ColumnCount(); i++ {
		n, err := src.ColumnName(i)
		require.NoError(t, err)
		names = append(names, n)
	}
	assert.Equal(t, []string{"age", "city", "name"}, names)

	ageType, err := src.ColumnType(0)
	require.NoError(t, err)
	assert.Equal(t, datatable.TypeString, ageType, "mixed float and string falls back to string")

	v, err := src.Cell(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "31", v.Formatted)

	missing, err := src.Cell(1, 0)
	require.NoError(t, err)
	assert.True(t, missing.IsNull)
}

func TestNewFromRecords_KeepsOrderAndTypes(t *testing.T) {
	src, err := NewFromRecords([]datatable.Record{
		{"b": 1, "a": true},
		{"b": 2, "a": false},
	}, []string{"b", "a"})
	require.NoError(t, err)

	bt, _ := src.ColumnType(0)
	at, _ := src.ColumnType(1)
	assert.Equal(t, datatable.TypeInt, bt)
	assert.Equal(t, datatable.TypeBool, at)

	m, err := datatable.NewTableModel(src)
	require.NoError(t, err)
	assert.Equal(t, datatable.Record{"b": 2, "a": false}, m.Rows()[1].Data)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, nil, nil)
	assert.ErrorIs(t, err, datatable.ErrNoColumns)

	_, err = New([]string{"a", "a"}, []datatable.DataType{0, 0}, nil)
	assert.ErrorIs(t, err, datatable.ErrDuplicateColumn)

	_, err = New([]string{"a"}, []datatable.DataType{0}, [][]any{{"x", "y"}})
	assert.ErrorIs(t, err, datatable.ErrInvalidRow)
}

func TestDataSource_Bounds(t *testing.T) {
	src, err := New([]string{"a"}, []datatable.DataType{datatable.TypeString}, [][]any{{"x"}})
	require.NoError(t, err)

	_, err = src.Cell(1, 0)
	assert.ErrorIs(t, err, datatable.ErrInvalidRow)
	_, err = src.Cell(0, 1)
	assert.ErrorIs(t, err, datatable.ErrInvalidColumn)
	_, err = src.Row(-1)
	assert.ErrorIs(t, err, datatable.ErrInvalidRow)
	_, err = src.ColumnName(3)
	assert.ErrorIs(t, err, datatable.ErrInvalidColumn)
}
