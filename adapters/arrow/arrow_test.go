// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package arrow

import (
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/fyne-datatable/datatable"
)

// newPeopleTable builds a two-chunk table: rows 0-1 in the first chunk and
// row 2 in the second.
func newPeopleTable(t *testing.T) arrow.Table {
	t.Helper()
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	t.Cleanup(func() { mem.AssertSize(t, 0) })

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "age", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		{Name: "seen", Type: &arrow.TimestampType{Unit: arrow.Millisecond}, Nullable: true},
	}, nil)

	build := func(names []string, ages []int32, valid []bool, seen []arrow.Timestamp) arrow.Record {
		b := array.NewRecordBuilder(mem, schema)
		defer b.Release()
		b.Field(0).(*array.StringBuilder).AppendValues(names, nil)
		b.Field(1).(*array.Int32Builder).AppendValues(ages, valid)
		b.Field(2).(*array.TimestampBuilder).AppendValues(seen, nil)
		return b.NewRecord()
	}
	day := arrow.Timestamp(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).UnixMilli())
	r1 := build([]string{"Ann", "Bob"}, []int32{31, 0}, []bool{true, false}, []arrow.Timestamp{day, day})
	r2 := build([]string{"Cid"}, []int32{45}, nil, []arrow.Timestamp{day})
	defer r1.Release()
	defer r2.Release()

	table := array.NewTableFromRecords(schema, []arrow.Record{r1, r2})
	t.Cleanup(table.Release)
	return table
}

func TestNewFromArrowTable(t *testing.T) {
	table := newPeopleTable(t)
	src, err := NewFromArrowTable(table)
	require.NoError(t, err)
	defer src.Release()

	assert.Equal(t, 3, src.RowCount())
	assert.Equal(t, 3, src.ColumnCount())

	name, err := src.ColumnName(1)
	require.NoError(t, err)
	assert.Equal(t, "age", name)

	dt, err := src.ColumnType(2)
	require.NoError(t, err)
	assert.Equal(t, datatable.TypeTimestamp, dt)

	cid, err := src.Cell(2, 0)
	require.NoError(t, err)
	assert.Equal(t, "Cid", cid.Raw)

	age, err := src.Cell(2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(45), age.Raw)

	null, err := src.Cell(1, 1)
	require.NoError(t, err)
	assert.True(t, null.IsNull)

	seen, err := src.Cell(0, 2)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02 03:04:05", seen.Formatted)

	_, err = src.Cell(3, 0)
	assert.ErrorIs(t, err, datatable.ErrInvalidRow)
	_, err = src.Cell(0, 3)
	assert.ErrorIs(t, err, datatable.ErrInvalidColumn)
}

func TestNewFromArrowTable_Model(t *testing.T) {
	src, err := NewFromArrowTable(newPeopleTable(t))
	require.NoError(t, err)
	defer src.Release()

	m, err := datatable.NewTableModel(src)
	require.NoError(t, err)

	require.NoError(t, m.ToggleSort("age"))
	rows := m.Projection().Rows
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Ann", "Cid", "Bob"}, []string{
		rows[0].Data["name"].(string),
		rows[1].Data["name"].(string),
		rows[2].Data["name"].(string),
	}, "nulls sort last")
}

func TestNewFromArrowTable_Errors(t *testing.T) {
	_, err := NewFromArrowTable(nil)
	assert.ErrorIs(t, err, datatable.ErrNoDataSource)
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		in   arrow.DataType
		want datatable.DataType
	}{
		{arrow.PrimitiveTypes.Int8, datatable.TypeInt},
		{arrow.PrimitiveTypes.Uint64, datatable.TypeInt},
		{arrow.PrimitiveTypes.Float32, datatable.TypeFloat},
		{arrow.FixedWidthTypes.Boolean, datatable.TypeBool},
		{arrow.FixedWidthTypes.Date32, datatable.TypeDate},
		{arrow.BinaryTypes.Binary, datatable.TypeBinary},
		{&arrow.Decimal128Type{Precision: 10, Scale: 2}, datatable.TypeDecimal},
		{arrow.ListOf(arrow.PrimitiveTypes.Int64), datatable.TypeList},
		{arrow.StructOf(arrow.Field{Name: "x", Type: arrow.PrimitiveTypes.Int64}), datatable.TypeStruct},
		{arrow.BinaryTypes.String, datatable.TypeString},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.in))
		})
	}
}

func TestValueAt_List(t *testing.T) {
	mem := memory.NewGoAllocator()
	b := array.NewListBuilder(mem, arrow.PrimitiveTypes.Int64)
	defer b.Release()
	vb := b.ValueBuilder().(*array.Int64Builder)
	b.Append(true)
	vb.AppendValues([]int64{1, 2}, nil)
	arr := b.NewArray()
	defer arr.Release()

	v := ValueAt(arr, 0)
	assert.Equal(t, datatable.TypeList, v.Type)
	assert.Equal(t, "[1,2]", v.Formatted)
	assert.Equal(t, []any{1.0, 2.0}, v.Raw)
}
