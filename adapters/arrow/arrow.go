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

// Package arrow exposes an Arrow table as a datatable.DataSource.
package arrow

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/magpierre/fyne-datatable/datatable"
)

// DataSource reads cells straight from the chunks of an Arrow table.
// The table is retained until Release.
type DataSource struct {
	table  arrow.Table
	types  []datatable.DataType
	chunks [][]arrow.Array
	// offsets[c][i] is the first row of chunk i of column c.
	offsets [][]int

	releaseOnce sync.Once
}

var _ datatable.DataSource = (*DataSource)(nil)

// NewFromArrowTable wraps table.
func NewFromArrowTable(table arrow.Table) (*DataSource, error) {
	if table == nil {
		return nil, datatable.ErrNoDataSource
	}
	if table.NumCols() == 0 {
		return nil, datatable.ErrNoColumns
	}
	table.Retain()

	n := int(table.NumCols())
	s := &DataSource{
		table:   table,
		types:   make([]datatable.DataType, n),
		chunks:  make([][]arrow.Array, n),
		offsets: make([][]int, n),
	}
	for c := 0; c < n; c++ {
		col := table.Column(c)
		s.types[c] = TypeOf(col.DataType())
		chunks := col.Data().Chunks()
		s.chunks[c] = chunks
		offsets := make([]int, len(chunks))
		start := 0
		for i, ch := range chunks {
			offsets[i] = start
			start += ch.Len()
		}
		s.offsets[c] = offsets
	}
	return s, nil
}

// Release drops the reference on the table taken by NewFromArrowTable.
func (s *DataSource) Release() {
	s.releaseOnce.Do(s.table.Release)
}

// RowCount implements datatable.DataSource.
func (s *DataSource) RowCount() int {
	return int(s.table.NumRows())
}

// ColumnCount implements datatable.DataSource.
func (s *DataSource) ColumnCount() int {
	return int(s.table.NumCols())
}

// ColumnName implements datatable.DataSource.
func (s *DataSource) ColumnName(col int) (string, error) {
	if col < 0 || col >= s.ColumnCount() {
		return "", fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, col)
	}
	return s.table.Schema().Field(col).Name, nil
}

// ColumnType implements datatable.DataSource.
func (s *DataSource) ColumnType(col int) (datatable.DataType, error) {
	if col < 0 || col >= len(s.types) {
		return datatable.TypeString, fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, col)
	}
	return s.types[col], nil
}

// Cell implements datatable.DataSource.
func (s *DataSource) Cell(row, col int) (datatable.Value, error) {
	if row < 0 || row >= s.RowCount() {
		return datatable.Value{}, fmt.Errorf("%w: %d", datatable.ErrInvalidRow, row)
	}
	if col < 0 || col >= len(s.chunks) {
		return datatable.Value{}, fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, col)
	}
	offsets := s.offsets[col]
	i := sort.Search(len(offsets), func(i int) bool { return offsets[i] > row }) - 1
	return ValueAt(s.chunks[col][i], row-offsets[i]), nil
}

// Row implements datatable.DataSource.
func (s *DataSource) Row(row int) ([]datatable.Value, error) {
	out := make([]datatable.Value, len(s.chunks))
	for c := range out {
		v, err := s.Cell(row, c)
		if err != nil {
			return nil, err
		}
		out[c] = v
	}
	return out, nil
}

// Metadata implements datatable.DataSource.
func (s *DataSource) Metadata() datatable.Metadata {
	md := datatable.Metadata{"source": "arrow"}
	if m := s.table.Schema().Metadata(); m.Len() > 0 {
		for i, k := range m.Keys() {
			md[k] = m.Values()[i]
		}
	}
	return md
}

// TypeOf maps an Arrow type to the closest DataType.
func TypeOf(dt arrow.DataType) datatable.DataType {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return datatable.TypeInt
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return datatable.TypeFloat
	case arrow.DECIMAL128, arrow.DECIMAL256:
		return datatable.TypeDecimal
	case arrow.BOOL:
		return datatable.TypeBool
	case arrow.DATE32, arrow.DATE64:
		return datatable.TypeDate
	case arrow.TIMESTAMP:
		return datatable.TypeTimestamp
	case arrow.BINARY, arrow.LARGE_BINARY, arrow.FIXED_SIZE_BINARY:
		return datatable.TypeBinary
	case arrow.STRUCT, arrow.MAP:
		return datatable.TypeStruct
	case arrow.LIST, arrow.LARGE_LIST, arrow.FIXED_SIZE_LIST:
		return datatable.TypeList
	default:
		return datatable.TypeString
	}
}

// ValueAt converts the element at pos of col.
func ValueAt(col arrow.Array, pos int) datatable.Value {
	dt := TypeOf(col.DataType())
	if col.IsNull(pos) {
		return datatable.NewNullValue(dt)
	}

	switch a := col.(type) {
	case *array.String:
		return datatable.NewValue(a.Value(pos), dt)
	case *array.LargeString:
		return datatable.NewValue(a.Value(pos), dt)
	case *array.Binary:
		return datatable.NewValue(a.Value(pos), dt)
	case *array.Boolean:
		return datatable.NewValue(a.Value(pos), dt)
	case *array.Int8:
		return datatable.NewValue(int64(a.Value(pos)), dt)
	case *array.Int16:
		return datatable.NewValue(int64(a.Value(pos)), dt)
	case *array.Int32:
		return datatable.NewValue(int64(a.Value(pos)), dt)
	case *array.Int64:
		return datatable.NewValue(a.Value(pos), dt)
	case *array.Uint8:
		return datatable.NewValue(uint64(a.Value(pos)), dt)
	case *array.Uint16:
		return datatable.NewValue(uint64(a.Value(pos)), dt)
	case *array.Uint32:
		return datatable.NewValue(uint64(a.Value(pos)), dt)
	case *array.Uint64:
		return datatable.NewValue(a.Value(pos), dt)
	case *array.Float16:
		return datatable.NewValue(float64(a.Value(pos).Float32()), dt)
	case *array.Float32:
		return datatable.NewValue(float64(a.Value(pos)), dt)
	case *array.Float64:
		return datatable.NewValue(a.Value(pos), dt)
	case *array.Date32:
		return datatable.NewValue(a.Value(pos).ToTime().UTC(), dt)
	case *array.Date64:
		return datatable.NewValue(a.Value(pos).ToTime().UTC(), dt)
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return datatable.NewValue(a.Value(pos).ToTime(unit).UTC(), dt)
	case *array.Decimal128:
		scale := a.DataType().(*arrow.Decimal128Type).Scale
		return datatable.NewValue(a.Value(pos).ToString(scale), dt)
	case *array.Struct, *array.Map, *array.List, *array.LargeList, *array.FixedSizeList:
		return nestedValue(col, pos, dt)
	default:
		return datatable.NewValue(col.ValueStr(pos), dt)
	}
}

// nestedValue decodes nested elements to plain maps and slices, formatted
// as JSON.
func nestedValue(col arrow.Array, pos int, dt datatable.DataType) datatable.Value {
	raw := col.GetOneForMarshal(pos)
	b, err := json.Marshal(raw)
	if err != nil {
		return datatable.NewValue(col.ValueStr(pos), datatable.TypeString)
	}
	var decoded any
	if err := json.Unmarshal(b, &decoded); err != nil {
		decoded = string(b)
	}
	return datatable.Value{Raw: decoded, Type: dt, Formatted: string(b)}
}
