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

package export

import (
	"fmt"
	"math"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/magpierre/fyne-datatable/datatable"
)

// Table builds an Arrow table from the current projection of m: visible
// columns in display order, rows filtered and sorted. The caller releases
// the table.
func Table(m *datatable.TableModel) (arrow.Table, error) {
	p := m.Projection()
	if p.Placeholder == datatable.PlaceholderNoColumns {
		return nil, fmt.Errorf("%w: %s", datatable.ErrExportFailed, datatable.NoColumnsText)
	}

	pool := memory.NewGoAllocator()
	fields := make([]arrow.Field, len(p.Columns))
	columns := make([]arrow.Column, len(p.Columns))
	for i, h := range p.Columns {
		col, _ := m.Registry().Lookup(h.ID)
		field := arrow.Field{Name: h.ID, Type: arrowType(col.Type), Nullable: true}
		fields[i] = field

		builder := array.NewBuilder(pool, field.Type)
		for _, row := range p.Rows {
			appendValue(builder, row.Cells[i])
		}
		arr := builder.NewArray()
		builder.Release()

		chunked := arrow.NewChunked(field.Type, []arrow.Array{arr})
		arr.Release()
		columns[i] = *arrow.NewColumn(field, chunked)
		chunked.Release()
	}

	table := array.NewTable(arrow.NewSchema(fields, nil), columns, int64(len(p.Rows)))
	for i := range columns {
		columns[i].Release()
	}
	return table, nil
}

// arrowType maps a column type to the Arrow type it is exported as. Nested
// values are exported as their JSON text.
func arrowType(dt datatable.DataType) arrow.DataType {
	switch dt {
	case datatable.TypeInt:
		return arrow.PrimitiveTypes.Int64
	case datatable.TypeFloat:
		return arrow.PrimitiveTypes.Float64
	case datatable.TypeBool:
		return arrow.FixedWidthTypes.Boolean
	case datatable.TypeDate:
		return arrow.FixedWidthTypes.Date32
	case datatable.TypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_us
	case datatable.TypeBinary:
		return arrow.BinaryTypes.Binary
	default:
		return arrow.BinaryTypes.String
	}
}

// appendValue appends v, converting it to the builder type. Values that do
// not convert are appended as null.
func appendValue(builder array.Builder, v datatable.Value) {
	if v.IsNull {
		builder.AppendNull()
		return
	}

	switch b := builder.(type) {
	case *array.Int64Builder:
		if n, ok := toInt64(v.Raw); ok {
			b.Append(n)
			return
		}
	case *array.Float64Builder:
		if f, ok := toFloat64(v.Raw); ok {
			b.Append(f)
			return
		}
	case *array.BooleanBuilder:
		if x, ok := v.Raw.(bool); ok {
			b.Append(x)
			return
		}
	case *array.Date32Builder:
		if t, ok := v.Raw.(time.Time); ok {
			b.Append(arrow.Date32FromTime(t))
			return
		}
	case *array.TimestampBuilder:
		if t, ok := v.Raw.(time.Time); ok {
			b.Append(arrow.Timestamp(t.UnixMicro()))
			return
		}
	case *array.BinaryBuilder:
		if x, ok := v.Raw.([]byte); ok {
			b.Append(x)
			return
		}
		b.Append([]byte(v.Formatted))
		return
	case *array.StringBuilder:
		b.Append(v.Formatted)
		return
	}
	builder.AppendNull()
}

func toInt64(raw any) (int64, bool) {
	switch x := raw.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x), true
		}
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<63 {
			return int64(x), true
		}
	}
	return 0, false
}

func toFloat64(raw any) (float64, bool) {
	switch x := raw.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	}
	if n, ok := toInt64(raw); ok {
		return float64(n), true
	}
	return 0, false
}
