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

package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/magpierre/fyne-datatable/datatable"
)

// ReadParquet reads a whole Parquet file into an Arrow table. The caller
// releases the table.
func ReadParquet(ctx context.Context, path string) (arrow.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer f.Close()

	pf, err := file.NewParquetReader(f, file.WithReadProps(&parquet.ReaderProperties{}))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pf.Close()

	mem := memory.NewGoAllocator()
	arrowReader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	return table, nil
}

// narrowArrow applies column selection and row limiting to the Arrow table
// when the remaining options do not need the dropped data. The result is
// always a new reference the caller releases.
func narrowArrow(table arrow.Table, opts *QueryOptions) (arrow.Table, error) {
	if opts == nil || len(opts.Computed) > 0 || opts.Predicate != "" {
		table.Retain()
		return table, nil
	}

	schema := table.Schema()
	colIndices := make([]int, 0, table.NumCols())
	if len(opts.SelectedColumns) > 0 {
		for _, name := range opts.SelectedColumns {
			if len(schema.FieldIndices(name)) == 0 {
				return nil, fmt.Errorf("%w: %s", datatable.ErrColumnNotFound, name)
			}
		}
		keep := make(map[string]bool, len(opts.SelectedColumns))
		for _, name := range opts.SelectedColumns {
			keep[name] = true
		}
		for i, field := range schema.Fields() {
			if keep[field.Name] {
				colIndices = append(colIndices, i)
			}
		}
	} else {
		for i := 0; i < int(table.NumCols()); i++ {
			colIndices = append(colIndices, i)
		}
	}

	rows := table.NumRows()
	if opts.Limit > 0 && opts.Limit < rows {
		rows = opts.Limit
	}

	fields := make([]arrow.Field, len(colIndices))
	columns := make([]arrow.Column, len(colIndices))
	for i, idx := range colIndices {
		col := table.Column(idx)
		fields[i] = schema.Field(idx)

		chunks := col.Data().Chunks()
		newChunks := make([]arrow.Array, 0, len(chunks))
		count := int64(0)
		for _, chunk := range chunks {
			if count >= rows {
				break
			}
			remaining := rows - count
			if int64(chunk.Len()) <= remaining {
				chunk.Retain()
				newChunks = append(newChunks, chunk)
				count += int64(chunk.Len())
			} else {
				newChunks = append(newChunks, array.NewSlice(chunk, 0, remaining))
				count += remaining
			}
		}

		chunked := arrow.NewChunked(col.DataType(), newChunks)
		for _, c := range newChunks {
			c.Release()
		}
		columns[i] = *arrow.NewColumn(fields[i], chunked)
		chunked.Release()
	}

	md := schema.Metadata()
	out := array.NewTable(arrow.NewSchema(fields, &md), columns, rows)
	for i := range columns {
		columns[i].Release()
	}
	return out, nil
}
