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

// Package slice provides an in-memory datatable.DataSource.
package slice

import (
	"fmt"
	"slices"
	"sort"

	"github.com/magpierre/fyne-datatable/datatable"
)

// DataSource holds rows of typed values in memory. It is immutable after
// construction and safe for concurrent reads.
type DataSource struct {
	names    []string
	types    []datatable.DataType
	rows     [][]datatable.Value
	metadata datatable.Metadata
}

var _ datatable.DataSource = (*DataSource)(nil)

// New builds a source from positional rows. Each row must have one value
// per column; nil values become nulls.
func New(names []string, types []datatable.DataType, rows [][]any) (*DataSource, error) {
	if len(names) == 0 {
		return nil, datatable.ErrNoColumns
	}
	if len(types) != len(names) {
		return nil, fmt.Errorf("%d column types for %d columns", len(types), len(names))
	}
	if err := checkNames(names); err != nil {
		return nil, err
	}

	values := make([][]datatable.Value, len(rows))
	for r, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", datatable.ErrInvalidRow, r, len(row), len(names))
		}
		vals := make([]datatable.Value, len(row))
		for c, raw := range row {
			vals[c] = datatable.NewValue(raw, types[c])
		}
		values[r] = vals
	}
	return &DataSource{
		names:    slices.Clone(names),
		types:    slices.Clone(types),
		rows:     values,
		metadata: datatable.Metadata{"source": "slice"},
	}, nil
}

// NewFromMaps builds a source from decoded JSON objects. Columns are the
// union of all keys, sorted by name. A column takes the type of its values
// when they all agree and falls back to TypeString otherwise.
func NewFromMaps(data []map[string]any) (*DataSource, error) {
	seen := make(map[string]bool)
	var names []string
	for _, m := range data {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sort.Strings(names)

	records := make([]datatable.Record, len(data))
	for i, m := range data {
		records[i] = m
	}
	return NewFromRecords(records, names)
}

// NewFromRecords builds a source from records with an explicit column
// order. Missing fields become nulls.
func NewFromRecords(records []datatable.Record, names []string) (*DataSource, error) {
	if len(names) == 0 {
		return nil, datatable.ErrNoColumns
	}

	types := make([]datatable.DataType, len(names))
	for c, name := range names {
		types[c] = columnType(records, name)
	}

	rows := make([][]any, len(records))
	for r, rec := range records {
		row := make([]any, len(names))
		for c, name := range names {
			row[c] = normalize(rec[name], types[c])
		}
		rows[r] = row
	}
	return New(names, types, rows)
}

func columnType(records []datatable.Record, name string) datatable.DataType {
	found := false
	var dt datatable.DataType
	for _, rec := range records {
		v, ok := rec[name]
		if !ok || v == nil {
			continue
		}
		t := datatable.InferType(v)
		switch {
		case !found:
			dt, found = t, true
		case t != dt:
			return datatable.TypeString
		}
	}
	if !found {
		return datatable.TypeString
	}
	return dt
}

// normalize keeps a value of a mixed column displayable as a string.
func normalize(v any, dt datatable.DataType) any {
	if v == nil || datatable.InferType(v) == dt {
		return v
	}
	return datatable.FormatField(v)
}

func checkNames(names []string) error {
	seen := make(map[string]bool, len(names))
	for i, n := range names {
		if n == "" {
			return fmt.Errorf("%w: column %d", datatable.ErrEmptyColumnID, i)
		}
		if seen[n] {
			return fmt.Errorf("%w: %q", datatable.ErrDuplicateColumn, n)
		}
		seen[n] = true
	}
	return nil
}

// SetMetadata replaces the source metadata.
func (s *DataSource) SetMetadata(m datatable.Metadata) {
	s.metadata = m
}

// RowCount implements datatable.DataSource.
func (s *DataSource) RowCount() int {
	return len(s.rows)
}

// ColumnCount implements datatable.DataSource.
func (s *DataSource) ColumnCount() int {
	return len(s.names)
}

// ColumnName implements datatable.DataSource.
func (s *DataSource) ColumnName(col int) (string, error) {
	if col < 0 || col >= len(s.names) {
		return "", fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, col)
	}
	return s.names[col], nil
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
	if row < 0 || row >= len(s.rows) {
		return datatable.Value{}, fmt.Errorf("%w: %d", datatable.ErrInvalidRow, row)
	}
	if col < 0 || col >= len(s.names) {
		return datatable.Value{}, fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, col)
	}
	return s.rows[row][col], nil
}

// Row implements datatable.DataSource.
func (s *DataSource) Row(row int) ([]datatable.Value, error) {
	if row < 0 || row >= len(s.rows) {
		return nil, fmt.Errorf("%w: %d", datatable.ErrInvalidRow, row)
	}
	return slices.Clone(s.rows[row]), nil
}

// Metadata implements datatable.DataSource.
func (s *DataSource) Metadata() datatable.Metadata {
	return s.metadata
}
