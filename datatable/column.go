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

package datatable

import "fmt"

// Record is one row of source data: named fields with arbitrary values.
type Record map[string]any

// RowID identifies a row by its position in the collection handed to the
// model. It stays stable while that collection is filtered and sorted.
type RowID int

// Row pairs a record with its identity.
type Row struct {
	ID   RowID
	Data Record
}

// CellFunc maps a record to the value shown in a column.
type CellFunc func(Record) Value

// Column is the static definition of one table column.
type Column struct {
	// ID is unique within a table.
	ID string
	// Header is the label shown in the header row and the column selector.
	// An empty header falls back to ID.
	Header string
	// Type is used by the default cell accessor.
	Type DataType
	// Cell renders the column for a record. When nil the field named ID is
	// read and wrapped as a Value of Type.
	Cell CellFunc
}

// Label returns the header text, falling back to the id.
func (c Column) Label() string {
	if c.Header != "" {
		return c.Header
	}
	return c.ID
}

// Render returns the cell value of the column for rec.
func (c Column) Render(rec Record) Value {
	if c.Cell != nil {
		return c.Cell(rec)
	}
	raw, ok := rec[c.ID]
	if !ok || raw == nil {
		return NewNullValue(c.Type)
	}
	return NewValue(raw, c.Type)
}

// ColumnHandle is the column capability consumed by the column selector.
// It never exposes the table implementation behind it.
type ColumnHandle interface {
	ID() string
	Header() string
	Visible() bool
	Render(Record) Value
}

// Registry is the ordered, immutable set of columns of a table.
type Registry struct {
	columns []Column
	index   map[string]int
}

// NewRegistry validates and freezes a column set. It rejects an empty set,
// empty ids and duplicate ids.
func NewRegistry(columns ...Column) (*Registry, error) {
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}
	r := &Registry{
		columns: make([]Column, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if col.ID == "" {
			return nil, fmt.Errorf("%w: column %d", ErrEmptyColumnID, i)
		}
		if prev, dup := r.index[col.ID]; dup {
			return nil, fmt.Errorf("%w: %q at positions %d and %d", ErrDuplicateColumn, col.ID, prev, i)
		}
		r.index[col.ID] = i
		r.columns[i] = col
	}
	return r, nil
}

// Len returns the number of declared columns.
func (r *Registry) Len() int {
	return len(r.columns)
}

// At returns the column at position i.
func (r *Registry) At(i int) (Column, error) {
	if i < 0 || i >= len(r.columns) {
		return Column{}, fmt.Errorf("%w: %d", ErrInvalidColumn, i)
	}
	return r.columns[i], nil
}

// Lookup returns the column with the given id.
func (r *Registry) Lookup(id string) (Column, bool) {
	i, ok := r.index[id]
	if !ok {
		return Column{}, false
	}
	return r.columns[i], true
}

// IndexOf returns the declaration position of id, or -1.
func (r *Registry) IndexOf(id string) int {
	if i, ok := r.index[id]; ok {
		return i
	}
	return -1
}

// IDs returns the column ids in declaration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.columns))
	for i, c := range r.columns {
		ids[i] = c.ID
	}
	return ids
}

// Columns returns a copy of the declared columns.
func (r *Registry) Columns() []Column {
	out := make([]Column, len(r.columns))
	copy(out, r.columns)
	return out
}
