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

import (
	"fmt"
	"slices"
)

// TableModel owns the interactive state of one table (search query, sort,
// column visibility and selection) and derives the rendered Projection
// from it. It is not safe for concurrent use; all calls are expected from
// the UI event loop.
type TableModel struct {
	reg        *Registry
	rows       []Row
	query      string
	sort       SortState
	visibility Visibility
	selection  Selection

	onRowSelected func(Record)
	listeners     []listener
	nextListener  int

	cached *Projection
}

// New creates a model over records with an explicit column set.
func New(records []Record, columns []Column) (*TableModel, error) {
	reg, err := NewRegistry(columns...)
	if err != nil {
		return nil, err
	}
	m := &TableModel{
		reg:        reg,
		visibility: NewVisibility(reg.IDs()),
	}
	m.rows = toRows(records)
	return m, nil
}

// NewTableModel creates a model with one column per source column.
func NewTableModel(src DataSource) (*TableModel, error) {
	cols, err := ColumnsFromSource(src)
	if err != nil {
		return nil, err
	}
	records, err := RecordsFromSource(src)
	if err != nil {
		return nil, err
	}
	return New(records, cols)
}

func toRows(records []Record) []Row {
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = Row{ID: RowID(i), Data: rec}
	}
	return rows
}

// Registry returns the column registry.
func (m *TableModel) Registry() *Registry {
	return m.reg
}

// SetRows replaces the row collection. Row ids are reassigned, so the
// selection is cleared.
func (m *TableModel) SetRows(records []Record) {
	m.rows = toRows(records)
	m.selection = m.selection.Clear()
	m.changed()
}

// Rows returns the full, unfiltered collection.
func (m *TableModel) Rows() []Row {
	return m.rows
}

// Query returns the current search query.
func (m *TableModel) Query() string {
	return m.query
}

// SetQuery updates the search query.
func (m *TableModel) SetQuery(q string) {
	if q == m.query {
		return
	}
	m.query = q
	m.changed()
}

// GetSortState returns the current sort configuration.
func (m *TableModel) GetSortState() SortState {
	return m.sort
}

// ToggleSort applies a header activation on columnID.
func (m *TableModel) ToggleSort(columnID string) error {
	if _, ok := m.reg.Lookup(columnID); !ok {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, columnID)
	}
	m.sort = m.sort.Cycle(columnID)
	m.changed()
	return nil
}

// SetSortState replaces the sort configuration.
func (m *TableModel) SetSortState(s SortState) error {
	if s.IsSorted() {
		if _, ok := m.reg.Lookup(s.Column); !ok {
			return fmt.Errorf("%w: %s", ErrColumnNotFound, s.Column)
		}
	} else {
		s = SortState{}
	}
	m.sort = s
	m.changed()
	return nil
}

// Visibility returns the current column visibility.
func (m *TableModel) Visibility() Visibility {
	return m.visibility
}

// ToggleColumn flips the visibility of a column. It reports false when the
// toggle was refused, which happens for the last visible column.
func (m *TableModel) ToggleColumn(id string) bool {
	next, ok := m.visibility.Toggle(id)
	if !ok {
		return false
	}
	m.visibility = next
	m.changed()
	return true
}

// ShowAllColumns makes every column visible.
func (m *TableModel) ShowAllColumns() {
	m.visibility = m.visibility.ShowAll()
	m.changed()
}

// Columns returns a handle per declared column, in declaration order.
func (m *TableModel) Columns() []ColumnHandle {
	out := make([]ColumnHandle, m.reg.Len())
	for i, col := range m.reg.columns {
		out[i] = columnHandle{model: m, col: col}
	}
	return out
}

// OnRowSelected registers the callback invoked with the raw record when a
// row becomes selected.
func (m *TableModel) OnRowSelected(fn func(Record)) {
	m.onRowSelected = fn
}

// ActivateRow toggles the selection of the row with the given id.
func (m *TableModel) ActivateRow(id RowID) error {
	if id < 0 || int(id) >= len(m.rows) {
		return fmt.Errorf("%w: %d", ErrInvalidRow, id)
	}
	next, selected := m.selection.Activate(id)
	m.selection = next
	m.changed()
	if selected && m.onRowSelected != nil {
		m.onRowSelected(m.rows[id].Data)
	}
	return nil
}

// ActivateVisibleRow activates the row rendered at position row.
func (m *TableModel) ActivateVisibleRow(row int) error {
	p := m.Projection()
	if row < 0 || row >= len(p.Rows) {
		return fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	return m.ActivateRow(p.Rows[row].ID)
}

// Deselect clears the selection without notifying OnRowSelected.
func (m *TableModel) Deselect() {
	if _, ok := m.selection.Selected(); !ok {
		return
	}
	m.selection = m.selection.Clear()
	m.changed()
}

// Selected returns the selected row.
func (m *TableModel) Selected() (Row, bool) {
	id, ok := m.selection.Selected()
	if !ok {
		return Row{}, false
	}
	return m.rows[id], true
}

type listener struct {
	id int
	fn func()
}

// AddListener registers fn to run after every state change and returns a
// function that removes it. Listeners run in registration order.
func (m *TableModel) AddListener(fn func()) (remove func()) {
	id := m.nextListener
	m.nextListener++
	m.listeners = append(m.listeners, listener{id: id, fn: fn})
	return func() {
		m.listeners = slices.DeleteFunc(m.listeners, func(l listener) bool { return l.id == id })
	}
}

func (m *TableModel) changed() {
	m.cached = nil
	// A listener may add or remove listeners while being notified.
	for _, l := range slices.Clone(m.listeners) {
		l.fn()
	}
}

// OriginalRowCount returns the number of rows before filtering.
func (m *TableModel) OriginalRowCount() int {
	return len(m.rows)
}

// OriginalColumnCount returns the number of declared columns.
func (m *TableModel) OriginalColumnCount() int {
	return m.reg.Len()
}

// VisibleRowCount returns the number of rendered rows.
func (m *TableModel) VisibleRowCount() int {
	return len(m.Projection().Rows)
}

// VisibleColumnCount returns the number of rendered columns.
func (m *TableModel) VisibleColumnCount() int {
	return len(m.Projection().Columns)
}

// VisibleColumnName returns the header label of a rendered column.
func (m *TableModel) VisibleColumnName(col int) (string, error) {
	cols := m.Projection().Columns
	if col < 0 || col >= len(cols) {
		return "", fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	return cols[col].Label, nil
}

// VisibleRow returns the rendered cells of a row.
func (m *TableModel) VisibleRow(row int) ([]Value, error) {
	rows := m.Projection().Rows
	if row < 0 || row >= len(rows) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	return rows[row].Cells, nil
}

// VisibleCell returns one rendered cell.
func (m *TableModel) VisibleCell(row, col int) (Value, error) {
	cells, err := m.VisibleRow(row)
	if err != nil {
		return Value{}, err
	}
	if col < 0 || col >= len(cells) {
		return Value{}, fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	return cells[col], nil
}

// GetVisibleRowIndices returns the source positions of the rendered rows.
func (m *TableModel) GetVisibleRowIndices() []int {
	rows := m.Projection().Rows
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = int(r.ID)
	}
	return out
}

// GetVisibleColumnIndices returns the declaration positions of the
// rendered columns.
func (m *TableModel) GetVisibleColumnIndices() []int {
	cols := m.Projection().Columns
	out := make([]int, len(cols))
	for i, c := range cols {
		out[i] = m.reg.IndexOf(c.ID)
	}
	return out
}

type columnHandle struct {
	model *TableModel
	col   Column
}

func (h columnHandle) ID() string              { return h.col.ID }
func (h columnHandle) Header() string          { return h.col.Label() }
func (h columnHandle) Visible() bool           { return h.model.visibility.IsVisible(h.col.ID) }
func (h columnHandle) Render(rec Record) Value { return h.col.Render(rec) }
