package datatable

// Placeholder identifies a full-width message rendered instead of the body.
type Placeholder int

const (
	// PlaceholderNone renders the rows normally.
	PlaceholderNone Placeholder = iota
	// PlaceholderNoColumns is shown when no column is visible.
	PlaceholderNoColumns
	// PlaceholderNoData is shown when there are no rows to render.
	PlaceholderNoData
)

// Placeholder texts.
const (
	NoColumnsText = "No columns selected"
	NoDataText    = "No data available"
)

// EmptyReason tells apart the two conditions that render PlaceholderNoData.
type EmptyReason int

const (
	// EmptyNone means at least one row is rendered.
	EmptyNone EmptyReason = iota
	// EmptyNoRows means the row collection itself is empty.
	EmptyNoRows
	// EmptyNoMatches means the search query matched no row.
	EmptyNoMatches
)

// HeaderCell describes one rendered column.
type HeaderCell struct {
	ID    string
	Label string
	Sort  SortDirection
}

// ProjectedRow is one rendered row: the raw record plus the cells of the
// visible columns.
type ProjectedRow struct {
	ID       RowID
	Data     Record
	Cells    []Value
	Selected bool
}

// Projection is the render-ready view of a table.
type Projection struct {
	Columns     []HeaderCell
	Rows        []ProjectedRow
	Placeholder Placeholder
	Empty       EmptyReason
	// Span is the number of columns a placeholder stretches across.
	Span int
}

// PlaceholderText returns the message for the current placeholder.
func (p Projection) PlaceholderText() string {
	switch p.Placeholder {
	case PlaceholderNoColumns:
		return NoColumnsText
	case PlaceholderNoData:
		return NoDataText
	default:
		return ""
	}
}

// Projection runs filter, sort and column projection over the current
// state. The result is memoized until the next state change.
func (m *TableModel) Projection() Projection {
	if m.cached != nil {
		return *m.cached
	}
	p := m.project()
	m.cached = &p
	return p
}

func (m *TableModel) project() Projection {
	p := Projection{Span: max(m.reg.Len(), 1)}

	if m.visibility.AllHidden() {
		p.Placeholder = PlaceholderNoColumns
		return p
	}

	visible := make([]Column, 0, m.reg.Len())
	for _, col := range m.reg.columns {
		if m.visibility.IsVisible(col.ID) {
			visible = append(visible, col)
		}
	}
	p.Columns = make([]HeaderCell, len(visible))
	for i, col := range visible {
		p.Columns[i] = HeaderCell{
			ID:    col.ID,
			Label: col.Label(),
			Sort:  m.sort.DirectionFor(col.ID),
		}
	}

	filtered := Filter(m.rows, m.query)
	switch {
	case len(m.rows) == 0:
		p.Placeholder = PlaceholderNoData
		p.Empty = EmptyNoRows
		return p
	case len(filtered) == 0:
		p.Placeholder = PlaceholderNoData
		p.Empty = EmptyNoMatches
		return p
	}

	sorted := Sort(filtered, m.reg, m.sort)
	p.Rows = make([]ProjectedRow, len(sorted))
	for i, row := range sorted {
		cells := make([]Value, len(visible))
		for c, col := range visible {
			cells[c] = col.Render(row.Data)
		}
		p.Rows[i] = ProjectedRow{
			ID:       row.ID,
			Data:     row.Data,
			Cells:    cells,
			Selected: m.selection.IsSelected(row.ID),
		}
	}
	return p
}
