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

// Package widget provides the fyne widgets of the data table: DataTable,
// the searchable and sortable table shell, and ColumnPopover, its column
// visibility selector.
package widget

import (
	"image/color"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/magpierre/fyne-datatable/datatable"
)

const (
	searchWidth            = 220
	noColumnsPlaceholderHt = 150
)

// DataTable renders a TableModel: a toolbar with search and the column
// selector, a header row that sorts on tap, the rows, and docks for
// footer and selection actions.
type DataTable struct {
	widget.BaseWidget

	model  *datatable.TableModel
	config Config
	proj   datatable.Projection

	search     *widget.Entry
	columns    *ColumnPopover
	table      *widget.Table
	headerSize fyne.Size

	placeholder     fyne.CanvasObject
	placeholderIcon *widget.Icon
	placeholderText *widget.Label
	placeholderPad  *canvas.Rectangle

	dock    fyne.CanvasObject
	content fyne.CanvasObject

	onRowSelected  func(datatable.Record)
	removeListener func()
}

// NewDataTable creates a table over model with DefaultConfig.
func NewDataTable(model *datatable.TableModel) *DataTable {
	return NewDataTableWithConfig(model, DefaultConfig())
}

// NewDataTableWithConfig creates a table over model. The table takes over
// the model's row-selected callback; register through OnRowSelected.
func NewDataTableWithConfig(model *datatable.TableModel, config Config) *DataTable {
	t := &DataTable{model: model, config: config}
	t.build()
	t.ExtendBaseWidget(t)

	model.OnRowSelected(func(rec datatable.Record) {
		if t.onRowSelected != nil {
			t.onRowSelected(rec)
		}
	})
	t.removeListener = model.AddListener(t.refreshView)
	t.refreshView()
	return t
}

// Model returns the model rendered by the table.
func (t *DataTable) Model() *datatable.TableModel {
	return t.model
}

// OnRowSelected registers fn to receive the raw record of a row when it
// becomes selected.
func (t *DataTable) OnRowSelected(fn func(datatable.Record)) {
	t.onRowSelected = fn
}

// SetWindow pins the window whose canvas hosts the column selector.
func (t *DataTable) SetWindow(w fyne.Window) {
	t.columns.SetCanvas(w.Canvas())
}

// Deselect clears the selection without notifying OnRowSelected.
func (t *DataTable) Deselect() {
	t.model.Deselect()
}

// Destroy detaches the table from its model and closes the column
// selector if it is open. The table must not be used afterwards.
func (t *DataTable) Destroy() {
	t.columns.Destroy()
	if t.removeListener != nil {
		t.removeListener()
		t.removeListener = nil
	}
}

func (t *DataTable) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.content)
}

func (t *DataTable) build() {
	style := t.config.Border

	t.search = widget.NewEntry()
	t.search.SetPlaceHolder("Search...")
	t.search.OnChanged = t.model.SetQuery

	t.columns = NewColumnPopover(t.model)

	trailing := container.NewHBox()
	if t.config.ShowFilterBar {
		size := fyne.NewSize(searchWidth, t.search.MinSize().Height)
		trailing.Add(container.NewGridWrap(size, t.search))
	}
	if t.config.ShowColumnSelector {
		trailing.Add(t.columns)
	}
	toolbar := bordered(container.NewPadded(
		container.NewBorder(nil, nil, t.config.HeaderAction, trailing),
	), style)

	t.table = widget.NewTableWithHeaders(t.length, t.createCell, t.updateCell)
	t.table.ShowHeaderColumn = false
	t.table.CreateHeader = func() fyne.CanvasObject {
		return newHeaderCell(style, t.toggleSort)
	}
	t.table.UpdateHeader = t.updateHeader
	t.headerSize = newHeaderCell(style, nil).MinSize()

	t.placeholderIcon = widget.NewIcon(theme.ErrorIcon())
	t.placeholderText = widget.NewLabel("")
	t.placeholderText.Importance = widget.LowImportance
	t.placeholderPad = canvas.NewRectangle(color.Transparent)
	t.placeholder = bordered(container.NewVBox(
		t.placeholderPad,
		container.NewCenter(container.NewVBox(
			container.NewCenter(t.placeholderIcon),
			t.placeholderText,
		)),
	), style)
	body := container.New(&bodyLayout{table: t}, t.table, t.placeholder)

	top := container.NewVBox()
	if t.config.Caption != "" {
		top.Add(widget.NewLabelWithStyle(t.config.Caption, fyne.TextAlignCenter, fyne.TextStyle{Bold: true}))
	}
	top.Add(toolbar)

	bottom := container.NewVBox()
	if len(t.config.FooterActions) > 0 {
		footer := container.NewHBox(layout.NewSpacer())
		for _, a := range t.config.FooterActions {
			footer.Add(a)
		}
		footer.Add(layout.NewSpacer())
		bottom.Add(bordered(footer, style))
	}
	t.dock = bordered(t.buildDock(), style)
	bottom.Add(t.dock)

	t.content = container.NewBorder(top, bottom, nil, nil, body)
}

func (t *DataTable) buildDock() *fyne.Container {
	dock := container.NewHBox(layout.NewSpacer())
	for _, a := range t.config.SelectionActions {
		dock.Add(a)
	}
	if t.config.ShowDeselect {
		deselect := widget.NewButtonWithIcon("Deselect", theme.CancelIcon(), t.Deselect)
		deselect.Importance = widget.DangerImportance
		dock.Add(deselect)
	}
	dock.Add(layout.NewSpacer())
	return dock
}

// refreshView pulls a fresh projection and updates every part that
// depends on it.
func (t *DataTable) refreshView() {
	t.proj = t.model.Projection()

	t.updatePlaceholder()

	_, selected := t.model.Selected()
	hasDockItems := len(t.config.SelectionActions) > 0 || t.config.ShowDeselect
	if selected && hasDockItems {
		t.dock.Show()
	} else {
		t.dock.Hide()
	}

	for i, col := range t.proj.Columns {
		t.table.SetColumnWidth(i, t.columnWidth(col))
	}
	t.table.Refresh()
	t.columns.Refresh()
	t.Refresh()
}

func (t *DataTable) updatePlaceholder() {
	switch t.proj.Placeholder {
	case datatable.PlaceholderNone:
		t.placeholder.Hide()
		return
	case datatable.PlaceholderNoColumns:
		t.placeholderIcon.Hide()
		t.placeholderPad.SetMinSize(fyne.NewSize(0, noColumnsPlaceholderHt/2))
	default:
		t.placeholderIcon.Show()
		t.placeholderPad.SetMinSize(fyne.NewSize(0, theme.Padding()*4))
	}
	t.placeholderText.SetText(t.proj.PlaceholderText())
	t.placeholder.Show()
	t.placeholder.Refresh()
}

func (t *DataTable) columnWidth(col datatable.HeaderCell) float32 {
	label := widget.NewLabelWithStyle(col.Label, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	w := label.MinSize().Width + theme.IconInlineSize() + theme.Padding()*2
	return max(w, t.config.MinColumnWidth)
}

func (t *DataTable) length() (int, int) {
	if t.proj.Placeholder != datatable.PlaceholderNone {
		return 0, len(t.proj.Columns)
	}
	return len(t.proj.Rows), len(t.proj.Columns)
}

func (t *DataTable) createCell() fyne.CanvasObject {
	return newBodyCell(t.config.Border, t.activateRow)
}

func (t *DataTable) updateCell(id widget.TableCellID, obj fyne.CanvasObject) {
	cell := obj.(*bodyCell)
	if id.Row < 0 || id.Row >= len(t.proj.Rows) {
		return
	}
	row := t.proj.Rows[id.Row]
	if id.Col < 0 || id.Col >= len(row.Cells) {
		return
	}
	cell.set(id.Row, row.Cells[id.Col], row.Selected)
}

func (t *DataTable) updateHeader(id widget.TableCellID, obj fyne.CanvasObject) {
	h := obj.(*headerCell)
	if id.Col < 0 || id.Col >= len(t.proj.Columns) {
		return
	}
	h.set(t.proj.Columns[id.Col])
}

func (t *DataTable) toggleSort(column string) {
	if err := t.model.ToggleSort(column); err != nil {
		slog.Warn("sort toggle ignored", "column", column, "error", err)
		return
	}
	t.table.ScrollToTop()
}

func (t *DataTable) activateRow(row int) {
	if err := t.model.ActivateVisibleRow(row); err != nil {
		slog.Warn("row activation ignored", "row", row, "error", err)
	}
}

// bodyLayout fills the area with the table and lays the placeholder over
// the body, just below the header row, across the full width.
type bodyLayout struct {
	table *DataTable
}

func (l *bodyLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	objects[0].Move(fyne.NewPos(0, 0))
	objects[0].Resize(size)

	top := float32(0)
	if len(l.table.proj.Columns) > 0 {
		top = l.table.headerSize.Height
	}
	ph := objects[1]
	ph.Move(fyne.NewPos(0, top))
	ph.Resize(fyne.NewSize(size.Width, ph.MinSize().Height))
}

func (l *bodyLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	size := objects[0].MinSize()
	if objects[1].Visible() {
		ph := objects[1].MinSize()
		size = size.Max(fyne.NewSize(ph.Width, l.table.headerSize.Height+ph.Height))
	}
	return size
}
