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

package widget

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/magpierre/fyne-datatable/datatable"
	"github.com/magpierre/fyne-datatable/internal/overlay"
)

const (
	popoverWidth      = 320
	popoverListHeight = 240
)

// ColumnSource is what the column selector needs from a table.
// *datatable.TableModel implements it.
type ColumnSource interface {
	Columns() []datatable.ColumnHandle
	ToggleColumn(id string) bool
	ShowAllColumns()
}

// ColumnPopover is the column visibility selector: a trigger button that
// opens a panel with one checkbox per column. The panel lives in the
// canvas overlay stack and closes on any pointer-down outside of it.
type ColumnPopover struct {
	widget.BaseWidget

	source  ColumnSource
	trigger *widget.Button
	canvas  fyne.Canvas

	panel  fyne.CanvasObject
	search *widget.Entry
	list   *fyne.Container
	sub    *overlay.Subscription
}

// NewColumnPopover creates a closed selector for source.
func NewColumnPopover(source ColumnSource) *ColumnPopover {
	p := &ColumnPopover{source: source}
	p.trigger = widget.NewButtonWithIcon("", theme.MoreVerticalIcon(), p.Toggle)
	p.trigger.Importance = widget.LowImportance
	p.ExtendBaseWidget(p)
	return p
}

func (p *ColumnPopover) CreateRenderer() fyne.WidgetRenderer {
	return &popoverRenderer{WidgetRenderer: widget.NewSimpleRenderer(p.trigger), popover: p}
}

// popoverRenderer closes an open panel when the widget is torn down, so
// the overlay subscription never outlives the trigger.
type popoverRenderer struct {
	fyne.WidgetRenderer
	popover *ColumnPopover
}

func (r *popoverRenderer) Destroy() {
	r.popover.Close()
	r.WidgetRenderer.Destroy()
}

// SetCanvas pins the canvas the panel opens on. Without it the canvas is
// looked up from the driver when opening.
func (p *ColumnPopover) SetCanvas(c fyne.Canvas) {
	p.canvas = c
}

// IsOpen reports whether the panel is shown.
func (p *ColumnPopover) IsOpen() bool {
	return p.sub.Active()
}

// Toggle opens a closed panel and closes an open one.
func (p *ColumnPopover) Toggle() {
	if p.IsOpen() {
		p.Close()
		return
	}
	p.Open()
}

// Open shows the panel below the trigger. It does nothing when already
// open or when the trigger is not on a canvas.
func (p *ColumnPopover) Open() {
	if p.IsOpen() {
		return
	}
	c := p.canvas
	if c == nil {
		c = fyne.CurrentApp().Driver().CanvasForObject(p)
	}
	if c == nil {
		return
	}

	p.panel = p.buildPanel()
	size := fyne.NewSize(popoverWidth, p.panel.MinSize().Height)
	p.panel.Resize(size)
	p.panel.Move(p.anchor(c, size))

	p.sub = overlay.ForCanvas(c).Subscribe(p.panel, nil, p.Close)
	c.Focus(p.search)
}

// Close hides the panel and releases its overlay subscription. It is safe
// to call on a closed popover.
func (p *ColumnPopover) Close() {
	p.sub.Release()
	p.sub = nil
	p.panel = nil
	p.search = nil
	p.list = nil
}

// Destroy tears the popover down. An open panel is closed first.
func (p *ColumnPopover) Destroy() {
	p.Close()
}

// Refresh redraws the trigger and, while open, the column list.
func (p *ColumnPopover) Refresh() {
	if p.IsOpen() {
		p.fillList()
	}
	p.BaseWidget.Refresh()
}

// anchor right-aligns the panel with the trigger, just below it, kept on
// the canvas.
func (p *ColumnPopover) anchor(c fyne.Canvas, size fyne.Size) fyne.Position {
	pos := fyne.CurrentApp().Driver().AbsolutePositionForObject(p)
	x := pos.X + p.Size().Width - size.Width
	y := pos.Y + p.Size().Height
	if limit := c.Size().Width - size.Width; x > limit {
		x = limit
	}
	return fyne.NewPos(max(x, 0), max(y, 0))
}

func (p *ColumnPopover) buildPanel() fyne.CanvasObject {
	p.search = widget.NewEntry()
	p.search.SetPlaceHolder("Search column...")
	p.search.OnChanged = func(string) { p.fillList() }

	p.list = container.NewVBox()
	p.fillList()

	scroll := container.NewVScroll(p.list)
	scroll.SetMinSize(fyne.NewSize(popoverWidth, popoverListHeight))

	showAll := widget.NewButton("Show all", func() {
		p.source.ShowAllColumns()
		p.fillList()
	})
	showAll.Importance = widget.LowImportance

	bg := canvas.NewRectangle(theme.Color(theme.ColorNameOverlayBackground))
	bg.StrokeColor = theme.Color(theme.ColorNameInputBorder)
	bg.StrokeWidth = 1

	return container.NewStack(bg, container.NewPadded(
		container.NewBorder(p.search, showAll, nil, nil, scroll),
	))
}

// fillList rebuilds one checkbox per column matching the search text.
func (p *ColumnPopover) fillList() {
	if p.list == nil {
		return
	}
	columns := p.source.Columns()

	anyVisible := false
	for _, col := range columns {
		if col.Visible() {
			anyVisible = true
			break
		}
	}
	if !anyVisible {
		p.list.Objects = []fyne.CanvasObject{
			container.NewCenter(widget.NewLabel(datatable.NoColumnsText)),
		}
		p.list.Refresh()
		return
	}

	query := ""
	if p.search != nil {
		query = strings.ToLower(strings.TrimSpace(p.search.Text))
	}

	objects := make([]fyne.CanvasObject, 0, len(columns))
	for _, col := range columns {
		if query != "" &&
			!strings.Contains(strings.ToLower(col.ID()), query) &&
			!strings.Contains(strings.ToLower(col.Header()), query) {
			continue
		}
		objects = append(objects, p.newCheck(col))
	}
	p.list.Objects = objects
	p.list.Refresh()
}

func (p *ColumnPopover) newCheck(col datatable.ColumnHandle) *widget.Check {
	check := widget.NewCheck(col.Header(), nil)
	check.SetChecked(col.Visible())
	id := col.ID()
	var onChanged func(bool)
	onChanged = func(bool) {
		if p.source.ToggleColumn(id) {
			return
		}
		// Refused: the column is the last visible one.
		check.OnChanged = nil
		check.SetChecked(true)
		check.OnChanged = onChanged
	}
	check.OnChanged = onChanged
	return check
}
