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
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/magpierre/fyne-datatable/datatable"
)

// headerCell is a column header. Tapping it advances the sort of its
// column.
type headerCell struct {
	widget.BaseWidget

	label   *widget.Label
	icon    *widget.Icon
	content fyne.CanvasObject

	column string
	onTap  func(column string)
}

var _ fyne.Tappable = (*headerCell)(nil)

func newHeaderCell(style BorderStyle, onTap func(string)) *headerCell {
	h := &headerCell{
		label: widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		icon:  widget.NewIcon(nil),
		onTap: onTap,
	}
	h.label.Truncation = fyne.TextTruncateEllipsis
	bg := canvas.NewRectangle(theme.Color(theme.ColorNameHeaderBackground))
	h.content = container.NewStack(bg, bordered(container.NewBorder(nil, nil, nil, h.icon, h.label), style))
	h.ExtendBaseWidget(h)
	return h
}

func (h *headerCell) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(h.content)
}

func (h *headerCell) set(cell datatable.HeaderCell) {
	h.column = cell.ID
	h.label.SetText(cell.Label)
	switch cell.Sort {
	case datatable.SortAscending:
		h.icon.SetResource(theme.MenuDropUpIcon())
		h.icon.Show()
	case datatable.SortDescending:
		h.icon.SetResource(theme.MenuDropDownIcon())
		h.icon.Show()
	default:
		h.icon.SetResource(nil)
		h.icon.Hide()
	}
}

func (h *headerCell) Tapped(*fyne.PointEvent) {
	if h.onTap != nil && h.column != "" {
		h.onTap(h.column)
	}
}

// bodyCell is one rendered cell. Tapping any cell activates its row.
type bodyCell struct {
	widget.BaseWidget

	background *canvas.Rectangle
	label      *widget.Label
	content    fyne.CanvasObject

	row   int
	onTap func(row int)
}

var _ fyne.Tappable = (*bodyCell)(nil)

func newBodyCell(style BorderStyle, onTap func(int)) *bodyCell {
	c := &bodyCell{
		background: canvas.NewRectangle(color.Transparent),
		label:      widget.NewLabel(""),
		row:        -1,
		onTap:      onTap,
	}
	c.label.Truncation = fyne.TextTruncateEllipsis
	c.content = container.NewStack(c.background, bordered(c.label, style))
	c.ExtendBaseWidget(c)
	return c
}

func (c *bodyCell) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.content)
}

func (c *bodyCell) set(row int, v datatable.Value, selected bool) {
	c.row = row
	if v.IsNull {
		c.label.SetText("")
	} else {
		c.label.SetText(v.Formatted)
	}
	if selected {
		c.background.FillColor = theme.Color(theme.ColorNameSelection)
	} else {
		c.background.FillColor = color.Transparent
	}
	c.background.Refresh()
}

func (c *bodyCell) Tapped(*fyne.PointEvent) {
	if c.onTap != nil && c.row >= 0 {
		c.onTap(c.row)
	}
}
