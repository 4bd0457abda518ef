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

package windows

import (
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// SyntaxView is a read-only, syntax-highlighted rendering of computed
// column definitions.
type SyntaxView struct {
	widget.BaseWidget
	textGrid *widget.TextGrid
	columns  map[string]bool
	mu       sync.Mutex // protects textGrid rows
}

// NewSyntaxView creates a view that marks references to columns.
func NewSyntaxView(columns []string) *SyntaxView {
	sv := &SyntaxView{
		textGrid: widget.NewTextGrid(),
		columns:  make(map[string]bool, len(columns)),
	}
	for _, c := range columns {
		sv.columns[c] = true
	}
	// Rows are assigned directly; SetText("") with line numbers on an
	// empty grid panics in fyne v2.7.0.
	sv.textGrid.ShowLineNumbers = true
	sv.ExtendBaseWidget(sv)
	return sv
}

// SetText replaces the content and re-highlights every line.
func (sv *SyntaxView) SetText(text string) {
	sv.mu.Lock()
	lines := strings.Split(text, "\n")
	rows := make([]widget.TextGridRow, len(lines))
	for i, line := range lines {
		rows[i] = sv.styledRow(line)
	}
	sv.textGrid.Rows = rows
	sv.mu.Unlock()

	sv.textGrid.Refresh()
}

// Text returns the current content.
func (sv *SyntaxView) Text() string {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	return sv.textGrid.Text()
}

func (sv *SyntaxView) styledRow(line string) widget.TextGridRow {
	cells := highlightLine(line, sv.columns)
	row := widget.TextGridRow{Cells: make([]widget.TextGridCell, len(cells))}
	for i, c := range cells {
		row.Cells[i] = widget.TextGridCell{Rune: c.Rune, Style: syntaxStyles[c.Kind]}
	}
	return row
}

func (sv *SyntaxView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(sv.textGrid)
}
