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
	"fmt"
	"strings"

	"github.com/magpierre/fyne-datatable/datatable"
)

// statusText describes the current view of a table for the status bar.
func statusText(name string, model *datatable.TableModel) string {
	totalRows := model.OriginalRowCount()
	totalCols := model.OriginalColumnCount()
	visibleRows := model.VisibleRowCount()
	visibleCols := model.VisibleColumnCount()

	var text string
	if visibleRows != totalRows || visibleCols != totalCols {
		text = fmt.Sprintf("Table %s (showing %d/%d columns x %d/%d rows)",
			name, visibleCols, totalCols, visibleRows, totalRows)
	} else {
		text = fmt.Sprintf("Table %s (%d columns x %d rows)", name, totalCols, totalRows)
	}

	if q := model.Query(); q != "" {
		text += fmt.Sprintf(" | Search: %q", q)
	}

	sortState := model.GetSortState()
	if sortState.IsSorted() {
		label := sortState.Column
		if col, ok := model.Registry().Lookup(sortState.Column); ok {
			label = col.Label()
		}
		direction := "↑"
		if sortState.Direction == datatable.SortDescending {
			direction = "↓"
		}
		text += fmt.Sprintf(" | Sorted: %s %s", label, direction)
	}
	return text
}

// cleanFilename keeps letters, digits, '_' and '-', and turns spaces into
// underscores.
func cleanFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == ' ':
			b.WriteByte('_')
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "table"
	}
	return b.String()
}
