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

// Package render prints a table projection as text.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/magpierre/fyne-datatable/datatable"
)

// Format selects the text layout.
type Format string

const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

// ParseFormat accepts table, markdown (or md) and csv.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Projection writes p to w. Header labels carry the sort direction and a
// placeholder is rendered as one row merged across all columns.
func Projection(w io.Writer, p datatable.Projection, format Format) error {
	if p.Placeholder == datatable.PlaceholderNoColumns {
		_, err := fmt.Fprintln(w, p.PlaceholderText())
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	t.SetStyle(style)

	header := make(table.Row, len(p.Columns))
	for i, h := range p.Columns {
		header[i] = HeaderLabel(h)
	}
	t.AppendHeader(header)

	if p.Placeholder == datatable.PlaceholderNoData {
		row := make(table.Row, len(p.Columns))
		for i := range row {
			row[i] = p.PlaceholderText()
		}
		t.AppendRow(row, table.RowConfig{AutoMerge: true})
	}
	for _, r := range p.Rows {
		row := make(table.Row, len(r.Cells))
		for i, v := range r.Cells {
			row[i] = v.Formatted
		}
		t.AppendRow(row)
	}

	switch format {
	case FormatMarkdown:
		t.RenderMarkdown()
	case FormatCSV:
		t.RenderCSV()
	default:
		t.Render()
		if _, err := fmt.Fprintf(w, "(%d rows)\n", len(p.Rows)); err != nil {
			return err
		}
	}
	return nil
}

// HeaderLabel returns the header text with an arrow for the sort
// direction.
func HeaderLabel(h datatable.HeaderCell) string {
	switch h.Sort {
	case datatable.SortAscending:
		return h.Label + " ↑"
	case datatable.SortDescending:
		return h.Label + " ↓"
	default:
		return h.Label
	}
}
