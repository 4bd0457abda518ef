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
	"log/slog"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/magpierre/fyne-datatable/datatable"
	"github.com/magpierre/fyne-datatable/internal/loader"
	dtwidget "github.com/magpierre/fyne-datatable/widget"
)

// tabData holds information about a table tab.
type tabData struct {
	table          *loader.Table
	dataTable      *dtwidget.DataTable
	tab            *container.TabItem
	removeListener func()
}

// DataBrowser shows loaded tables, one tab each, inside a "Browser" tab of
// the main window.
type DataBrowser struct {
	w              fyne.Window
	config         dtwidget.Config
	innerTabs      *container.DocTabs
	docTabs        *container.DocTabs
	browserTab     *container.TabItem
	tabData        map[*container.TabItem]*tabData
	statusCallback func(string)
}

// NewDataBrowser creates the browser and appends its tab to docTabs.
// Every table is built with config.
func NewDataBrowser(w fyne.Window, docTabs *container.DocTabs, config dtwidget.Config, statusCallback func(string)) *DataBrowser {
	t := &DataBrowser{
		w:              w,
		config:         config,
		docTabs:        docTabs,
		tabData:        make(map[*container.TabItem]*tabData),
		statusCallback: statusCallback,
	}

	t.innerTabs = container.NewDocTabs()
	t.innerTabs.SetTabLocation(container.TabLocationBottom)
	t.innerTabs.CloseIntercept = t.closeTab
	t.innerTabs.OnSelected = t.updateStatusForTab

	t.browserTab = container.NewTabItem("Browser", t.innerTabs)
	t.docTabs.Append(t.browserTab)
	return t
}

// AddTable shows tbl in a new tab and selects it.
func (t *DataBrowser) AddTable(tbl *loader.Table) *container.TabItem {
	data := &tabData{table: tbl}

	config := t.config
	config.Caption = caption(tbl)
	config.FooterActions = []fyne.CanvasObject{
		widget.NewButtonWithIcon("Export...", theme.DocumentSaveIcon(), func() {
			t.showExportDialog(data)
		}),
	}
	config.SelectionActions = []fyne.CanvasObject{
		widget.NewButtonWithIcon("Details", theme.InfoIcon(), func() {
			t.showSelectedRecord(data)
		}),
		widget.NewButtonWithIcon("Copy", theme.ContentCopyIcon(), func() {
			if text, ok := selectedRowText(tbl.Model.Projection()); ok {
				fyne.CurrentApp().Clipboard().SetContent(text)
				if t.statusCallback != nil {
					t.statusCallback("Row copied to clipboard")
				}
			}
		}),
	}

	data.dataTable = dtwidget.NewDataTableWithConfig(tbl.Model, config)
	data.dataTable.SetWindow(t.w)
	data.dataTable.OnRowSelected(func(rec datatable.Record) {
		slog.Debug("row selected", "table", tbl.Name, "fields", len(rec))
		if sel, ok := tbl.Model.Selected(); ok && t.statusCallback != nil {
			t.statusCallback(fmt.Sprintf("%s | Row %d selected", statusText(tbl.Name, tbl.Model), sel.ID+1))
		}
	})

	data.tab = container.NewTabItem(tbl.Name, data.dataTable)
	data.removeListener = tbl.Model.AddListener(func() {
		if t.innerTabs.Selected() == data.tab {
			t.updateStatusForTab(data.tab)
		}
	})
	t.tabData[data.tab] = data

	t.innerTabs.Append(data.tab)
	t.innerTabs.Select(data.tab)

	// The Browser tab may have been closed with its last table.
	browserExists := false
	for _, item := range t.docTabs.Items {
		if item == t.browserTab {
			browserExists = true
			break
		}
	}
	if !browserExists {
		t.docTabs.Append(t.browserTab)
	}
	t.docTabs.Select(t.browserTab)

	slog.Info("table opened", "table", tbl.Name, "type", tbl.Type.String(),
		"rows", tbl.Model.OriginalRowCount(), "columns", tbl.Model.OriginalColumnCount())
	t.updateStatusForTab(data.tab)
	return data.tab
}

// Current returns the table shown in the selected tab.
func (t *DataBrowser) Current() (*loader.Table, bool) {
	data, ok := t.tabData[t.innerTabs.Selected()]
	if !ok {
		return nil, false
	}
	return data.table, true
}

// ExportCurrent starts the export of the selected tab.
func (t *DataBrowser) ExportCurrent() {
	data, ok := t.tabData[t.innerTabs.Selected()]
	if !ok {
		dialog.ShowInformation("Export", "Open a table first", t.w)
		return
	}
	t.showExportDialog(data)
}

// Len returns the number of open tables.
func (t *DataBrowser) Len() int {
	return len(t.tabData)
}

// Close destroys every table.
func (t *DataBrowser) Close() {
	for ti := range t.tabData {
		t.closeTab(ti)
	}
}

func (t *DataBrowser) closeTab(ti *container.TabItem) {
	if data, ok := t.tabData[ti]; ok {
		data.removeListener()
		data.dataTable.Destroy()
		delete(t.tabData, ti)
		slog.Debug("table closed", "table", data.table.Name)
	}
	t.innerTabs.Remove(ti)

	if sel := t.innerTabs.Selected(); sel != nil {
		t.updateStatusForTab(sel)
	} else if t.statusCallback != nil {
		t.statusCallback("Ready")
	}
}

// updateStatusForTab updates the status bar with information about the given tab.
func (t *DataBrowser) updateStatusForTab(ti *container.TabItem) {
	if ti == nil || t.statusCallback == nil {
		return
	}
	if data, ok := t.tabData[ti]; ok {
		t.statusCallback(statusText(data.table.Name, data.table.Model))
	}
}

func (t *DataBrowser) showSelectedRecord(data *tabData) {
	row, ok := data.table.Model.Selected()
	if !ok {
		return
	}
	keys := make([]string, 0, len(row.Data))
	for k := range row.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	form := widget.NewForm()
	for _, k := range keys {
		value := widget.NewLabel(datatable.FormatField(row.Data[k]))
		value.Wrapping = fyne.TextWrapWord
		value.Selectable = true
		form.Append(k, value)
	}

	d := dialog.NewCustom(fmt.Sprintf("%s, row %d", data.table.Name, row.ID+1), "Close", container.NewVScroll(form), t.w)
	d.Resize(fyne.NewSize(480, 420))
	d.Show()
}

// selectedRowText returns the visible cells of the selected row as
// tab-separated text.
func selectedRowText(p datatable.Projection) (string, bool) {
	for _, row := range p.Rows {
		if !row.Selected {
			continue
		}
		cells := make([]string, len(row.Cells))
		for i, v := range row.Cells {
			cells[i] = v.Formatted
		}
		return strings.Join(cells, "\t"), true
	}
	return "", false
}

// caption summarizes where a table came from.
func caption(tbl *loader.Table) string {
	if share, ok := tbl.Metadata["share"]; ok {
		return fmt.Sprintf("%s.%v.%s", share, tbl.Metadata["schema"], tbl.Name)
	}
	text := fmt.Sprintf("%s (%s)", tbl.Name, tbl.Type)
	if rows := tbl.Model.OriginalRowCount(); tbl.SourceRows > rows {
		text += fmt.Sprintf(", %d of %d rows loaded", rows, tbl.SourceRows)
	}
	return text
}
