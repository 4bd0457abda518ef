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
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/magpierre/fyne-datatable/internal/export"
)

// showExportDialog asks for a format and then a target file, and writes
// the current view of the tab there.
func (t *DataBrowser) showExportDialog(data *tabData) {
	names := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		names[i] = f.String()
	}
	formatSelect := widget.NewSelect(names, nil)
	formatSelect.SetSelectedIndex(0)

	dialog.ShowForm("Export Current View", "Next", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Format", formatSelect)},
		func(confirmed bool) {
			if !confirmed {
				return
			}
			format, err := export.ParseFormat(formatSelect.Selected)
			if err != nil {
				dialog.ShowError(err, t.w)
				return
			}
			t.exportData(data, format)
		}, t.w)
}

// exportData handles the export of data to different formats.
func (t *DataBrowser) exportData(data *tabData, format export.Format) {
	saveDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, t.w)
			return
		}
		if writer == nil {
			return
		}

		// The view is read on the UI thread; encoding runs in the background.
		table, err := export.Table(data.table.Model)
		if err != nil {
			writer.Close()
			dialog.ShowError(err, t.w)
			return
		}

		pbi := widget.NewProgressBarInfinite()
		progress := dialog.NewCustomWithoutButtons("Exporting...", pbi, t.w)
		progress.Resize(fyne.NewSize(300, 100))
		progress.Show()

		go func() {
			defer table.Release()
			exportErr := export.Write(table, writer, format)
			// The Parquet writer has already closed writer.
			if format != export.FormatParquet {
				if cerr := writer.Close(); exportErr == nil && cerr != nil {
					exportErr = cerr
				}
			}

			path := writer.URI().Path()
			rows, cols := table.NumRows(), table.NumCols()
			fyne.Do(func() {
				progress.Hide()
				if exportErr != nil {
					slog.Error("export failed", "table", data.table.Name, "path", path, "error", exportErr)
					dialog.ShowError(fmt.Errorf("export failed: %w", exportErr), t.w)
					return
				}
				slog.Info("table exported", "table", data.table.Name, "path", path,
					"format", format.String(), "rows", rows, "columns", cols)
				dialog.ShowInformation("Export Successful",
					fmt.Sprintf("Exported %d rows x %d columns to:\n%s", rows, cols, path), t.w)
			})
		}()
	}, t.w)

	base := strings.TrimSuffix(data.table.Name, filepath.Ext(data.table.Name))
	saveDialog.SetFileName(cleanFilename(base) + format.Ext())
	saveDialog.SetFilter(storage.NewExtensionFileFilter([]string{format.Ext()}))
	saveDialog.Show()
}
