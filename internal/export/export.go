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

// Package export writes the current view of a table (visible columns,
// filtered and sorted rows) to Parquet, CSV, JSON or XLSX.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/xuri/excelize/v2"

	arrowadapter "github.com/magpierre/fyne-datatable/adapters/arrow"
	"github.com/magpierre/fyne-datatable/datatable"
)

// Format represents the supported export formats
type Format int

const (
	FormatParquet Format = iota
	FormatCSV
	FormatJSON
	FormatXLSX
)

// Formats lists every format in menu order.
var Formats = []Format{FormatParquet, FormatCSV, FormatJSON, FormatXLSX}

// String returns the display name of the format.
func (f Format) String() string {
	switch f {
	case FormatParquet:
		return "Parquet"
	case FormatCSV:
		return "CSV"
	case FormatJSON:
		return "JSON"
	case FormatXLSX:
		return "XLSX"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

// Ext returns the file extension of the format, with the dot.
func (f Format) Ext() string {
	return "." + strings.ToLower(f.String())
}

// ParseFormat parses a format name or file extension.
func ParseFormat(s string) (Format, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")
	for _, f := range Formats {
		if s == strings.ToLower(f.String()) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown format %q", datatable.ErrExportFailed, s)
}

// FormatFromPath picks the format from the extension of path.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// ToFile exports the current view of m to path.
func ToFile(m *datatable.TableModel, path string, format Format) error {
	table, err := Table(m)
	if err != nil {
		return err
	}
	defer table.Release()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: failed to create %s file: %w", datatable.ErrExportFailed, format, err)
	}
	defer f.Close()

	// The Parquet writer closes f itself.
	if err := Write(table, f, format); err != nil {
		return err
	}
	slog.Info("table exported", "path", path, "format", format.String(), "rows", table.NumRows(), "columns", table.NumCols())
	return nil
}

// Write encodes table to w.
func Write(table arrow.Table, w io.Writer, format Format) error {
	var err error
	switch format {
	case FormatParquet:
		err = ToParquet(table, w)
	case FormatCSV:
		err = ToCSV(table, w)
	case FormatJSON:
		err = ToJSON(table, w)
	case FormatXLSX:
		err = ToXLSX(table, w)
	default:
		err = fmt.Errorf("unknown format %d", int(format))
	}
	if err != nil {
		return fmt.Errorf("%w: %w", datatable.ErrExportFailed, err)
	}
	return nil
}

// ToParquet writes the Arrow table as Snappy-compressed Parquet.
func ToParquet(table arrow.Table, w io.Writer) error {
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(table.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := writer.WriteTable(table, max(table.NumRows(), 1)); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write table to parquet: %w", err)
	}
	return writer.Close()
}

// ToCSV writes a header row and one row per record, formatted as displayed.
func ToCSV(table arrow.Table, w io.Writer) error {
	writer := csv.NewWriter(w)

	schema := table.Schema()
	headers := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		headers[i] = field.Name
	}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	err := eachRow(table, func(rec arrow.Record, row int) error {
		out := make([]string, rec.NumCols())
		for c, col := range rec.Columns() {
			out[c] = arrowadapter.ValueAt(col, row).Formatted
		}
		return writer.Write(out)
	})
	if err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// ToJSON writes an indented array of objects keyed by column name.
func ToJSON(table arrow.Table, w io.Writer) error {
	schema := table.Schema()
	records := make([]map[string]any, 0, table.NumRows())
	err := eachRow(table, func(rec arrow.Record, row int) error {
		obj := make(map[string]any, rec.NumCols())
		for c, col := range rec.Columns() {
			obj[schema.Field(c).Name] = arrowadapter.ValueAt(col, row).Raw
		}
		records = append(records, obj)
		return nil
	})
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// ToXLSX writes a single sheet workbook with a header row. Cells keep
// their raw values so numbers and timestamps stay typed in the sheet.
func ToXLSX(table arrow.Table, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet writer: %w", err)
	}

	schema := table.Schema()
	header := make([]any, schema.NumFields())
	for i, field := range schema.Fields() {
		header[i] = field.Name
	}
	rowNum := 1
	cell, _ := excelize.CoordinatesToCellName(1, rowNum)
	if err := sw.SetRow(cell, header); err != nil {
		return fmt.Errorf("failed to write XLSX header: %w", err)
	}

	err = eachRow(table, func(rec arrow.Record, row int) error {
		out := make([]any, rec.NumCols())
		for c, col := range rec.Columns() {
			out[c] = arrowadapter.ValueAt(col, row).Raw
		}
		rowNum++
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		return sw.SetRow(cell, out)
	})
	if err != nil {
		return err
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func eachRow(table arrow.Table, fn func(rec arrow.Record, row int) error) error {
	tr := array.NewTableReader(table, max(table.NumRows(), 1))
	defer tr.Release()

	for tr.Next() {
		rec := tr.Record()
		for row := 0; row < int(rec.NumRows()); row++ {
			if err := fn(rec, row); err != nil {
				return err
			}
		}
	}
	if tr.Err() != nil {
		return fmt.Errorf("error reading table: %w", tr.Err())
	}
	return nil
}
