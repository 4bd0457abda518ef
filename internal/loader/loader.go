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

// Package loader turns data files and Delta Sharing tables into table
// models, applying load-time query options on the way.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"

	arrowadapter "github.com/magpierre/fyne-datatable/adapters/arrow"
	csvadapter "github.com/magpierre/fyne-datatable/adapters/csv"
	sliceadapter "github.com/magpierre/fyne-datatable/adapters/slice"
	"github.com/magpierre/fyne-datatable/datatable"
	"github.com/magpierre/fyne-datatable/internal/filter"
	"github.com/magpierre/fyne-datatable/internal/script"
)

var (
	// ErrUnsupportedFile is returned for files that are not CSV, Parquet
	// or JSON.
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrProfile is returned when a file is a Delta Sharing profile rather
	// than data. Open it with NewSharingClient.
	ErrProfile = errors.New("file is a Delta Sharing profile")

	// ErrInvalidProfile is returned for a malformed Delta Sharing profile.
	ErrInvalidProfile = errors.New("invalid Delta Sharing profile")
)

// QueryOptions holds the query configuration for table data loading
type QueryOptions struct {
	// SelectedColumns keeps only the named columns, in source order.
	// Empty keeps every column.
	SelectedColumns []string
	// Predicate filters rows, e.g. `age > 30 AND city ~ lon`.
	Predicate string
	// Limit caps the number of rows after filtering. Zero means no limit.
	Limit int64
	// Computed columns are appended after the source columns and may be
	// referenced by Predicate.
	Computed []script.Definition
}

// IsEmpty reports whether o changes nothing.
func (o *QueryOptions) IsEmpty() bool {
	return o == nil || (len(o.SelectedColumns) == 0 && o.Predicate == "" &&
		o.Limit <= 0 && len(o.Computed) == 0)
}

// Table is a loaded table ready for display.
type Table struct {
	Name     string
	Type     FileType
	Model    *datatable.TableModel
	Metadata datatable.Metadata
	// SourceRows is the row count before predicate and limit.
	SourceRows int
}

// LoadFile loads a data file using the appropriate adapter.
func LoadFile(ctx context.Context, path string, opts *QueryOptions) (*Table, error) {
	content, err := sniff(path)
	if err != nil {
		return nil, err
	}

	var (
		src datatable.DataSource
		ft  = DetectFileType(path, content)
	)
	switch ft {
	case FileTypeCSV:
		config := csvadapter.DefaultConfig()
		config.Delimiter = 0
		src, err = csvadapter.NewFromFile(path, config)
		if err != nil {
			return nil, fmt.Errorf("failed to load CSV file: %w", err)
		}
	case FileTypeParquet:
		table, err := ReadParquet(ctx, path)
		if err != nil {
			return nil, err
		}
		defer table.Release()
		return FromArrow(filepath.Base(path), table, opts)
	case FileTypeJSON:
		src, err = readJSON(path)
		if err != nil {
			return nil, err
		}
	case FileTypeDeltaSharingProfile:
		return nil, fmt.Errorf("%w: %s", ErrProfile, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}

	t, err := Build(filepath.Base(path), src, opts)
	if err != nil {
		return nil, err
	}
	t.Type = ft
	return t, nil
}

// sniff reads the head of path for content detection.
func sniff(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	buf := make([]byte, 64*1024)
	n, _ := f.Read(buf)
	return buf[:n], nil
}

func readJSON(path string) (datatable.DataSource, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}

	// An array of objects, or a single object.
	var data []map[string]any
	if err := json.Unmarshal(content, &data); err != nil {
		var single map[string]any
		if err := json.Unmarshal(content, &single); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		data = []map[string]any{single}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: JSON file has no records", datatable.ErrNoColumns)
	}

	src, err := sliceadapter.NewFromMaps(data)
	if err != nil {
		return nil, fmt.Errorf("failed to create data source from JSON: %w", err)
	}
	src.SetMetadata(datatable.Metadata{"source": "json", "path": path})
	return src, nil
}

// FromArrow builds a table from an Arrow table. Column selection and limit
// are pushed down to Arrow when nothing else needs the dropped data.
func FromArrow(name string, table arrow.Table, opts *QueryOptions) (*Table, error) {
	narrowed, err := narrowArrow(table, opts)
	if err != nil {
		return nil, err
	}
	defer narrowed.Release()

	src, err := arrowadapter.NewFromArrowTable(narrowed)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow data source: %w", err)
	}
	defer src.Release()

	t, err := Build(name, src, opts)
	if err != nil {
		return nil, err
	}
	t.Type = FileTypeParquet
	t.SourceRows = int(table.NumRows())
	return t, nil
}

// Build materializes src and applies opts: computed columns, predicate,
// limit and column selection, in that order.
func Build(name string, src datatable.DataSource, opts *QueryOptions) (*Table, error) {
	cols, err := datatable.ColumnsFromSource(src)
	if err != nil {
		return nil, err
	}
	records, err := datatable.RecordsFromSource(src)
	if err != nil {
		return nil, err
	}
	t := &Table{Name: name, Metadata: src.Metadata(), SourceRows: len(records)}
	if opts == nil {
		opts = &QueryOptions{}
	}

	if len(opts.Computed) > 0 {
		cols, err = addComputed(cols, records, opts.Computed)
		if err != nil {
			return nil, err
		}
	}

	if opts.Predicate != "" {
		ids := make([]string, len(cols))
		for i, c := range cols {
			ids[i] = c.ID
		}
		pred, err := filter.Parse(opts.Predicate, ids)
		if err != nil {
			return nil, err
		}
		records, err = filter.Apply(records, pred)
		if err != nil {
			return nil, err
		}
	}

	if opts.Limit > 0 && int64(len(records)) > opts.Limit {
		records = records[:opts.Limit]
	}

	if len(opts.SelectedColumns) > 0 {
		cols, records, err = selectColumns(cols, records, opts.SelectedColumns, opts.Computed)
		if err != nil {
			return nil, err
		}
	}

	model, err := datatable.New(records, cols)
	if err != nil {
		return nil, fmt.Errorf("failed to create table model: %w", err)
	}
	t.Model = model
	slog.Debug("table built", "name", name, "rows", len(records), "columns", len(cols))
	return t, nil
}

// addComputed evaluates every computed column into the records so search,
// sort and export see the values.
func addComputed(cols []datatable.Column, records []datatable.Record, defs []script.Definition) ([]datatable.Column, error) {
	computed, err := script.CompileAll(defs)
	if err != nil {
		return nil, err
	}
	for _, c := range computed {
		name := c.Definition().Name
		dt, typed := datatable.TypeString, false
		for _, rec := range records {
			v, err := c.Eval(rec)
			if err != nil {
				v = nil
			}
			if v != nil && !typed {
				dt, typed = datatable.InferType(v), true
			}
			rec[name] = v
		}
		cols = append(cols, datatable.Column{ID: name, Header: name, Type: dt})
	}
	return cols, nil
}

// selectColumns keeps the selected columns plus every computed column.
// Unselected fields are dropped from the records so search does not match
// data that is never shown.
func selectColumns(cols []datatable.Column, records []datatable.Record, selected []string, computed []script.Definition) ([]datatable.Column, []datatable.Record, error) {
	keep := make(map[string]bool, len(selected)+len(computed))
	for _, name := range selected {
		keep[name] = true
	}
	for _, d := range computed {
		keep[d.Name] = true
	}

	known := make(map[string]bool, len(cols))
	out := make([]datatable.Column, 0, len(keep))
	for _, c := range cols {
		known[c.ID] = true
		if keep[c.ID] {
			out = append(out, c)
		}
	}
	for _, name := range selected {
		if !known[name] {
			return nil, nil, fmt.Errorf("%w: %s", datatable.ErrColumnNotFound, name)
		}
	}

	narrowed := make([]datatable.Record, len(records))
	for i, rec := range records {
		r := make(datatable.Record, len(out))
		for _, c := range out {
			r[c.ID] = rec[c.ID]
		}
		narrowed[i] = r
	}
	return out, narrowed, nil
}
