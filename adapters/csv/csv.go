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

// Package csv loads delimited text files into an in-memory data source.
package csv

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/magpierre/fyne-datatable/adapters/slice"
	"github.com/magpierre/fyne-datatable/datatable"
)

// Config controls how a file is parsed.
type Config struct {
	// Delimiter separates fields. Zero means detect from the first line.
	Delimiter rune

	// HasHeaders takes column names from the first record. Without it
	// columns are named column_1, column_2, ...
	HasHeaders bool

	// TrimSpace trims leading and trailing space from every field.
	TrimSpace bool

	// InferTypes types a column as int, float, bool, date or timestamp
	// when every non-empty field parses as one.
	InferTypes bool
}

// DefaultConfig returns comma-separated input with headers and inferred
// types.
func DefaultConfig() Config {
	return Config{
		Delimiter:  ',',
		HasHeaders: true,
		TrimSpace:  true,
		InferTypes: true,
	}
}

// NewFromFile loads path.
func NewFromFile(path string, config Config) (*slice.DataSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	src, err := NewFromReader(f, config)
	if err != nil {
		return nil, err
	}
	src.Metadata()["path"] = path
	return src, nil
}

// NewFromReader parses every record of r.
func NewFromReader(r io.Reader, config Config) (*slice.DataSource, error) {
	br := bufio.NewReader(r)
	if config.Delimiter == 0 {
		first, err := br.Peek(4096)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		config.Delimiter = DetectDelimiter(string(first))
	}

	reader := csv.NewReader(br)
	reader.Comma = config.Delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = config.TrimSpace

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: input is empty", datatable.ErrNoColumns)
	}

	var names []string
	if config.HasHeaders {
		names = make([]string, len(records[0]))
		for i, h := range records[0] {
			names[i] = strings.TrimSpace(h)
			if names[i] == "" {
				names[i] = fmt.Sprintf("column_%d", i+1)
			}
		}
		records = records[1:]
	} else {
		names = make([]string, len(records[0]))
		for i := range names {
			names[i] = fmt.Sprintf("column_%d", i+1)
		}
	}

	fields := make([][]string, len(records))
	for r, rec := range records {
		row := make([]string, len(names))
		for c := range row {
			if c < len(rec) {
				row[c] = rec[c]
				if config.TrimSpace {
					row[c] = strings.TrimSpace(row[c])
				}
			}
		}
		fields[r] = row
	}

	types := make([]datatable.DataType, len(names))
	for c := range names {
		if config.InferTypes {
			types[c] = inferColumn(fields, c)
		}
	}

	rows := make([][]any, len(fields))
	for r, row := range fields {
		vals := make([]any, len(row))
		for c, s := range row {
			vals[c] = parseField(s, types[c])
		}
		rows[r] = vals
	}
	src, err := slice.New(names, types, rows)
	if err != nil {
		return nil, err
	}
	src.SetMetadata(datatable.Metadata{
		"source":    "csv",
		"delimiter": DelimiterName(config.Delimiter),
	})
	return src, nil
}

// DetectDelimiter picks the most frequent of comma, semicolon, tab and
// pipe in the first line of sample, preferring comma on ties.
func DetectDelimiter(sample string) rune {
	line, _, _ := strings.Cut(sample, "\n")
	best, bestCount := ',', strings.Count(line, ",")
	for _, d := range []rune{';', '\t', '|'} {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// DelimiterName returns a readable name for a delimiter.
func DelimiterName(d rune) string {
	switch d {
	case ',':
		return "comma"
	case ';':
		return "semicolon"
	case '\t':
		return "tab"
	case '|':
		return "pipe"
	default:
		return string(d)
	}
}

var (
	dateLayouts      = []string{"2006-01-02"}
	timestampLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05"}
)

func inferColumn(fields [][]string, c int) datatable.DataType {
	candidates := []datatable.DataType{
		datatable.TypeInt, datatable.TypeFloat, datatable.TypeBool,
		datatable.TypeDate, datatable.TypeTimestamp,
	}
	seen := false
	for _, row := range fields {
		s := row[c]
		if s == "" {
			continue
		}
		seen = true
		kept := candidates[:0]
		for _, dt := range candidates {
			if _, ok := parseAs(s, dt); ok {
				kept = append(kept, dt)
			}
		}
		candidates = kept
		if len(candidates) == 0 {
			return datatable.TypeString
		}
	}
	if !seen {
		return datatable.TypeString
	}
	return candidates[0]
}

func parseField(s string, dt datatable.DataType) any {
	if s == "" {
		return nil
	}
	if v, ok := parseAs(s, dt); ok {
		return v
	}
	return s
}

func parseAs(s string, dt datatable.DataType) (any, bool) {
	switch dt {
	case datatable.TypeInt:
		v, err := strconv.ParseInt(s, 10, 64)
		return v, err == nil
	case datatable.TypeFloat:
		v, err := strconv.ParseFloat(s, 64)
		return v, err == nil
	case datatable.TypeBool:
		v, err := strconv.ParseBool(s)
		return v, err == nil
	case datatable.TypeDate:
		return parseTime(s, dateLayouts)
	case datatable.TypeTimestamp:
		return parseTime(s, timestampLayouts)
	}
	return s, true
}

func parseTime(s string, layouts []string) (any, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return nil, false
}
