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

package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/magpierre/fyne-datatable/datatable"
)

// CompOp is a comparison operator.
type CompOp int

const (
	OpEqual CompOp = iota
	OpNotEqual
	OpGreater
	OpLess
	OpGreaterEqual
	OpLessEqual
	OpContains
)

// Longest symbols first so ">=" is not read as ">".
var operators = []struct {
	op     CompOp
	symbol string
}{
	{OpGreaterEqual, ">="},
	{OpLessEqual, "<="},
	{OpNotEqual, "!="},
	{OpEqual, "="},
	{OpGreater, ">"},
	{OpLess, "<"},
	{OpContains, "~"},
}

func (op CompOp) String() string {
	for _, o := range operators {
		if o.op == op {
			return o.symbol
		}
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// Comparison tests one field against a literal. An empty Column searches
// every field with OpContains. Missing and null fields never match.
type Comparison struct {
	Column string
	Op     CompOp
	Value  string
}

// Evaluate implements Predicate.
func (c *Comparison) Evaluate(rec datatable.Record) (bool, error) {
	if c.Column == "" {
		needle := strings.ToLower(c.Value)
		for _, v := range rec {
			if strings.Contains(strings.ToLower(datatable.FormatField(v)), needle) {
				return true, nil
			}
		}
		return false, nil
	}

	raw, ok := rec[c.Column]
	if !ok || raw == nil {
		return false, nil
	}
	cell := datatable.FormatField(raw)

	switch c.Op {
	case OpEqual:
		return strings.EqualFold(cell, c.Value), nil
	case OpNotEqual:
		return !strings.EqualFold(cell, c.Value), nil
	case OpContains:
		return strings.Contains(strings.ToLower(cell), strings.ToLower(c.Value)), nil
	case OpGreater, OpLess, OpGreaterEqual, OpLessEqual:
		return compare(cell, c.Value, c.Op), nil
	default:
		return false, fmt.Errorf("%w: unknown operator %d", datatable.ErrInvalidFilter, c.Op)
	}
}

// Description implements Predicate.
func (c *Comparison) Description() string {
	if c.Column == "" {
		return fmt.Sprintf("* ~ %q", c.Value)
	}
	return fmt.Sprintf("%s %s %q", c.Column, c.Op, c.Value)
}

// compare orders numerically when both sides parse as numbers and falls
// back to a case-insensitive string comparison otherwise.
func compare(cell, literal string, op CompOp) bool {
	var cmp int
	a, errA := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	b, errB := strconv.ParseFloat(strings.TrimSpace(literal), 64)
	if errA == nil && errB == nil {
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		}
	} else {
		cmp = strings.Compare(strings.ToLower(cell), strings.ToLower(literal))
	}

	switch op {
	case OpGreater:
		return cmp > 0
	case OpLess:
		return cmp < 0
	case OpGreaterEqual:
		return cmp >= 0
	case OpLessEqual:
		return cmp <= 0
	}
	return false
}

// Parse turns an expression such as `age > 30 AND city ~ lon` into a
// Predicate. Terms are combined left to right without precedence; a term
// with no operator is a contains search over every field. Column names are
// matched case-insensitively against columns. An empty expression returns
// a nil Predicate.
func Parse(expr string, columns []string) (Predicate, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}

	names := make(map[string]string, len(columns))
	for _, c := range columns {
		names[strings.ToLower(c)] = c
	}

	var (
		result  Predicate
		pending *LogicOp
	)
	for _, part := range splitByLogicOps(expr) {
		if part.isOperator {
			if result == nil || pending != nil {
				return nil, fmt.Errorf("%w: unexpected %s", datatable.ErrInvalidFilter, part.op)
			}
			op := part.op
			pending = &op
			continue
		}

		term, err := parseTerm(part.text, names)
		if err != nil {
			return nil, err
		}
		switch {
		case result == nil:
			result = term
		case pending == nil:
			return nil, fmt.Errorf("%w: missing AND/OR before %q", datatable.ErrInvalidFilter, part.text)
		default:
			result = combine(result, term, *pending)
			pending = nil
		}
	}
	if pending != nil {
		return nil, fmt.Errorf("%w: trailing %s", datatable.ErrInvalidFilter, *pending)
	}
	return result, nil
}

// combine folds term into acc, flattening runs of the same operator.
func combine(acc, term Predicate, op LogicOp) Predicate {
	if c, ok := acc.(*CompositeFilter); ok && c.Logic == op {
		c.Filters = append(c.Filters, term)
		return c
	}
	return &CompositeFilter{Filters: []Predicate{acc, term}, Logic: op}
}

func parseTerm(text string, names map[string]string) (Predicate, error) {
	for _, o := range operators {
		idx := strings.Index(text, o.symbol)
		if idx <= 0 {
			continue
		}
		name := strings.TrimSpace(text[:idx])
		raw := strings.TrimSpace(text[idx+len(o.symbol):])
		value := strings.Trim(raw, "\"'")

		col, ok := names[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("%w: %s", datatable.ErrColumnNotFound, name)
		}
		if raw == "" {
			return nil, fmt.Errorf("%w: missing value after %s %s", datatable.ErrInvalidFilter, name, o.symbol)
		}
		return &Comparison{Column: col, Op: o.op, Value: value}, nil
	}
	return &Comparison{Op: OpContains, Value: strings.Trim(text, "\"'")}, nil
}

type queryPart struct {
	text       string
	op         LogicOp
	isOperator bool
}

// splitByLogicOps splits on whitespace-delimited AND/OR, keeping the
// operators as separate parts.
func splitByLogicOps(query string) []queryPart {
	var (
		parts   []queryPart
		current strings.Builder
	)
	flush := func() {
		if t := strings.TrimSpace(current.String()); t != "" {
			parts = append(parts, queryPart{text: t})
		}
		current.Reset()
	}

	for i := 0; i < len(query); {
		if op, n, ok := logicAt(query, i); ok {
			flush()
			parts = append(parts, queryPart{op: op, isOperator: true})
			i += n
			continue
		}
		current.WriteByte(query[i])
		i++
	}
	flush()
	return parts
}

func logicAt(query string, i int) (LogicOp, int, bool) {
	for _, cand := range []struct {
		word string
		op   LogicOp
	}{{"AND", LogicAND}, {"OR", LogicOR}} {
		end := i + len(cand.word)
		if end > len(query) || !strings.EqualFold(query[i:end], cand.word) {
			continue
		}
		if (i == 0 || isWhitespace(query[i-1])) && (end == len(query) || isWhitespace(query[end])) {
			return cand.op, len(cand.word), true
		}
	}
	return 0, 0, false
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
