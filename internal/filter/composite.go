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
	"strings"

	"github.com/magpierre/fyne-datatable/datatable"
)

// Predicate decides whether a record passes a filter.
type Predicate interface {
	// Evaluate returns true if the record passes.
	Evaluate(rec datatable.Record) (bool, error)

	// Description returns a human-readable form of the predicate.
	Description() string
}

// LogicOp represents a logical operator for combining filters.
type LogicOp int

const (
	// LogicAND requires all filters to pass.
	LogicAND LogicOp = iota
	// LogicOR requires at least one filter to pass.
	LogicOR
)

// String returns the string representation of a LogicOp.
func (op LogicOp) String() string {
	switch op {
	case LogicAND:
		return "AND"
	case LogicOR:
		return "OR"
	default:
		return fmt.Sprintf("unknown(%d)", op)
	}
}

// CompositeFilter combines multiple predicates with AND or OR logic.
type CompositeFilter struct {
	// Filters is the list of predicates to combine.
	Filters []Predicate

	// Logic specifies how to combine the filters (AND or OR).
	Logic LogicOp
}

// Evaluate implements Predicate.
func (f *CompositeFilter) Evaluate(rec datatable.Record) (bool, error) {
	if len(f.Filters) == 0 {
		return true, nil
	}

	switch f.Logic {
	case LogicAND:
		for _, p := range f.Filters {
			passes, err := p.Evaluate(rec)
			if err != nil {
				return false, err
			}
			if !passes {
				return false, nil
			}
		}
		return true, nil

	case LogicOR:
		for _, p := range f.Filters {
			passes, err := p.Evaluate(rec)
			if err != nil {
				return false, err
			}
			if passes {
				return true, nil
			}
		}
		return false, nil

	default:
		return false, fmt.Errorf("%w: unknown logic operator %d", datatable.ErrInvalidFilter, f.Logic)
	}
}

// Description implements Predicate.
func (f *CompositeFilter) Description() string {
	if len(f.Filters) == 0 {
		return "empty filter"
	}

	descriptions := make([]string, len(f.Filters))
	for i, p := range f.Filters {
		descriptions[i] = p.Description()
	}

	return "(" + strings.Join(descriptions, " "+f.Logic.String()+" ") + ")"
}

// Apply returns the records that pass p, in their original order. A nil
// predicate passes everything.
func Apply(records []datatable.Record, p Predicate) ([]datatable.Record, error) {
	if p == nil {
		return records, nil
	}
	out := make([]datatable.Record, 0, len(records))
	for i, rec := range records {
		ok, err := p.Evaluate(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}
