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

// Package script compiles computed columns written in Go with the yaegi
// interpreter.
//
// An expression sees the current record as row and may use the helpers
// num and str:
//
//	num(row["price"]) * num(row["qty"])
//	strings.ToUpper(str(row["city"]))
//
// A body containing a return statement is used as is:
//
//	if num(row["age"]) >= 18 { return "adult" }
//	return "minor"
package script

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/magpierre/fyne-datatable/datatable"
)

var (
	// ErrInvalidScript is returned when a computed column does not compile.
	ErrInvalidScript = errors.New("invalid computed column")

	// ErrInvalidDefinition is returned for a malformed name=expr pair.
	ErrInvalidDefinition = errors.New("invalid computed column definition")
)

const source = `package computed

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	_ = fmt.Sprint
	_ = math.Abs
	_ = strings.ToUpper
	_ = time.Now
)

func num(v interface{}) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case float64:
		return x
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f
	}
	return 0
}

func str(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func Cell(row map[string]interface{}) interface{} {
%s
}
`

// Definition names a computed column and its Go expression.
type Definition struct {
	Name string
	Expr string
}

// ParseDefinition splits "name=expr".
func ParseDefinition(s string) (Definition, error) {
	name, expr, ok := strings.Cut(s, "=")
	name, expr = strings.TrimSpace(name), strings.TrimSpace(expr)
	if !ok || name == "" || expr == "" {
		return Definition{}, fmt.Errorf("%w: %q (want name=expr)", ErrInvalidDefinition, s)
	}
	return Definition{Name: name, Expr: expr}, nil
}

// Computed is a compiled computed column.
type Computed struct {
	def Definition

	// The interpreter is not safe for concurrent calls.
	mu sync.Mutex
	fn func(map[string]interface{}) interface{}
}

// Compile builds the cell function of def.
func Compile(def Definition) (*Computed, error) {
	expr := strings.TrimSpace(def.Expr)
	if def.Name == "" || expr == "" {
		return nil, fmt.Errorf("%w: name and expression are required", ErrInvalidScript)
	}

	body := expr
	if !strings.Contains(expr, "return") {
		body = "return " + expr
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("failed to load stdlib: %w", err)
	}
	if _, err := i.Eval(fmt.Sprintf(source, body)); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrInvalidScript, def.Name, err)
	}
	v, err := i.Eval("computed.Cell")
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrInvalidScript, def.Name, err)
	}
	fn, ok := v.Interface().(func(map[string]interface{}) interface{})
	if !ok {
		return nil, fmt.Errorf("%w %s: unexpected cell signature", ErrInvalidScript, def.Name)
	}
	return &Computed{def: Definition{Name: def.Name, Expr: expr}, fn: fn}, nil
}

// Definition returns the source of c.
func (c *Computed) Definition() Definition {
	return c.def
}

// Eval runs the expression for rec. A panic inside the expression yields
// an error.
func (c *Computed) Eval(rec datatable.Record) (out any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("computed column %s: %v", c.def.Name, r)
		}
	}()
	return c.fn(map[string]interface{}(rec)), nil
}

// Cell renders rec. Evaluation errors render as null.
func (c *Computed) Cell(rec datatable.Record) datatable.Value {
	out, err := c.Eval(rec)
	if err != nil {
		slog.Debug("computed column failed", "column", c.def.Name, "error", err)
		return datatable.NewNullValue(datatable.TypeString)
	}
	return datatable.InferValue(out)
}

// Column declares c as a table column.
func (c *Computed) Column() datatable.Column {
	return datatable.Column{ID: c.def.Name, Header: c.def.Name, Cell: c.Cell}
}

// CompileAll compiles every definition, stopping at the first error.
func CompileAll(defs []Definition) ([]*Computed, error) {
	out := make([]*Computed, 0, len(defs))
	for _, d := range defs {
		c, err := Compile(d)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
