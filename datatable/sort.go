package datatable

import (
	"cmp"
	"math"
	"math/big"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Sort orders rows by the column named in state. Rows are returned
// unchanged when no sort is active or the column is unknown. The sort is
// stable in both directions and null cells always sort last.
func Sort(rows []Row, reg *Registry, state SortState) []Row {
	if !state.IsSorted() || reg == nil {
		return rows
	}
	col, ok := reg.Lookup(state.Column)
	if !ok {
		return rows
	}

	keys := make(map[RowID]Value, len(rows))
	for _, row := range rows {
		keys[row.ID] = col.Render(row.Data)
	}

	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b Row) int {
		va, vb := keys[a.ID], keys[b.ID]
		switch {
		case va.IsNull && vb.IsNull:
			return 0
		case va.IsNull:
			return 1
		case vb.IsNull:
			return -1
		}
		c := CompareValues(va, vb)
		if state.Direction == SortDescending {
			return -c
		}
		return c
	})
	return out
}

// CompareValues orders two non-null values by the natural ordering of
// their type: numbers numerically, booleans false before true, times
// chronologically and everything else lexically on the formatted text.
// Values of different kinds order numbers, booleans, times, then text, so
// a column mixing kinds still sorts consistently.
func CompareValues(a, b Value) int {
	ka, kb := kindOf(a), kindOf(b)
	if ka.rank != kb.rank {
		return cmp.Compare(ka.rank, kb.rank)
	}
	switch ka.rank {
	case rankNumber:
		return ka.num.Cmp(kb.num)
	case rankBool:
		ba, bb := a.Raw.(bool), b.Raw.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		default:
			return 1
		}
	case rankTime:
		return a.Raw.(time.Time).Compare(b.Raw.(time.Time))
	}
	if c := cmp.Compare(strings.ToLower(a.Formatted), strings.ToLower(b.Formatted)); c != 0 {
		return c
	}
	return cmp.Compare(a.Formatted, b.Formatted)
}

const (
	rankNumber = iota
	rankBool
	rankTime
	rankText
)

type sortKind struct {
	rank int
	num  *big.Float
}

// kindOf classifies v. A value counts as a number only when its type is
// numeric and its raw value converts.
func kindOf(v Value) sortKind {
	if v.Type.IsNumeric() {
		if f, ok := toFloat(v.Raw); ok {
			return sortKind{rank: rankNumber, num: f}
		}
	}
	switch v.Raw.(type) {
	case bool:
		return sortKind{rank: rankBool}
	case time.Time:
		return sortKind{rank: rankTime}
	}
	return sortKind{rank: rankText}
}

func toFloat(v any) (*big.Float, bool) {
	f := new(big.Float)
	switch n := v.(type) {
	case int:
		return f.SetInt64(int64(n)), true
	case int8:
		return f.SetInt64(int64(n)), true
	case int16:
		return f.SetInt64(int64(n)), true
	case int32:
		return f.SetInt64(int64(n)), true
	case int64:
		return f.SetInt64(n), true
	case uint:
		return f.SetUint64(uint64(n)), true
	case uint8:
		return f.SetUint64(uint64(n)), true
	case uint16:
		return f.SetUint64(uint64(n)), true
	case uint32:
		return f.SetUint64(uint64(n)), true
	case uint64:
		return f.SetUint64(n), true
	case float32:
		return setFinite(f, float64(n))
	case float64:
		return setFinite(f, n)
	case *big.Int:
		return f.SetInt(n), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil, false
		}
		return setFinite(f, parsed)
	}
	return nil, false
}

// setFinite guards big.Float against NaN, which it cannot represent.
func setFinite(f *big.Float, x float64) (*big.Float, bool) {
	if math.IsNaN(x) {
		return nil, false
	}
	return f.SetFloat64(x), true
}
