package datatable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idsOf(rows []Row) []RowID {
	out := make([]RowID, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestSortState_Cycle(t *testing.T) {
	var s SortState
	assert.False(t, s.IsSorted())

	s = s.Cycle("age")
	assert.Equal(t, SortState{Column: "age", Direction: SortAscending}, s)

	s = s.Cycle("age")
	assert.Equal(t, SortState{Column: "age", Direction: SortDescending}, s)

	s = s.Cycle("age")
	assert.False(t, s.IsSorted())

	s = s.Cycle("age").Cycle("name")
	assert.Equal(t, SortState{Column: "name", Direction: SortAscending}, s, "another column restarts at ascending")
}

func TestSort_NumericVersusLexical(t *testing.T) {
	reg, err := NewRegistry(Column{ID: "n", Type: TypeInt}, Column{ID: "s"})
	require.NoError(t, err)
	rows := rowsOf(
		Record{"n": 10, "s": "10"},
		Record{"n": 9, "s": "9"},
		Record{"n": 100, "s": "100"},
	)

	byNumber := Sort(rows, reg, SortState{Column: "n", Direction: SortAscending})
	assert.Equal(t, []RowID{1, 0, 2}, idsOf(byNumber))

	byText := Sort(rows, reg, SortState{Column: "s", Direction: SortAscending})
	assert.Equal(t, []RowID{0, 2, 1}, idsOf(byText))
}

func TestSort_MixedKindsIndependentOfInputOrder(t *testing.T) {
	reg, err := NewRegistry(Column{ID: "k", Type: TypeInt})
	require.NoError(t, err)

	valuesOf := func(rows []Row) []any {
		out := make([]any, len(rows))
		for i, r := range rows {
			out[i] = r.Data["k"]
		}
		return out
	}
	want := []any{5, "10", 40, "4abc", "abc"}

	for _, input := range [][]any{
		{"4abc", 5, "abc", "10", 40},
		{40, "10", "abc", 5, "4abc"},
		{"abc", "4abc", 40, "10", 5},
	} {
		records := make([]Record, len(input))
		for i, v := range input {
			records[i] = Record{"k": v}
		}
		sorted := Sort(rowsOf(records...), reg, SortState{Column: "k", Direction: SortAscending})
		assert.Equal(t, want, valuesOf(sorted), "input %v", input)
	}
}

func TestSort_StableInBothDirections(t *testing.T) {
	reg, err := NewRegistry(Column{ID: "k", Type: TypeInt})
	require.NoError(t, err)
	rows := rowsOf(
		Record{"k": 2}, Record{"k": 1}, Record{"k": 2}, Record{"k": 1},
	)

	asc := Sort(rows, reg, SortState{Column: "k", Direction: SortAscending})
	assert.Equal(t, []RowID{1, 3, 0, 2}, idsOf(asc))

	desc := Sort(rows, reg, SortState{Column: "k", Direction: SortDescending})
	assert.Equal(t, []RowID{0, 2, 1, 3}, idsOf(desc))
}

func TestSort_NullsLast(t *testing.T) {
	reg, err := NewRegistry(Column{ID: "k", Type: TypeFloat})
	require.NoError(t, err)
	rows := rowsOf(Record{"k": nil}, Record{"k": 2.5}, Record{}, Record{"k": -1.0})

	asc := Sort(rows, reg, SortState{Column: "k", Direction: SortAscending})
	assert.Equal(t, []RowID{3, 1, 0, 2}, idsOf(asc))

	desc := Sort(rows, reg, SortState{Column: "k", Direction: SortDescending})
	assert.Equal(t, []RowID{1, 3, 0, 2}, idsOf(desc))
}

func TestSort_InactiveReturnsInput(t *testing.T) {
	reg, err := NewRegistry(Column{ID: "k"})
	require.NoError(t, err)
	rows := rowsOf(Record{"k": "b"}, Record{"k": "a"})

	assert.Equal(t, rows, Sort(rows, reg, SortState{}))
	assert.Equal(t, rows, Sort(rows, reg, SortState{Column: "missing", Direction: SortAscending}))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	reg, err := NewRegistry(Column{ID: "k"})
	require.NoError(t, err)
	rows := rowsOf(Record{"k": "b"}, Record{"k": "a"})

	_ = Sort(rows, reg, SortState{Column: "k", Direction: SortAscending})

	assert.Equal(t, []RowID{0, 1}, idsOf(rows))
}

func TestCompareValues(t *testing.T) {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"ints", InferValue(2), InferValue(10), -1},
		{"int and float", InferValue(2), InferValue(1.5), 1},
		{"numeric strings in numeric column", NewValue("7", TypeInt), NewValue("12", TypeInt), -1},
		{"bools", InferValue(true), InferValue(false), 1},
		{"times", InferValue(day), InferValue(day.Add(time.Hour)), -1},
		{"strings ignore case first", StringValue("apple"), StringValue("Banana"), -1},
		{"equal strings", StringValue("x"), StringValue("x"), 0},
		{"number before unparsable text", NewValue("abc", TypeInt), NewValue(40, TypeInt), 1},
		{"number before text in text column", InferValue(99), StringValue("1"), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareValues(tt.a, tt.b))
		})
	}
}
