package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/fyne-datatable/datatable"
)

var people = []datatable.Record{
	{"name": "Alice", "age": 34, "city": "London"},
	{"name": "Bob", "age": 27, "city": "Paris"},
	{"name": "Carol", "age": 41, "city": "Lyon"},
	{"name": "Dan", "age": nil, "city": "Oslo"},
}

var columns = []string{"name", "age", "city"}

func names(records []datatable.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r["name"].(string)
	}
	return out
}

func TestParse_Evaluate(t *testing.T) {
	tests := []struct {
		expr string
		want []string
	}{
		{"age > 30", []string{"Alice", "Carol"}},
		{"age >= 41", []string{"Carol"}},
		{"age <= 27", []string{"Bob"}},
		{"city = paris", []string{"Bob"}},
		{"city != paris", []string{"Alice", "Carol", "Dan"}},
		{"city ~ L", []string{"Alice", "Carol", "Dan"}},
		{"Name = 'carol'", []string{"Carol"}},
		{"age > 30 AND city ~ lon", []string{"Alice"}},
		{"city = Paris or city = Oslo", []string{"Bob", "Dan"}},
		{"ali", []string{"Alice"}},
		{"name < b", []string{"Alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p, err := Parse(tt.expr, columns)
			require.NoError(t, err)

			got, err := Apply(people, p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestParse_LeftToRight(t *testing.T) {
	// (name = Bob OR name = Alice) AND age > 30
	p, err := Parse("name = Bob OR name = Alice AND age > 30", columns)
	require.NoError(t, err)

	got, err := Apply(people, p)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice"}, names(got))
	assert.Equal(t, `((name = "Bob" OR name = "Alice") AND age > "30")`, p.Description())
}

func TestParse_FlattensSameOperator(t *testing.T) {
	p, err := Parse("age > 1 AND age > 2 AND age > 3", columns)
	require.NoError(t, err)

	c, ok := p.(*CompositeFilter)
	require.True(t, ok)
	assert.Len(t, c.Filters, 3)
	assert.Equal(t, LogicAND, c.Logic)
}

func TestParse_Empty(t *testing.T) {
	p, err := Parse("   ", columns)
	require.NoError(t, err)
	assert.Nil(t, p)

	got, err := Apply(people, p)
	require.NoError(t, err)
	assert.Len(t, got, len(people))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr error
	}{
		{"salary > 10", datatable.ErrColumnNotFound},
		{"AND age > 1", datatable.ErrInvalidFilter},
		{"age > 1 AND", datatable.ErrInvalidFilter},
		{"age > 1 AND OR age < 3", datatable.ErrInvalidFilter},
		{"age >", datatable.ErrInvalidFilter},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := Parse(tt.expr, columns)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCompositeFilter_Empty(t *testing.T) {
	f := &CompositeFilter{}

	ok, err := f.Evaluate(datatable.Record{"a": 1})

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "empty filter", f.Description())
}

func TestCompositeFilter_UnknownLogic(t *testing.T) {
	f := &CompositeFilter{Filters: []Predicate{&Comparison{Value: "x"}}, Logic: LogicOp(9)}

	_, err := f.Evaluate(datatable.Record{})

	assert.ErrorIs(t, err, datatable.ErrInvalidFilter)
}
