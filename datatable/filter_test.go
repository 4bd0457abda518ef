package datatable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowsOf(records ...Record) []Row {
	return toRows(records)
}

func TestFilter_EmptyQueryIsIdentity(t *testing.T) {
	rows := rowsOf(Record{"name": "b"}, Record{"name": "a"}, Record{"name": "c"})

	got := Filter(rows, "")

	require.Len(t, got, 3)
	assert.Equal(t, rows, got)
	assert.Same(t, &rows[0], &got[0], "empty query must pass the slice through")
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		rows    []Row
		query   string
		wantIDs []RowID
	}{
		{
			name:    "case insensitive",
			rows:    rowsOf(Record{"name": "Alice"}),
			query:   "ALI",
			wantIDs: []RowID{0},
		},
		{
			name:    "matches any field",
			rows:    rowsOf(Record{"id": 1, "name": "Bob"}, Record{"id": 2, "name": "Ann"}),
			query:   "an",
			wantIDs: []RowID{1},
		},
		{
			name:    "numbers are matched on their text",
			rows:    rowsOf(Record{"age": 31}, Record{"age": 42}, Record{"age": 3.5}),
			query:   "3",
			wantIDs: []RowID{0, 2},
		},
		{
			name:    "nil fields never match",
			rows:    rowsOf(Record{"name": nil}, Record{"name": "nil"}),
			query:   "nil",
			wantIDs: []RowID{1},
		},
		{
			name:    "no match",
			rows:    rowsOf(Record{"name": "Alice"}, Record{"name": "Bob"}),
			query:   "zed",
			wantIDs: []RowID{},
		},
		{
			name:    "keeps input order",
			rows:    rowsOf(Record{"c": "xa"}, Record{"c": "b"}, Record{"c": "ax"}),
			query:   "A",
			wantIDs: []RowID{0, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(tt.rows, tt.query)
			ids := make([]RowID, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}
