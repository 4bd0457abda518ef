package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/fyne-datatable/datatable"
	"github.com/magpierre/fyne-datatable/internal/script"
)

const profile = `{"shareCredentialsVersion":1,"endpoint":"https://sharing.example.com/delta-sharing/","bearerToken":"t"}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		path    string
		content string
		want    FileType
	}{
		{"a.csv", "", FileTypeCSV},
		{"a.TSV", "", FileTypeCSV},
		{"a.parquet", "", FileTypeParquet},
		{"a.json", `[{"a":1}]`, FileTypeJSON},
		{"a.json", profile, FileTypeDeltaSharingProfile},
		{"a.share", profile, FileTypeDeltaSharingProfile},
		{"a.share", `{}`, FileTypeUnknown},
		{"a.xlsx", "", FileTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFileType(tt.path, []byte(tt.content)))
		})
	}
}

const peopleCSV = "name;age;city\nAnn;34;London\nBob;27;Paris\nCid;41;Lyon\nDan;19;Oslo\n"

func names(t *testing.T, tbl *Table) []string {
	t.Helper()
	var out []string
	for _, r := range tbl.Model.Projection().Rows {
		out = append(out, r.Data["name"].(string))
	}
	return out
}

func TestLoadFile_CSV(t *testing.T) {
	path := writeFile(t, "people.csv", peopleCSV)

	tbl, err := LoadFile(context.Background(), path, nil)
	require.NoError(t, err)

	assert.Equal(t, "people.csv", tbl.Name)
	assert.Equal(t, FileTypeCSV, tbl.Type)
	assert.Equal(t, 4, tbl.SourceRows)
	assert.Equal(t, []string{"Ann", "Bob", "Cid", "Dan"}, names(t, tbl))
	assert.Equal(t, "semicolon", tbl.Metadata["delimiter"])
}

func TestLoadFile_QueryOptions(t *testing.T) {
	path := writeFile(t, "people.csv", peopleCSV)

	tbl, err := LoadFile(context.Background(), path, &QueryOptions{
		SelectedColumns: []string{"name"},
		Predicate:       "decade >= 30",
		Limit:           1,
		Computed:        []script.Definition{{Name: "decade", Expr: `int64(num(row["age"])/10) * 10`}},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, tbl.SourceRows)
	assert.Equal(t, []string{"name", "decade"}, tbl.Model.Registry().IDs())
	rows := tbl.Model.Projection().Rows
	require.Len(t, rows, 1)
	assert.Equal(t, datatable.Record{"name": "Ann", "decade": int64(30)}, rows[0].Data)

	tbl.Model.SetQuery("London")
	assert.Empty(t, tbl.Model.Projection().Rows, "unselected fields are not searchable")
}

func TestLoadFile_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := LoadFile(ctx, writeFile(t, "p.share", profile), nil)
	assert.ErrorIs(t, err, ErrProfile)

	_, err = LoadFile(ctx, writeFile(t, "a.xlsx", "x"), nil)
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	_, err = LoadFile(ctx, filepath.Join(t.TempDir(), "missing.csv"), nil)
	assert.Error(t, err)

	path := writeFile(t, "people.csv", peopleCSV)
	_, err = LoadFile(ctx, path, &QueryOptions{SelectedColumns: []string{"nope"}})
	assert.ErrorIs(t, err, datatable.ErrColumnNotFound)

	_, err = LoadFile(ctx, path, &QueryOptions{Predicate: "age >"})
	assert.ErrorIs(t, err, datatable.ErrInvalidFilter)

	_, err = LoadFile(ctx, path, &QueryOptions{Computed: []script.Definition{{Name: "x", Expr: "("}}})
	assert.ErrorIs(t, err, script.ErrInvalidScript)
}

func TestLoadFile_JSON(t *testing.T) {
	tbl, err := LoadFile(context.Background(), writeFile(t, "p.json", `[{"name":"Ann","age":34},{"name":"Bob"}]`), nil)
	require.NoError(t, err)
	assert.Equal(t, FileTypeJSON, tbl.Type)
	assert.Equal(t, []string{"age", "name"}, tbl.Model.Registry().IDs())

	tbl, err = LoadFile(context.Background(), writeFile(t, "one.json", `{"name":"Ann"}`), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Model.OriginalRowCount())

	_, err = LoadFile(context.Background(), writeFile(t, "empty.json", `[]`), nil)
	assert.ErrorIs(t, err, datatable.ErrNoColumns)

	_, err = LoadFile(context.Background(), writeFile(t, "bad.json", `{`), nil)
	assert.Error(t, err)
}

func newArrowTable(t *testing.T) arrow.Table {
	t.Helper()
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "name", Type: arrow.BinaryTypes.String},
		{Name: "age", Type: arrow.PrimitiveTypes.Int64},
	}, nil)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.StringBuilder).AppendValues([]string{"Ann", "Bob", "Cid"}, nil)
	b.Field(1).(*array.Int64Builder).AppendValues([]int64{34, 27, 41}, nil)
	rec := b.NewRecord()
	defer rec.Release()

	table := array.NewTableFromRecords(schema, []arrow.Record{rec})
	t.Cleanup(table.Release)
	return table
}

func TestFromArrow_PushesDownSelectionAndLimit(t *testing.T) {
	tbl, err := FromArrow("people", newArrowTable(t), &QueryOptions{SelectedColumns: []string{"age"}, Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.SourceRows)
	assert.Equal(t, []string{"age"}, tbl.Model.Registry().IDs())
	assert.Equal(t, 2, tbl.Model.OriginalRowCount())
}

func TestFromArrow_Predicate(t *testing.T) {
	tbl, err := FromArrow("people", newArrowTable(t), &QueryOptions{Predicate: "age < 40", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann", "Bob"}, names(t, tbl))
}

func TestLoadFile_Parquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.parquet")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, pqarrow.WriteTable(newArrowTable(t), f, 1024, nil, pqarrow.DefaultWriterProps()))

	tbl, err := LoadFile(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, FileTypeParquet, tbl.Type)
	assert.Equal(t, []string{"Ann", "Bob", "Cid"}, names(t, tbl))
}

func TestNewSharingClient_RejectsBadProfile(t *testing.T) {
	_, err := NewSharingClient(`{"endpoint":"x"}`, 0)
	assert.ErrorIs(t, err, ErrInvalidProfile)
}
