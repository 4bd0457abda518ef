package export

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/magpierre/fyne-datatable/datatable"
	"github.com/magpierre/fyne-datatable/internal/loader"
)

func peopleModel(t *testing.T) *datatable.TableModel {
	t.Helper()
	m, err := datatable.New([]datatable.Record{
		{"name": "Ann", "age": int64(34), "joined": time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "city": "London"},
		{"name": "Bob", "age": nil, "joined": time.Date(2023, 5, 6, 0, 0, 0, 0, time.UTC), "city": "Paris"},
		{"name": "Cid", "age": int64(41), "joined": nil, "city": "Lyon"},
	}, []datatable.Column{
		{ID: "name", Header: "Name"},
		{ID: "age", Type: datatable.TypeInt},
		{ID: "joined", Type: datatable.TypeDate},
		{ID: "city"},
	})
	require.NoError(t, err)
	return m
}

func TestTable_FollowsProjection(t *testing.T) {
	m := peopleModel(t)
	require.NoError(t, m.ToggleSort("age"))
	require.NoError(t, m.ToggleSort("age"))
	m.ToggleColumn("city")
	m.SetQuery("o")

	table, err := Table(m)
	require.NoError(t, err)
	defer table.Release()

	assert.Equal(t, int64(3), table.NumRows())
	require.Equal(t, int64(3), table.NumCols())
	assert.Equal(t, "name", table.Schema().Field(0).Name)
	assert.Equal(t, "joined", table.Schema().Field(2).Name)

	var buf bytes.Buffer
	require.NoError(t, ToCSV(table, &buf))
	assert.Equal(t, "name,age,joined\nCid,41,\nAnn,34,2024-01-02\nBob,,2023-05-06\n", buf.String())
}

func TestTable_NoColumns(t *testing.T) {
	m, err := datatable.New(nil, []datatable.Column{{ID: "a"}})
	require.NoError(t, err)

	table, err := Table(m)
	require.NoError(t, err)
	defer table.Release()
	assert.Equal(t, int64(0), table.NumRows())

	var buf bytes.Buffer
	require.NoError(t, ToJSON(table, &buf))
	assert.JSONEq(t, `[]`, buf.String())
}

func TestToJSON(t *testing.T) {
	m := peopleModel(t)
	m.SetQuery("Lyon")

	table, err := Table(m)
	require.NoError(t, err)
	defer table.Release()

	var buf bytes.Buffer
	require.NoError(t, ToJSON(table, &buf))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Cid", got[0]["name"])
	assert.Equal(t, 41.0, got[0]["age"])
	assert.Nil(t, got[0]["joined"])
}

func TestToXLSX(t *testing.T) {
	m := peopleModel(t)
	m.SetQuery("Lyon")

	table, err := Table(m)
	require.NoError(t, err)
	defer table.Release()

	var buf bytes.Buffer
	require.NoError(t, ToXLSX(table, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"name", "age", "joined", "city"}, rows[0])
	assert.Equal(t, []string{"Cid", "41", "", "Lyon"}, rows[1])
}

func TestToFile_ParquetRoundTrip(t *testing.T) {
	m := peopleModel(t)
	path := filepath.Join(t.TempDir(), "people.parquet")
	require.NoError(t, ToFile(m, path, FormatParquet))

	tbl, err := loader.LoadFile(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age", "joined", "city"}, tbl.Model.Registry().IDs())

	rows := tbl.Model.Projection().Rows
	require.Len(t, rows, 3)
	assert.Equal(t, "Ann", rows[0].Data["name"])
	assert.Equal(t, int64(34), rows[0].Data["age"])
	assert.Nil(t, rows[1].Data["age"])
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), rows[0].Data["joined"])
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"parquet", FormatParquet},
		{".CSV", FormatCSV},
		{" json ", FormatJSON},
		{"XLSX", FormatXLSX},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("xls")
	assert.ErrorIs(t, err, datatable.ErrExportFailed)

	f, err := FormatFromPath("/tmp/out.json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	assert.Equal(t, ".parquet", FormatParquet.Ext())
	assert.Equal(t, ".xlsx", FormatXLSX.Ext())
}
