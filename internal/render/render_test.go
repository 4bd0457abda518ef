package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/fyne-datatable/datatable"
)

func model(t *testing.T, records []datatable.Record) *datatable.TableModel {
	t.Helper()
	m, err := datatable.New(records, []datatable.Column{
		{ID: "name", Header: "Name"},
		{ID: "age", Header: "Age", Type: datatable.TypeInt},
	})
	require.NoError(t, err)
	return m
}

func TestProjection_Table(t *testing.T) {
	m := model(t, []datatable.Record{
		{"name": "Bob", "age": 41},
		{"name": "Ann", "age": 29},
	})
	require.NoError(t, m.ToggleSort("age"))

	var buf bytes.Buffer
	require.NoError(t, Projection(&buf, m.Projection(), FormatTable))
	out := buf.String()

	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "Age ↑")
	assert.Less(t, strings.Index(out, "Ann"), strings.Index(out, "Bob"))
	assert.True(t, strings.HasSuffix(out, "(2 rows)\n"))
}

func TestProjection_CSV(t *testing.T) {
	m := model(t, []datatable.Record{{"name": "Ann", "age": 29}})

	var buf bytes.Buffer
	require.NoError(t, Projection(&buf, m.Projection(), FormatCSV))
	assert.Equal(t, "Name,Age\nAnn,29", strings.TrimSpace(buf.String()))
}

func TestProjection_Placeholders(t *testing.T) {
	m := model(t, nil)

	var buf bytes.Buffer
	require.NoError(t, Projection(&buf, m.Projection(), FormatTable))
	assert.Equal(t, 1, strings.Count(buf.String(), datatable.NoDataText), "merged across columns")

	buf.Reset()
	require.NoError(t, Projection(&buf, datatable.Projection{Placeholder: datatable.PlaceholderNoColumns}, FormatTable))
	assert.Equal(t, datatable.NoColumnsText+"\n", buf.String())
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTable, "MD": FormatMarkdown, "csv": FormatCSV} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("html")
	assert.Error(t, err)
}

func TestHeaderLabel(t *testing.T) {
	assert.Equal(t, "Age ↓", HeaderLabel(datatable.HeaderCell{Label: "Age", Sort: datatable.SortDescending}))
	assert.Equal(t, "Age", HeaderLabel(datatable.HeaderCell{Label: "Age"}))
}
