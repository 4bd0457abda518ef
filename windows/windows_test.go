package windows

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	delta_sharing "github.com/magpierre/go_delta_sharing_client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/fyne-datatable/datatable"
	"github.com/magpierre/fyne-datatable/internal/config"
	"github.com/magpierre/fyne-datatable/internal/loader"
	"github.com/magpierre/fyne-datatable/internal/script"
	dtwidget "github.com/magpierre/fyne-datatable/widget"
)

func peopleTable(t *testing.T) *loader.Table {
	t.Helper()
	m, err := datatable.New([]datatable.Record{
		{"name": "Ann", "age": int64(34)},
		{"name": "Bob", "age": int64(29)},
		{"name": "Cid", "age": int64(41)},
	}, []datatable.Column{
		{ID: "name", Header: "Name"},
		{ID: "age", Header: "Age", Type: datatable.TypeInt},
	})
	require.NoError(t, err)
	return &loader.Table{Name: "people.csv", Type: loader.FileTypeCSV, Model: m, Metadata: datatable.Metadata{}, SourceRows: 3}
}

func TestStatusText(t *testing.T) {
	tbl := peopleTable(t)
	m := tbl.Model

	assert.Equal(t, "Table people (2 columns x 3 rows)", statusText("people", m))

	m.SetQuery("ann")
	require.NoError(t, m.ToggleSort("age"))
	require.NoError(t, m.ToggleSort("age"))
	m.ToggleColumn("name")

	assert.Equal(t, `Table people (showing 1/2 columns x 1/3 rows) | Search: "ann" | Sorted: Age ↓`, statusText("people", m))
}

func TestCleanFilename(t *testing.T) {
	assert.Equal(t, "sales_2024-q1", cleanFilename("sales 2024-q1"))
	assert.Equal(t, "table", cleanFilename("./"))
}

func TestCaption(t *testing.T) {
	tbl := peopleTable(t)
	assert.Equal(t, "people.csv (CSV)", caption(tbl))

	tbl.SourceRows = 10
	assert.Equal(t, "people.csv (CSV), 3 of 10 rows loaded", caption(tbl))

	tbl.Metadata = datatable.Metadata{"share": "sales", "schema": "eu"}
	assert.Equal(t, "sales.eu.people.csv", caption(tbl))
}

func TestDataBrowser_Tabs(t *testing.T) {
	test.NewTempApp(t)
	w := test.NewTempWindow(t, widget.NewLabel(""))

	var status string
	tabs := container.NewDocTabs()
	b := NewDataBrowser(w, tabs, dtwidget.DefaultConfig(), func(s string) { status = s })
	require.Len(t, tabs.Items, 1)

	tbl := peopleTable(t)
	tab := b.AddTable(tbl)
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, "Table people.csv (2 columns x 3 rows)", status)

	current, ok := b.Current()
	require.True(t, ok)
	assert.Same(t, tbl, current)

	tbl.Model.SetQuery("bob")
	assert.Contains(t, status, "1/3 rows", "status follows the model")

	require.NoError(t, tbl.Model.ActivateVisibleRow(0))
	assert.Contains(t, status, "Row 2 selected")

	b.closeTab(tab)
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, "Ready", status)

	tbl.Model.SetQuery("")
	assert.Equal(t, "Ready", status, "closed tab no longer listens")
}

func TestSelectedRowText(t *testing.T) {
	m := peopleTable(t).Model
	_, ok := selectedRowText(m.Projection())
	assert.False(t, ok)

	require.NoError(t, m.ActivateRow(2))
	text, ok := selectedRowText(m.Projection())
	require.True(t, ok)
	assert.Equal(t, "Cid\t41", text)

	m.ToggleColumn("age")
	text, _ = selectedRowText(m.Projection())
	assert.Equal(t, "Cid", text, "hidden columns are not copied")
}

func TestDataBrowser_ReopensBrowserTab(t *testing.T) {
	test.NewTempApp(t)
	w := test.NewTempWindow(t, widget.NewLabel(""))

	tabs := container.NewDocTabs()
	b := NewDataBrowser(w, tabs, dtwidget.DefaultConfig(), nil)
	tabs.Remove(b.browserTab)
	require.Empty(t, tabs.Items)

	b.AddTable(peopleTable(t))
	require.Len(t, tabs.Items, 1)
	assert.Same(t, b.browserTab, tabs.Selected())

	b.Close()
	assert.Equal(t, 0, b.Len())
}

func TestMainWindow_OpenMissingFile(t *testing.T) {
	a := test.NewTempApp(t)
	cfg := &config.Config{APITimeout: time.Second, Table: config.TableConfig{Border: "right", MinColumnWidth: 100}}

	mw := NewMainWindow(a, cfg)
	mw.Open(filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, strings.HasPrefix(mw.statusBar.Text, "Error: failed to read"))
}

func TestMainWindow_OpenInvalidProfile(t *testing.T) {
	a := test.NewTempApp(t)
	cfg := &config.Config{APITimeout: time.Second, Table: config.TableConfig{Border: "right"}}

	mw := NewMainWindow(a, cfg)
	mw.OpenProfile(`{"endpoint": "https://example.com"}`)
	assert.Contains(t, mw.statusBar.Text, loader.ErrInvalidProfile.Error())
	assert.Nil(t, mw.sharing)
}

func TestNavigationTree_Populate(t *testing.T) {
	nt := NewNavigationTree()
	nt.populate([]string{"sales", "empty"}, []delta_sharing.Table{
		{Share: "sales", Schema: "eu", Name: "orders"},
		{Share: "sales", Schema: "eu", Name: "customers"},
		{Share: "sales", Schema: "us", Name: "orders"},
		{Share: "hr", Schema: "core", Name: "staff"},
		{Share: "sales", Schema: "eu", Name: "orders"},
	})

	roots := nt.GetChildren("")
	assert.Equal(t, []string{"share:sales", "share:empty", "share:hr"}, roots)
	assert.Empty(t, nt.GetChildren("share:empty"))
	assert.Equal(t, []string{"share:sales:schema:eu", "share:sales:schema:us"}, nt.GetChildren("share:sales"))
	assert.Len(t, nt.GetChildren("share:sales:schema:eu"), 2, "duplicate table listed once")

	assert.True(t, nt.IsBranch(""))
	assert.True(t, nt.IsBranch("share:sales:schema:eu"))
	assert.False(t, nt.IsBranch("share:sales:schema:eu:table:orders"))
	assert.False(t, nt.IsBranch("unknown"))

	node := nt.GetNode("share:sales:schema:us:table:orders")
	require.NotNil(t, node)
	assert.Equal(t, NodeTypeTable, node.NodeType)
	assert.Equal(t, "us", node.Table.Schema)
}

func TestNavigationTree_WidgetSelectsTables(t *testing.T) {
	test.NewTempApp(t)
	nt := NewNavigationTree()
	nt.populate([]string{"sales"}, []delta_sharing.Table{{Share: "sales", Schema: "eu", Name: "orders"}})

	var picked *TreeNode
	tree := nt.Widget(func(n *TreeNode) { picked = n }, nil)

	tree.Select("share:sales")
	assert.Nil(t, picked, "branches are not loaded")

	tree.Select("share:sales:schema:eu:table:orders")
	require.NotNil(t, picked)
	assert.Equal(t, "orders", picked.Name)
}

func TestBuildQueryOptions(t *testing.T) {
	all := []string{"name", "age", "city"}
	defs := []script.Definition{{Name: "decade", Expr: `num(row["age"]) / 10`}}

	opts, err := buildQueryOptions(all, all, "  ", "", nil)
	require.NoError(t, err)
	assert.True(t, opts.IsEmpty(), "everything selected narrows nothing")

	opts, err = buildQueryOptions([]string{"name"}, all, "decade >= 3", " 50 ", defs)
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, opts.SelectedColumns)
	assert.Equal(t, "decade >= 3", opts.Predicate)
	assert.Equal(t, int64(50), opts.Limit)
	assert.Equal(t, defs, opts.Computed)

	_, err = buildQueryOptions(nil, all, "", "", nil)
	assert.ErrorIs(t, err, errNoColumnsSelected)

	_, err = buildQueryOptions(all, all, "height > 3", "", nil)
	assert.ErrorIs(t, err, datatable.ErrColumnNotFound)

	for _, limit := range []string{"0", "-5", "ten"} {
		_, err = buildQueryOptions(all, all, "", limit, nil)
		assert.Error(t, err, limit)
	}
}

func TestQueryOptionsDialog_Confirm(t *testing.T) {
	test.NewTempApp(t)
	w := test.NewTempWindow(t, widget.NewLabel(""))

	var got []string
	qod := NewQueryOptionsDialog(w, columnsOf(peopleTable(t).Model), nil, func(o *loader.QueryOptions) {
		got = o.SelectedColumns
	})
	qod.columnChecks[1].SetChecked(false)
	qod.limitEntry.SetText("")
	qod.handleConfirm()
	assert.Equal(t, []string{"name"}, got)
}

func TestHighlightLine(t *testing.T) {
	kinds := func(cells []styledCell, from, to int) []tokenKind {
		out := make([]tokenKind, 0, to-from)
		for _, c := range cells[from:to] {
			out = append(out, c.Kind)
		}
		return out
	}

	line := `decade = num(row["age"]) / 10 // note`
	cells := highlightLine(line, map[string]bool{"age": true})
	require.Len(t, cells, len([]rune(line)))

	assert.Equal(t, tokenName, cells[0].Kind)
	assert.Equal(t, tokenOperator, cells[7].Kind)
	assert.Equal(t, []tokenKind{tokenHelper, tokenHelper, tokenHelper}, kinds(cells, 9, 12))
	assert.Equal(t, tokenColumn, cells[strings.Index(line, `"age"`)].Kind)
	assert.Equal(t, tokenNumber, cells[strings.Index(line, "10")].Kind)
	assert.Equal(t, tokenComment, cells[len(cells)-1].Kind)

	cells = highlightLine(`x = str(row["nope"])`, map[string]bool{"age": true})
	assert.Equal(t, tokenString, cells[strings.Index(`x = str(row["nope"])`, `"`)].Kind)

	for _, c := range highlightLine("# comment", nil) {
		assert.Equal(t, tokenComment, c.Kind)
	}
}

func TestParseDefinitions(t *testing.T) {
	defs, err := parseDefinitions("# computed\n\ndecade = num(row[\"age\"]) / 10\n// skip\nupper=strings.ToUpper(str(row[\"name\"]))\n")
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "decade", defs[0].Name)
	assert.Equal(t, `strings.ToUpper(str(row["name"]))`, defs[1].Expr)

	_, err = parseDefinitions("a = 1\nbroken")
	assert.ErrorIs(t, err, script.ErrInvalidDefinition)
	assert.Contains(t, err.Error(), "line 2")

	_, err = parseDefinitions("a = 1\na = 2")
	assert.ErrorIs(t, err, datatable.ErrDuplicateColumn)
}

func TestPreviewDefinitions(t *testing.T) {
	lines := previewDefinitions([]script.Definition{
		{Name: "decade", Expr: `num(row["age"]) / 10`},
		{Name: "bad", Expr: `undefined(`},
	}, datatable.Record{"age": int64(34)})

	require.Len(t, lines, 2)
	assert.Equal(t, "decade = 3.4", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "bad: "))

	assert.Equal(t, []string{"No computed columns"}, previewDefinitions(nil, nil))
}

func TestExpressionEditor(t *testing.T) {
	test.NewTempApp(t)
	ee := NewExpressionEditor([]string{"age"}, datatable.Record{"age": int64(20)})
	defer ee.Cleanup()

	ee.SetText(`double = num(row["age"]) * 2`)
	assert.Equal(t, `double = num(row["age"]) * 2`, ee.preview.Text())

	ee.Evaluate()
	require.Len(t, ee.output.Segments, 1)
	assert.Equal(t, "double = 40", ee.output.Segments[0].(*widget.TextSegment).Text)
}

func TestListDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.parquet", "notes.md", ".hidden.csv", "p.share", "data.JSON"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))

	entries, err := listDirectory(dir)
	require.NoError(t, err)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	assert.Equal(t, []string{"sub", "a.parquet", "b.csv", "data.JSON", "p.share"}, names)
	assert.True(t, entries[0].IsDir)

	_, err = listDirectory(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
