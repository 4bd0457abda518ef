package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/fyne-datatable/datatable"
	"github.com/magpierre/fyne-datatable/internal/config"
)

const people = `name,age,city
Ann,34,Oslo
Bob,29,London
Cid,41,Paris
`

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Chdir(dir)

	path := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(path, []byte(people), 0o644))
	return path
}

type launch struct {
	called bool
	path   string
	cfg    *config.Config
}

func (l *launch) fn(cfg *config.Config, path string) error {
	l.called, l.cfg, l.path = true, cfg, path
	return nil
}

func run(t *testing.T, l *launch, args ...string) (string, error) {
	t.Helper()
	if l == nil {
		l = &launch{}
	}
	cmd := NewRootCmd(l.fn)
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRoot_LaunchesWithConfig(t *testing.T) {
	setup(t)
	l := &launch{}

	_, err := run(t, l, "--border", "full", "--log-level", "debug")
	require.NoError(t, err)
	require.True(t, l.called)
	assert.Empty(t, l.path)
	assert.Equal(t, "full", l.cfg.Table.Border)
	assert.Equal(t, "debug", l.cfg.LogLevel)
}

func TestRoot_InvalidConfig(t *testing.T) {
	setup(t)
	l := &launch{}

	_, err := run(t, l, "--border", "dotted")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.False(t, l.called)
}

func TestOpen(t *testing.T) {
	path := setup(t)
	l := &launch{}

	_, err := run(t, l, "open", path)
	require.NoError(t, err)
	assert.Equal(t, path, l.path)

	l = &launch{}
	_, err = run(t, l, "open", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
	assert.False(t, l.called)
}

func TestVersion(t *testing.T) {
	setup(t)
	out, err := run(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dsb v"+Version)
}

func TestPrint_View(t *testing.T) {
	path := setup(t)

	out, err := run(t, nil, "print", path, "--sort", "age:desc", "--hide", "city", "--format", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "age ↓")
	assert.NotContains(t, lines[0], "city")
	assert.Equal(t, "Cid,41", lines[1])
	assert.Equal(t, "Ann,34", lines[2])
	assert.Equal(t, "Bob,29", lines[3])
}

func TestPrint_SearchAndLoadOptions(t *testing.T) {
	path := setup(t)

	out, err := run(t, nil, "print", path,
		"--where", "age > 30",
		"--compute", "decade=num(row[\"age\"])/10",
		"--columns", "name",
		"--search", "ann",
		"--format", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "name,decade", lines[0])
	assert.Equal(t, "Ann,3.4", lines[1])
}

func TestPrint_NoMatches(t *testing.T) {
	path := setup(t)

	out, err := run(t, nil, "print", path, "--search", "zzz")
	require.NoError(t, err)
	assert.Contains(t, out, datatable.NoDataText)
	assert.Contains(t, out, "(0 rows)")
}

func TestPrint_Export(t *testing.T) {
	path := setup(t)
	target := filepath.Join(t.TempDir(), "view.json")

	_, err := run(t, nil, "print", path, "--sort", "name:desc", "--columns", "name", "--export", target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Less(t, strings.Index(string(data), "Cid"), strings.Index(string(data), "Ann"))
}

func TestPrint_Errors(t *testing.T) {
	path := setup(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"print", "nope.csv"}},
		{"unknown sort column", []string{"print", path, "--sort", "height"}},
		{"bad sort direction", []string{"print", path, "--sort", "age:up"}},
		{"unknown hidden column", []string{"print", path, "--hide", "height"}},
		{"hide every column", []string{"print", path, "--hide", "name,age,city"}},
		{"bad predicate", []string{"print", path, "--where", "age >"}},
		{"bad compute", []string{"print", path, "--compute", "decade"}},
		{"bad format", []string{"print", path, "--format", "html"}},
		{"bad export", []string{"print", path, "--export", "view.html"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, nil, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestParseSort(t *testing.T) {
	s, err := parseSort("age")
	require.NoError(t, err)
	assert.Equal(t, datatable.SortState{Column: "age", Direction: datatable.SortAscending}, s)

	s, err = parseSort("age:DESC")
	require.NoError(t, err)
	assert.Equal(t, datatable.SortDescending, s.Direction)

	_, err = parseSort(":desc")
	assert.Error(t, err)
}
