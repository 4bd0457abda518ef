package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/magpierre/fyne-datatable/datatable"
	"github.com/magpierre/fyne-datatable/internal/export"
	"github.com/magpierre/fyne-datatable/internal/loader"
	"github.com/magpierre/fyne-datatable/internal/render"
	"github.com/magpierre/fyne-datatable/internal/script"
)

type printOptions struct {
	search   string
	sort     string
	hide     []string
	where    string
	limit    int64
	columns  []string
	compute  []string
	format   string
	exportTo string
}

func newPrintCommand() *cobra.Command {
	var opts printOptions

	cmd := &cobra.Command{
		Use:   "print <file>",
		Short: "Print a file as a table",
		Long: `Load a file and print the table view without starting the desktop
application. Load options (--columns, --where, --limit, --compute) are
applied before the table is built; view options (--search, --sort,
--hide) act on the loaded table like the controls of the table widget.`,
		Example: `  dsb print people.csv --sort age:desc --hide city
  dsb print sales.parquet --where "amount > 100 AND region ~ north" --limit 50
  dsb print people.json --compute "decade=num(row[\"age\"])/10" --format markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(opts.format)
			if err != nil {
				return err
			}

			cfg := GetConfig(cmd.Context())
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.APITimeout)
			defer cancel()

			m, err := loadView(ctx, args[0], &opts)
			if err != nil {
				return err
			}

			if opts.exportTo != "" {
				ef, err := export.FormatFromPath(opts.exportTo)
				if err != nil {
					return err
				}
				if err := export.ToFile(m, opts.exportTo, ef); err != nil {
					return err
				}
			}
			return render.Projection(cmd.OutOrStdout(), m.Projection(), format)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.search, "search", "s", "", "Show only rows containing this text")
	f.StringVar(&opts.sort, "sort", "", "Sort by column, col or col:desc")
	f.StringSliceVar(&opts.hide, "hide", nil, "Hide a column (repeatable)")
	f.StringVarP(&opts.where, "where", "w", "", "Predicate applied at load time, e.g. \"age > 30 AND city ~ lon\"")
	f.Int64VarP(&opts.limit, "limit", "n", 0, "Maximum number of rows to load (0 for all)")
	f.StringSliceVarP(&opts.columns, "columns", "c", nil, "Columns to load, comma separated")
	f.StringArrayVar(&opts.compute, "compute", nil, "Computed column name=expr (repeatable)")
	f.StringVarP(&opts.format, "format", "f", "table", "Output format (table|markdown|csv)")
	f.StringVar(&opts.exportTo, "export", "", "Also export the view to a .parquet, .csv, .json or .xlsx file")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "markdown", "csv"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// loadView loads path with the load options and applies the view options
// to the resulting model.
func loadView(ctx context.Context, path string, opts *printOptions) (*datatable.TableModel, error) {
	query := &loader.QueryOptions{
		SelectedColumns: opts.columns,
		Predicate:       opts.where,
		Limit:           opts.limit,
	}
	for _, c := range opts.compute {
		def, err := script.ParseDefinition(c)
		if err != nil {
			return nil, err
		}
		query.Computed = append(query.Computed, def)
	}

	tbl, err := loader.LoadFile(ctx, path, query)
	if err != nil {
		return nil, err
	}
	m := tbl.Model

	m.SetQuery(opts.search)

	if opts.sort != "" {
		state, err := parseSort(opts.sort)
		if err != nil {
			return nil, err
		}
		if err := m.SetSortState(state); err != nil {
			return nil, err
		}
	}

	for _, id := range opts.hide {
		if _, ok := m.Registry().Lookup(id); !ok {
			return nil, fmt.Errorf("%w: %s", datatable.ErrColumnNotFound, id)
		}
		if !m.Visibility().IsVisible(id) {
			continue
		}
		if !m.ToggleColumn(id) {
			return nil, fmt.Errorf("cannot hide %s: at least one column must stay visible", id)
		}
	}
	return m, nil
}

// parseSort parses "col", "col:asc" or "col:desc".
func parseSort(s string) (datatable.SortState, error) {
	col, dir, _ := strings.Cut(s, ":")
	state := datatable.SortState{Column: strings.TrimSpace(col), Direction: datatable.SortAscending}
	if state.Column == "" {
		return datatable.SortState{}, fmt.Errorf("invalid sort %q: missing column", s)
	}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc":
	case "desc":
		state.Direction = datatable.SortDescending
	default:
		return datatable.SortState{}, fmt.Errorf("invalid sort direction %q (want asc or desc)", dir)
	}
	return state, nil
}
