package windows

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/magpierre/fyne-datatable/datatable"
	"github.com/magpierre/fyne-datatable/internal/filter"
	"github.com/magpierre/fyne-datatable/internal/loader"
	"github.com/magpierre/fyne-datatable/internal/script"
)

const defaultRowLimit = "1000"

var errNoColumnsSelected = errors.New("please select at least one column")

// columnInfo describes a source column offered by the dialog.
type columnInfo struct {
	Name string
	Type datatable.DataType
}

// columnsOf lists the columns of a loaded table.
func columnsOf(model *datatable.TableModel) []columnInfo {
	cols := model.Registry().Columns()
	out := make([]columnInfo, len(cols))
	for i, c := range cols {
		out[i] = columnInfo{Name: c.ID, Type: c.Type}
	}
	return out
}

// QueryOptionsDialog collects the load-time query options of a table.
type QueryOptionsDialog struct {
	dialog         dialog.Dialog
	window         fyne.Window
	columns        []columnInfo
	columnChecks   []*widget.Check
	predicateEntry *widget.Entry
	limitEntry     *widget.Entry
	expressions    *ExpressionEditor
	callback       func(*loader.QueryOptions)
}

// NewQueryOptionsDialog creates the dialog. sample feeds the computed
// column preview and may be nil.
func NewQueryOptionsDialog(w fyne.Window, columns []columnInfo, sample datatable.Record, callback func(*loader.QueryOptions)) *QueryOptionsDialog {
	qod := &QueryOptionsDialog{
		window:   w,
		columns:  columns,
		callback: callback,
	}
	qod.expressions = NewExpressionEditor(qod.names(), sample)
	qod.createDialog()
	return qod
}

func (qod *QueryOptionsDialog) createDialog() {
	columnSelectLabel := widget.NewLabel("Select Columns:")
	columnSelectLabel.TextStyle = fyne.TextStyle{Bold: true}

	columnCheckboxes := container.NewVBox()
	for _, col := range qod.columns {
		check := widget.NewCheck(fmt.Sprintf("%s (%s)", col.Name, col.Type), nil)
		check.SetChecked(true)
		qod.columnChecks = append(qod.columnChecks, check)
		columnCheckboxes.Add(check)
	}

	selectAllBtn := widget.NewButton("Select All", func() { qod.setAll(true) })
	deselectAllBtn := widget.NewButton("Deselect All", func() { qod.setAll(false) })

	columnScroll := container.NewVScroll(columnCheckboxes)
	columnScroll.SetMinSize(fyne.NewSize(400, 160))

	predicateLabel := widget.NewLabel("Filter Predicate:")
	predicateLabel.TextStyle = fyne.TextStyle{Bold: true}

	qod.predicateEntry = widget.NewMultiLineEntry()
	qod.predicateEntry.SetPlaceHolder("e.g., age > 25 AND city ~ lon")
	qod.predicateEntry.SetMinRowsVisible(2)
	qod.predicateEntry.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		defs, _ := qod.expressions.Definitions()
		_, err := filter.Parse(s, predicateColumns(qod.names(), defs))
		return err
	}

	predicateHelp := widget.NewLabel("Operators: = != > < >= <= ~ (contains), joined with AND / OR. Leave empty for no filtering.")
	predicateHelp.TextStyle = fyne.TextStyle{Italic: true}
	predicateHelp.Wrapping = fyne.TextWrapWord

	limitLabel := widget.NewLabel("Row Limit:")
	limitLabel.TextStyle = fyne.TextStyle{Bold: true}

	qod.limitEntry = widget.NewEntry()
	qod.limitEntry.SetText(defaultRowLimit)
	qod.limitEntry.SetPlaceHolder("Leave empty for all rows")

	computedLabel := widget.NewLabel("Computed Columns:")
	computedLabel.TextStyle = fyne.TextStyle{Bold: true}

	content := container.NewVBox(
		columnSelectLabel,
		container.NewHBox(selectAllBtn, deselectAllBtn),
		columnScroll,
		widget.NewSeparator(),
		predicateLabel,
		qod.predicateEntry,
		predicateHelp,
		widget.NewSeparator(),
		limitLabel,
		qod.limitEntry,
		widget.NewSeparator(),
		computedLabel,
		qod.expressions.Content(),
	)

	qod.dialog = dialog.NewCustomConfirm(
		"Query Options",
		"Load Data",
		"Cancel",
		container.NewVScroll(content),
		func(confirmed bool) {
			qod.expressions.Cleanup()
			if confirmed {
				qod.handleConfirm()
			}
		},
		qod.window,
	)
	qod.dialog.Resize(fyne.NewSize(560, 720))
}

func (qod *QueryOptionsDialog) names() []string {
	names := make([]string, len(qod.columns))
	for i, c := range qod.columns {
		names[i] = c.Name
	}
	return names
}

func (qod *QueryOptionsDialog) setAll(checked bool) {
	for _, check := range qod.columnChecks {
		check.SetChecked(checked)
	}
}

func (qod *QueryOptionsDialog) handleConfirm() {
	selected := make([]string, 0, len(qod.columns))
	for i, check := range qod.columnChecks {
		if check.Checked {
			selected = append(selected, qod.columns[i].Name)
		}
	}

	defs, err := qod.expressions.Definitions()
	if err != nil {
		dialog.ShowError(err, qod.window)
		return
	}

	options, err := buildQueryOptions(selected, qod.names(), qod.predicateEntry.Text, qod.limitEntry.Text, defs)
	if err != nil {
		dialog.ShowError(err, qod.window)
		return
	}
	if qod.callback != nil {
		qod.callback(options)
	}
}

// Show displays the dialog.
func (qod *QueryOptionsDialog) Show() {
	qod.dialog.Show()
}

// buildQueryOptions validates the dialog input. Selecting every column
// leaves SelectedColumns empty so nothing is narrowed.
func buildQueryOptions(selected, all []string, predicate, limitText string, computed []script.Definition) (*loader.QueryOptions, error) {
	if len(selected) == 0 {
		return nil, errNoColumnsSelected
	}

	options := &loader.QueryOptions{Computed: computed}
	if len(selected) < len(all) {
		options.SelectedColumns = selected
	}

	options.Predicate = strings.TrimSpace(predicate)
	if options.Predicate != "" {
		if _, err := filter.Parse(options.Predicate, predicateColumns(all, computed)); err != nil {
			return nil, err
		}
	}

	if limitText = strings.TrimSpace(limitText); limitText != "" {
		limit, err := strconv.ParseInt(limitText, 10, 64)
		if err != nil || limit <= 0 {
			return nil, fmt.Errorf("invalid limit %q: must be a positive number", limitText)
		}
		options.Limit = limit
	}
	return options, nil
}

// predicateColumns lists the names a predicate may reference: the source
// columns and the computed ones.
func predicateColumns(columns []string, computed []script.Definition) []string {
	out := append([]string(nil), columns...)
	for _, def := range computed {
		out = append(out, def.Name)
	}
	return out
}
