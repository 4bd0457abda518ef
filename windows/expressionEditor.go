package windows

import (
	"bufio"
	"fmt"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/magpierre/fyne-datatable/datatable"
	"github.com/magpierre/fyne-datatable/internal/script"
)

const highlightDelay = 150 * time.Millisecond

const expressionPlaceholder = `# one computed column per line: name = expression
# row["col"] reads a field; num() and str() convert it
decade = num(row["age"]) / 10
label = strings.ToUpper(str(row["name"]))`

// ExpressionEditor edits computed column definitions, shows them
// highlighted, and previews their values on a sample record.
type ExpressionEditor struct {
	entry   *widget.Entry
	preview *SyntaxView
	output  *widget.RichText
	content fyne.CanvasObject
	sample  datatable.Record

	mu    sync.Mutex
	timer *time.Timer
}

// NewExpressionEditor creates an editor for a table with columns. sample
// may be nil, in which case previews evaluate against an empty record.
func NewExpressionEditor(columns []string, sample datatable.Record) *ExpressionEditor {
	ee := &ExpressionEditor{
		entry:   widget.NewMultiLineEntry(),
		preview: NewSyntaxView(columns),
		output:  widget.NewRichText(),
		sample:  sample,
	}
	ee.entry.SetPlaceHolder(expressionPlaceholder)
	ee.entry.SetMinRowsVisible(4)
	ee.entry.Wrapping = fyne.TextWrapOff
	ee.entry.OnChanged = ee.scheduleHighlight
	ee.output.Wrapping = fyne.TextWrapWord

	previewBtn := widget.NewButtonWithIcon("Preview", theme.MediaPlayIcon(), func() {
		ee.Evaluate()
	})
	clearBtn := widget.NewButtonWithIcon("Clear", theme.ContentClearIcon(), func() {
		ee.entry.SetText("")
		ee.setOutput(nil)
	})

	previewScroll := container.NewScroll(ee.preview)
	previewScroll.SetMinSize(fyne.NewSize(0, 60))

	ee.content = container.NewVBox(
		ee.entry,
		previewScroll,
		container.NewHBox(previewBtn, clearBtn),
		ee.output,
	)
	return ee
}

// Content returns the editor's canvas object.
func (ee *ExpressionEditor) Content() fyne.CanvasObject {
	return ee.content
}

// SetText replaces the definitions.
func (ee *ExpressionEditor) SetText(text string) {
	ee.entry.SetText(text)
	ee.preview.SetText(text)
}

// Text returns the definitions as typed.
func (ee *ExpressionEditor) Text() string {
	return ee.entry.Text
}

// Definitions parses the editor content.
func (ee *ExpressionEditor) Definitions() ([]script.Definition, error) {
	return parseDefinitions(ee.entry.Text)
}

// Evaluate compiles the definitions and shows their values on the sample
// record.
func (ee *ExpressionEditor) Evaluate() {
	defs, err := ee.Definitions()
	if err != nil {
		ee.setOutput([]string{err.Error()})
		return
	}
	ee.setOutput(previewDefinitions(defs, ee.sample))
}

// Cleanup stops a pending highlight update.
func (ee *ExpressionEditor) Cleanup() {
	ee.mu.Lock()
	defer ee.mu.Unlock()
	if ee.timer != nil {
		ee.timer.Stop()
		ee.timer = nil
	}
}

func (ee *ExpressionEditor) scheduleHighlight(text string) {
	ee.mu.Lock()
	defer ee.mu.Unlock()
	if ee.timer != nil {
		ee.timer.Stop()
	}
	ee.timer = time.AfterFunc(highlightDelay, func() {
		fyne.Do(func() { ee.preview.SetText(text) })
	})
}

func (ee *ExpressionEditor) setOutput(lines []string) {
	segments := make([]widget.RichTextSegment, 0, len(lines))
	for _, line := range lines {
		segments = append(segments, &widget.TextSegment{
			Text:  line,
			Style: widget.RichTextStyleCodeBlock,
		})
	}
	ee.output.Segments = segments
	ee.output.Refresh()
}

// parseDefinitions reads one name=expr definition per line. Blank lines
// and lines starting with # or // are skipped.
func parseDefinitions(text string) ([]script.Definition, error) {
	var defs []script.Definition
	seen := make(map[string]bool)
	sc := bufio.NewScanner(strings.NewReader(text))
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		def, err := script.ParseDefinition(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		if seen[def.Name] {
			return nil, fmt.Errorf("line %d: %w: %s", n, datatable.ErrDuplicateColumn, def.Name)
		}
		seen[def.Name] = true
		defs = append(defs, def)
	}
	return defs, sc.Err()
}

// previewDefinitions evaluates each definition on sample, one line per
// definition.
func previewDefinitions(defs []script.Definition, sample datatable.Record) []string {
	if len(defs) == 0 {
		return []string{"No computed columns"}
	}
	if sample == nil {
		sample = datatable.Record{}
	}
	lines := make([]string, 0, len(defs))
	for _, def := range defs {
		c, err := script.Compile(def)
		if err != nil {
			lines = append(lines, fmt.Sprintf("%s: %v", def.Name, err))
			continue
		}
		v, err := c.Eval(sample)
		if err != nil {
			lines = append(lines, fmt.Sprintf("%s: %v", def.Name, err))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s = %s", def.Name, datatable.FormatField(v)))
	}
	return lines
}
