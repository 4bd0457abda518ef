package windows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/magpierre/fyne-datatable/datatable"
	"github.com/magpierre/fyne-datatable/internal/config"
	"github.com/magpierre/fyne-datatable/internal/loader"
)

var errNoFiles = errors.New("no files available for table")

// MainWindow is the application window: a Delta Sharing navigator on the
// left, table tabs in the middle and a status bar.
type MainWindow struct {
	a         fyne.App
	w         fyne.Window
	cfg       *config.Config
	left      fyne.CanvasObject
	nav       *NavigationTree
	tree      *widget.Tree
	sharing   *loader.SharingClient
	docTabs   *container.DocTabs
	browser   *DataBrowser
	statusBar *widget.Label
	lastDir   string
}

// Run starts the application and blocks until the window is closed. path
// is opened at startup when not empty; otherwise the configured profile is.
func Run(cfg *config.Config, path string) error {
	a := app.NewWithID("dsb")
	a.Settings().SetTheme(&browserTheme{})

	mw := NewMainWindow(a, cfg)
	switch {
	case path != "":
		mw.Open(path)
	case cfg.Profile != "":
		mw.Open(cfg.Profile)
	}
	mw.w.ShowAndRun()
	mw.browser.Close()
	return nil
}

// NewMainWindow builds the window in a.
func NewMainWindow(a fyne.App, cfg *config.Config) *MainWindow {
	t := &MainWindow{a: a, cfg: cfg, nav: NewNavigationTree()}
	t.w = a.NewWindow("Data Browser")
	t.w.Resize(fyne.NewSize(1024, 700))

	t.statusBar = widget.NewLabel("Ready")
	t.statusBar.TextStyle = fyne.TextStyle{Italic: true}
	t.statusBar.Truncation = fyne.TextTruncateEllipsis

	t.tree = t.nav.Widget(
		func(node *TreeNode) { t.loadSharedTable(node, nil) },
		t.showTableMenu,
	)
	t.left = container.NewGridWrap(fyne.NewSize(240, 600), widget.NewCard("", "Shares", t.tree))
	t.left.Hide()

	t.docTabs = container.NewDocTabs()
	t.docTabs.CloseIntercept = func(ti *container.TabItem) {
		if ti == t.browser.browserTab {
			t.browser.Close()
		}
		t.docTabs.Remove(ti)
	}
	t.browser = NewDataBrowser(t.w, t.docTabs, cfg.WidgetConfig(), t.SetStatus)

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.MenuIcon(), func() {
			if t.left.Visible() {
				t.left.Hide()
			} else {
				t.left.Show()
			}
		}),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.FolderOpenIcon(), t.showOpenDialog),
		widget.NewToolbarAction(theme.SearchIcon(), t.showOpenWithOptionsDialog),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() { t.browser.ExportCurrent() }),
		widget.NewToolbarSpacer(),
	)

	t.w.SetContent(container.NewBorder(toolbar, t.statusBar, t.left, nil, t.docTabs))
	return t
}

// SetStatus updates the status bar message
func (t *MainWindow) SetStatus(message string) {
	t.statusBar.SetText(message)
}

// Open loads a data file into a new tab, or connects to the server of a
// Delta Sharing profile.
func (t *MainWindow) Open(path string) {
	t.lastDir = filepath.Dir(path)
	content, err := os.ReadFile(path)
	if err != nil {
		t.showError(fmt.Errorf("failed to read %s: %w", path, err))
		return
	}
	if loader.DetectFileType(path, content) == loader.FileTypeDeltaSharingProfile {
		t.OpenProfile(string(content))
		return
	}
	t.loadFile(path, nil)
}

// OpenProfile connects with a Delta Sharing profile and fills the
// navigator.
func (t *MainWindow) OpenProfile(profile string) {
	client, err := loader.NewSharingClient(profile, t.cfg.APITimeout)
	if err != nil {
		t.showError(err)
		return
	}
	t.SetStatus("Loading shares...")
	runWithProgress(t, "Loading shares...", func(ctx context.Context) (*NavigationTree, error) {
		return t.nav, t.nav.Load(ctx, client)
	}, func(*NavigationTree) {
		t.sharing = client
		t.tree.UnselectAll()
		t.tree.Refresh()
		t.left.Show()
		t.SetStatus(fmt.Sprintf("Profile loaded: %d shares", len(t.nav.GetChildren(""))))
	})
}

func (t *MainWindow) loadFile(path string, opts *loader.QueryOptions) {
	name := filepath.Base(path)
	t.SetStatus("Loading " + name + "...")
	runWithProgress(t, fmt.Sprintf("Loading %s...", name), func(ctx context.Context) (*loader.Table, error) {
		return loader.LoadFile(ctx, path, opts)
	}, func(tbl *loader.Table) {
		t.browser.AddTable(tbl)
	})
}

func (t *MainWindow) loadSharedTable(node *TreeNode, opts *loader.QueryOptions) {
	if t.sharing == nil {
		return
	}
	client := t.sharing
	t.SetStatus("Loading table data: " + node.Name)
	runWithProgress(t, fmt.Sprintf("Loading %s...", node.Name), func(ctx context.Context) (*loader.Table, error) {
		files, err := client.Files(ctx, node.Table)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%w: %s", errNoFiles, node.Name)
		}
		return client.LoadTable(ctx, node.Table, files[0], opts)
	}, func(tbl *loader.Table) {
		t.browser.AddTable(tbl)
	})
}

// showTableMenu offers loading a shared table with or without options.
func (t *MainWindow) showTableMenu(node *TreeNode, e *fyne.PointEvent) {
	menu := fyne.NewMenu("",
		fyne.NewMenuItem("Load with Options...", func() {
			t.withQueryOptions(node.Name, func(ctx context.Context) (*loader.Table, error) {
				files, err := t.sharing.Files(ctx, node.Table)
				if err != nil {
					return nil, err
				}
				if len(files) == 0 {
					return nil, fmt.Errorf("%w: %s", errNoFiles, node.Name)
				}
				return t.sharing.LoadTable(ctx, node.Table, files[0], &loader.QueryOptions{Limit: 1})
			}, func(opts *loader.QueryOptions) {
				t.loadSharedTable(node, opts)
			})
		}),
		fyne.NewMenuItem("Load All Data", func() {
			t.loadSharedTable(node, nil)
		}),
	)
	widget.ShowPopUpMenuAtPosition(menu, t.w.Canvas(), e.AbsolutePosition)
}

func (t *MainWindow) showOpenDialog() {
	NewFileDialog(t.w, t.lastDir, t.Open).Show()
}

func (t *MainWindow) showOpenWithOptionsDialog() {
	NewFileDialog(t.w, t.lastDir, func(path string) {
		t.lastDir = filepath.Dir(path)
		t.withQueryOptions(filepath.Base(path), func(ctx context.Context) (*loader.Table, error) {
			return loader.LoadFile(ctx, path, &loader.QueryOptions{Limit: 1})
		}, func(opts *loader.QueryOptions) {
			t.loadFile(path, opts)
		})
	}).Show()
}

// withQueryOptions loads a one-row preview to learn the columns, then asks
// for query options and hands them to load.
func (t *MainWindow) withQueryOptions(name string, preview func(context.Context) (*loader.Table, error), load func(*loader.QueryOptions)) {
	runWithProgress(t, "Loading schema for "+name, preview, func(tbl *loader.Table) {
		var sample datatable.Record
		if rows := tbl.Model.Rows(); len(rows) > 0 {
			sample = rows[0].Data
		}
		NewQueryOptionsDialog(t.w, columnsOf(tbl.Model), sample, load).Show()
	})
}

func (t *MainWindow) showError(err error) {
	slog.Error("operation failed", "error", err)
	t.SetStatus("Error: " + err.Error())
	dialog.ShowError(err, t.w)
}

// runWithProgress runs work in the background behind a progress dialog,
// then calls done on the UI thread. Errors are shown instead.
func runWithProgress[T any](t *MainWindow, title string, work func(context.Context) (T, error), done func(T)) {
	pbi := widget.NewProgressBarInfinite()
	progress := dialog.NewCustomWithoutButtons(title, pbi, t.w)
	progress.Resize(fyne.NewSize(300, 100))
	progress.Show()

	go func() {
		result, err := work(context.Background())
		fyne.Do(func() {
			progress.Hide()
			if err != nil {
				t.showError(err)
				return
			}
			done(result)
		})
	}()
}
