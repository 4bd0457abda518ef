package windows

import (
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/magpierre/fyne-datatable/internal/loader"
)

// openableExtensions are the files the dialog lists.
var openableExtensions = map[string]bool{
	".csv": true, ".tsv": true, ".parquet": true,
	".json": true, ".share": true, ".txt": true,
}

// FileDialog browses the file system for data files and Delta Sharing
// profiles.
type FileDialog struct {
	dialog      dialog.Dialog
	window      fyne.Window
	callback    func(path string)
	fileList    *widget.List
	entries     []fileEntry
	homeDir     string
	currentPath string
	pathLabel   *widget.Label
}

type fileEntry struct {
	Name  string
	IsDir bool
}

// NewFileDialog creates a dialog that starts in dir, or in the home
// directory when dir is empty.
func NewFileDialog(w fyne.Window, dir string, callback func(path string)) *FileDialog {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	if dir == "" {
		dir = homeDir
	}
	return &FileDialog{
		window:      w,
		callback:    callback,
		homeDir:     homeDir,
		currentPath: dir,
	}
}

func (fd *FileDialog) Show() {
	fd.pathLabel = widget.NewLabel(fd.currentPath)
	fd.pathLabel.Truncation = fyne.TextTruncateEllipsis
	fd.pathLabel.TextStyle = fyne.TextStyle{Bold: true}

	fd.fileList = widget.NewList(
		func() int {
			return len(fd.entries)
		},
		func() fyne.CanvasObject {
			return container.NewHBox(widget.NewIcon(theme.DocumentIcon()), widget.NewLabel("template"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			cont := obj.(*fyne.Container)
			entry := fd.entries[id]
			cont.Objects[0].(*widget.Icon).SetResource(entryIcon(entry))
			cont.Objects[1].(*widget.Label).SetText(entry.Name)
		},
	)

	fd.fileList.OnSelected = func(id widget.ListItemID) {
		entry := fd.entries[id]
		fullPath := filepath.Join(fd.currentPath, entry.Name)
		if entry.IsDir {
			fd.currentPath = fullPath
			fd.loadDirectory()
			fd.fileList.UnselectAll()
			return
		}
		fd.dialog.Hide()
		fd.callback(fullPath)
	}

	homeButton := widget.NewButtonWithIcon("Home", theme.HomeIcon(), func() {
		fd.currentPath = fd.homeDir
		fd.loadDirectory()
	})
	upButton := widget.NewButtonWithIcon("Up", theme.NavigateBackIcon(), func() {
		parent := filepath.Dir(fd.currentPath)
		if parent != fd.currentPath {
			fd.currentPath = parent
			fd.loadDirectory()
		}
	})
	refreshButton := widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), func() {
		fd.loadDirectory()
	})

	filterInfo := widget.NewLabel("Showing: .csv, .tsv, .parquet, .json, .share and .txt files, and directories")
	filterInfo.TextStyle = fyne.TextStyle{Italic: true}

	navToolbar := container.NewBorder(nil, nil,
		container.NewHBox(homeButton, upButton, refreshButton), nil,
		fd.pathLabel,
	)

	instructions := widget.NewRichTextFromMarkdown("**Select a data file or a Delta Sharing profile**\n\nClick a folder to open it, or a file to load it.")
	instructions.Wrapping = fyne.TextWrapWord

	content := container.NewBorder(
		container.NewVBox(instructions, widget.NewSeparator(), navToolbar, widget.NewSeparator(), filterInfo),
		nil, nil, nil,
		fd.fileList,
	)

	fd.dialog = dialog.NewCustom("Open", "Close", content, fd.window)
	fd.dialog.Resize(fyne.NewSize(800, 600))
	fd.loadDirectory()
	fd.dialog.Show()
}

func (fd *FileDialog) loadDirectory() {
	entries, err := listDirectory(fd.currentPath)
	if err != nil {
		dialog.ShowError(err, fd.window)
		return
	}
	fd.entries = entries
	fd.pathLabel.SetText(fd.currentPath)
	fd.fileList.Refresh()
}

// listDirectory returns the visible subdirectories of dir followed by the
// files that can be opened, each group in name order.
func listDirectory(dir string) ([]fileEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var dirs, files []fileEntry
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if e.IsDir() {
			dirs = append(dirs, fileEntry{Name: name, IsDir: true})
		} else if openableExtensions[strings.ToLower(filepath.Ext(name))] {
			files = append(files, fileEntry{Name: name})
		}
	}
	return append(dirs, files...), nil
}

func entryIcon(e fileEntry) fyne.Resource {
	if e.IsDir {
		return theme.FolderIcon()
	}
	if strings.EqualFold(filepath.Ext(e.Name), ".share") {
		return theme.AccountIcon()
	}
	switch loader.DetectFileType(e.Name, nil) {
	case loader.FileTypeCSV, loader.FileTypeParquet:
		return theme.GridIcon()
	default:
		return theme.DocumentIcon()
	}
}
