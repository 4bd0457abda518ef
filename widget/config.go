// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package widget

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"

	"github.com/magpierre/fyne-datatable/datatable"
)

// BorderStyle selects which cell edges are drawn.
type BorderStyle int

const (
	// BorderNone draws no borders.
	BorderNone BorderStyle = iota
	// BorderRight draws the right and bottom edge of every cell.
	BorderRight
	// BorderFull draws all four edges.
	BorderFull
)

// String returns the configuration name of the style.
func (b BorderStyle) String() string {
	switch b {
	case BorderNone:
		return "none"
	case BorderRight:
		return "right"
	case BorderFull:
		return "full"
	default:
		return fmt.Sprintf("BorderStyle(%d)", int(b))
	}
}

// ParseBorderStyle parses "none", "right" or "full".
func ParseBorderStyle(s string) (BorderStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return BorderNone, nil
	case "right":
		return BorderRight, nil
	case "full":
		return BorderFull, nil
	}
	return BorderNone, fmt.Errorf("%w: %q", datatable.ErrInvalidBorderStyle, s)
}

// Config holds the construction options of a DataTable.
type Config struct {
	// Caption is shown above the toolbar when not empty.
	Caption string

	// HeaderAction is placed at the leading end of the toolbar.
	HeaderAction fyne.CanvasObject

	// FooterActions are shown in a row below the table.
	FooterActions []fyne.CanvasObject

	// SelectionActions are shown in the selection dock while a row is
	// selected.
	SelectionActions []fyne.CanvasObject

	Border BorderStyle

	// ShowDeselect adds a Deselect control to the selection dock.
	ShowDeselect bool

	ShowFilterBar      bool
	ShowColumnSelector bool

	// MinColumnWidth is the narrowest a column is laid out.
	MinColumnWidth float32
}

// DefaultConfig returns the configuration used by NewDataTable.
func DefaultConfig() Config {
	return Config{
		Border:             BorderRight,
		ShowDeselect:       true,
		ShowFilterBar:      true,
		ShowColumnSelector: true,
		MinColumnWidth:     100,
	}
}
