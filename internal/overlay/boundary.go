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

package overlay

import "fyne.io/fyne/v2"

// Boundary is the rendered extent of floating content.
type Boundary interface {
	// Contains reports whether pos, in canvas coordinates, is inside.
	Contains(pos fyne.Position) bool
}

// Rect is a fixed boundary.
type Rect struct {
	Pos  fyne.Position
	Size fyne.Size
}

// Contains implements Boundary. The right and bottom edges are exclusive.
func (r Rect) Contains(pos fyne.Position) bool {
	return pos.X >= r.Pos.X && pos.X < r.Pos.X+r.Size.Width &&
		pos.Y >= r.Pos.Y && pos.Y < r.Pos.Y+r.Size.Height
}

type contentBoundary struct {
	obj fyne.CanvasObject
}

// contentBoundary follows content placed in the layer root. The root sits
// at the canvas origin, so the content position is already absolute. A
// hidden object contains nothing.
func (b contentBoundary) Contains(pos fyne.Position) bool {
	if !b.obj.Visible() {
		return false
	}
	return Rect{Pos: b.obj.Position(), Size: b.obj.Size()}.Contains(pos)
}
