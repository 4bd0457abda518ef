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

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// catcher is a transparent full-canvas object below the overlay content.
// Desktop drivers report the press through MouseDown; touch drivers only
// deliver taps, so both forward to the layer. A second delivery for the
// same gesture finds no subscriptions left to notify.
type catcher struct {
	widget.BaseWidget
	layer *Layer
}

var (
	_ fyne.Tappable          = (*catcher)(nil)
	_ fyne.SecondaryTappable = (*catcher)(nil)
	_ desktop.Mouseable      = (*catcher)(nil)
)

func newCatcher(l *Layer) *catcher {
	c := &catcher{layer: l}
	c.ExtendBaseWidget(c)
	return c
}

func (c *catcher) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(canvas.NewRectangle(color.Transparent))
}

func (c *catcher) MouseDown(ev *desktop.MouseEvent) {
	c.layer.Dispatch(ev.AbsolutePosition)
}

func (c *catcher) MouseUp(*desktop.MouseEvent) {}

func (c *catcher) Tapped(ev *fyne.PointEvent) {
	c.layer.Dispatch(ev.AbsolutePosition)
}

func (c *catcher) TappedSecondary(ev *fyne.PointEvent) {
	c.layer.Dispatch(ev.AbsolutePosition)
}
