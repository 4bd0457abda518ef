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

// Package overlay dismisses floating content when the pointer goes down
// outside of it.
//
// Each canvas has one Layer. Opening floating content acquires a
// Subscription on the layer; the subscription owns the content's place in
// the canvas overlay stack and is released when the content closes. While
// at least one subscription is active the layer keeps a full-canvas
// catcher on top of the overlay stack, so every pointer-down is seen by
// the layer first.
package overlay

import (
	"slices"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

var (
	registryMu sync.Mutex
	layers     = make(map[fyne.Canvas]*Layer)
)

// ForCanvas returns the layer of c, creating it on first use. The layer is
// dropped from the registry again once its last subscription is released.
func ForCanvas(c fyne.Canvas) *Layer {
	registryMu.Lock()
	defer registryMu.Unlock()

	if l, ok := layers[c]; ok {
		return l
	}
	l := NewLayer(c)
	l.registered = true
	layers[c] = l
	return l
}

func forget(l *Layer) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if layers[l.canvas] == l {
		delete(layers, l.canvas)
	}
}

// Layer routes pointer-down events to the active subscriptions of one
// canvas.
type Layer struct {
	mu         sync.Mutex
	canvas     fyne.Canvas
	subs       []*Subscription
	root       *fyne.Container
	catcher    *catcher
	installed  bool
	registered bool
}

// NewLayer creates a layer for c outside the registry. A nil canvas gives
// a layer that only tracks subscriptions, which is what tests use.
func NewLayer(c fyne.Canvas) *Layer {
	l := &Layer{canvas: c}
	l.catcher = newCatcher(l)
	l.root = container.New(catcherLayout{}, l.catcher)
	return l
}

// catcherLayout stretches the catcher, always the first object, over the
// whole root whenever the canvas resizes the overlay. Content keeps the
// position it was given when opened.
type catcherLayout struct{}

func (catcherLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) == 0 {
		return
	}
	objects[0].Move(fyne.NewPos(0, 0))
	objects[0].Resize(size)
}

func (catcherLayout) MinSize([]fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(0, 0)
}

// Subscribe registers onOutside to run for every pointer-down outside
// boundary. content, if not nil, is placed in the canvas overlay stack
// above the catcher until the subscription is released. A nil boundary
// uses the extent of content.
func (l *Layer) Subscribe(content fyne.CanvasObject, boundary Boundary, onOutside func()) *Subscription {
	if boundary == nil && content != nil {
		boundary = contentBoundary{obj: content}
	}
	s := &Subscription{layer: l, content: content, boundary: boundary, onOutside: onOutside}

	l.mu.Lock()
	l.subs = append(l.subs, s)
	if content != nil {
		l.root.Add(content)
	}
	l.install()
	l.mu.Unlock()

	return s
}

// Len returns the number of active subscriptions.
func (l *Layer) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}

// Dispatch delivers a pointer-down at pos, in canvas coordinates. Every
// subscription whose boundary does not contain pos is notified, newest
// first. It reports whether any subscription was notified.
func (l *Layer) Dispatch(pos fyne.Position) bool {
	l.mu.Lock()
	subs := slices.Clone(l.subs)
	l.mu.Unlock()

	notified := false
	for i := len(subs) - 1; i >= 0; i-- {
		s := subs[i]
		if !s.Active() || (s.boundary != nil && s.boundary.Contains(pos)) {
			continue
		}
		notified = true
		if s.onOutside != nil {
			s.onOutside()
		}
	}
	return notified
}

func (l *Layer) release(s *Subscription) {
	l.mu.Lock()
	i := slices.Index(l.subs, s)
	if i < 0 {
		l.mu.Unlock()
		return
	}
	l.subs = slices.Delete(l.subs, i, i+1)
	if s.content != nil {
		l.root.Remove(s.content)
	}
	empty := len(l.subs) == 0
	if empty {
		l.uninstall()
	}
	l.mu.Unlock()

	if empty && l.registered {
		forget(l)
	}
}

// install puts the catcher on top of the overlay stack. Callers hold mu.
func (l *Layer) install() {
	if l.canvas == nil {
		return
	}
	l.root.Move(fyne.NewPos(0, 0))
	l.root.Resize(l.canvas.Size())
	if !l.installed {
		l.canvas.Overlays().Add(l.root)
		l.installed = true
	}
	l.root.Refresh()
}

// uninstall removes the catcher from the overlay stack. Callers hold mu.
func (l *Layer) uninstall() {
	if !l.installed {
		return
	}
	l.canvas.Overlays().Remove(l.root)
	l.installed = false
}

// Installed reports whether the layer currently sits in the canvas
// overlay stack.
func (l *Layer) Installed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.installed
}

// Subscription is one open piece of floating content.
type Subscription struct {
	layer     *Layer
	content   fyne.CanvasObject
	boundary  Boundary
	onOutside func()

	once     sync.Once
	mu       sync.Mutex
	released bool
}

// Release unsubscribes and removes the content from the overlay stack.
// Calling it more than once is a no-op.
func (s *Subscription) Release() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.mu.Lock()
		s.released = true
		s.mu.Unlock()
		s.layer.release(s)
	})
}

// Active reports whether the subscription has not been released.
func (s *Subscription) Active() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.released
}
