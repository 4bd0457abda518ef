package datatable

import "maps"

// Visibility maps column ids to their shown/hidden flag. It is an
// immutable value: updates return a new Visibility and leave the receiver
// untouched. At least one column is always visible.
type Visibility struct {
	order []string
	shown map[string]bool
}

// NewVisibility marks every id as visible.
func NewVisibility(ids []string) Visibility {
	v := Visibility{
		order: append([]string(nil), ids...),
		shown: make(map[string]bool, len(ids)),
	}
	for _, id := range ids {
		v.shown[id] = true
	}
	return v
}

// IsVisible reports whether id is shown. Unknown ids are not visible.
func (v Visibility) IsVisible(id string) bool {
	return v.shown[id]
}

// VisibleCount returns the number of shown columns.
func (v Visibility) VisibleCount() int {
	n := 0
	for _, shown := range v.shown {
		if shown {
			n++
		}
	}
	return n
}

// AllHidden reports whether no column is shown.
func (v Visibility) AllHidden() bool {
	return v.VisibleCount() == 0
}

// VisibleIDs returns the shown ids in declaration order.
func (v Visibility) VisibleIDs() []string {
	out := make([]string, 0, len(v.order))
	for _, id := range v.order {
		if v.shown[id] {
			out = append(out, id)
		}
	}
	return out
}

// Toggle flips id and reports whether anything changed. Hiding the last
// visible column and toggling an unknown id are no-ops.
func (v Visibility) Toggle(id string) (Visibility, bool) {
	shown, known := v.shown[id]
	if !known {
		return v, false
	}
	if shown && v.VisibleCount() == 1 {
		return v, false
	}
	next := v.clone()
	next.shown[id] = !shown
	return next, true
}

// ShowAll returns a Visibility with every column shown.
func (v Visibility) ShowAll() Visibility {
	next := v.clone()
	for id := range next.shown {
		next.shown[id] = true
	}
	return next
}

// Snapshot returns a copy of the id -> visible map.
func (v Visibility) Snapshot() map[string]bool {
	return maps.Clone(v.shown)
}

func (v Visibility) clone() Visibility {
	return Visibility{order: v.order, shown: maps.Clone(v.shown)}
}
