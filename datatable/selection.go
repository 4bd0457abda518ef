package datatable

// Selection holds at most one selected row.
type Selection struct {
	id    RowID
	valid bool
}

// Selected returns the selected row id, if any.
func (s Selection) Selected() (RowID, bool) {
	return s.id, s.valid
}

// IsSelected reports whether id is the selected row.
func (s Selection) IsSelected(id RowID) bool {
	return s.valid && s.id == id
}

// Activate applies a row activation. Activating the selected row clears
// the selection; any other row replaces it. selected reports whether id
// ended up selected.
func (s Selection) Activate(id RowID) (next Selection, selected bool) {
	if s.IsSelected(id) {
		return Selection{}, false
	}
	return Selection{id: id, valid: true}, true
}

// Clear returns an empty selection.
func (s Selection) Clear() Selection {
	return Selection{}
}
