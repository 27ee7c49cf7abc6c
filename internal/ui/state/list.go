// Package state tracks cursor, filter and viewport for the unit list.
package state

import "github.com/atomicstack/unit-control/internal/systemd"

// List is the navigable view over the current unit snapshot.
type List struct {
	Items          []systemd.UnitWithStatus
	Full           []systemd.UnitWithStatus
	Filter         string
	Cursor         int
	ViewportOffset int
}

func NewList() *List {
	return &List{}
}

// UpdateItems replaces the underlying units. The cursor stays on the
// previously selected unit when it is still present.
func (l *List) UpdateItems(units []systemd.UnitWithStatus) {
	prev, hadPrev := l.Selected()
	l.Full = cloneUnits(units)
	l.applyFilter()
	if hadPrev {
		if idx := l.IndexOf(prev.ID()); idx >= 0 {
			l.Cursor = idx
		}
	}
}

// IndexOf returns the filtered index of id or -1.
func (l *List) IndexOf(id systemd.UnitID) int {
	for i, u := range l.Items {
		if u.ID() == id {
			return i
		}
	}
	return -1
}

// Selected returns the unit under the cursor.
func (l *List) Selected() (systemd.UnitWithStatus, bool) {
	if l.Cursor < 0 || l.Cursor >= len(l.Items) {
		return systemd.UnitWithStatus{}, false
	}
	return l.Items[l.Cursor], true
}

func cloneUnits(units []systemd.UnitWithStatus) []systemd.UnitWithStatus {
	dup := make([]systemd.UnitWithStatus, len(units))
	copy(dup, units)
	return dup
}
