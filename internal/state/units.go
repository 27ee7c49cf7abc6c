package state

import "github.com/atomicstack/unit-control/internal/systemd"

// UnitStore holds the most recent unit snapshot. SetEntries replaces it
// wholesale; there is no merging with the previous list.
type UnitStore interface {
	Entries() []systemd.UnitWithStatus
	SetEntries([]systemd.UnitWithStatus)
	Find(id systemd.UnitID) (systemd.UnitWithStatus, bool)
	Len() int
}

type unitStore struct {
	entries []systemd.UnitWithStatus
}

func NewUnitStore() UnitStore {
	return &unitStore{}
}

func (s *unitStore) Entries() []systemd.UnitWithStatus {
	return cloneUnits(s.entries)
}

func (s *unitStore) SetEntries(entries []systemd.UnitWithStatus) {
	s.entries = cloneUnits(entries)
}

func (s *unitStore) Find(id systemd.UnitID) (systemd.UnitWithStatus, bool) {
	for _, u := range s.entries {
		if u.ID() == id {
			return u, true
		}
	}
	return systemd.UnitWithStatus{}, false
}

func (s *unitStore) Len() int {
	return len(s.entries)
}

func cloneUnits(entries []systemd.UnitWithStatus) []systemd.UnitWithStatus {
	if len(entries) == 0 {
		return nil
	}
	dup := make([]systemd.UnitWithStatus, len(entries))
	copy(dup, entries)
	return dup
}
