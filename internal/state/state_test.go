package state

import (
	"reflect"
	"testing"

	"github.com/atomicstack/unit-control/internal/systemd"
)

func TestUnitStoreReplacesWholesale(t *testing.T) {
	store := NewUnitStore()
	store.SetEntries([]systemd.UnitWithStatus{{Name: "a.service"}, {Name: "b.service"}})
	next := []systemd.UnitWithStatus{{Name: "c.service", ActiveState: "active"}}
	store.SetEntries(next)

	if got := store.Entries(); !reflect.DeepEqual(got, next) {
		t.Fatalf("expected %#v, got %#v", next, got)
	}
	if _, ok := store.Find(systemd.UnitID{Name: "a.service"}); ok {
		t.Fatalf("expected old entry to be gone")
	}
	if u, ok := store.Find(systemd.UnitID{Name: "c.service"}); !ok || !u.IsActive() {
		t.Fatalf("expected c.service active, got %#v %v", u, ok)
	}
}

func TestUnitStoreClonesInput(t *testing.T) {
	store := NewUnitStore()
	units := []systemd.UnitWithStatus{{Name: "a.service"}}
	store.SetEntries(units)
	units[0].Name = "mutated"
	if store.Entries()[0].Name != "a.service" {
		t.Fatalf("store shares backing array with caller")
	}
	store.SetEntries(nil)
	if store.Len() != 0 {
		t.Fatalf("expected empty store")
	}
}

func TestLogStoreSetAndAppend(t *testing.T) {
	id := systemd.UnitID{Name: "a.service"}
	store := NewLogStore(0)
	store.Append(id, "one")
	store.Set(id, []string{"x", "y"})
	store.Append(id, "z")

	if got := store.Lines(id); !reflect.DeepEqual(got, []string{"x", "y", "z"}) {
		t.Fatalf("unexpected lines %v", got)
	}
	store.Drop(id)
	if store.Len(id) != 0 {
		t.Fatalf("expected dropped buffer")
	}
}

func TestLogStoreLimit(t *testing.T) {
	id := systemd.UnitID{Name: "a.service"}
	store := NewLogStore(2)
	store.Set(id, []string{"1", "2", "3"})
	store.Append(id, "4")
	if got := store.Lines(id); !reflect.DeepEqual(got, []string{"3", "4"}) {
		t.Fatalf("expected newest two lines, got %v", got)
	}
}
