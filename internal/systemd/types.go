package systemd

import (
	"fmt"
	"strings"
)

// Scope selects which service manager instance a unit belongs to.
type Scope int

const (
	ScopeSystem Scope = iota
	ScopeUser
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopeUser:
		return "user"
	case ScopeAll:
		return "all"
	default:
		return "system"
	}
}

// ParseScope converts a user supplied scope name.
func ParseScope(value string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "system", "global":
		return ScopeSystem, nil
	case "user":
		return ScopeUser, nil
	case "all":
		return ScopeAll, nil
	default:
		return ScopeSystem, fmt.Errorf("unknown scope %q (want system, user or all)", value)
	}
}

// UnitID identifies a unit within a scope. It is comparable and used as a map key.
type UnitID struct {
	Name  string
	Scope Scope
}

func (u UnitID) String() string {
	if u.Scope == ScopeUser {
		return u.Name + " (user)"
	}
	return u.Name
}

// UnitWithStatus is a point-in-time snapshot of a unit.
type UnitWithStatus struct {
	Name         string
	Scope        Scope
	Description  string
	LoadState    string
	ActiveState  string
	SubState     string
	EnabledState string
	FilePath     string
}

func (u UnitWithStatus) ID() UnitID {
	return UnitID{Name: u.Name, Scope: u.Scope}
}

func (u UnitWithStatus) IsActive() bool {
	return u.ActiveState == "active"
}

func (u UnitWithStatus) IsFailed() bool {
	return u.ActiveState == "failed"
}

// ShortName drops the .service suffix for display.
func (u UnitWithStatus) ShortName() string {
	return strings.TrimSuffix(u.Name, ".service")
}

// Verb is a state transition accepted by SetUnitState.
type Verb string

const (
	VerbStart   Verb = "start"
	VerbStop    Verb = "stop"
	VerbRestart Verb = "restart"
	VerbReload  Verb = "reload"
	VerbEnable  Verb = "enable"
	VerbDisable Verb = "disable"
)

// NormalizeName appends the .service suffix to bare unit names.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	for _, suffix := range unitSuffixes {
		if strings.HasSuffix(name, suffix) {
			return name
		}
	}
	return name + ".service"
}

var unitSuffixes = []string{
	".service", ".socket", ".timer", ".target", ".mount", ".automount",
	".path", ".slice", ".scope", ".device", ".swap",
}
