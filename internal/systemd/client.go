package systemd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/atomicstack/unit-control/internal/logging"
	sddbus "github.com/coreos/go-systemd/v22/dbus"
)

// ErrNoUnits is returned when an allow-list matches no known unit.
var ErrNoUnits = errors.New("no matching units")

// Directory is the service manager surface consumed by the dashboard.
type Directory interface {
	ListUnits(ctx context.Context, scope Scope, filter []string) ([]UnitWithStatus, error)
	SetUnitState(ctx context.Context, unit UnitID, verb Verb) error
	UnitFilePath(ctx context.Context, unit UnitID) (string, error)
	Logs(ctx context.Context, unit UnitID) ([]string, error)
	FollowLogs(ctx context.Context, unit UnitID, fn func(line string)) error
	DaemonReload(ctx context.Context, scope Scope) error
}

type busConn interface {
	ListUnitsByPatternsContext(ctx context.Context, states []string, patterns []string) ([]sddbus.UnitStatus, error)
	ListUnitFilesByPatternsContext(ctx context.Context, states []string, patterns []string) ([]sddbus.UnitFile, error)
	StartUnitContext(ctx context.Context, name string, mode string, ch chan<- string) (int, error)
	StopUnitContext(ctx context.Context, name string, mode string, ch chan<- string) (int, error)
	RestartUnitContext(ctx context.Context, name string, mode string, ch chan<- string) (int, error)
	ReloadUnitContext(ctx context.Context, name string, mode string, ch chan<- string) (int, error)
	EnableUnitFilesContext(ctx context.Context, files []string, runtime bool, force bool) (bool, []sddbus.EnableUnitFileChange, error)
	DisableUnitFilesContext(ctx context.Context, files []string, runtime bool) ([]sddbus.DisableUnitFileChange, error)
	ReloadContext(ctx context.Context) error
	GetUnitPropertyContext(ctx context.Context, unit string, propertyName string) (*sddbus.Property, error)
	Close()
}

var newBus = func(ctx context.Context, scope Scope) (busConn, error) {
	if scope == ScopeUser {
		return sddbus.NewUserConnectionContext(ctx)
	}
	return sddbus.NewSystemConnectionContext(ctx)
}

// Client talks to systemd over D-Bus and reads logs through journalctl.
type Client struct {
	journalctl string
	logLines   int
}

// NewClient returns a Directory backed by the local service manager.
func NewClient() *Client {
	return &Client{journalctl: "journalctl", logLines: 500}
}

var _ Directory = (*Client)(nil)

func scopesFor(scope Scope) []Scope {
	if scope == ScopeAll {
		return []Scope{ScopeSystem, ScopeUser}
	}
	return []Scope{scope}
}

func patternsFor(filter []string) []string {
	if len(filter) == 0 {
		return []string{"*.service"}
	}
	patterns := make([]string, 0, len(filter))
	for _, name := range filter {
		if n := NormalizeName(name); n != "" {
			patterns = append(patterns, n)
		}
	}
	return patterns
}

// ListUnits returns loaded units merged with installed unit files, sorted by name.
func (c *Client) ListUnits(ctx context.Context, scope Scope, filter []string) ([]UnitWithStatus, error) {
	patterns := patternsFor(filter)
	var out []UnitWithStatus
	for _, s := range scopesFor(scope) {
		units, err := listScope(ctx, s, patterns)
		if err != nil {
			if scope == ScopeAll && s == ScopeUser {
				// no user manager (e.g. running under sudo)
				logging.Error(fmt.Errorf("list user units: %w", err))
				continue
			}
			return nil, fmt.Errorf("list %s units: %w", s, err)
		}
		out = append(out, units...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].Scope < out[j].Scope
		}
		return out[i].Name < out[j].Name
	})
	if len(filter) > 0 && len(out) == 0 {
		return nil, ErrNoUnits
	}
	return out, nil
}

func listScope(ctx context.Context, scope Scope, patterns []string) ([]UnitWithStatus, error) {
	conn, err := newBus(ctx, scope)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	loaded, err := conn.ListUnitsByPatternsContext(ctx, nil, patterns)
	if err != nil {
		return nil, err
	}
	files, err := conn.ListUnitFilesByPatternsContext(ctx, nil, patterns)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*UnitWithStatus, len(loaded)+len(files))
	order := make([]string, 0, len(loaded)+len(files))
	for _, u := range loaded {
		entry := &UnitWithStatus{
			Name:        u.Name,
			Scope:       scope,
			Description: u.Description,
			LoadState:   u.LoadState,
			ActiveState: u.ActiveState,
			SubState:    u.SubState,
		}
		byName[u.Name] = entry
		order = append(order, u.Name)
	}
	for _, f := range files {
		name := filepath.Base(f.Path)
		entry, ok := byName[name]
		if !ok {
			entry = &UnitWithStatus{
				Name:        name,
				Scope:       scope,
				LoadState:   "not-loaded",
				ActiveState: "inactive",
				SubState:    "dead",
			}
			byName[name] = entry
			order = append(order, name)
		}
		entry.EnabledState = f.Type
		entry.FilePath = f.Path
	}

	out := make([]UnitWithStatus, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out, nil
}

// SetUnitState applies verb to unit and waits for the resulting job to finish.
func (c *Client) SetUnitState(ctx context.Context, unit UnitID, verb Verb) error {
	conn, err := newBus(ctx, unit.Scope)
	if err != nil {
		return fmt.Errorf("connect to %s manager: %w", unit.Scope, err)
	}
	defer conn.Close()

	name := unit.Name
	switch verb {
	case VerbStart:
		return runJob(ctx, verb, name, conn.StartUnitContext)
	case VerbStop:
		return runJob(ctx, verb, name, conn.StopUnitContext)
	case VerbRestart:
		return runJob(ctx, verb, name, conn.RestartUnitContext)
	case VerbReload:
		return runJob(ctx, verb, name, conn.ReloadUnitContext)
	case VerbEnable:
		if _, _, err := conn.EnableUnitFilesContext(ctx, []string{name}, false, true); err != nil {
			return fmt.Errorf("enable %s: %w", name, err)
		}
		return conn.ReloadContext(ctx)
	case VerbDisable:
		if _, err := conn.DisableUnitFilesContext(ctx, []string{name}, false); err != nil {
			return fmt.Errorf("disable %s: %w", name, err)
		}
		return conn.ReloadContext(ctx)
	default:
		return fmt.Errorf("unsupported verb %q", verb)
	}
}

type jobFunc func(ctx context.Context, name string, mode string, ch chan<- string) (int, error)

func runJob(ctx context.Context, verb Verb, name string, fn jobFunc) error {
	ch := make(chan string, 1)
	if _, err := fn(ctx, name, "replace", ch); err != nil {
		return fmt.Errorf("%s %s: %w", verb, name, err)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case result := <-ch:
		if result != "done" {
			return fmt.Errorf("%s %s: job %s", verb, name, result)
		}
		return nil
	}
}

// UnitFilePath resolves the fragment path backing unit.
func (c *Client) UnitFilePath(ctx context.Context, unit UnitID) (string, error) {
	conn, err := newBus(ctx, unit.Scope)
	if err != nil {
		return "", fmt.Errorf("connect to %s manager: %w", unit.Scope, err)
	}
	defer conn.Close()

	prop, err := conn.GetUnitPropertyContext(ctx, unit.Name, "FragmentPath")
	if err != nil {
		return "", fmt.Errorf("fragment path for %s: %w", unit.Name, err)
	}
	path, _ := prop.Value.Value().(string)
	if path == "" {
		return "", fmt.Errorf("no unit file for %s", unit.Name)
	}
	return path, nil
}

// DaemonReload asks the manager for scope to reload its configuration.
func (c *Client) DaemonReload(ctx context.Context, scope Scope) error {
	if scope == ScopeAll {
		scope = ScopeSystem
	}
	conn, err := newBus(ctx, scope)
	if err != nil {
		return fmt.Errorf("connect to %s manager: %w", scope, err)
	}
	defer conn.Close()
	if err := conn.ReloadContext(ctx); err != nil {
		return fmt.Errorf("daemon-reload: %w", err)
	}
	return nil
}
