// Package action defines the closed set of messages that drive the
// dashboard. Every producer (terminal input, timers, background service calls
// and the dispatcher itself) communicates only by sending an Action to the
// shared queue; the dispatch loop consumes them one at a time.
package action

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/unit-control/internal/systemd"
)

// Action is implemented only by the variants declared in this package.
type Action interface {
	isAction()
}

type (
	Quit             struct{}
	Resume           struct{}
	Suspend          struct{}
	Render           struct{}
	DebouncedRender  struct{}
	SpinnerTick      struct{}
	ToggleShowLogger struct{}
	RefreshServices  struct{}
	CancelTask       struct{}
	ToggleHelp       struct{}
	CopyUnitFilePath struct{}
	ScrollToTop      struct{}
	ScrollToBottom   struct{}
	Noop             struct{}

	Resize struct {
		Width  int
		Height int
	}
	// SetServices carries a unit snapshot. Seq orders snapshots from
	// overlapping refreshes; zero is always applied.
	SetServices struct {
		Units []systemd.UnitWithStatus
		Seq   uint64
	}
	EnterMode struct {
		Mode Mode
	}
	EnterError struct {
		Message string
	}
	// SetUnitFilePath carries the result of a unit file lookup; Err is empty
	// on success.
	SetUnitFilePath struct {
		Unit systemd.UnitID
		Path string
		Err  string
	}
	SetLogs struct {
		Unit  systemd.UnitID
		Lines []string
	}
	AppendLogLine struct {
		Unit systemd.UnitID
		Line string
	}
	StartService   struct{ Unit systemd.UnitID }
	StopService    struct{ Unit systemd.UnitID }
	RestartService struct{ Unit systemd.UnitID }
	ReloadService  struct{ Unit systemd.UnitID }
	EnableService  struct{ Unit systemd.UnitID }
	DisableService struct{ Unit systemd.UnitID }
	AddService     struct{ Spec ServiceSpec }
	ScrollUp       struct{ N int }
	ScrollDown     struct{ N int }
	EditUnitFile   struct {
		Unit systemd.UnitID
		Path string
	}
	// Key delivers raw terminal input so key handling runs on the dispatch loop.
	Key struct {
		Msg tea.KeyMsg
	}
)

func (Quit) isAction()             {}
func (Resume) isAction()           {}
func (Suspend) isAction()          {}
func (Render) isAction()           {}
func (DebouncedRender) isAction()  {}
func (SpinnerTick) isAction()      {}
func (Resize) isAction()           {}
func (ToggleShowLogger) isAction() {}
func (RefreshServices) isAction()  {}
func (SetServices) isAction()      {}
func (EnterMode) isAction()        {}
func (EnterError) isAction()       {}
func (CancelTask) isAction()       {}
func (ToggleHelp) isAction()       {}
func (SetUnitFilePath) isAction()  {}
func (CopyUnitFilePath) isAction() {}
func (SetLogs) isAction()          {}
func (AppendLogLine) isAction()    {}
func (StartService) isAction()     {}
func (StopService) isAction()      {}
func (RestartService) isAction()   {}
func (ReloadService) isAction()    {}
func (EnableService) isAction()    {}
func (DisableService) isAction()   {}
func (AddService) isAction()       {}
func (ScrollUp) isAction()         {}
func (ScrollDown) isAction()       {}
func (ScrollToTop) isAction()      {}
func (ScrollToBottom) isAction()   {}
func (EditUnitFile) isAction()     {}
func (Noop) isAction()             {}
func (Key) isAction()              {}

// ServiceSpec describes a unit to create. Nil optional fields are omitted
// from the generated unit file.
type ServiceSpec struct {
	Name        string
	Description *string
	WorkingDir  *string
	ExecStart   string
}

// ModeKind enumerates the screens of the dashboard.
type ModeKind int

const (
	ModeServiceList ModeKind = iota
	ModeHelp
	ModeLogs
	ModeAddService
	ModeError
)

func (k ModeKind) String() string {
	switch k {
	case ModeHelp:
		return "help"
	case ModeLogs:
		return "logs"
	case ModeAddService:
		return "add-service"
	case ModeError:
		return "error"
	default:
		return "service-list"
	}
}

// Mode is the single active screen plus the context it applies to.
type Mode struct {
	Kind    ModeKind
	Unit    systemd.UnitID
	Message string
}

func ServiceList() Mode          { return Mode{Kind: ModeServiceList} }
func Help() Mode                 { return Mode{Kind: ModeHelp} }
func AddServiceForm() Mode       { return Mode{Kind: ModeAddService} }
func Logs(u systemd.UnitID) Mode { return Mode{Kind: ModeLogs, Unit: u} }
func Error(msg string) Mode      { return Mode{Kind: ModeError, Message: msg} }
