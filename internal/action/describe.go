package action

import (
	"fmt"
	"strconv"
)

// Name returns the variant tag of a.
func Name(a Action) string {
	switch a.(type) {
	case Quit:
		return "Quit"
	case Resume:
		return "Resume"
	case Suspend:
		return "Suspend"
	case Render:
		return "Render"
	case DebouncedRender:
		return "DebouncedRender"
	case SpinnerTick:
		return "SpinnerTick"
	case Resize:
		return "Resize"
	case ToggleShowLogger:
		return "ToggleShowLogger"
	case RefreshServices:
		return "RefreshServices"
	case SetServices:
		return "SetServices"
	case EnterMode:
		return "EnterMode"
	case EnterError:
		return "EnterError"
	case CancelTask:
		return "CancelTask"
	case ToggleHelp:
		return "ToggleHelp"
	case SetUnitFilePath:
		return "SetUnitFilePath"
	case CopyUnitFilePath:
		return "CopyUnitFilePath"
	case SetLogs:
		return "SetLogs"
	case AppendLogLine:
		return "AppendLogLine"
	case StartService:
		return "StartService"
	case StopService:
		return "StopService"
	case RestartService:
		return "RestartService"
	case ReloadService:
		return "ReloadService"
	case EnableService:
		return "EnableService"
	case DisableService:
		return "DisableService"
	case AddService:
		return "AddService"
	case ScrollUp:
		return "ScrollUp"
	case ScrollDown:
		return "ScrollDown"
	case ScrollToTop:
		return "ScrollToTop"
	case ScrollToBottom:
		return "ScrollToBottom"
	case EditUnitFile:
		return "EditUnitFile"
	case Noop:
		return "Noop"
	case Key:
		return "Key"
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("%T", a)
	}
}

// Describe renders a for the log. Actions with large payloads are reduced
// to their tag.
func Describe(a Action) string {
	switch v := a.(type) {
	case SetServices, SetLogs:
		return Name(a)
	case Resize:
		return fmt.Sprintf("Resize(%d, %d)", v.Width, v.Height)
	case EnterMode:
		if v.Mode.Unit.Name != "" {
			return fmt.Sprintf("EnterMode(%s %s)", v.Mode.Kind, v.Mode.Unit)
		}
		return fmt.Sprintf("EnterMode(%s)", v.Mode.Kind)
	case EnterError:
		return "EnterError(" + strconv.Quote(v.Message) + ")"
	case SetUnitFilePath:
		if v.Err != "" {
			return fmt.Sprintf("SetUnitFilePath(%s, err=%q)", v.Unit, v.Err)
		}
		return fmt.Sprintf("SetUnitFilePath(%s, %s)", v.Unit, v.Path)
	case AppendLogLine:
		return fmt.Sprintf("AppendLogLine(%s)", v.Unit)
	case StartService:
		return "StartService(" + v.Unit.String() + ")"
	case StopService:
		return "StopService(" + v.Unit.String() + ")"
	case RestartService:
		return "RestartService(" + v.Unit.String() + ")"
	case ReloadService:
		return "ReloadService(" + v.Unit.String() + ")"
	case EnableService:
		return "EnableService(" + v.Unit.String() + ")"
	case DisableService:
		return "DisableService(" + v.Unit.String() + ")"
	case AddService:
		return "AddService(" + v.Spec.Name + ")"
	case ScrollUp:
		return fmt.Sprintf("ScrollUp(%d)", v.N)
	case ScrollDown:
		return fmt.Sprintf("ScrollDown(%d)", v.N)
	case EditUnitFile:
		return fmt.Sprintf("EditUnitFile(%s, %s)", v.Unit, v.Path)
	case Key:
		return "Key(" + v.Msg.String() + ")"
	default:
		return Name(a)
	}
}

// IsLifecycle reports whether a is handled by the dispatch loop itself
// rather than by the view model reducer.
func IsLifecycle(a Action) bool {
	switch a.(type) {
	case Render, DebouncedRender, Resize, EditUnitFile, AddService, Quit, Suspend, Resume, Noop:
		return true
	}
	return false
}
