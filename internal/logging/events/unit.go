package events

import "github.com/atomicstack/unit-control/internal/logging"

type UnitTracer struct{}

type TaskTracer struct{}

var (
	Unit = UnitTracer{}
	Task = TaskTracer{}
)

func (UnitTracer) State(unit, verb string) {
	logging.Trace("unit.state", map[string]interface{}{"unit": unit, "verb": verb})
}

func (UnitTracer) StateResult(unit, verb string, err error) {
	payload := map[string]interface{}{"unit": unit, "verb": verb}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("unit.state.result", payload)
}

func (UnitTracer) Refresh(count int) {
	logging.Trace("unit.refresh", map[string]interface{}{"count": count})
}

func (UnitTracer) Logs(unit string, lines int) {
	logging.Trace("unit.logs", map[string]interface{}{"unit": unit, "lines": lines})
}

func (UnitTracer) CopyPath(unit, path string) {
	logging.Trace("unit.copy-path", map[string]interface{}{"unit": unit, "path": path})
}

func (TaskTracer) Start(id, label string) {
	logging.Trace("task.start", map[string]interface{}{"id": id, "label": label})
}

func (TaskTracer) Cancel(id, label string) {
	logging.Trace("task.cancel", map[string]interface{}{"id": id, "label": label})
}

func (TaskTracer) Done(id, label string) {
	logging.Trace("task.done", map[string]interface{}{"id": id, "label": label})
}
