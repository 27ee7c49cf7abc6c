package events

import "github.com/atomicstack/unit-control/internal/logging"

type ActionTracer struct{}

var Action = ActionTracer{}

// Dispatch records an action taken off the queue. Callers pass only the tag
// for payload-heavy actions.
func (ActionTracer) Dispatch(name, detail string) {
	payload := map[string]interface{}{"action": name}
	if detail != "" {
		payload["detail"] = detail
	}
	logging.Trace("action.dispatch", payload)
}

func (ActionTracer) Followup(from, to string) {
	logging.Trace("action.followup", map[string]interface{}{"from": from, "to": to})
}

func (ActionTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("action.error", map[string]interface{}{"error": err.Error()})
}
