package events

import "github.com/atomicstack/unit-control/internal/logging"

type AppTracer struct{}

var App = AppTracer{}

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Units(scope string, count int) {
	logging.Trace("app.units", map[string]interface{}{"scope": scope, "count": count})
}
