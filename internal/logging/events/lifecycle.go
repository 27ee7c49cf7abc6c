package events

import (
	"time"

	"github.com/atomicstack/unit-control/internal/logging"
)

type LifecycleTracer struct{}

type RenderTracer struct{}

var (
	Lifecycle = LifecycleTracer{}
	Render    = RenderTracer{}
)

func (LifecycleTracer) Suspend() {
	logging.Trace("lifecycle.suspend", nil)
}

func (LifecycleTracer) Resume() {
	logging.Trace("lifecycle.resume", nil)
}

func (LifecycleTracer) Quit() {
	logging.Trace("lifecycle.quit", nil)
}

func (LifecycleTracer) EditStart(unit, path, editor string) {
	logging.Trace("lifecycle.edit.start", map[string]interface{}{"unit": unit, "path": path, "editor": editor})
}

func (LifecycleTracer) EditDone(unit string, changed bool) {
	logging.Trace("lifecycle.edit.done", map[string]interface{}{"unit": unit, "changed": changed})
}

func (LifecycleTracer) AddService(name, path string) {
	logging.Trace("lifecycle.add", map[string]interface{}{"name": name, "path": path})
}

func (LifecycleTracer) Abort(step string, err error) {
	payload := map[string]interface{}{"step": step}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("lifecycle.abort", payload)
}

// Frame logs how long a render took.
func (RenderTracer) Frame(d time.Duration) {
	logging.Trace("render.frame", map[string]interface{}{"micros": d.Microseconds()})
}

func (RenderTracer) Debounced(dropped bool) {
	logging.Trace("render.debounce", map[string]interface{}{"dropped": dropped})
}
