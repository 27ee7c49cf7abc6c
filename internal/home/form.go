package home

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/unit-control/internal/action"
)

const (
	fieldName = iota
	fieldDescription
	fieldWorkingDir
	fieldExecStart
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldName:        "Name",
	fieldDescription: "Description",
	fieldWorkingDir:  "Working directory",
	fieldExecStart:   "ExecStart",
}

// serviceForm collects the fields of a new unit.
type serviceForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

func newServiceForm() *serviceForm {
	f := &serviceForm{}
	placeholders := [fieldCount]string{
		fieldName:        "my-app",
		fieldDescription: "optional",
		fieldWorkingDir:  "optional, e.g. /srv/my-app",
		fieldExecStart:   "/usr/bin/my-app --flag",
	}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 256
		ti.Prompt = ""
		ti.Cursor.SetMode(cursor.CursorStatic)
		f.inputs[i] = ti
	}
	f.inputs[fieldName].CharLimit = 64
	f.inputs[fieldName].Focus()
	return f
}

// Update applies msg. done is set when the form was submitted with valid
// input; cancel when the user backed out.
func (f *serviceForm) Update(msg tea.KeyMsg) (spec action.ServiceSpec, done, cancel bool) {
	switch msg.String() {
	case "esc":
		return spec, false, true
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return spec, false, false
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return spec, false, false
	case "enter":
		if f.focus < fieldExecStart {
			f.setFocus(f.focus + 1)
			return spec, false, false
		}
		s, err := f.spec()
		if err != "" {
			f.err = err
			return s, false, false
		}
		f.err = ""
		return s, true, false
	}
	f.inputs[f.focus], _ = f.inputs[f.focus].Update(msg)
	return spec, false, false
}

func (f *serviceForm) setFocus(idx int) {
	idx = (idx + fieldCount) % fieldCount
	f.inputs[f.focus].Blur()
	f.focus = idx
	f.inputs[f.focus].Focus()
}

func (f *serviceForm) value(field int) string {
	return strings.TrimSpace(f.inputs[field].Value())
}

func (f *serviceForm) spec() (action.ServiceSpec, string) {
	name := f.value(fieldName)
	if name == "" {
		return action.ServiceSpec{}, "Name is required"
	}
	if strings.ContainsAny(name, "/ \t") {
		return action.ServiceSpec{}, "Name must not contain spaces or slashes"
	}
	exec := f.value(fieldExecStart)
	if exec == "" {
		return action.ServiceSpec{}, "ExecStart is required"
	}
	return action.ServiceSpec{
		Name:        name,
		Description: optionalField(f.value(fieldDescription)),
		WorkingDir:  optionalField(f.value(fieldWorkingDir)),
		ExecStart:   exec,
	}, ""
}

func optionalField(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func (f *serviceForm) Error() string { return f.err }
