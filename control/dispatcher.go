package control

import (
	"fmt"
	"sort"
	"strings"
)

type Action string

const (
	ActionToggleInverse       Action = "toggle_inverse"
	ActionToggleControlMode   Action = "toggle_control_mode"
	ActionResetRobot          Action = "reset_robot"
	ActionCycleMode           Action = "cycle_mode"
	ActionToggleWorldControls Action = "toggle_world_controls"
	ActionResetGizmo          Action = "reset_gizmo"
	ActionSavePose            Action = "save_pose"
	ActionQuit                Action = "quit"
)

var knownActions = map[Action]bool{
	ActionToggleInverse:       true,
	ActionToggleControlMode:   true,
	ActionResetRobot:          true,
	ActionCycleMode:           true,
	ActionToggleWorldControls: true,
	ActionResetGizmo:          true,
	ActionSavePose:            true,
	ActionQuit:                true,
}

func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if !knownActions[a] {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

// DefaultBindings maps key names to actions.
func DefaultBindings() map[string]Action {
	return map[string]Action{
		"q":      ActionToggleInverse,
		"w":      ActionToggleControlMode,
		"r":      ActionResetRobot,
		"e":      ActionCycleMode,
		"t":      ActionToggleWorldControls,
		"g":      ActionResetGizmo,
		"p":      ActionSavePose,
		"escape": ActionQuit,
	}
}

// Dispatcher turns key state into actions. A key fires once when it goes
// down and again only after it has been released. Every binding runs its own
// handler and nothing else.
type Dispatcher struct {
	bindings map[string]Action
	handlers map[Action]func()
	down     map[string]bool
}

func NewDispatcher(bindings map[string]Action) *Dispatcher {
	d := &Dispatcher{
		bindings: make(map[string]Action, len(bindings)),
		handlers: make(map[Action]func()),
		down:     make(map[string]bool),
	}
	for k, a := range bindings {
		d.bindings[strings.ToLower(k)] = a
	}
	return d
}

// Handle registers fn for action, replacing any previous handler.
func (d *Dispatcher) Handle(action Action, fn func()) {
	d.handlers[action] = fn
}

// Keys returns the bound key names in sorted order.
func (d *Dispatcher) Keys() []string {
	keys := make([]string, 0, len(d.bindings))
	for k := range d.bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (d *Dispatcher) Binding(key string) (Action, bool) {
	a, ok := d.bindings[strings.ToLower(key)]
	return a, ok
}

// KeyDown records a key press and runs its handler if this is a new press.
func (d *Dispatcher) KeyDown(key string) (Action, bool) {
	key = strings.ToLower(key)
	if d.down[key] {
		return "", false
	}
	d.down[key] = true

	a, ok := d.bindings[key]
	if !ok {
		return "", false
	}
	if fn := d.handlers[a]; fn != nil {
		fn()
	}
	return a, true
}

func (d *Dispatcher) KeyUp(key string) {
	delete(d.down, strings.ToLower(key))
}

// Update polls every bound key and returns the actions fired this call.
func (d *Dispatcher) Update(pressed func(key string) bool) []Action {
	var fired []Action
	for _, k := range d.Keys() {
		if pressed(k) {
			if a, ok := d.KeyDown(k); ok {
				fired = append(fired, a)
			}
		} else {
			d.KeyUp(k)
		}
	}
	return fired
}
