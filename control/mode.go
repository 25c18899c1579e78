package control

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownMode        = errors.New("unknown mode")
	ErrUnknownControlMode = errors.New("unknown control mode")
)

// Mode is the active interaction mode. Exactly one is active at a time.
type Mode int

const (
	ModeInverse Mode = iota
	ModeForward
	ModeView
	ModeSelect
)

var modeNames = [...]string{"inverse", "forward", "view", "select"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if n == s {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Next cycles inverse, forward, view, select and back to inverse.
func (m Mode) Next() Mode {
	return Mode((int(m) + 1) % len(modeNames))
}

// ControlMode is how the target handle reacts to a drag.
type ControlMode int

const (
	ControlTranslate ControlMode = iota
	ControlRotate
)

func (c ControlMode) String() string {
	if c == ControlRotate {
		return "rotate"
	}
	return "translate"
}

func ParseControlMode(s string) (ControlMode, error) {
	switch s {
	case "translate":
		return ControlTranslate, nil
	case "rotate":
		return ControlRotate, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownControlMode, s)
}

func (c ControlMode) Toggle() ControlMode {
	if c == ControlRotate {
		return ControlTranslate
	}
	return ControlRotate
}

// ModeState holds the active mode and the transient hover/selection state
// that belongs to it. It is a value: transitions return a new state.
type ModeState struct {
	Mode     Mode
	Hovered  string
	Selected string
}

// Transition describes what changed when entering a mode.
type Transition struct {
	From, To         Mode
	ClearedHover     bool
	ClearedSelection bool
}

// Enter switches to mode m. Any switch clears the hover highlight; entering a
// mode other than select also clears the selection.
func (s ModeState) Enter(m Mode) (ModeState, Transition) {
	t := Transition{From: s.Mode, To: m}
	next := s
	next.Mode = m
	if s.Hovered != "" {
		next.Hovered = ""
		t.ClearedHover = true
	}
	if m != ModeSelect && s.Selected != "" {
		next.Selected = ""
		t.ClearedSelection = true
	}
	return next, t
}

// Hoverable reports whether joints react to the pointer in this mode.
func (s ModeState) Hoverable() bool {
	return s.Mode == ModeForward || s.Mode == ModeSelect
}

func (s ModeState) Hover(joint string) ModeState {
	if !s.Hoverable() {
		return s
	}
	s.Hovered = joint
	return s
}

func (s ModeState) Unhover() ModeState {
	s.Hovered = ""
	return s
}

// ToggleSelect selects joint, or deselects it when it is already selected.
// Only valid in select mode.
func (s ModeState) ToggleSelect(joint string) (ModeState, bool) {
	if s.Mode != ModeSelect {
		return s, false
	}
	if s.Selected == joint {
		s.Selected = ""
		return s, false
	}
	s.Selected = joint
	return s, true
}
