package control

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for _, name := range []string{"inverse", "forward", "view", "select"} {
		m, err := ParseMode(name)
		require.NoError(t, err)
		assert.Equal(t, name, m.String())
	}
	_, err := ParseMode("fly")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestMode_Next(t *testing.T) {
	m := ModeInverse
	seen := []Mode{}
	for i := 0; i < 4; i++ {
		m = m.Next()
		seen = append(seen, m)
	}
	assert.Equal(t, []Mode{ModeForward, ModeView, ModeSelect, ModeInverse}, seen)
}

func TestControlMode(t *testing.T) {
	c, err := ParseControlMode("rotate")
	require.NoError(t, err)
	assert.Equal(t, ControlRotate, c)
	assert.Equal(t, ControlTranslate, c.Toggle())
	assert.Equal(t, ControlRotate, c.Toggle().Toggle())

	_, err = ParseControlMode("scale")
	assert.ErrorIs(t, err, ErrUnknownControlMode)
}

func TestModeState_Enter(t *testing.T) {
	s := ModeState{Mode: ModeSelect}
	s = s.Hover("j1")
	s, selected := s.ToggleSelect("j1")
	require.True(t, selected)
	assert.Equal(t, "j1", s.Selected)

	next, tr := s.Enter(ModeSelect)
	assert.Equal(t, "j1", next.Selected, "re-entering select keeps the selection")
	assert.True(t, tr.ClearedHover)
	assert.False(t, tr.ClearedSelection)

	next, tr = s.Enter(ModeView)
	assert.Equal(t, ModeView, next.Mode)
	assert.Empty(t, next.Selected)
	assert.Empty(t, next.Hovered)
	assert.True(t, tr.ClearedSelection)
	assert.Equal(t, ModeSelect, tr.From)
	assert.Equal(t, "j1", s.Selected, "Enter does not mutate the receiver")
}

func TestModeState_HoverAndSelect(t *testing.T) {
	s := ModeState{Mode: ModeInverse}
	assert.Empty(t, s.Hover("j1").Hovered, "no hover in inverse")
	_, ok := s.ToggleSelect("j1")
	assert.False(t, ok)

	s = ModeState{Mode: ModeForward}
	assert.Equal(t, "j1", s.Hover("j1").Hovered)
	assert.Empty(t, s.Hover("j1").Unhover().Hovered)

	s = ModeState{Mode: ModeSelect}
	s, ok = s.ToggleSelect("j2")
	assert.True(t, ok)
	s, ok = s.ToggleSelect("j2")
	assert.False(t, ok)
	assert.Empty(t, s.Selected)
}

func TestDispatcher_EdgeTriggered(t *testing.T) {
	d := NewDispatcher(DefaultBindings())
	counts := map[Action]int{}
	for _, a := range []Action{ActionToggleInverse, ActionToggleControlMode, ActionResetRobot} {
		a := a
		d.Handle(a, func() { counts[a]++ })
	}

	held := map[string]bool{"q": true}
	pressed := func(k string) bool { return held[k] }

	for frame := 0; frame < 5; frame++ {
		d.Update(pressed)
	}
	assert.Equal(t, 1, counts[ActionToggleInverse], "held key fires once")
	assert.Equal(t, 0, counts[ActionToggleControlMode], "no fallthrough into the next binding")

	held["q"] = false
	d.Update(pressed)
	held["q"] = true
	fired := d.Update(pressed)
	assert.Equal(t, []Action{ActionToggleInverse}, fired)
	assert.Equal(t, 2, counts[ActionToggleInverse])

	held = map[string]bool{"w": true, "r": true}
	d.Update(pressed)
	assert.Equal(t, 1, counts[ActionToggleControlMode])
	assert.Equal(t, 1, counts[ActionResetRobot])
}

func TestDispatcher_KeyEvents(t *testing.T) {
	d := NewDispatcher(map[string]Action{"Q": ActionToggleInverse})
	n := 0
	d.Handle(ActionToggleInverse, func() { n++ })

	_, ok := d.KeyDown("q")
	assert.True(t, ok)
	_, ok = d.KeyDown("q")
	assert.False(t, ok)
	d.KeyUp("q")
	_, ok = d.KeyDown("Q")
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	_, ok = d.KeyDown("z")
	assert.False(t, ok, "unbound keys do nothing")
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction(" Reset_Robot ")
	require.NoError(t, err)
	assert.Equal(t, ActionResetRobot, a)
	_, err = ParseAction("explode")
	assert.Error(t, err)
}

func TestClosestPoints(t *testing.T) {
	// ray along -Z from (1, 0, 5) against the X axis
	tt, s, d := ClosestPoints(mgl64.Vec3{1, 0, 5}, mgl64.Vec3{0, 0, -1}, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	assert.InDelta(t, 5, tt, 1e-9)
	assert.InDelta(t, 1, s, 1e-9)
	assert.InDelta(t, 0, d, 1e-9)

	_, _, d = ClosestPoints(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	assert.InDelta(t, 1, d, 1e-9, "parallel lines fall back to origin distance")
}

func TestSignedAngle(t *testing.T) {
	a := SignedAngle(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 1})
	assert.InDelta(t, math.Pi/2, a, 1e-9)
	a = SignedAngle(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, 1})
	assert.InDelta(t, -math.Pi/2, a, 1e-9)
}

func TestTransformHandle_Translate(t *testing.T) {
	h := NewTransformHandle(1)
	h.Visible = true

	ray := Ray{Origin: mgl64.Vec3{0.5, 0, 5}, Dir: mgl64.Vec3{0, 0, -1}}
	axis, _, ok := h.Hit(ray)
	require.True(t, ok)
	assert.Equal(t, 0, axis)

	require.True(t, h.BeginDrag(ray))
	assert.Equal(t, 0, h.DragAxis())

	require.True(t, h.Drag(Ray{Origin: mgl64.Vec3{0.8, 0.3, 5}, Dir: mgl64.Vec3{0, 0, -1}}))
	assert.InDelta(t, 0.3, h.Position.X(), 1e-9)
	assert.InDelta(t, 0, h.Position.Y(), 1e-9, "movement is constrained to the axis")
	assert.InDelta(t, 0.3, h.DragOffset().X(), 1e-9)

	h.EndDrag()
	assert.False(t, h.Dragging())
	assert.Equal(t, mgl64.Vec3{}, h.DragOffset())

	h.Visible = false
	_, _, ok = h.Hit(ray)
	assert.False(t, ok, "hidden handles cannot be hit")
}

func TestTransformHandle_Rotate(t *testing.T) {
	h := NewTransformHandle(1)
	h.Visible = true
	h.Mode = ControlRotate

	// ring around Z lies in the XY plane; grab it at (1, 0, 0)
	start := Ray{Origin: mgl64.Vec3{1, 0, 5}, Dir: mgl64.Vec3{0, 0, -1}}
	require.True(t, h.BeginDragAxis(start, 2))
	require.True(t, h.Drag(Ray{Origin: mgl64.Vec3{0, 1, 5}, Dir: mgl64.Vec3{0, 0, -1}}))

	v := h.Rotation.Rotate(mgl64.Vec3{1, 0, 0})
	assert.InDelta(t, 1, v.Y(), 1e-9)
	assert.Equal(t, mgl64.Vec3{}, h.Position)
}
