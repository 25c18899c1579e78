package armviz

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInput_EdgeFlags(t *testing.T) {
	in := &Input{}

	in.setButton(KeyQ, true)
	assert.True(t, in.JustPressed[KeyQ])
	assert.True(t, in.KeyPressed("q"))

	in.setButton(KeyQ, true)
	assert.False(t, in.JustPressed[KeyQ], "held keys are not new presses")
	assert.True(t, in.Pressed[KeyQ])

	in.setButton(KeyQ, false)
	assert.True(t, in.JustReleased[KeyQ])
	assert.False(t, in.KeyPressed("q"))

	assert.False(t, in.KeyPressed("no-such-key"))
}

func TestInput_MouseDelta(t *testing.T) {
	in := &Input{}
	in.moveMouse(100, 50)
	assert.Zero(t, in.MouseDeltaX, "first sample has no delta")

	in.moveMouse(110, 45)
	assert.Equal(t, 10.0, in.MouseDeltaX)
	assert.Equal(t, -5.0, in.MouseDeltaY)
}

func TestKeyCode(t *testing.T) {
	k, ok := KeyCode("w")
	require.True(t, ok)
	assert.Equal(t, KeyW, k)
	k, ok = KeyCode("escape")
	require.True(t, ok)
	assert.Equal(t, KeyEscape, k)
	k, _ = KeyCode("7")
	assert.Equal(t, Key7, k)
}

func TestWindowState_Resize(t *testing.T) {
	s := &WindowState{FramebufferWidth: 800, FramebufferHeight: 600}
	s.resize(800, 600)
	assert.False(t, s.Resized)
	s.resize(1000, 500)
	assert.True(t, s.Resized)
	assert.Equal(t, float32(2), s.Aspect())
	s.resize(0, 0)
	assert.Equal(t, float32(1), s.Aspect())
}

func TestOrbitCamera(t *testing.T) {
	o := NewOrbitCamera(mgl32.Vec3{0, 0.5, 2.5}, mgl32.Vec3{0, 0.5, 0})
	assert.InDelta(t, 2.5, o.Distance, 1e-5)
	assert.InDelta(t, mgl32.DegToRad(90), o.Polar, 1e-5)
	assert.True(t, o.Position().ApproxEqualThreshold(mgl32.Vec3{0, 0.5, 2.5}, 1e-4))

	// polar stays within [0, pi/2]: the camera never goes below the ground
	o.Rotate(0, -10000)
	assert.InDelta(t, o.MaxPolar, o.Polar, 1e-6)
	o.Rotate(0, 10000)
	assert.InDelta(t, 0, o.Polar, 1e-6)
	assert.Greater(t, o.Position().Y(), float32(0.5))

	d := o.Distance
	o.Zoom(1)
	assert.Less(t, o.Distance, d)
	o.Zoom(-1000)
	assert.Equal(t, o.MaxDistance, o.Distance)
}

func TestCamera_ScreenRay(t *testing.T) {
	cam := &CameraComponent{
		Position: mgl32.Vec3{0, 0.5, 2.5},
		LookAt:   mgl32.Vec3{0, 0.5, 0},
		Up:       mgl32.Vec3{0, 1, 0},
		Fov:      50, Near: 0.01, Far: 1000, Aspect: 4.0 / 3.0,
	}
	ray := cam.ScreenRay(400, 300, 800, 600)
	assert.InDelta(t, 0, ray.Dir.X(), 1e-4)
	assert.InDelta(t, 0, ray.Dir.Y(), 1e-4)
	assert.InDelta(t, -1, ray.Dir.Z(), 1e-4)
	assert.InDelta(t, 2.5-0.01, ray.Origin.Z(), 1e-3)

	left := cam.ScreenRay(0, 300, 800, 600)
	assert.Less(t, left.Dir.X(), 0.0)

	fwd := cam.Rotation().Rotate(mgl32.Vec3{0, 0, -1})
	assert.True(t, fwd.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-4))
}
