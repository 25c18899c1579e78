package armviz

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type OrbitCameraModule struct{}

func (m OrbitCameraModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(OrbitCameraControlSystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

// OrbitCameraComponent rotates a camera around Target with the left mouse
// button and zooms with the wheel. Disabled while the pointer is used for
// manipulation.
type OrbitCameraComponent struct {
	Target      mgl32.Vec3
	Distance    float32
	Azimuth     float32 // radians around +Y
	Polar       float32 // radians from +Y
	MinPolar    float32
	MaxPolar    float32
	MinDistance float32
	MaxDistance float32
	RotateSpeed float32 // radians per pixel
	ZoomSpeed   float32
	Enabled     bool

	rotating bool
}

// NewOrbitCamera derives the orbit angles from a camera position.
func NewOrbitCamera(position, target mgl32.Vec3) OrbitCameraComponent {
	o := OrbitCameraComponent{
		Target:      target,
		MinPolar:    0,
		MaxPolar:    math.Pi / 2,
		MinDistance: 0.1,
		MaxDistance: 100,
		RotateSpeed: 0.005,
		ZoomSpeed:   0.95,
		Enabled:     true,
	}
	d := position.Sub(target)
	o.Distance = d.Len()
	if o.Distance > 0 {
		o.Polar = float32(math.Acos(float64(mgl32.Clamp(d.Y()/o.Distance, -1, 1))))
		o.Azimuth = float32(math.Atan2(float64(d.X()), float64(d.Z())))
	}
	return o
}

// Position is the camera position for the current angles. The polar angle
// is kept off the pole so the view matrix stays defined.
func (o *OrbitCameraComponent) Position() mgl32.Vec3 {
	polar := mgl32.Clamp(o.Polar, max(o.MinPolar, 1e-3), o.MaxPolar)
	sp, cp := math.Sincos(float64(polar))
	sa, ca := math.Sincos(float64(o.Azimuth))
	off := mgl32.Vec3{float32(sp * sa), float32(cp), float32(sp * ca)}.Mul(o.Distance)
	return o.Target.Add(off)
}

// Rotate applies a pointer delta in pixels.
func (o *OrbitCameraComponent) Rotate(dx, dy float32) {
	o.Azimuth -= dx * o.RotateSpeed
	o.Polar = mgl32.Clamp(o.Polar-dy*o.RotateSpeed, o.MinPolar, o.MaxPolar)
}

// Zoom applies wheel steps; positive steps move closer.
func (o *OrbitCameraComponent) Zoom(steps float32) {
	if steps == 0 || o.ZoomSpeed <= 0 {
		return
	}
	o.Distance *= float32(math.Pow(float64(o.ZoomSpeed), float64(steps)))
	o.Distance = mgl32.Clamp(o.Distance, o.MinDistance, o.MaxDistance)
}

func OrbitCameraControlSystem(cmd *Commands, input *Input) {
	MakeQuery2[CameraComponent, OrbitCameraComponent](cmd).Map(func(eid EntityId, cam *CameraComponent, orbit *OrbitCameraComponent) bool {
		if input.JustPressed[MouseButtonLeft] {
			orbit.rotating = orbit.Enabled
		}
		if !input.Pressed[MouseButtonLeft] {
			orbit.rotating = false
		}
		if orbit.rotating {
			orbit.Rotate(float32(input.MouseDeltaX), float32(input.MouseDeltaY))
		}
		if orbit.Enabled {
			orbit.Zoom(float32(input.ScrollY))
		}

		cam.Position = orbit.Position()
		cam.LookAt = orbit.Target
		cam.Up = mgl32.Vec3{0, 1, 0}
		return true
	})

	// keep the camera entity transform in sync for children (world handle)
	MakeQuery2[CameraComponent, TransformComponent](cmd).Map(func(eid EntityId, cam *CameraComponent, tr *TransformComponent) bool {
		tr.Position = cam.Position
		tr.Rotation = cam.Rotation()
		if tr.Scale.Len() == 0 {
			tr.Scale = mgl32.Vec3{1, 1, 1}
		}
		return true
	})
}
