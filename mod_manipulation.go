package armviz

import (
	"math"

	"github.com/gekko3d/armviz/control"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// ManipulationModule publishes a Manipulator for the Presenter installed by
// RobotModule and drives it from the pointer and the frame clock.
type ManipulationModule struct {
	Options ManipulatorOptions
}

type HandlePartKind int

const (
	HandleArrow HandlePartKind = iota
	HandleTip
	HandleRing
)

// HandlePartComponent is one drawable piece of the target or world handle.
type HandlePartComponent struct {
	World bool
	Axis  int
	Kind  HandlePartKind
}

var (
	axisColors = [3][4]float32{
		{0.9, 0.2, 0.2, 1},
		{0.2, 0.85, 0.2, 1},
		{0.25, 0.4, 1, 1},
	}
	dragColor = [4]float32{1, 0.9, 0.1, 1}
)

func (mod ManipulationModule) Install(app *App, cmd *Commands) {
	p, ok := Resource[Presenter](app)
	if !ok {
		panic("ManipulationModule requires RobotModule")
	}
	m := NewManipulator(p, mod.Options, app.Logger())
	app.addResources(m)

	spawnHandleParts(cmd, false, mod.Options.HandleSize)
	spawnHandleParts(cmd, true, mod.Options.WorldHandleSize)

	app.UseSystem(
		System(manipulationPointerSystem).
			InStage(Update).
			RunAlways(),
	)
	app.UseSystem(
		System(manipulationSolveSystem).
			InStage(Update).
			RunAlways(),
	)
	app.UseSystem(
		System(handleSyncSystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

// axisRotation turns local +Z onto axis i.
func axisRotation(i int) mgl32.Quat {
	switch i {
	case 0:
		return mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 1, 0})
	case 1:
		return mgl32.QuatRotate(-math.Pi/2, mgl32.Vec3{1, 0, 0})
	}
	return mgl32.QuatIdent()
}

func handlePartGizmo(kind HandlePartKind, axis int, size float32) GizmoComponent {
	dir := mgl32.Vec3{}
	dir[axis] = 1
	var g GizmoComponent
	switch kind {
	case HandleArrow:
		g = NewGizmoCylinder(dir.Mul(size/2), size*0.02, size, axisRotation(axis), axisColors[axis])
	case HandleTip:
		tip := size * 0.08
		g = NewGizmoCube(dir.Mul(size), mgl32.Vec3{tip, tip, tip}, axisColors[axis])
	case HandleRing:
		g = NewGizmoCircle(mgl32.Vec3{}, size, axisRotation(axis), axisColors[axis])
	}
	g.Unlit = true
	g.Hidden = true
	return g
}

func spawnHandleParts(cmd *Commands, world bool, size float64) {
	for axis := 0; axis < 3; axis++ {
		for _, kind := range []HandlePartKind{HandleArrow, HandleTip, HandleRing} {
			comps := []any{
				HandlePartComponent{World: world, Axis: axis, Kind: kind},
				NewTransform(mgl32.Vec3{}),
				handlePartGizmo(kind, axis, float32(size)),
			}
			if world {
				comps = append(comps,
					Parent{},
					LocalTransformComponent{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
				)
			}
			cmd.AddEntity(comps...)
		}
	}
}

// mainCamera returns the first camera entity.
func mainCamera(cmd *Commands) (EntityId, *CameraComponent, bool) {
	var (
		id  EntityId
		cam *CameraComponent
	)
	MakeQuery1[CameraComponent](cmd).Map(func(eid EntityId, c *CameraComponent) bool {
		id, cam = eid, c
		return false
	})
	return id, cam, cam != nil
}

func manipulationPointerSystem(cmd *Commands, m *Manipulator, input *Input) {
	_, cam, ok := mainCamera(cmd)
	if !ok {
		return
	}
	ray := cam.ScreenRay(input.MouseX, input.MouseY, input.WindowWidth, input.WindowHeight)
	switch {
	case input.JustPressed[MouseButtonLeft]:
		m.PointerDown(ray)
	case input.JustReleased[MouseButtonLeft]:
		m.PointerUp()
	default:
		m.PointerMove(ray)
	}

	MakeQuery1[OrbitCameraComponent](cmd).Map(func(eid EntityId, orbit *OrbitCameraComponent) bool {
		orbit.Enabled = m.OrbitEnabled()
		return true
	})
}

func manipulationSolveSystem(cmd *Commands, m *Manipulator, t *Time) {
	if _, cam, ok := mainCamera(cmd); ok {
		if cam.Aspect > 0 && math.Abs(float64(cam.Aspect)-m.Aspect()) > 1e-6 {
			m.SetAspect(float64(cam.Aspect))
		}
		m.SetCamera(toVec64(cam.Position), toQuat64(cam.Rotation()))
	}
	m.Update(t.Dt)
}

// handleSyncSystem poses and colors the handle parts. World parts hang off
// the camera entity so the hierarchy keeps them in view.
func handleSyncSystem(cmd *Commands, m *Manipulator) {
	camID, cam, hasCam := mainCamera(cmd)
	var camPos mgl64.Vec3
	camInv := mgl64.QuatIdent()
	if hasCam {
		camPos = toVec64(cam.Position)
		camInv = toQuat64(cam.Rotation()).Inverse()
	}

	MakeQuery3[HandlePartComponent, TransformComponent, GizmoComponent](cmd).Map(func(eid EntityId, part *HandlePartComponent, tr *TransformComponent, g *GizmoComponent) bool {
		h := m.Target()
		if part.World {
			h = m.WorldHandle()
		}
		visible := h.Visible && (part.Kind == HandleRing) == (h.Mode == control.ControlRotate)
		if part.World && !hasCam {
			visible = false
		}
		g.Hidden = !visible

		g.Color = axisColors[part.Axis]
		if h.DragAxis() == part.Axis {
			g.Color = dragColor
		}

		rot := h.Rotation
		if h.Space == control.SpaceWorld {
			rot = mgl64.QuatIdent()
		}
		if !part.World {
			tr.Position = toVec32(h.Position)
			tr.Rotation = toQuat32(rot)
			tr.Scale = mgl32.Vec3{1, 1, 1}
		}
		return true
	})

	if !hasCam {
		return
	}
	world := m.WorldHandle()
	local := camInv.Rotate(world.Position.Sub(camPos))
	MakeQuery3[HandlePartComponent, Parent, LocalTransformComponent](cmd).Map(func(eid EntityId, part *HandlePartComponent, parent *Parent, lt *LocalTransformComponent) bool {
		parent.Entity = camID
		lt.Position = toVec32(local)
		lt.Rotation = toQuat32(camInv)
		lt.Scale = mgl32.Vec3{1, 1, 1}
		return true
	})
}
