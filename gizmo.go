package armviz

import (
	"github.com/gekko3d/armviz/render"
	"github.com/go-gl/mathgl/mgl32"
)

type GizmoType int

const (
	GizmoLine GizmoType = iota
	GizmoCube
	GizmoSphere
	GizmoRect   // Wireframe rectangle in the XY plane
	GizmoCircle // Wireframe circle in the XY plane
	GizmoCylinder
	GizmoGrid // Ground grid in the XZ plane
)

// GizmoComponent draws an entity as a wireframe. When the entity has a
// TransformComponent the gizmo pose is relative to it.
type GizmoComponent struct {
	Type  GizmoType
	Color [4]float32

	// Cube, Cylinder, Rect, Circle, Grid: Position is the center and Scale
	// the extents. Line: Position is the start.
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3

	LineEnd mgl32.Vec3
	Radius  float32 // Sphere and Circle; multiplies Scale

	Hidden bool
	Unlit  bool
}

func NewGizmoLine(start, end mgl32.Vec3, color [4]float32) GizmoComponent {
	return GizmoComponent{
		Type:     GizmoLine,
		Position: start,
		LineEnd:  end,
		Color:    color,
		Scale:    mgl32.Vec3{1, 1, 1},
		Rotation: mgl32.QuatIdent(),
	}
}

func NewGizmoCube(center mgl32.Vec3, size mgl32.Vec3, color [4]float32) GizmoComponent {
	return GizmoComponent{
		Type:     GizmoCube,
		Position: center,
		Scale:    size,
		Color:    color,
		Rotation: mgl32.QuatIdent(),
	}
}

func NewGizmoSphere(center mgl32.Vec3, radius float32, color [4]float32) GizmoComponent {
	return GizmoComponent{
		Type:     GizmoSphere,
		Position: center,
		Radius:   radius,
		Scale:    mgl32.Vec3{1, 1, 1},
		Color:    color,
		Rotation: mgl32.QuatIdent(),
	}
}

func NewGizmoCircle(center mgl32.Vec3, radius float32, rot mgl32.Quat, color [4]float32) GizmoComponent {
	return GizmoComponent{
		Type:     GizmoCircle,
		Position: center,
		Radius:   radius,
		Scale:    mgl32.Vec3{1, 1, 1},
		Color:    color,
		Rotation: rot,
	}
}

// NewGizmoCylinder is a cylinder along local Z.
func NewGizmoCylinder(center mgl32.Vec3, radius, length float32, rot mgl32.Quat, color [4]float32) GizmoComponent {
	return GizmoComponent{
		Type:     GizmoCylinder,
		Position: center,
		Scale:    mgl32.Vec3{radius, radius, length},
		Color:    color,
		Rotation: rot,
	}
}

func NewGizmoGrid(size float32, color [4]float32) GizmoComponent {
	return GizmoComponent{
		Type:     GizmoGrid,
		Scale:    mgl32.Vec3{size, 1, size},
		Color:    color,
		Rotation: mgl32.QuatIdent(),
	}
}

var gizmoShapes = map[GizmoType]render.ShapeType{
	GizmoLine:     render.ShapeLine,
	GizmoCube:     render.ShapeCube,
	GizmoSphere:   render.ShapeSphere,
	GizmoRect:     render.ShapeRect,
	GizmoCircle:   render.ShapeCircle,
	GizmoCylinder: render.ShapeCylinder,
	GizmoGrid:     render.ShapeGrid,
}

// Shape converts the gizmo to a render shape in world space. parent may be
// nil.
func (g *GizmoComponent) Shape(parent *TransformComponent) render.Shape {
	scale := g.Scale
	if scale.Len() == 0 {
		scale = mgl32.Vec3{1, 1, 1}
	}
	if g.Type == GizmoSphere || g.Type == GizmoCircle {
		r := g.Radius
		if r == 0 {
			r = 1
		}
		scale = scale.Mul(r)
	}
	rot := g.Rotation
	if rot.Len() == 0 {
		rot = mgl32.QuatIdent()
	}

	base := mgl32.Ident4()
	if parent != nil {
		base = parent.Matrix()
	}

	s := render.Shape{Type: gizmoShapes[g.Type], Color: g.Color, Unlit: g.Unlit}
	if g.Type == GizmoLine {
		s.P1 = mgl32.TransformCoordinate(g.Position, base)
		s.P2 = mgl32.TransformCoordinate(g.LineEnd, base)
		return s
	}
	s.Model = base.
		Mul4(mgl32.Translate3D(g.Position.X(), g.Position.Y(), g.Position.Z())).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
	return s
}
