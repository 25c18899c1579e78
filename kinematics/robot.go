package kinematics

import (
	"fmt"
	"math"

	"github.com/gekko3d/armviz/urdf"
	"github.com/go-gl/mathgl/mgl64"
)

type JointType int

const (
	JointFixed JointType = iota
	JointRevolute
	JointContinuous
	JointPrismatic
)

func (t JointType) String() string {
	switch t {
	case JointRevolute:
		return "revolute"
	case JointContinuous:
		return "continuous"
	case JointPrismatic:
		return "prismatic"
	default:
		return "fixed"
	}
}

// ParseJointType maps URDF joint types. Floating and planar joints are
// treated as fixed.
func ParseJointType(s string) JointType {
	switch s {
	case "revolute":
		return JointRevolute
	case "continuous":
		return JointContinuous
	case "prismatic":
		return JointPrismatic
	default:
		return JointFixed
	}
}

type ShapeType int

const (
	ShapeBox ShapeType = iota
	ShapeCylinder
	ShapeSphere
	ShapeMesh
)

// Material is the surface description of a visual.
type Material struct {
	Color     [3]float32
	Emissive  [3]float32
	Roughness float32
	Metalness float32
}

type Visual struct {
	Shape ShapeType
	// Box: full extents. Cylinder: radius, radius, length. Sphere: radius.
	// Mesh: scale.
	Size     mgl64.Vec3
	MeshFile string
	Origin   mgl64.Mat4
	Material Material
	HasColor bool
}

type Link struct {
	Name     string
	Parent   *Joint
	Children []*Joint
	Visuals  []Visual
	World    mgl64.Mat4
}

type Joint struct {
	Name         string
	Type         JointType
	Axis         mgl64.Vec3
	Origin       mgl64.Mat4
	Lower, Upper float64
	HasLimits    bool
	IgnoreLimits bool
	Parent       *Link
	Child        *Link

	value float64
}

func (j *Joint) Movable() bool { return j.Type != JointFixed }

func (j *Joint) Value() float64 { return j.value }

// SetValue assigns the joint value, clamped to the limits unless they are
// ignored. Fixed joints are never changed. Returns whether the value changed.
func (j *Joint) SetValue(v float64) bool {
	if !j.Movable() || math.IsNaN(v) {
		return false
	}
	if j.HasLimits && !j.IgnoreLimits {
		v = mgl64.Clamp(v, j.Lower, j.Upper)
	}
	changed := v != j.value
	j.value = v
	return changed
}

// Local is the transform from the parent link frame to the child link frame.
func (j *Joint) Local() mgl64.Mat4 {
	return j.Origin.Mul4(j.Motion(j.value))
}

// Motion is the joint transform for value v, without the origin.
func (j *Joint) Motion(v float64) mgl64.Mat4 {
	switch j.Type {
	case JointRevolute, JointContinuous:
		return mgl64.HomogRotate3D(v, j.Axis)
	case JointPrismatic:
		d := j.Axis.Mul(v)
		return mgl64.Translate3D(d.X(), d.Y(), d.Z())
	default:
		return mgl64.Ident4()
	}
}

// Robot is a kinematic tree built from a URDF description.
type Robot struct {
	Name     string
	Root     *Link
	Position mgl64.Vec3
	Rotation mgl64.Quat

	links  map[string]*Link
	joints map[string]*Joint
	order  []*Joint
}

// Build creates a Robot from a parsed description. All joints start at zero.
func Build(desc *urdf.Robot) (*Robot, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	rootName, err := desc.Root()
	if err != nil {
		return nil, err
	}

	r := &Robot{
		Name:     desc.Name,
		Rotation: mgl64.QuatIdent(),
		links:    make(map[string]*Link, len(desc.Links)),
		joints:   make(map[string]*Joint, len(desc.Joints)),
	}

	for _, dl := range desc.Links {
		link := &Link{Name: dl.Name, World: mgl64.Ident4()}
		for _, dv := range dl.Visuals {
			v, err := buildVisual(desc, dv)
			if err != nil {
				return nil, fmt.Errorf("link %q: %w", dl.Name, err)
			}
			link.Visuals = append(link.Visuals, v)
		}
		r.links[dl.Name] = link
	}

	for _, dj := range desc.Joints {
		xyz, rpy, err := dj.Origin.Values()
		if err != nil {
			return nil, fmt.Errorf("joint %q: %w", dj.Name, err)
		}
		axis, err := dj.Axis.Vector()
		if err != nil {
			return nil, fmt.Errorf("joint %q axis: %w", dj.Name, err)
		}
		a := mgl64.Vec3(axis)
		if a.Len() < 1e-12 {
			a = AxisX
		}

		j := &Joint{
			Name:   dj.Name,
			Type:   ParseJointType(dj.Type),
			Axis:   a.Normalize(),
			Origin: Compose(mgl64.Vec3(xyz), RPYToQuat(rpy)),
			Parent: r.links[dj.Parent.Link],
			Child:  r.links[dj.Child.Link],
		}
		if dj.Limit != nil && (j.Type == JointRevolute || j.Type == JointPrismatic) {
			j.Lower, j.Upper = dj.Limit.Lower, dj.Limit.Upper
			j.HasLimits = j.Lower <= j.Upper
		}

		j.Parent.Children = append(j.Parent.Children, j)
		j.Child.Parent = j
		r.joints[j.Name] = j
		r.order = append(r.order, j)
	}

	r.Root = r.links[rootName]
	r.UpdateMatrixWorld()
	return r, nil
}

func buildVisual(desc *urdf.Robot, dv urdf.Visual) (Visual, error) {
	xyz, rpy, err := dv.Origin.Values()
	if err != nil {
		return Visual{}, err
	}
	v := Visual{Origin: Compose(mgl64.Vec3(xyz), RPYToQuat(rpy))}

	g := dv.Geometry
	switch {
	case g.Box != nil:
		size, err := urdf.ParseVec3(g.Box.Size, [3]float64{})
		if err != nil {
			return Visual{}, fmt.Errorf("box size: %w", err)
		}
		v.Shape, v.Size = ShapeBox, mgl64.Vec3(size)
	case g.Cylinder != nil:
		v.Shape = ShapeCylinder
		v.Size = mgl64.Vec3{g.Cylinder.Radius, g.Cylinder.Radius, g.Cylinder.Length}
	case g.Sphere != nil:
		v.Shape = ShapeSphere
		v.Size = mgl64.Vec3{g.Sphere.Radius, g.Sphere.Radius, g.Sphere.Radius}
	case g.Mesh != nil:
		scale, err := urdf.ParseVec3(g.Mesh.Scale, [3]float64{1, 1, 1})
		if err != nil {
			return Visual{}, fmt.Errorf("mesh scale: %w", err)
		}
		v.Shape, v.Size, v.MeshFile = ShapeMesh, mgl64.Vec3(scale), g.Mesh.Filename
	default:
		return Visual{}, fmt.Errorf("visual %q has no geometry", dv.Name)
	}

	if c, ok := desc.MaterialColor(dv.Material); ok {
		v.Material.Color = [3]float32{float32(c[0]), float32(c[1]), float32(c[2])}
		v.HasColor = true
	}
	return v, nil
}

func (r *Robot) Link(name string) (*Link, bool) {
	l, ok := r.links[name]
	return l, ok
}

func (r *Robot) Joint(name string) (*Joint, bool) {
	j, ok := r.joints[name]
	return j, ok
}

// Joints returns every joint in declaration order.
func (r *Robot) Joints() []*Joint {
	return r.order
}

// MovableJoints returns the non-fixed joints in declaration order.
func (r *Robot) MovableJoints() []*Joint {
	out := make([]*Joint, 0, len(r.order))
	for _, j := range r.order {
		if j.Movable() {
			out = append(out, j)
		}
	}
	return out
}

// Links returns every link, parents before children.
func (r *Robot) Links() []*Link {
	var out []*Link
	var walk func(*Link)
	walk = func(l *Link) {
		out = append(out, l)
		for _, j := range l.Children {
			walk(j.Child)
		}
	}
	if r.Root != nil {
		walk(r.Root)
	}
	return out
}

// Matrix is the transform of the robot base in the scene.
func (r *Robot) Matrix() mgl64.Mat4 {
	return Compose(r.Position, r.Rotation)
}

// UpdateMatrixWorld recomputes every link's world transform.
func (r *Robot) UpdateMatrixWorld() {
	if r.Root == nil {
		return
	}
	var walk func(*Link, mgl64.Mat4)
	walk = func(l *Link, world mgl64.Mat4) {
		l.World = world
		for _, j := range l.Children {
			walk(j.Child, world.Mul4(j.Local()))
		}
	}
	walk(r.Root, r.Matrix())
}

// LookAt rotates the base so that its local +Z faces target.
func (r *Robot) LookAt(target mgl64.Vec3) {
	r.Rotation = LookRotation(r.Position, target, AxisY)
}

// DeepestLink returns the leaf link furthest from the root. Ties keep the
// first in declaration order.
func (r *Robot) DeepestLink() *Link {
	var best *Link
	bestDepth := -1
	var walk func(*Link, int)
	walk = func(l *Link, depth int) {
		if len(l.Children) == 0 && depth > bestDepth {
			best, bestDepth = l, depth
		}
		for _, j := range l.Children {
			walk(j.Child, depth+1)
		}
	}
	if r.Root != nil {
		walk(r.Root, 0)
	}
	return best
}

// MovableAncestor returns the closest non-fixed joint above the link.
func (r *Robot) MovableAncestor(l *Link) (*Joint, bool) {
	for l != nil && l.Parent != nil {
		if l.Parent.Movable() {
			return l.Parent, true
		}
		l = l.Parent.Parent
	}
	return nil, false
}

// Subtree returns the links moved directly by joint j: its child and every
// descendant reached through fixed joints only.
func (r *Robot) Subtree(j *Joint) []*Link {
	var out []*Link
	var walk func(*Link)
	walk = func(l *Link) {
		out = append(out, l)
		for _, c := range l.Children {
			if !c.Movable() {
				walk(c.Child)
			}
		}
	}
	if j != nil && j.Child != nil {
		walk(j.Child)
	}
	return out
}

// PathToRoot returns the joints between the root and l, root first.
func (r *Robot) PathToRoot(l *Link) []*Joint {
	var rev []*Joint
	for l != nil && l.Parent != nil {
		rev = append(rev, l.Parent)
		l = l.Parent.Parent
	}
	out := make([]*Joint, len(rev))
	for i, j := range rev {
		out[len(rev)-1-i] = j
	}
	return out
}
