package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type ShapeType int

const (
	ShapeLine ShapeType = iota
	ShapeCube
	ShapeSphere
	ShapeRect
	ShapeCircle
	ShapeCylinder
	ShapeGrid
)

// drawOrder is the order instances are packed into the instance buffer.
var drawOrder = []ShapeType{ShapeLine, ShapeCube, ShapeSphere, ShapeRect, ShapeCircle, ShapeCylinder, ShapeGrid}

// Shape is one wireframe primitive for the current frame.
type Shape struct {
	Type  ShapeType
	Color [4]float32
	Model mgl32.Mat4

	// Lines use P1 and P2 in world space, Model is ignored.
	P1, P2 mgl32.Vec3

	// Unlit shapes skip scene lighting (handles, overlays).
	Unlit bool
}

// Vertex matches the line shader vertex input.
type Vertex struct {
	Pos [3]float32
}

// Instance matches the line shader instance attributes.
type Instance struct {
	Model mgl32.Mat4
	Color [4]float32
}

const circleSteps = 32

// GridDivisions is the number of cells per side of the unit grid.
const GridDivisions = 30

// unitShapes returns a line-list vertex soup of every unit shape and the
// offset and count of each.
func unitShapes() ([]Vertex, map[ShapeType]uint32, map[ShapeType]uint32) {
	var vertices []Vertex
	offsets := make(map[ShapeType]uint32)
	counts := make(map[ShapeType]uint32)
	add := func(t ShapeType, vs []Vertex) {
		offsets[t] = uint32(len(vertices))
		counts[t] = uint32(len(vs))
		vertices = append(vertices, vs...)
	}

	// +Z is the line axis; instances are scaled to the segment length.
	add(ShapeLine, []Vertex{{Pos: [3]float32{0, 0, 0}}, {Pos: [3]float32{0, 0, 1}}})
	add(ShapeCube, unitCube())

	var sphere []Vertex
	for _, seg := range ring(circleSteps) {
		c1, s1, c2, s2 := seg[0], seg[1], seg[2], seg[3]
		sphere = append(sphere,
			Vertex{Pos: [3]float32{c1, s1, 0}}, Vertex{Pos: [3]float32{c2, s2, 0}},
			Vertex{Pos: [3]float32{c1, 0, s1}}, Vertex{Pos: [3]float32{c2, 0, s2}},
			Vertex{Pos: [3]float32{0, c1, s1}}, Vertex{Pos: [3]float32{0, c2, s2}})
	}
	add(ShapeSphere, sphere)

	lo, hi := float32(-0.5), float32(0.5)
	add(ShapeRect, []Vertex{
		{Pos: [3]float32{lo, lo, 0}}, {Pos: [3]float32{hi, lo, 0}},
		{Pos: [3]float32{hi, lo, 0}}, {Pos: [3]float32{hi, hi, 0}},
		{Pos: [3]float32{hi, hi, 0}}, {Pos: [3]float32{lo, hi, 0}},
		{Pos: [3]float32{lo, hi, 0}}, {Pos: [3]float32{lo, lo, 0}},
	})

	var circle []Vertex
	for _, seg := range ring(circleSteps) {
		circle = append(circle,
			Vertex{Pos: [3]float32{seg[0], seg[1], 0}},
			Vertex{Pos: [3]float32{seg[2], seg[3], 0}})
	}
	add(ShapeCircle, circle)

	// Cylinder: unit radius, unit length along Z, centered.
	var cyl []Vertex
	for i, seg := range ring(circleSteps) {
		cyl = append(cyl,
			Vertex{Pos: [3]float32{seg[0], seg[1], -0.5}}, Vertex{Pos: [3]float32{seg[2], seg[3], -0.5}},
			Vertex{Pos: [3]float32{seg[0], seg[1], 0.5}}, Vertex{Pos: [3]float32{seg[2], seg[3], 0.5}})
		if i%(circleSteps/8) == 0 {
			cyl = append(cyl,
				Vertex{Pos: [3]float32{seg[0], seg[1], -0.5}}, Vertex{Pos: [3]float32{seg[0], seg[1], 0.5}})
		}
	}
	add(ShapeCylinder, cyl)

	// Grid: unit square in the XZ plane.
	var grid []Vertex
	for i := 0; i <= GridDivisions; i++ {
		f := lo + float32(i)/GridDivisions
		grid = append(grid,
			Vertex{Pos: [3]float32{f, 0, lo}}, Vertex{Pos: [3]float32{f, 0, hi}},
			Vertex{Pos: [3]float32{lo, 0, f}}, Vertex{Pos: [3]float32{hi, 0, f}})
	}
	add(ShapeGrid, grid)

	return vertices, offsets, counts
}

func unitCube() []Vertex {
	lo, hi := float32(-0.5), float32(0.5)
	corners := [8][3]float32{
		{lo, lo, lo}, {hi, lo, lo}, {hi, lo, hi}, {lo, lo, hi},
		{lo, hi, lo}, {hi, hi, lo}, {hi, hi, hi}, {lo, hi, hi},
	}
	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	out := make([]Vertex, 0, 24)
	for _, e := range edges {
		out = append(out, Vertex{Pos: corners[e[0]]}, Vertex{Pos: corners[e[1]]})
	}
	return out
}

// ring returns cos/sin pairs of consecutive points on the unit circle.
func ring(steps int) [][4]float32 {
	out := make([][4]float32, steps)
	step := 2 * math.Pi / float64(steps)
	for i := range out {
		a1, a2 := float64(i)*step, float64(i+1)*step
		out[i] = [4]float32{
			float32(math.Cos(a1)), float32(math.Sin(a1)),
			float32(math.Cos(a2)), float32(math.Sin(a2)),
		}
	}
	return out
}

// LineModel maps the unit line onto the segment p1-p2. ok is false for
// degenerate segments.
func LineModel(p1, p2 mgl32.Vec3) (mgl32.Mat4, bool) {
	diff := p2.Sub(p1)
	dist := diff.Len()
	if dist < 0.0001 {
		return mgl32.Ident4(), false
	}
	rot := mgl32.QuatBetweenVectors(mgl32.Vec3{0, 0, 1}, diff.Normalize())
	return mgl32.Translate3D(p1.X(), p1.Y(), p1.Z()).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(1, 1, dist)), true
}

// batch groups shapes into instances in draw order. counts[t] is the number
// of instances of type t.
func batch(shapes []Shape, light Lighting) ([]Instance, map[ShapeType]uint32) {
	byType := make(map[ShapeType][]Instance)
	for _, s := range shapes {
		inst := Instance{Color: s.Color, Model: s.Model}
		if s.Type == ShapeLine {
			m, ok := LineModel(s.P1, s.P2)
			if !ok {
				continue
			}
			inst.Model = m
		}
		if !s.Unlit {
			inst.Color = light.Shade(inst.Color, inst.Model)
		}
		byType[s.Type] = append(byType[s.Type], inst)
	}

	counts := make(map[ShapeType]uint32, len(byType))
	var all []Instance
	for _, t := range drawOrder {
		all = append(all, byType[t]...)
		counts[t] = uint32(len(byType[t]))
	}
	return all, counts
}
