package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitShapes(t *testing.T) {
	vertices, offsets, counts := unitShapes()

	for _, st := range drawOrder {
		require.Contains(t, counts, st)
		assert.Zero(t, counts[st]%2, "line lists need vertex pairs")
		assert.LessOrEqual(t, int(offsets[st]+counts[st]), len(vertices))
	}
	assert.Equal(t, uint32(2), counts[ShapeLine])
	assert.Equal(t, uint32(24), counts[ShapeCube])
	assert.Equal(t, uint32(4*(GridDivisions+1)), counts[ShapeGrid])
}

func TestLineModel(t *testing.T) {
	p1 := mgl32.Vec3{1, 2, 3}
	p2 := mgl32.Vec3{1, 2, 7}
	m, ok := LineModel(p1, p2)
	require.True(t, ok)

	start := m.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	end := m.Mul4x1(mgl32.Vec4{0, 0, 1, 1}).Vec3()
	assert.True(t, start.ApproxEqualThreshold(p1, 1e-5))
	assert.True(t, end.ApproxEqualThreshold(p2, 1e-5))

	_, ok = LineModel(p1, p1)
	assert.False(t, ok)
}

func TestBatch_OrdersByShape(t *testing.T) {
	shapes := []Shape{
		{Type: ShapeSphere, Model: mgl32.Ident4(), Color: [4]float32{1, 0, 0, 1}, Unlit: true},
		{Type: ShapeLine, P1: mgl32.Vec3{}, P2: mgl32.Vec3{1, 0, 0}, Color: [4]float32{0, 1, 0, 1}, Unlit: true},
		{Type: ShapeLine, P1: mgl32.Vec3{}, P2: mgl32.Vec3{}},
		{Type: ShapeCube, Model: mgl32.Ident4(), Color: [4]float32{0, 0, 1, 1}, Unlit: true},
	}
	all, counts := batch(shapes, Unlit)

	require.Len(t, all, 3, "degenerate lines are dropped")
	assert.Equal(t, uint32(1), counts[ShapeLine])
	assert.Equal(t, uint32(1), counts[ShapeCube])
	assert.Equal(t, uint32(1), counts[ShapeSphere])
	assert.Equal(t, [4]float32{0, 1, 0, 1}, all[0].Color)
	assert.Equal(t, [4]float32{0, 0, 1, 1}, all[1].Color)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, all[2].Color)
}

func TestLighting_Shade(t *testing.T) {
	c := [4]float32{1, 1, 1, 0.5}
	assert.Equal(t, c, Unlit.Shade(c, mgl32.Ident4()))

	l := Lighting{Ambient: 0.2, Direction: mgl32.Vec3{0, 1, 0}, Intensity: 1}
	lit := l.Shade(c, mgl32.Ident4())
	assert.InDelta(t, 1.0, lit[0], 1e-6)
	assert.Equal(t, float32(0.5), lit[3], "alpha is untouched")

	side := l.Shade(c, mgl32.HomogRotate3DZ(mgl32.DegToRad(90)))
	assert.Less(t, side[0], lit[0])
	assert.GreaterOrEqual(t, side[0], float32(0.2))
}

func TestTextAtlas(t *testing.T) {
	atlas, err := NewTextAtlas(nil, 24)
	require.NoError(t, err)
	assert.True(t, atlas.HasGlyph('M'))
	assert.False(t, atlas.HasGlyph('é'))

	w1, h1 := atlas.Measure("Mode: inverse", 1)
	w2, h2 := atlas.Measure("Mode: inverse", 2)
	assert.Greater(t, w1, float32(0))
	assert.InDelta(t, 2*w1, w2, 1e-3)
	assert.InDelta(t, 2*h1, h2, 1e-3)

	_, hTwo := atlas.Measure("a\nb", 1)
	assert.InDelta(t, 2*h1, hTwo, 1e-3)

	verts := atlas.Vertices([]TextItem{{Text: "abc", Color: [4]float32{1, 1, 1, 1}}}, 800, 600)
	assert.Len(t, verts, 6*3)
	assert.Equal(t, verts[0].Pos[1], verts[1].Pos[1], "quads are axis aligned")
	assert.Nil(t, atlas.Vertices([]TextItem{{Text: "x"}}, 0, 600))

	_, err = NewTextAtlas([]byte("not a font"), 12)
	assert.Error(t, err)
}
