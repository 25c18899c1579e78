package armviz

import (
	"testing"

	"github.com/gekko3d/armviz/render"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFrame(t *testing.T) {
	app := NewApp()
	app.addResources(&Input{WindowWidth: 800, WindowHeight: 600})
	app.UseModules(SceneModule{Def: DefaultScene()})
	cmd := app.Commands()

	cmd.AddEntity(NewTransform(mgl32.Vec3{1, 0, 0}), NewGizmoCube(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, [4]float32{1, 0, 0, 1}))
	hidden := NewGizmoSphere(mgl32.Vec3{}, 1, [4]float32{0, 1, 0, 1})
	hidden.Hidden = true
	cmd.AddEntity(NewTransform(mgl32.Vec3{}), hidden)
	cmd.AddEntity(TextComponent{Text: "top", Position: [2]float32{10, 10}, Color: [4]float32{1, 1, 1, 1}})
	cmd.AddEntity(TextComponent{Text: "bottom", Position: [2]float32{10, 10}, Scale: 0.5, Bottom: true})
	cmd.AddEntity(TextComponent{Position: [2]float32{10, 10}})
	cmd.AddEntity(UiTable{Headers: []string{"a"}, Rows: [][]string{{"1"}}})
	app.FlushCommands()
	app.Step()

	frame := buildFrame(cmd, monospace, 800, 600)

	// cube and ground grid
	require.Len(t, frame.Shapes, 2)
	types := []render.ShapeType{frame.Shapes[0].Type, frame.Shapes[1].Type}
	assert.ElementsMatch(t, []render.ShapeType{render.ShapeCube, render.ShapeGrid}, types)
	for _, s := range frame.Shapes {
		if s.Type == render.ShapeCube {
			assert.Equal(t, mgl32.Vec3{1, 0, 0}, s.Model.Col(3).Vec3())
		}
	}

	texts := map[string]render.TextItem{}
	for _, item := range frame.Text {
		texts[item.Text] = item
	}
	assert.Len(t, frame.Text, 2+5)
	assert.Equal(t, [2]float32{10, 10}, texts["top"].Position)
	assert.Equal(t, float32(1), texts["top"].Scale)
	assert.Equal(t, [2]float32{10, 600 - 10 - 10}, texts["bottom"].Position)

	assert.InDelta(t, 0.2, frame.Lighting.Ambient, 1e-6)
	assert.NotEqual(t, mgl32.Mat4{}, frame.ViewProj)
}

func TestBuildFrame_Empty(t *testing.T) {
	app := NewApp()
	frame := buildFrame(app.Commands(), monospace, 10, 10)
	assert.Empty(t, frame.Shapes)
	assert.Empty(t, frame.Text)
	assert.Equal(t, render.Unlit, frame.Lighting)
}

func TestEnsureSingleRenderer(t *testing.T) {
	app := NewApp()
	ensureSingleRenderer(app, "wgpu")
	ensureSingleRenderer(app, "wgpu")
	tag, ok := Resource[RendererTag](app)
	require.True(t, ok)
	assert.Equal(t, "wgpu", tag.Name)

	assert.Panics(t, func() { ensureSingleRenderer(app, "other") })
}
