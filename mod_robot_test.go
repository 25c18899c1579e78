package armviz

import (
	"testing"

	"github.com/gekko3d/armviz/control"
	"github.com/gekko3d/armviz/kinematics"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linkVisuals(app *App) map[string]GizmoComponent {
	out := map[string]GizmoComponent{}
	MakeQuery2[LinkVisualComponent, GizmoComponent](app.Commands()).Map(func(eid EntityId, lv *LinkVisualComponent, g *GizmoComponent) bool {
		out[lv.Link] = *g
		return true
	})
	return out
}

func TestRobotModule_SpawnsVisuals(t *testing.T) {
	app, _ := newArmApp(t, control.ModeView)

	visuals := linkVisuals(app)
	require.Len(t, visuals, 5)
	assert.Equal(t, GizmoCylinder, visuals["base"].Type)
	assert.Equal(t, GizmoSphere, visuals["shoulder_cover"].Type)
	assert.Equal(t, GizmoCube, visuals["shoulder"].Type)
	assert.Equal(t, mgl32.Vec3{0.08, 0.08, 0.4}, visuals["shoulder"].Scale)
	assert.Equal(t, materialColor(DefaultMaterial()), visuals["base"].Color)
}

func TestRobotModule_FollowsJoints(t *testing.T) {
	app, m := newArmApp(t, control.ModeView)

	m.SetJointValue("joint2", 90, true)
	app.Step()

	// elbow now points along world +X from the pivot at y = 0.5
	MakeQuery2[LinkVisualComponent, TransformComponent](app.Commands()).Map(func(eid EntityId, lv *LinkVisualComponent, tr *TransformComponent) bool {
		if lv.Link == "elbow" {
			assert.True(t, tr.Position.ApproxEqualThreshold(mgl32.Vec3{0.15, 0.5, 0}, 1e-5), "got %v", tr.Position)
		}
		return true
	})

	m.Presenter().SetColorHex("elbow", 0x00ff00)
	m.Presenter().HighlightJoint("joint2", false, SelectionColor)
	app.Step()
	assert.Equal(t, [4]float32{1, 1, 0.4, 1}, linkVisuals(app)["elbow"].Color)
}

func TestMaterialColor(t *testing.T) {
	c := materialColor(kinematics.Material{Color: [3]float32{0.5, 0.2, 0}, Emissive: [3]float32{0.7, 0.1, 0}})
	assert.InDeltaSlice(t, []float32{1, 0.3, 0, 1}, c[:], 1e-6)
}

func TestVisualGizmo_Mesh(t *testing.T) {
	g := visualGizmo(kinematics.Visual{Shape: kinematics.ShapeMesh, Size: mgl64.Vec3{1, 2, 3}})
	assert.Equal(t, GizmoCube, g.Type)
	assert.True(t, g.Scale.ApproxEqualThreshold(mgl32.Vec3{0.05, 0.1, 0.15}, 1e-6))
}
