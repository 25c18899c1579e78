package armviz

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func worldOf(t *testing.T, cmd *Commands, eid EntityId) TransformComponent {
	t.Helper()
	tr, ok := MakeQuery1[TransformComponent](cmd).Get(eid)
	require.True(t, ok)
	return *tr
}

func TestTransformHierarchy(t *testing.T) {
	app := NewApp()
	app.UseModules(HierarchyModule{})
	cmd := app.Commands()

	camera := cmd.AddEntity(&TransformComponent{
		Position: mgl32.Vec3{10, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	})
	handle := cmd.AddEntity(
		&Parent{Entity: camera},
		&LocalTransformComponent{Position: mgl32.Vec3{0, 5, 0}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		&TransformComponent{},
	)
	arrow := cmd.AddEntity(
		&Parent{Entity: handle},
		&LocalTransformComponent{Position: mgl32.Vec3{0, 0, 2}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		&TransformComponent{},
	)
	app.FlushCommands()

	TransformHierarchySystem(cmd)
	assert.Equal(t, mgl32.Vec3{10, 5, 0}, worldOf(t, cmd, handle).Position)
	assert.Equal(t, mgl32.Vec3{10, 5, 2}, worldOf(t, cmd, arrow).Position)

	// Rotate the root 90 degrees about Y: local +Z of the arrow maps to +X.
	root, _ := MakeQuery1[TransformComponent](cmd).Get(camera)
	root.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})

	app.Step()
	got := worldOf(t, cmd, arrow).Position
	assert.True(t, got.ApproxEqualThreshold(mgl32.Vec3{12, 5, 0}, 1e-4), "got %v", got)
}

func TestComposeTransform_KeepsScaleSign(t *testing.T) {
	parent := TransformComponent{Position: mgl32.Vec3{}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{-1, 1, 1}}
	local := LocalTransformComponent{Position: mgl32.Vec3{2, 0, 0}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}

	out := composeTransform(parent, local)
	assert.Equal(t, mgl32.Vec3{-2, 0, 0}, out.Position)
	assert.Equal(t, mgl32.Vec3{-1, 1, 1}, out.Scale)
}
