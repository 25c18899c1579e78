package armviz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/armviz/control"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosePreset_RoundTrip(t *testing.T) {
	m, _ := newTestManipulator(t, control.ModeInverse)
	m.SetConfiguration(map[string]float64{"joint1": 0.3, "joint2": -0.4}, false)
	m.SetPosition(mgl64.Vec3{0.5, 0, 0})

	path := filepath.Join(t.TempDir(), "pose.json")
	require.NoError(t, SavePose(m.Presenter(), path))
	before := eePose(t, m)

	m.ResetRobot()
	m.SetPosition(mgl64.Vec3{})

	pose, err := LoadPose(path)
	require.NoError(t, err)
	assert.Equal(t, "arm", pose.Robot)
	assert.InDelta(t, 0.3, pose.Joints["joint1"], 1e-12)

	pose.Apply(m)
	after := eePose(t, m)
	assert.True(t, after.Position.ApproxEqualThreshold(before.Position, 1e-9), "got %v want %v", after.Position, before.Position)
	assertTargetOnEndEffector(t, m)
}

func TestPosePreset_OtherRobot(t *testing.T) {
	m, buf := newTestManipulator(t, control.ModeInverse)
	PosePreset{Robot: "gantry", Joints: map[string]float64{}}.Apply(m)
	assert.Contains(t, buf.String(), `The pose was saved for "gantry", not "arm".`)
}

func TestPosePreset_Errors(t *testing.T) {
	p := NewPresenter(nil, DefaultPresenterOptions(), NewNopLogger())
	_, err := CapturePose(p)
	assert.Error(t, err)

	_, err = LoadPose(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = LoadPose(bad)
	assert.Error(t, err)
}

func TestPoseModule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pose.json")
	data := `{"robot":"arm","joints":{"joint2":0.25},"position":[0,0,0],"rotation":[-1.5707963267948966,0,0]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	app, m := newArmApp(t, control.ModeView, KeyboardModule{}, PoseModule{Path: path})
	assert.InDelta(t, 0.25, m.Presenter().Configuration()["joint2"], 1e-12)

	m.Presenter().SetJointValue("joint1", 0.5, false)
	press(app, KeyP)
	pose, err := LoadPose(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, pose.Joints["joint1"], 1e-12)
}

func TestManipulator_SavePoseWithoutFile(t *testing.T) {
	m, buf := newTestManipulator(t, control.ModeInverse)
	m.SavePose()
	assert.Contains(t, buf.String(), "No pose file is configured.")
}
