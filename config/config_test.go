package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/armviz/control"
	"github.com/gekko3d/armviz/ik"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "inverse", cfg.Mode)
	assert.Equal(t, "translate", cfg.ControlMode)
	assert.True(t, cfg.Robot.IgnoreLimits)

	opts, err := cfg.SolverOptions()
	require.NoError(t, err)
	assert.Equal(t, ik.DefaultOptions(), opts)

	b, err := cfg.KeyBindings()
	require.NoError(t, err)
	assert.Equal(t, control.DefaultBindings(), b)
}

func TestParse_KeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
robot:
  path: arm.urdf
mode: select
solver:
  maxIterations: 10
  dampingFactor: "0.01"
window:
  width: 640
`))
	require.NoError(t, err)

	assert.Equal(t, "arm.urdf", cfg.Robot.Path)
	assert.Equal(t, "tool_dummy", cfg.Robot.EndEffector)
	assert.True(t, cfg.Robot.IgnoreLimits)
	assert.Equal(t, "select", cfg.Mode)
	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.True(t, cfg.Worker)

	opts, err := cfg.SolverOptions()
	require.NoError(t, err)
	assert.Equal(t, 10, opts.MaxIterations)
	assert.Equal(t, 0.01, opts.DampingFactor)
	assert.Equal(t, ik.DefaultOptions().StallThreshold, opts.StallThreshold)
}

func TestParse_Errors(t *testing.T) {
	for name, doc := range map[string]string{
		"mode":         "mode: fly",
		"control mode": "controlMode: scale",
		"solver":       "solver:\n  noSuchOption: 1",
		"binding":      "bindings:\n  x: explode",
		"yaml":         "mode: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte("mode: fly"))
	assert.ErrorIs(t, err, control.ErrUnknownMode)
}

func TestKeyBindings_Custom(t *testing.T) {
	cfg, err := Parse([]byte("bindings:\n  m: cycle_mode\n  x: quit\n"))
	require.NoError(t, err)
	b, err := cfg.KeyBindings()
	require.NoError(t, err)
	assert.Equal(t, map[string]control.Action{"m": control.ActionCycleMode, "x": control.ActionQuit}, b)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "armviz.yaml")
	require.NoError(t, os.WriteFile(path, []byte("metrics:\n  addr: :9100\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
