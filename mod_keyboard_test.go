package armviz

import (
	"testing"

	"github.com/gekko3d/armviz/control"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(app *App, key int) {
	input, _ := Resource[Input](app)
	input.setButton(key, true)
	app.Step()
	input.setButton(key, false)
	app.Step()
}

func TestKeyboardModule_DefaultBindings(t *testing.T) {
	app, m := newArmApp(t, control.ModeInverse, KeyboardModule{})

	press(app, KeyQ)
	assert.Equal(t, control.ModeForward, m.Mode())
	press(app, KeyQ)
	assert.Equal(t, control.ModeInverse, m.Mode())

	press(app, KeyE)
	assert.Equal(t, control.ModeForward, m.Mode())
	press(app, KeyE)
	assert.Equal(t, control.ModeView, m.Mode())
	press(app, KeyQ)
	assert.Equal(t, control.ModeInverse, m.Mode())

	press(app, KeyW)
	assert.Equal(t, control.ControlRotate, m.ControlMode())
	press(app, KeyT)
	assert.False(t, m.WorldControlsEnabled())

	m.Presenter().SetJointValue("joint1", 1, false)
	press(app, KeyR)
	assert.InDelta(t, 0, m.Presenter().Configuration()["joint1"], 1e-6)

	assert.False(t, app.quit)
	press(app, KeyEscape)
	assert.True(t, app.quit)
}

func TestKeyboardModule_HeldKeyFiresOnce(t *testing.T) {
	app, m := newArmApp(t, control.ModeInverse, KeyboardModule{})
	input, _ := Resource[Input](app)

	input.setButton(KeyE, true)
	app.Step()
	input.setButton(KeyE, true)
	app.Step()
	app.Step()
	assert.Equal(t, control.ModeForward, m.Mode())
}

func TestKeyboardModule_CustomBindings(t *testing.T) {
	app, m := newArmApp(t, control.ModeInverse, KeyboardModule{
		Bindings: map[string]control.Action{"m": control.ActionCycleMode},
	})
	d, ok := Resource[control.Dispatcher](app)
	require.True(t, ok)
	assert.Equal(t, []string{"m"}, d.Keys())

	press(app, KeyQ)
	assert.Equal(t, control.ModeInverse, m.Mode())
	press(app, KeyM)
	assert.Equal(t, control.ModeForward, m.Mode())
}

func TestKeyboardModule_RequiresManipulator(t *testing.T) {
	assert.Panics(t, func() {
		NewApp().UseModules(KeyboardModule{})
	})
}
