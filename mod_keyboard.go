package armviz

import (
	"github.com/gekko3d/armviz/control"
)

// KeyboardModule binds keys to Manipulator actions. Nil Bindings means
// control.DefaultBindings.
type KeyboardModule struct {
	Bindings map[string]control.Action
}

func (mod KeyboardModule) Install(app *App, cmd *Commands) {
	m, ok := Resource[Manipulator](app)
	if !ok {
		panic("KeyboardModule requires ManipulationModule")
	}
	bindings := mod.Bindings
	if bindings == nil {
		bindings = control.DefaultBindings()
	}
	for key := range bindings {
		if _, ok := KeyCode(key); !ok {
			app.Logger().Warnf("The key %q cannot be bound.", key)
		}
	}

	d := control.NewDispatcher(bindings)
	d.Handle(control.ActionToggleInverse, m.ToggleInverse)
	d.Handle(control.ActionToggleControlMode, m.ToggleControlMode)
	d.Handle(control.ActionResetRobot, m.ResetRobot)
	d.Handle(control.ActionCycleMode, m.ToggleMode)
	d.Handle(control.ActionToggleWorldControls, m.ToggleWorldControls)
	d.Handle(control.ActionResetGizmo, m.ResetGizmo)
	d.Handle(control.ActionSavePose, m.SavePose)
	d.Handle(control.ActionQuit, app.Quit)
	app.addResources(d)

	app.UseSystem(
		System(keyboardSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
}

func keyboardSystem(app *App, d *control.Dispatcher, input *Input) {
	for _, a := range d.Update(input.KeyPressed) {
		app.Logger().Debugf("Key action %s", a)
	}
}
