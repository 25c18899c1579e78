// Package armviz is a 3D viewer for articulated robot arms. It loads a URDF
// description, shows the robot and lets the user pose it by dragging joints
// or by moving an end effector target that an IK solver follows.
package armviz

import (
	"fmt"

	"github.com/gekko3d/armviz/config"
	"github.com/gekko3d/armviz/control"
	"github.com/gekko3d/armviz/render"
	"github.com/go-gl/mathgl/mgl64"
)

// Version is set at build time.
var Version = "dev"

// ViewerModules returns the window-independent modules for cfg in install
// order. They expect Input and Time resources.
func ViewerModules(cfg config.Config) ([]Module, error) {
	mode, err := control.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	controlMode, err := control.ParseControlMode(cfg.ControlMode)
	if err != nil {
		return nil, err
	}
	solver, err := cfg.SolverOptions()
	if err != nil {
		return nil, err
	}
	bindings, err := cfg.KeyBindings()
	if err != nil {
		return nil, err
	}

	presenter := DefaultPresenterOptions()
	presenter.EndEffector = cfg.Robot.EndEffector
	presenter.Offset = mgl64.Vec3(cfg.Robot.Offset)
	presenter.IgnoreLimits = cfg.Robot.IgnoreLimits
	presenter.KeepDescriptionColors = cfg.Robot.KeepDescriptionColors

	manip := DefaultManipulatorOptions()
	manip.Mode = mode
	manip.ControlMode = controlMode
	manip.WorldControls = cfg.WorldControls
	manip.Worker = cfg.Worker
	manip.Solver = solver

	return []Module{
		RobotModule{Path: cfg.Robot.Path, Options: presenter},
		SceneModule{Def: DefaultScene()},
		ManipulationModule{Options: manip},
		KeyboardModule{Bindings: bindings},
		PoseModule{Path: cfg.Robot.Pose},
		HudModule{ShowJoints: cfg.Hud.ShowJoints},
		HierarchyModule{},
		MetricsModule{Addr: cfg.Metrics.Addr},
	}, nil
}

// NewViewer opens the window and builds the full App for cfg.
func NewViewer(cfg config.Config) (*App, error) {
	if cfg.Robot.Path == "" {
		return nil, fmt.Errorf("no robot description given")
	}
	modules, err := ViewerModules(cfg)
	if err != nil {
		return nil, err
	}

	b := NewAppBuilder().UseModule(
		LoggingModule{Prefix: cfg.Log.Prefix, Debug: cfg.Log.Debug},
		TimeModule{},
		PlatformWindowModule{Width: cfg.Window.Width, Height: cfg.Window.Height, Title: cfg.Window.Title},
		InputModule{},
	)
	b.UseModule(modules...)
	b.UseModule(RenderModule{Options: render.Options{FontSize: cfg.Window.FontSize, VSync: cfg.Window.VSync}})
	return b.Build(), nil
}

// Shutdown stops background work and closes the window.
func Shutdown(app *App) {
	if m, ok := Resource[Manipulator](app); ok {
		m.Close()
	}
	if ws, ok := Resource[WindowState](app); ok {
		ws.Destroy()
	}
}
