package armviz

import (
	"github.com/gekko3d/armviz/render"
)

const rendererName = "wgpu"

// RenderModule draws gizmos, lights and HUD text with the WebGPU renderer.
// It needs the WindowState installed by WindowModule.
type RenderModule struct {
	Options render.Options
}

func (mod RenderModule) Install(app *App, cmd *Commands) {
	ensureSingleRenderer(app, rendererName)
	if _, ok := Resource[render.Renderer](app); ok {
		return
	}
	ws, ok := Resource[WindowState](app)
	if !ok {
		panic("RenderModule requires WindowModule")
	}
	r, err := render.New(ws.Window(), mod.Options)
	if err != nil {
		app.Logger().Errorf("Renderer: %v", err)
		panic(err)
	}
	r.Resize(ws.FramebufferWidth, ws.FramebufferHeight)
	app.addResources(r)
	app.Logger().Infof("Renderer selected: %s", rendererName)

	app.UseSystem(
		System(renderSystem).
			InStage(Render).
			RunAlways(),
	)
	app.UseSystem(
		System(renderReleaseSystem).
			InStage(Finale).
			RunAlways(),
	)
}

func renderSystem(app *App, cmd *Commands, r *render.Renderer, ws *WindowState) {
	if ws.Resized {
		r.Resize(ws.FramebufferWidth, ws.FramebufferHeight)
	}
	w, h := r.Size()
	frame := buildFrame(cmd, r.Atlas().Measure, w, h)
	if scene, ok := Resource[Scene](app); ok {
		frame.Clear = scene.Clear
	}
	if err := r.Draw(frame); err != nil {
		app.Logger().Errorf("Draw: %v", err)
	}
}

// renderReleaseSystem frees GPU resources once the App is quitting.
func renderReleaseSystem(app *App, r *render.Renderer) {
	if app.quit {
		r.Release()
	}
}

// buildFrame collects everything visible into a render frame of w*h pixels.
func buildFrame(cmd *Commands, measure MeasureFunc, w, h int) *render.Frame {
	frame := &render.Frame{Clear: [4]float64{0, 0, 0, 1}}

	if _, cam, ok := mainCamera(cmd); ok {
		frame.ViewProj = cam.ViewProjection()
	}

	var lights []LightComponent
	MakeQuery1[LightComponent](cmd).Map(func(eid EntityId, l *LightComponent) bool {
		lights = append(lights, *l)
		return true
	})
	frame.Lighting = sceneLighting(lights)

	MakeQuery2[GizmoComponent, TransformComponent](cmd).Map(func(eid EntityId, g *GizmoComponent, tr *TransformComponent) bool {
		if !g.Hidden {
			frame.Shapes = append(frame.Shapes, g.Shape(tr))
		}
		return true
	})
	MakeQuery1[GizmoComponent](cmd).Without(TransformComponent{}).Map(func(eid EntityId, g *GizmoComponent) bool {
		if !g.Hidden {
			frame.Shapes = append(frame.Shapes, g.Shape(nil))
		}
		return true
	})

	MakeQuery1[TextComponent](cmd).Map(func(eid EntityId, t *TextComponent) bool {
		if t.Text == "" {
			return true
		}
		scale := t.Scale
		if scale <= 0 {
			scale = 1
		}
		pos := t.Position
		if t.Bottom {
			_, th := measure(t.Text, scale)
			pos[1] = float32(h) - pos[1] - th
		}
		frame.Text = append(frame.Text, render.TextItem{Text: t.Text, Position: pos, Scale: scale, Color: t.Color})
		return true
	})
	MakeQuery1[UiTable](cmd).Map(func(eid EntityId, table *UiTable) bool {
		frame.Text = append(frame.Text, table.Layout(measure)...)
		return true
	})
	return frame
}
