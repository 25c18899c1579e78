package armviz

import (
	"github.com/go-gl/mathgl/mgl32"
)

// SceneModule spawns the camera, lights and ground and keeps the camera
// aspect in step with the window.
type SceneModule struct {
	Def SceneDef
}

// Scene holds the entities spawned by SceneModule.
type Scene struct {
	Camera EntityId
	Lights []EntityId
	Ground EntityId
	Clear  [4]float64
}

func (mod SceneModule) Install(app *App, cmd *Commands) {
	def := mod.Def
	c := def.Camera
	cam := CameraComponent{
		Position: c.Position,
		LookAt:   c.Target,
		Up:       mgl32.Vec3{0, 1, 0},
		Fov:      c.Fov,
		Near:     c.Near,
		Far:      c.Far,
		Aspect:   1,
	}
	orbit := NewOrbitCamera(c.Position, c.Target)
	orbit.MinPolar, orbit.MaxPolar = c.MinPolar, c.MaxPolar
	tr := NewTransform(c.Position)
	tr.Rotation = cam.Rotation()

	scene := &Scene{
		Camera: cmd.AddEntity(cam, orbit, tr),
		Clear:  def.Clear,
	}
	for _, l := range def.Lights {
		scene.Lights = append(scene.Lights, cmd.AddEntity(l.Component()))
	}
	if def.Ground.Size > 0 {
		shade := 1 - def.Ground.ShadowOpacity
		scene.Ground = cmd.AddEntity(NewGizmoGrid(def.Ground.Size, [4]float32{0.4 * shade, 0.4 * shade, 0.4 * shade, 1}))
	}
	app.addResources(scene)

	app.UseSystem(
		System(cameraAspectSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
	OrbitCameraModule{}.Install(app, cmd)
}

// cameraAspectSystem matches every camera to the window shape.
func cameraAspectSystem(cmd *Commands, input *Input) {
	if input.WindowWidth <= 0 || input.WindowHeight <= 0 {
		return
	}
	aspect := float32(input.WindowWidth) / float32(input.WindowHeight)
	MakeQuery1[CameraComponent](cmd).Map(func(eid EntityId, cam *CameraComponent) bool {
		cam.Aspect = aspect
		return true
	})
}
