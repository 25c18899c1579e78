package armviz

import (
	"context"

	"github.com/gekko3d/armviz/kinematics"
	"github.com/go-gl/mathgl/mgl32"
)

// RobotModule publishes a Presenter, starts loading Path and mirrors the
// loaded robot's visuals as gizmo entities.
type RobotModule struct {
	Path    string
	Options PresenterOptions
}

// LinkVisualComponent ties an entity to one visual of a robot link.
type LinkVisualComponent struct {
	Link   string
	Visual int
}

func (m RobotModule) Install(app *App, cmd *Commands) {
	AssetServerModule{}.Install(app, cmd)
	assets, _ := Resource[AssetServer](app)

	p := NewPresenter(assets, m.Options, app.Logger())
	app.addResources(p)
	if m.Path != "" {
		p.Load(context.Background(), m.Path)
	}

	app.UseSystem(
		System(robotLoadSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
	app.UseSystem(
		System(robotSyncSystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

func robotLoadSystem(cmd *Commands, p *Presenter) {
	if !p.Poll() {
		return
	}
	spawnRobotVisuals(cmd, p)
}

func spawnRobotVisuals(cmd *Commands, p *Presenter) {
	for _, l := range p.Robot().Links() {
		for i, v := range l.Visuals {
			cmd.AddEntity(
				LinkVisualComponent{Link: l.Name, Visual: i},
				NewTransform(mgl32.Vec3{}),
				visualGizmo(v),
			)
		}
	}
}

func visualGizmo(v kinematics.Visual) GizmoComponent {
	size := toVec32(VisualExtents(v))
	switch v.Shape {
	case kinematics.ShapeCylinder:
		return NewGizmoCylinder(mgl32.Vec3{}, float32(v.Size[0]), float32(v.Size[2]), mgl32.QuatIdent(), [4]float32{1, 1, 1, 1})
	case kinematics.ShapeSphere:
		return NewGizmoSphere(mgl32.Vec3{}, float32(v.Size[0]), [4]float32{1, 1, 1, 1})
	default:
		return NewGizmoCube(mgl32.Vec3{}, size, [4]float32{1, 1, 1, 1})
	}
}

// robotSyncSystem copies link poses and materials onto the visual entities.
func robotSyncSystem(cmd *Commands, p *Presenter) {
	robot := p.Robot()
	if robot == nil {
		return
	}
	MakeQuery3[LinkVisualComponent, TransformComponent, GizmoComponent](cmd).Map(func(eid EntityId, lv *LinkVisualComponent, tr *TransformComponent, g *GizmoComponent) bool {
		l, ok := robot.Link(lv.Link)
		if !ok || lv.Visual >= len(l.Visuals) {
			g.Hidden = true
			return true
		}
		pos, rot := kinematics.Decompose(l.World.Mul4(l.Visuals[lv.Visual].Origin))
		tr.Position = toVec32(pos)
		tr.Rotation = toQuat32(rot)
		tr.Scale = mgl32.Vec3{1, 1, 1}

		if mat, ok := p.Material(lv.Link); ok {
			g.Color = materialColor(mat)
		}
		return true
	})
}

// materialColor adds the emissive highlight on top of the base color.
func materialColor(m kinematics.Material) [4]float32 {
	var c [4]float32
	for i := 0; i < 3; i++ {
		c[i] = mgl32.Clamp(m.Color[i]+m.Emissive[i], 0, 1)
	}
	c[3] = 1
	return c
}
