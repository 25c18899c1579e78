package armviz

import (
	"github.com/go-gl/mathgl/mgl32"
)

type HierarchyModule struct{}

func (HierarchyModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(TransformHierarchySystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

// TransformHierarchySystem writes the world transform of every entity that
// has a Parent. Roots are authoritative through their TransformComponent.
func TransformHierarchySystem(cmd *Commands) {
	world := MakeQuery1[TransformComponent](cmd)

	// A few passes are enough for the shallow trees used here (camera ->
	// world handle -> arrows).
	for pass := 0; pass < 8; pass++ {
		changed := false
		MakeQuery3[LocalTransformComponent, Parent, TransformComponent](cmd).Map(func(eid EntityId, local *LocalTransformComponent, parent *Parent, tr *TransformComponent) bool {
			pw, ok := world.Get(parent.Entity)
			if !ok {
				return true
			}
			next := composeTransform(*pw, *local)
			if next != *tr {
				*tr = next
				changed = true
			}
			return true
		})
		if !changed {
			break
		}
	}
}

// composeTransform propagates components directly, which keeps scale signs.
func composeTransform(parent TransformComponent, local LocalTransformComponent) TransformComponent {
	scaled := mgl32.Vec3{
		local.Position.X() * parent.Scale.X(),
		local.Position.Y() * parent.Scale.Y(),
		local.Position.Z() * parent.Scale.Z(),
	}
	return TransformComponent{
		Position: parent.Position.Add(parent.Rotation.Rotate(scaled)),
		Rotation: parent.Rotation.Mul(local.Rotation).Normalize(),
		Scale: mgl32.Vec3{
			parent.Scale.X() * local.Scale.X(),
			parent.Scale.Y() * local.Scale.Y(),
			parent.Scale.Z() * local.Scale.Z(),
		},
	}
}
