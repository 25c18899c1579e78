package armviz

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SceneDef defines the initial state of the scene around the robot.
type SceneDef struct {
	Camera CameraDef
	Lights []LightDef
	Ground GroundDef
	Clear  [4]float64
}

// CameraDef is a perspective camera orbiting Target.
type CameraDef struct {
	Fov      float32
	Near     float32
	Far      float32
	Position mgl32.Vec3
	Target   mgl32.Vec3
	MinPolar float32
	MaxPolar float32
}

// LightDef defines a light instantiation.
type LightDef struct {
	Type          LightType
	Position      mgl32.Vec3
	Color         [3]float32
	Intensity     float32
	CastShadow    bool
	ShadowMapSize int
}

// GroundDef is a square grid in the XZ plane. Size 0 disables it.
type GroundDef struct {
	Size          float32
	ShadowOpacity float32
}

func DefaultScene() SceneDef {
	return SceneDef{
		Camera: CameraDef{
			Fov:      50,
			Near:     0.01,
			Far:      1000,
			Position: mgl32.Vec3{0, 0.5, 2.5},
			Target:   mgl32.Vec3{0, 0.5, 0},
			MinPolar: 0,
			MaxPolar: math.Pi / 2,
		},
		Lights: []LightDef{
			{
				Type:          LightTypeDirectional,
				Position:      mgl32.Vec3{5, 30, 5},
				Color:         [3]float32{1, 1, 1},
				Intensity:     1,
				CastShadow:    true,
				ShadowMapSize: 1024,
			},
			{Type: LightTypeAmbient, Color: [3]float32{1, 1, 1}, Intensity: 0.2},
		},
		Ground: GroundDef{Size: 30, ShadowOpacity: 0.25},
		Clear:  [4]float64{0.1, 0.1, 0.12, 1},
	}
}

func (l LightDef) Component() LightComponent {
	return LightComponent{
		Type:          l.Type,
		Color:         l.Color,
		Intensity:     l.Intensity,
		Position:      l.Position,
		CastShadow:    l.CastShadow,
		ShadowMapSize: l.ShadowMapSize,
	}
}
