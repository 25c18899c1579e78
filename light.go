package armviz

import (
	"github.com/gekko3d/armviz/render"
	"github.com/go-gl/mathgl/mgl32"
)

type LightType uint32

const (
	LightTypeDirectional LightType = 1
	LightTypeAmbient     LightType = 3
)

// LightComponent is the ECS component for lights. Directional lights shine
// from Position towards the origin.
type LightComponent struct {
	Type      LightType
	Color     [3]float32
	Intensity float32
	Position  mgl32.Vec3

	CastShadow    bool
	ShadowMapSize int
}

// sceneLighting folds every light into the renderer's single directional
// light plus ambient term.
func sceneLighting(lights []LightComponent) render.Lighting {
	var l render.Lighting
	for _, lc := range lights {
		switch lc.Type {
		case LightTypeAmbient:
			l.Ambient += lc.Intensity
		case LightTypeDirectional:
			if lc.Intensity > l.Intensity {
				l.Intensity = lc.Intensity
				l.Direction = lc.Position
			}
		}
	}
	l.Ambient = mgl32.Clamp(l.Ambient, 0, 1)
	if l.Ambient == 0 && l.Intensity == 0 {
		return render.Unlit
	}
	return l
}
