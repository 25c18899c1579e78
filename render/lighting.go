package render

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Lighting is a single directional light plus ambient. Wireframes have no
// normals, so each instance is shaded by its local +Y axis.
type Lighting struct {
	Ambient   float32
	Direction mgl32.Vec3 // towards the light
	Intensity float32
}

// Unlit leaves colors as they are.
var Unlit = Lighting{Ambient: 1}

func (l Lighting) Shade(c [4]float32, model mgl32.Mat4) [4]float32 {
	f := l.Ambient
	if l.Intensity > 0 && l.Direction.Len() > 0 {
		up := model.Mul4x1(mgl32.Vec4{0, 1, 0, 0}).Vec3()
		diffuse := float32(0.5)
		if up.Len() > 0 {
			// wireframes are visible from both sides
			d := up.Normalize().Dot(l.Direction.Normalize())
			if d < 0 {
				d = -d
			}
			diffuse = 0.5 + 0.5*d
		}
		f += l.Intensity * diffuse * (1 - l.Ambient)
	}
	if f > 1 {
		f = 1
	}
	return [4]float32{c[0] * f, c[1] * f, c[2] * f, c[3]}
}
