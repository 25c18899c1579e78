package armviz

import (
	"github.com/gekko3d/armviz/control"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// CameraComponent is a perspective camera. Fov is vertical, in degrees.
type CameraComponent struct {
	Position mgl32.Vec3
	LookAt   mgl32.Vec3
	Up       mgl32.Vec3
	Fov      float32
	Near     float32
	Far      float32
	Aspect   float32
}

func (c *CameraComponent) ViewMatrix() mgl32.Mat4 {
	up := c.Up
	if up.Len() == 0 {
		up = mgl32.Vec3{0, 1, 0}
	}
	return mgl32.LookAtV(c.Position, c.LookAt, up)
}

func (c *CameraComponent) ProjectionMatrix() mgl32.Mat4 {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), aspect, c.Near, c.Far)
}

func (c *CameraComponent) ViewProjection() mgl32.Mat4 {
	return c.ProjectionMatrix().Mul4(c.ViewMatrix())
}

// Rotation is the camera orientation: local -Z looks at LookAt.
func (c *CameraComponent) Rotation() mgl32.Quat {
	return mgl32.Mat4ToQuat(c.ViewMatrix().Inv()).Normalize()
}

// ScreenRay returns the world ray under pixel (x, y) of a w*h viewport.
func (c *CameraComponent) ScreenRay(x, y float64, w, h int) control.Ray {
	if w <= 0 || h <= 0 {
		return control.Ray{Origin: toVec64(c.Position), Dir: toVec64(c.LookAt.Sub(c.Position)).Normalize()}
	}
	ndcX := 2*x/float64(w) - 1
	ndcY := 1 - 2*y/float64(h)

	inv := toMat64(c.ViewProjection()).Inv()
	near := mgl64.TransformCoordinate(mgl64.Vec3{ndcX, ndcY, -1}, inv)
	far := mgl64.TransformCoordinate(mgl64.Vec3{ndcX, ndcY, 1}, inv)
	return control.Ray{Origin: near, Dir: far.Sub(near).Normalize()}
}

func toMat64(m mgl32.Mat4) mgl64.Mat4 {
	var out mgl64.Mat4
	for i := range m {
		out[i] = float64(m[i])
	}
	return out
}
