package kinematics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	AxisX = mgl64.Vec3{1, 0, 0}
	AxisY = mgl64.Vec3{0, 1, 0}
	AxisZ = mgl64.Vec3{0, 0, 1}
)

// EulerXYZToQuat converts intrinsic X then Y then Z angles in radians.
func EulerXYZToQuat(e mgl64.Vec3) mgl64.Quat {
	qx := mgl64.QuatRotate(e.X(), AxisX)
	qy := mgl64.QuatRotate(e.Y(), AxisY)
	qz := mgl64.QuatRotate(e.Z(), AxisZ)
	return qx.Mul(qy).Mul(qz).Normalize()
}

// QuatToEulerXYZ is the inverse of EulerXYZToQuat. Near gimbal lock Z is zero.
func QuatToEulerXYZ(q mgl64.Quat) mgl64.Vec3 {
	return MatToEulerXYZ(q.Normalize().Mat4())
}

func MatToEulerXYZ(m mgl64.Mat4) mgl64.Vec3 {
	m13 := mgl64.Clamp(m.At(0, 2), -1, 1)
	y := math.Asin(m13)
	if math.Abs(m13) < 0.9999999 {
		return mgl64.Vec3{
			math.Atan2(-m.At(1, 2), m.At(2, 2)),
			y,
			math.Atan2(-m.At(0, 1), m.At(0, 0)),
		}
	}
	return mgl64.Vec3{math.Atan2(m.At(2, 1), m.At(1, 1)), y, 0}
}

// RPYToQuat follows the URDF convention: roll about X, pitch about Y, yaw
// about Z, applied in fixed axes (R = Rz * Ry * Rx).
func RPYToQuat(rpy [3]float64) mgl64.Quat {
	qx := mgl64.QuatRotate(rpy[0], AxisX)
	qy := mgl64.QuatRotate(rpy[1], AxisY)
	qz := mgl64.QuatRotate(rpy[2], AxisZ)
	return qz.Mul(qy).Mul(qx).Normalize()
}

// Compose builds a translation-rotation matrix.
func Compose(p mgl64.Vec3, q mgl64.Quat) mgl64.Mat4 {
	return mgl64.Translate3D(p.X(), p.Y(), p.Z()).Mul4(q.Normalize().Mat4())
}

// Decompose splits a rigid transform into translation and rotation.
func Decompose(m mgl64.Mat4) (mgl64.Vec3, mgl64.Quat) {
	return m.Col(3).Vec3(), mgl64.Mat4ToQuat(m).Normalize()
}

// LookRotation returns the rotation that points local +Z from eye at target.
func LookRotation(eye, target, up mgl64.Vec3) mgl64.Quat {
	z := target.Sub(eye)
	if z.Len() < 1e-12 {
		z = AxisZ
	}
	z = z.Normalize()

	x := up.Cross(z)
	if x.Len() < 1e-12 {
		// up and z are parallel: nudge z off axis
		if math.Abs(up.Z()) == 1 {
			z = mgl64.Vec3{z.X() + 1e-4, z.Y(), z.Z()}
		} else {
			z = mgl64.Vec3{z.X(), z.Y(), z.Z() + 1e-4}
		}
		z = z.Normalize()
		x = up.Cross(z)
	}
	x = x.Normalize()
	y := z.Cross(x)

	m := mgl64.Mat4FromCols(x.Vec4(0), y.Vec4(0), z.Vec4(0), mgl64.Vec4{0, 0, 0, 1})
	return mgl64.Mat4ToQuat(m).Normalize()
}
