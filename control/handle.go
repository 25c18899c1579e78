package control

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Space int

const (
	SpaceLocal Space = iota
	SpaceWorld
)

type Ray struct {
	Origin mgl64.Vec3
	Dir    mgl64.Vec3
}

func (r Ray) At(t float64) mgl64.Vec3 { return r.Origin.Add(r.Dir.Mul(t)) }

var basis = [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// TransformHandle is a draggable pose with three axis arrows (translate) or
// three rings (rotate).
type TransformHandle struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Visible  bool
	Mode     ControlMode
	Space    Space
	Size     float64

	drag struct {
		active   bool
		axis     int
		startS   float64
		startVec mgl64.Vec3
		startPos mgl64.Vec3
		startRot mgl64.Quat
	}
}

func NewTransformHandle(size float64) *TransformHandle {
	return &TransformHandle{Rotation: mgl64.QuatIdent(), Size: size}
}

func (h *TransformHandle) SetPose(p mgl64.Vec3, q mgl64.Quat) {
	h.Position = p
	h.Rotation = q.Normalize()
}

// Axis returns world axis i of the handle.
func (h *TransformHandle) Axis(i int) mgl64.Vec3 {
	if h.Space == SpaceWorld {
		return basis[i]
	}
	return h.Rotation.Rotate(basis[i]).Normalize()
}

func (h *TransformHandle) Dragging() bool { return h.drag.active }

// DragAxis is the axis being dragged, or -1.
func (h *TransformHandle) DragAxis() int {
	if !h.drag.active {
		return -1
	}
	return h.drag.axis
}

// Hit returns the closest handle axis under the ray.
func (h *TransformHandle) Hit(ray Ray) (int, float64, bool) {
	if !h.Visible {
		return -1, 0, false
	}
	best, bestT := -1, math.Inf(1)
	for i := 0; i < 3; i++ {
		axis := h.Axis(i)
		switch h.Mode {
		case ControlTranslate:
			t, s, d := ClosestPoints(ray.Origin, ray.Dir, h.Position, axis)
			if t > 0 && s >= 0 && s <= 1.1*h.Size && d < 0.12*h.Size && t < bestT {
				best, bestT = i, t
			}
		case ControlRotate:
			t, ok := RayPlane(ray, h.Position, axis)
			if !ok {
				continue
			}
			dist := ray.At(t).Sub(h.Position).Len()
			if math.Abs(dist-h.Size) < 0.15*h.Size && t < bestT {
				best, bestT = i, t
			}
		}
	}
	return best, bestT, best >= 0
}

// BeginDrag starts dragging the axis under the ray.
func (h *TransformHandle) BeginDrag(ray Ray) bool {
	axis, _, ok := h.Hit(ray)
	if !ok {
		return false
	}
	return h.BeginDragAxis(ray, axis)
}

// BeginDragAxis starts dragging a given axis.
func (h *TransformHandle) BeginDragAxis(ray Ray, axis int) bool {
	w := h.Axis(axis)
	h.drag.axis = axis
	h.drag.startPos = h.Position
	h.drag.startRot = h.Rotation

	switch h.Mode {
	case ControlTranslate:
		_, s, _ := ClosestPoints(ray.Origin, ray.Dir, h.Position, w)
		h.drag.startS = s
	case ControlRotate:
		t, ok := RayPlane(ray, h.Position, w)
		if !ok {
			return false
		}
		v := ray.At(t).Sub(h.Position)
		if v.Len() < 1e-9 {
			return false
		}
		h.drag.startVec = v.Normalize()
	}
	h.drag.active = true
	return true
}

// Drag moves the handle to follow the ray. It returns false when the ray is
// degenerate for the active axis.
func (h *TransformHandle) Drag(ray Ray) bool {
	if !h.drag.active {
		return false
	}
	// the axis is taken from the pose at drag start
	var w mgl64.Vec3
	if h.Space == SpaceWorld {
		w = basis[h.drag.axis]
	} else {
		w = h.drag.startRot.Rotate(basis[h.drag.axis]).Normalize()
	}

	switch h.Mode {
	case ControlTranslate:
		r := ray.Origin.Sub(h.drag.startPos)
		a := ray.Dir.Dot(ray.Dir)
		b := ray.Dir.Dot(w)
		e := w.Dot(w)
		f := w.Dot(r)
		det := a*e - b*b
		if det < 1e-4 {
			return false
		}
		c := ray.Dir.Dot(r)
		s := (a*f - b*c) / det
		h.Position = h.drag.startPos.Add(w.Mul(s - h.drag.startS))
	case ControlRotate:
		t, ok := RayPlane(ray, h.drag.startPos, w)
		if !ok || t <= 0 {
			return false
		}
		v := ray.At(t).Sub(h.drag.startPos)
		if v.Len() < 1e-9 {
			return false
		}
		angle := SignedAngle(h.drag.startVec, v.Normalize(), w)
		h.Rotation = mgl64.QuatRotate(angle, w).Mul(h.drag.startRot).Normalize()
	}
	return true
}

func (h *TransformHandle) EndDrag() {
	h.drag.active = false
}

// DragOffset is the translation since the drag started.
func (h *TransformHandle) DragOffset() mgl64.Vec3 {
	if !h.drag.active {
		return mgl64.Vec3{}
	}
	return h.Position.Sub(h.drag.startPos)
}

// ClosestPoints returns the parameters of the closest points between the ray
// ro+t*rd and the line ao+s*ad, and their distance.
func ClosestPoints(ro, rd, ao, ad mgl64.Vec3) (float64, float64, float64) {
	r := ro.Sub(ao)
	a := rd.Dot(rd)
	b := rd.Dot(ad)
	e := ad.Dot(ad)
	f := ad.Dot(r)

	det := a*e - b*b
	if det < 1e-9 {
		return 0, 0, r.Len()
	}

	c := rd.Dot(r)
	t := (b*f - c*e) / det
	s := (a*f - b*c) / det

	p1 := ro.Add(rd.Mul(t))
	p2 := ao.Add(ad.Mul(s))
	return t, s, p1.Sub(p2).Len()
}

// RayPlane intersects a ray with the plane through point with normal n.
func RayPlane(ray Ray, point, n mgl64.Vec3) (float64, bool) {
	denom := ray.Dir.Dot(n)
	if math.Abs(denom) < 1e-9 {
		return 0, false
	}
	return point.Sub(ray.Origin).Dot(n) / denom, true
}

// SignedAngle is the angle from a to b around axis, in (-pi, pi].
func SignedAngle(a, b, axis mgl64.Vec3) float64 {
	cos := mgl64.Clamp(a.Dot(b), -1, 1)
	angle := math.Acos(cos)
	if a.Cross(b).Dot(axis) < 0 {
		angle = -angle
	}
	return angle
}
