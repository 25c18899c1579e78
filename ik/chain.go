package ik

import (
	"fmt"

	"github.com/gekko3d/armviz/kinematics"
	"github.com/go-gl/mathgl/mgl64"
)

// Segment is one joint of a serial chain, copied out of the robot so that a
// solver can own it without touching the scene graph.
type Segment struct {
	Name         string
	Type         kinematics.JointType
	Origin       mgl64.Mat4
	Axis         mgl64.Vec3
	Lower, Upper float64
	Limited      bool
	Value        float64
}

// Chain mirrors the joints between a robot base and its end effector link.
type Chain struct {
	Base     mgl64.Mat4
	Segments []Segment
	EndLink  string
}

// FromRobot builds the chain ending at the named link.
func FromRobot(r *kinematics.Robot, endLink string) (*Chain, error) {
	link, ok := r.Link(endLink)
	if !ok {
		return nil, fmt.Errorf("ik: unknown end effector link %q", endLink)
	}
	c := &Chain{EndLink: endLink}
	for _, j := range r.PathToRoot(link) {
		c.Segments = append(c.Segments, Segment{
			Name:    j.Name,
			Type:    j.Type,
			Origin:  j.Origin,
			Axis:    j.Axis,
			Lower:   j.Lower,
			Upper:   j.Upper,
			Limited: j.HasLimits && !j.IgnoreLimits,
		})
	}
	c.SetFromRobot(r)
	return c, nil
}

// SetFromRobot copies the base transform and joint values from the robot.
func (c *Chain) SetFromRobot(r *kinematics.Robot) {
	c.Base = r.Matrix()
	for i := range c.Segments {
		if j, ok := r.Joint(c.Segments[i].Name); ok {
			c.Segments[i].Value = j.Value()
			c.Segments[i].Limited = j.HasLimits && !j.IgnoreLimits
		}
	}
}

// ApplyToRobot writes movable values back onto the robot joints and refreshes
// its world transforms.
func (c *Chain) ApplyToRobot(r *kinematics.Robot, values []float64) {
	c.SetValues(values)
	for _, s := range c.Segments {
		if s.Type == kinematics.JointFixed {
			continue
		}
		if j, ok := r.Joint(s.Name); ok {
			j.SetValue(s.Value)
		}
	}
	r.UpdateMatrixWorld()
}

// DoF is the number of movable segments.
func (c *Chain) DoF() int {
	n := 0
	for _, s := range c.Segments {
		if s.Type != kinematics.JointFixed {
			n++
		}
	}
	return n
}

// Values returns the movable segment values in chain order.
func (c *Chain) Values() []float64 {
	out := make([]float64, 0, len(c.Segments))
	for _, s := range c.Segments {
		if s.Type != kinematics.JointFixed {
			out = append(out, s.Value)
		}
	}
	return out
}

// SetValues assigns movable values in chain order. Extra values are ignored.
func (c *Chain) SetValues(values []float64) {
	i := 0
	for k := range c.Segments {
		if c.Segments[k].Type == kinematics.JointFixed {
			continue
		}
		if i >= len(values) {
			return
		}
		c.Segments[k].Value = c.Segments[k].clamp(values[i])
		i++
	}
}

// Names returns the movable joint names in chain order.
func (c *Chain) Names() []string {
	out := make([]string, 0, len(c.Segments))
	for _, s := range c.Segments {
		if s.Type != kinematics.JointFixed {
			out = append(out, s.Name)
		}
	}
	return out
}

// Forward returns the end effector world transform for the given movable
// values. A nil slice uses the stored values.
func (c *Chain) Forward(values []float64) mgl64.Mat4 {
	m := c.Base
	i := 0
	for _, s := range c.Segments {
		v := s.Value
		if s.Type != kinematics.JointFixed && values != nil {
			if i < len(values) {
				v = values[i]
			}
			i++
		}
		m = m.Mul4(s.Origin).Mul4(s.motion(v))
	}
	return m
}

// Clone returns a deep copy safe to hand to another goroutine.
func (c *Chain) Clone() *Chain {
	out := &Chain{Base: c.Base, EndLink: c.EndLink}
	out.Segments = append([]Segment(nil), c.Segments...)
	return out
}

func (s Segment) motion(v float64) mgl64.Mat4 {
	switch s.Type {
	case kinematics.JointRevolute, kinematics.JointContinuous:
		return mgl64.HomogRotate3D(v, s.Axis)
	case kinematics.JointPrismatic:
		d := s.Axis.Mul(v)
		return mgl64.Translate3D(d.X(), d.Y(), d.Z())
	default:
		return mgl64.Ident4()
	}
}

func (s Segment) clamp(v float64) float64 {
	if s.Limited {
		return mgl64.Clamp(v, s.Lower, s.Upper)
	}
	return v
}
