package ik

import (
	"math"
	"time"

	"github.com/gekko3d/armviz/kinematics"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

type Status int

const (
	Timeout Status = iota
	Converged
	Stalled
	Diverged
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case Stalled:
		return "stalled"
	case Diverged:
		return "diverged"
	default:
		return "timeout"
	}
}

// Goal is the desired end effector pose in world space.
type Goal struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

func GoalFromMatrix(m mgl64.Mat4) Goal {
	p, q := kinematics.Decompose(m)
	return Goal{Position: p, Rotation: q}
}

// Result of one Solve call. Done is false when no new joint values are
// available yet and the caller should try again next frame.
type Result struct {
	Values []float64
	Status Status
	Done   bool
	// Elapsed is the time spent in the solve round that produced Values.
	Elapsed time.Duration
}

// Solver is the boundary between the manipulator and an IK implementation.
type Solver interface {
	UpdateStructure(c *Chain)
	SetOptions(o Options)
	Solve(current []float64, goal Goal) Result
	Close()
}

// DLSSolver solves synchronously on the calling goroutine using damped least
// squares over a numerically differentiated Jacobian.
type DLSSolver struct {
	opts  Options
	chain *Chain
}

func NewDLSSolver(opts Options) *DLSSolver {
	return &DLSSolver{opts: opts}
}

func (s *DLSSolver) UpdateStructure(c *Chain) {
	if c == nil {
		s.chain = nil
		return
	}
	s.chain = c.Clone()
}

func (s *DLSSolver) SetOptions(o Options) { s.opts = o }

func (s *DLSSolver) Options() Options { return s.opts }

func (s *DLSSolver) Close() {}

// Solve runs up to MaxIterations steps starting at current.
func (s *DLSSolver) Solve(current []float64, goal Goal) Result {
	start := time.Now()
	res := s.solve(current, goal)
	res.Elapsed = time.Since(start)
	return res
}

func (s *DLSSolver) solve(current []float64, goal Goal) Result {
	if s.chain == nil {
		return Result{Status: Stalled, Done: true}
	}
	n := s.chain.DoF()
	values := make([]float64, n)
	if len(current) == n {
		copy(values, current)
	} else {
		copy(values, s.chain.Values())
	}
	if n == 0 {
		return Result{Values: values, Status: Stalled, Done: true}
	}

	iterations := s.opts.MaxIterations
	if iterations <= 0 {
		iterations = 1
	}

	prevErr := math.Inf(1)
	prevValues := append([]float64(nil), values...)
	for iter := 0; iter < iterations; iter++ {
		pose := s.chain.Forward(values)
		e, transErr, rotErr := s.poseError(pose, goal)
		if transErr < s.opts.TranslationConvergeThreshold && rotErr < s.opts.RotationConvergeThreshold {
			return Result{Values: values, Status: Converged, Done: true}
		}

		total := transErr + rotErr
		if iter > 0 {
			if total-prevErr > s.opts.DivergeThreshold {
				return Result{Values: prevValues, Status: Diverged, Done: true}
			}
			if math.Abs(prevErr-total) < s.opts.StallThreshold {
				return Result{Values: values, Status: Stalled, Done: true}
			}
		}
		prevErr = total
		copy(prevValues, values)

		j := s.jacobian(values, pose)
		delta := s.step(j, e, values)
		s.chain.SetValues(addInto(values, delta))
		copy(values, s.chain.Values())
	}
	return Result{Values: values, Status: Timeout, Done: true}
}

// poseError is the clamped 6-vector (translation, rotation vector) from pose
// to goal, scaled by the translation and rotation factors.
func (s *DLSSolver) poseError(pose mgl64.Mat4, goal Goal) (*mat.VecDense, float64, float64) {
	p, q := kinematics.Decompose(pose)
	dt := goal.Position.Sub(p)
	dr := rotationVector(goal.Rotation.Mul(q.Inverse()))

	transErr, rotErr := dt.Len(), dr.Len()
	dt = clampLen(dt, s.opts.TranslationErrorClamp).Mul(s.opts.TranslationFactor)
	dr = clampLen(dr, s.opts.RotationErrorClamp).Mul(s.opts.RotationFactor)

	return mat.NewVecDense(6, []float64{dt[0], dt[1], dt[2], dr[0], dr[1], dr[2]}), transErr, rotErr
}

func (s *DLSSolver) jacobian(values []float64, pose mgl64.Mat4) *mat.Dense {
	n := len(values)
	j := mat.NewDense(6, n, nil)
	p0, q0 := kinematics.Decompose(pose)
	movable := s.movableTypes()

	probe := append([]float64(nil), values...)
	for col := 0; col < n; col++ {
		step := s.opts.RotationStep
		if movable[col] == kinematics.JointPrismatic {
			step = s.opts.TranslationStep
		}
		if step <= 0 {
			step = 1e-3
		}
		probe[col] = values[col] + step
		p1, q1 := kinematics.Decompose(s.chain.Forward(probe))
		probe[col] = values[col]

		dp := p1.Sub(p0).Mul(1 / step)
		dr := rotationVector(q1.Mul(q0.Inverse())).Mul(1 / step)
		for row := 0; row < 3; row++ {
			j.Set(row, col, dp[row]*s.opts.TranslationFactor)
			j.Set(row+3, col, dr[row]*s.opts.RotationFactor)
		}
	}
	return j
}

// step computes the damped pseudo-inverse update and biases the null space
// toward the zero rest pose.
func (s *DLSSolver) step(j *mat.Dense, e *mat.VecDense, values []float64) []float64 {
	_, n := j.Dims()
	lambda2 := s.opts.DampingFactor * s.opts.DampingFactor

	var pinv *mat.Dense
	if s.opts.UseSVD {
		pinv = dampedPinvSVD(j, lambda2)
	}
	if pinv == nil {
		pinv = dampedPinvNormal(j, lambda2)
	}
	if pinv == nil {
		return make([]float64, n)
	}

	var delta mat.VecDense
	delta.MulVec(pinv, e)

	if s.opts.RestPoseFactor > 0 {
		// (I - J+ J) * (-k * q)
		var proj mat.Dense
		proj.Mul(pinv, j)
		null := mat.NewDense(n, n, nil)
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				v := -proj.At(r, c)
				if r == c {
					v += 1
				}
				null.Set(r, c, v)
			}
		}
		rest := mat.NewVecDense(n, nil)
		for i, v := range values {
			rest.SetVec(i, -s.opts.RestPoseFactor*v)
		}
		var bias mat.VecDense
		bias.MulVec(null, rest)
		delta.AddVec(&delta, &bias)
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = delta.AtVec(i)
	}
	return out
}

func (s *DLSSolver) movableTypes() []kinematics.JointType {
	out := make([]kinematics.JointType, 0, len(s.chain.Segments))
	for _, seg := range s.chain.Segments {
		if seg.Type != kinematics.JointFixed {
			out = append(out, seg.Type)
		}
	}
	return out
}

// dampedPinvSVD returns V diag(s/(s^2+l2)) U^T.
func dampedPinvSVD(j *mat.Dense, lambda2 float64) *mat.Dense {
	var svd mat.SVD
	if !svd.Factorize(j, mat.SVDThin) {
		return nil
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	sv := svd.Values(nil)

	k := len(sv)
	d := mat.NewDense(k, k, nil)
	for i, si := range sv {
		if den := si*si + lambda2; den > 1e-15 {
			d.Set(i, i, si/den)
		}
	}

	var vd, out mat.Dense
	vd.Mul(&v, d)
	out.Mul(&vd, u.T())
	return &out
}

// dampedPinvNormal returns J^T (J J^T + l2 I)^-1.
func dampedPinvNormal(j *mat.Dense, lambda2 float64) *mat.Dense {
	rows, _ := j.Dims()
	var jjt mat.Dense
	jjt.Mul(j, j.T())
	for i := 0; i < rows; i++ {
		jjt.Set(i, i, jjt.At(i, i)+lambda2)
	}
	var inv mat.Dense
	if err := inv.Inverse(&jjt); err != nil {
		return nil
	}
	var out mat.Dense
	out.Mul(j.T(), &inv)
	return &out
}

// rotationVector converts a quaternion into axis * angle, taking the short way.
func rotationVector(q mgl64.Quat) mgl64.Vec3 {
	q = q.Normalize()
	if q.W < 0 {
		q = mgl64.Quat{W: -q.W, V: q.V.Mul(-1)}
	}
	sinHalf := q.V.Len()
	if sinHalf < 1e-12 {
		return q.V.Mul(2)
	}
	angle := 2 * math.Atan2(sinHalf, q.W)
	return q.V.Mul(angle / sinHalf)
}

func clampLen(v mgl64.Vec3, max float64) mgl64.Vec3 {
	if max <= 0 {
		return v
	}
	if l := v.Len(); l > max {
		return v.Mul(max / l)
	}
	return v
}

func addInto(values, delta []float64) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		out[i] = values[i] + delta[i]
	}
	return out
}
