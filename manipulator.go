package armviz

import (
	"time"

	"github.com/gekko3d/armviz/control"
	"github.com/gekko3d/armviz/ik"
	"github.com/gekko3d/armviz/kinematics"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// worldNudgeInterval is how often a held world handle moves the target.
	worldNudgeInterval = 10 * time.Millisecond
	// worldNudgeScale divides the world handle offset into a target step.
	worldNudgeScale = 500
)

// ManipulatorOptions configure the interaction on top of a Presenter.
type ManipulatorOptions struct {
	Mode          control.Mode
	ControlMode   control.ControlMode
	WorldControls bool
	// Worker runs the solver on its own goroutine.
	Worker bool
	Solver ik.Options

	HandleSize      float64
	WorldHandleSize float64
}

func DefaultManipulatorOptions() ManipulatorOptions {
	return ManipulatorOptions{
		Mode:            control.ModeInverse,
		ControlMode:     control.ControlTranslate,
		WorldControls:   true,
		Worker:          true,
		Solver:          ik.DefaultOptions(),
		HandleSize:      0.15,
		WorldHandleSize: 6,
	}
}

// TargetPose is a partial end effector goal. Nil fields are left unchanged;
// Quaternion wins over Euler.
type TargetPose struct {
	Position   *mgl64.Vec3
	Quaternion *mgl64.Quat
	Euler      *mgl64.Vec3
	Degrees    bool
}

type jointDrag struct {
	joint      *kinematics.Joint
	pivot      mgl64.Vec3
	axis       mgl64.Vec3
	startVec   mgl64.Vec3
	startS     float64
	startValue float64
}

// Manipulator adds inverse and forward control to a Presenter: a target
// handle the solver chases, a world handle that nudges the target, and
// pointer hover, selection and joint dragging.
type Manipulator struct {
	presenter *Presenter
	log       Logger
	opts      ManipulatorOptions

	state control.ModeState

	target       *control.TransformHandle
	world        *control.TransformHandle
	worldBase    mgl64.Vec3 // camera space
	aspect       float64
	camPos       mgl64.Vec3
	camRot       mgl64.Quat
	worldOffset  mgl64.Vec3 // world space
	worldEnabled bool
	nudge        Ticker

	chain  *ik.Chain
	solver ik.Solver
	solve  bool
	ready  bool

	drag *jointDrag

	onSelect []func(joint string)
	onMode   []func(control.Transition)
	onSolve  []func(ik.Result)
	onSave   []func()
}

func NewManipulator(p *Presenter, opts ManipulatorOptions, log Logger) *Manipulator {
	if log == nil {
		log = NewNopLogger()
	}
	m := &Manipulator{
		presenter:    p,
		log:          log,
		opts:         opts,
		state:        control.ModeState{Mode: opts.Mode},
		target:       control.NewTransformHandle(opts.HandleSize),
		world:        control.NewTransformHandle(opts.WorldHandleSize),
		worldEnabled: opts.WorldControls,
		nudge:        Ticker{Interval: worldNudgeInterval},
		camRot:       mgl64.QuatIdent(),
		solve:        true,
	}
	m.target.Mode = opts.ControlMode
	m.target.Space = control.SpaceLocal
	m.world.Mode = control.ControlTranslate
	m.world.Space = control.SpaceWorld
	m.SetAspect(1)
	p.OnLoaded(m.loadInverseControls)
	return m
}

func (m *Manipulator) loadInverseControls() {
	robot := m.presenter.Robot()
	chain, err := ik.FromRobot(robot, m.presenter.EndEffectorLink().Name)
	if err != nil {
		m.log.Errorf("Inverse controls unavailable: %v", err)
		return
	}
	m.chain = chain
	if m.solver != nil {
		m.solver.Close()
	}
	if m.opts.Worker {
		m.solver = ik.NewWorkerSolver(m.opts.Solver)
	} else {
		m.solver = ik.NewDLSSolver(m.opts.Solver)
	}
	m.solver.UpdateStructure(m.chain)
	m.updateTarget()
	m.ready = true
	m.updateVisibility()
	m.log.Debugf("Inverse controls ready: %d DoF to %q", chain.DoF(), chain.EndLink)
}

func (m *Manipulator) Presenter() *Presenter { return m.presenter }

func (m *Manipulator) Mode() control.Mode { return m.state.Mode }

func (m *Manipulator) State() control.ModeState { return m.state }

func (m *Manipulator) Selected() string { return m.state.Selected }

func (m *Manipulator) Target() *control.TransformHandle { return m.target }

func (m *Manipulator) WorldHandle() *control.TransformHandle { return m.world }

// Solving reports whether the per-frame solve is active.
func (m *Manipulator) Solving() bool {
	return m.ready && m.solve && m.state.Mode == control.ModeInverse
}

func (m *Manipulator) OnSelect(fn func(joint string)) {
	m.onSelect = append(m.onSelect, fn)
}

func (m *Manipulator) OnModeChange(fn func(control.Transition)) {
	m.onMode = append(m.onMode, fn)
}

// OnSolve observes every finished solver round.
func (m *Manipulator) OnSolve(fn func(ik.Result)) {
	m.onSolve = append(m.onSolve, fn)
}

// SetMode switches by name. Unknown names are logged and ignored.
func (m *Manipulator) SetMode(name string) {
	mode, err := control.ParseMode(name)
	if err != nil {
		m.log.Warnf("The mode %q does not exist.", name)
		return
	}
	m.EnterMode(mode)
}

func (m *Manipulator) EnterMode(mode control.Mode) {
	next, tr := m.state.Enter(mode)
	m.endJointDrag()
	m.target.EndDrag()
	m.releaseWorldHandle()

	if tr.ClearedHover {
		m.presenter.HighlightJoint(m.state.Hovered, true, 0)
	}
	if tr.From != control.ModeSelect || mode != control.ModeSelect {
		m.presenter.ResetEmission()
	}
	if tr.From == control.ModeInverse && mode != control.ModeInverse {
		if w, ok := m.solver.(*ik.WorkerSolver); ok {
			w.Stop()
		}
	}
	m.state = next
	if mode == control.ModeInverse {
		m.resync()
	}
	m.updateVisibility()

	m.log.Infof("Mode: %s", mode)
	for _, fn := range m.onMode {
		fn(tr)
	}
}

// ToggleMode cycles inverse, forward, view, select.
func (m *Manipulator) ToggleMode() {
	m.EnterMode(m.state.Mode.Next())
}

// ToggleInverse switches between inverse and forward control.
func (m *Manipulator) ToggleInverse() {
	if m.state.Mode == control.ModeInverse {
		m.EnterMode(control.ModeForward)
		return
	}
	m.EnterMode(control.ModeInverse)
}

func (m *Manipulator) SetControlMode(name string) {
	cm, err := control.ParseControlMode(name)
	if err != nil {
		m.log.Warnf("The control mode %q does not exist.", name)
		return
	}
	m.target.EndDrag()
	m.target.Mode = cm
}

func (m *Manipulator) ToggleControlMode() {
	m.target.EndDrag()
	m.target.Mode = m.target.Mode.Toggle()
}

func (m *Manipulator) ControlMode() control.ControlMode { return m.target.Mode }

func (m *Manipulator) ToggleWorldControls() {
	m.worldEnabled = !m.worldEnabled
	if !m.worldEnabled {
		m.releaseWorldHandle()
	}
	m.updateVisibility()
}

func (m *Manipulator) WorldControlsEnabled() bool { return m.worldEnabled }

func (m *Manipulator) updateVisibility() {
	inverse := m.ready && m.state.Mode == control.ModeInverse
	m.target.Visible = inverse
	m.world.Visible = inverse && m.worldEnabled
}

// updateTarget places the target handle on the end effector.
func (m *Manipulator) updateTarget() {
	ee, ok := m.presenter.EndEffector()
	if !ok {
		return
	}
	m.target.SetPose(ee.Position, ee.Quaternion)
}

// resync copies the robot pose into the solver and puts the target on the
// end effector.
func (m *Manipulator) resync() {
	if !m.ready {
		return
	}
	m.solve = false
	m.chain.SetFromRobot(m.presenter.Robot())
	m.solver.UpdateStructure(m.chain)
	m.updateTarget()
	m.solve = true
}

// mutate runs a presenter mutation with solving paused and resyncs after.
func (m *Manipulator) mutate(fn func()) {
	m.solve = false
	fn()
	m.resync()
	m.solve = true
}

func (m *Manipulator) SetConfiguration(cfg map[string]float64, deg bool) {
	m.mutate(func() { m.presenter.SetConfiguration(cfg, deg) })
}

func (m *Manipulator) SetConfigurationList(values []float64, deg bool) {
	m.mutate(func() { m.presenter.SetConfigurationList(values, deg) })
}

func (m *Manipulator) SetJointValue(name string, v float64, deg bool) {
	m.mutate(func() { m.presenter.SetJointValue(name, v, deg) })
}

func (m *Manipulator) SetPosition(pos mgl64.Vec3) {
	m.mutate(func() { m.presenter.SetPosition(pos) })
}

func (m *Manipulator) SetRotation(euler mgl64.Vec3, deg bool) {
	m.mutate(func() { m.presenter.SetRotation(euler, deg) })
}

func (m *Manipulator) LookAt(target mgl64.Vec3) {
	m.mutate(func() { m.presenter.LookAt(target) })
}

func (m *Manipulator) ResetRobot() {
	m.mutate(m.presenter.ResetRobot)
}

// ResetGizmo moves the target back onto the end effector.
func (m *Manipulator) ResetGizmo() {
	m.resync()
}

// SetEndEffectorMatrix moves the target to a world transform.
func (m *Manipulator) SetEndEffectorMatrix(mat mgl64.Mat4) {
	p, q := kinematics.Decompose(mat)
	m.target.SetPose(p, q)
}

func (m *Manipulator) SetEndEffector(pose TargetPose) {
	pos, rot := m.target.Position, m.target.Rotation
	if pose.Position != nil {
		pos = *pose.Position
	}
	switch {
	case pose.Quaternion != nil:
		rot = *pose.Quaternion
	case pose.Euler != nil:
		e := *pose.Euler
		if pose.Degrees {
			e = mgl64.Vec3{mgl64.DegToRad(e[0]), mgl64.DegToRad(e[1]), mgl64.DegToRad(e[2])}
		}
		rot = kinematics.EulerXYZToQuat(e)
	}
	m.target.SetPose(pos, rot)
}

func (m *Manipulator) SolverOptions() ik.Options { return m.opts.Solver }

func (m *Manipulator) SetSolverOptions(o ik.Options) {
	m.opts.Solver = o
	if m.solver != nil {
		m.solver.SetOptions(o)
	}
}

// MergeSolverOptions applies a partial set of options by name.
func (m *Manipulator) MergeSolverOptions(values map[string]any) error {
	o, err := m.opts.Solver.Merge(values)
	if err != nil {
		return err
	}
	m.SetSolverOptions(o)
	return nil
}

// OnSavePose registers a handler for SavePose.
func (m *Manipulator) OnSavePose(fn func()) {
	m.onSave = append(m.onSave, fn)
}

// SavePose asks the registered handlers to store the current pose.
func (m *Manipulator) SavePose() {
	if len(m.onSave) == 0 {
		m.log.Warnf("No pose file is configured.")
		return
	}
	for _, fn := range m.onSave {
		fn()
	}
}

// SetAspect pins the world handle to the lower left of the view.
func (m *Manipulator) SetAspect(aspect float64) {
	base := mgl64.Vec3{-30, -25, -100}
	base[0] = base[1] * aspect
	m.aspect = aspect
	m.worldBase = base
	m.releaseWorldHandle()
}

func (m *Manipulator) WorldBase() mgl64.Vec3 { return m.worldBase }

func (m *Manipulator) Aspect() float64 { return m.aspect }

// SetCamera places the world handle in front of the camera unless it is
// being dragged.
func (m *Manipulator) SetCamera(pos mgl64.Vec3, rot mgl64.Quat) {
	m.camPos, m.camRot = pos, rot
	if !m.world.Dragging() {
		m.placeWorldHandle()
	}
}

func (m *Manipulator) placeWorldHandle() {
	m.world.SetPose(m.camPos.Add(m.camRot.Rotate(m.worldBase)), mgl64.QuatIdent())
}

func (m *Manipulator) releaseWorldHandle() {
	m.world.EndDrag()
	m.placeWorldHandle()
	m.worldOffset = mgl64.Vec3{}
	m.nudge.Reset()
}

// Update runs once per frame: world handle nudges, then one solver call.
func (m *Manipulator) Update(dt time.Duration) {
	if !m.Solving() {
		return
	}

	if m.nudge.Advance(dt) > 0 && m.worldEnabled && m.worldOffset.Len() > 0 {
		if ee, ok := m.presenter.EndEffector(); ok {
			m.target.Position = ee.Position.Add(m.worldOffset.Mul(1.0 / worldNudgeScale))
		}
	}

	goal := ik.Goal{Position: m.target.Position, Rotation: m.target.Rotation}
	res := m.solver.Solve(m.chain.Values(), goal)
	if !res.Done {
		return
	}
	m.chain.ApplyToRobot(m.presenter.Robot(), res.Values)
	for _, fn := range m.onSolve {
		fn(res)
	}
}

func (m *Manipulator) Close() {
	if m.solver != nil {
		m.solver.Close()
	}
}

// HoverJoint highlights the links of a joint in forward and select mode.
func (m *Manipulator) HoverJoint(name string) {
	if !m.state.Hoverable() || m.state.Hovered == name {
		return
	}
	m.UnhoverJoint()
	m.state = m.state.Hover(name)
	m.presenter.HighlightJoint(name, false, HoverColor)
}

func (m *Manipulator) UnhoverJoint() {
	if m.state.Hovered == "" {
		return
	}
	m.presenter.HighlightJoint(m.state.Hovered, true, 0)
	m.state = m.state.Unhover()
}

// SelectJoint selects a joint in select mode, or deselects it when it is
// already selected. Listeners receive the new selection, empty when cleared.
func (m *Manipulator) SelectJoint(name string) {
	if m.state.Mode != control.ModeSelect {
		return
	}
	m.presenter.ResetEmission()
	next, selected := m.state.ToggleSelect(name)
	m.state = next
	if selected {
		m.presenter.HighlightJoint(name, false, SelectionColor)
	}
	for _, fn := range m.onSelect {
		fn(m.state.Selected)
	}
}

// Dragging reports whether the pointer is captured by a handle or a joint.
func (m *Manipulator) Dragging() bool {
	return m.drag != nil || m.target.Dragging() || m.world.Dragging()
}

// OrbitEnabled is false while the pointer hovers a joint or drags.
func (m *Manipulator) OrbitEnabled() bool {
	return !m.Dragging() && m.state.Hovered == ""
}

// pickJoint returns the closest movable joint whose links are under the ray.
func (m *Manipulator) pickJoint(ray control.Ray) (*kinematics.Joint, bool) {
	link, _, ok := m.presenter.Pick(ray)
	if !ok {
		return nil, false
	}
	return m.presenter.Robot().MovableAncestor(link)
}

// PointerDown starts a drag or a selection. It returns true when the press
// was consumed.
func (m *Manipulator) PointerDown(ray control.Ray) bool {
	switch m.state.Mode {
	case control.ModeInverse:
		if m.world.Visible && m.world.BeginDrag(ray) {
			return true
		}
		return m.target.Visible && m.target.BeginDrag(ray)
	case control.ModeForward:
		j, ok := m.pickJoint(ray)
		if !ok {
			return false
		}
		m.HoverJoint(j.Name)
		return m.beginJointDrag(j, ray)
	case control.ModeSelect:
		j, ok := m.pickJoint(ray)
		if !ok {
			return false
		}
		m.SelectJoint(j.Name)
		return true
	}
	return false
}

// PointerMove continues a drag, or updates the hover highlight.
func (m *Manipulator) PointerMove(ray control.Ray) {
	switch {
	case m.world.Dragging():
		if m.world.Drag(ray) {
			m.worldOffset = m.world.DragOffset()
		}
	case m.target.Dragging():
		m.target.Drag(ray)
	case m.drag != nil:
		m.dragJoint(ray)
	case m.state.Hoverable():
		if j, ok := m.pickJoint(ray); ok {
			m.HoverJoint(j.Name)
		} else {
			m.UnhoverJoint()
		}
	}
}

func (m *Manipulator) PointerUp() {
	m.target.EndDrag()
	m.releaseWorldHandle()
	m.endJointDrag()
}

// jointFrame is the joint's pivot and world axis.
func jointFrame(j *kinematics.Joint) (mgl64.Vec3, mgl64.Vec3) {
	frame := j.Parent.World.Mul4(j.Origin)
	pivot := frame.Col(3).Vec3()
	axis := frame.Mul4x1(j.Axis.Vec4(0)).Vec3().Normalize()
	return pivot, axis
}

func (m *Manipulator) beginJointDrag(j *kinematics.Joint, ray control.Ray) bool {
	pivot, axis := jointFrame(j)
	d := &jointDrag{joint: j, pivot: pivot, axis: axis, startValue: j.Value()}

	switch j.Type {
	case kinematics.JointPrismatic:
		_, s, _ := control.ClosestPoints(ray.Origin, ray.Dir, pivot, axis)
		d.startS = s
	default:
		t, ok := control.RayPlane(ray, pivot, axis)
		if !ok {
			return false
		}
		v := ray.At(t).Sub(pivot)
		if v.Len() < 1e-9 {
			return false
		}
		d.startVec = v.Normalize()
	}
	m.drag = d
	return true
}

func (m *Manipulator) dragJoint(ray control.Ray) {
	d := m.drag
	value := d.startValue
	switch d.joint.Type {
	case kinematics.JointPrismatic:
		_, s, _ := control.ClosestPoints(ray.Origin, ray.Dir, d.pivot, d.axis)
		value += s - d.startS
	default:
		t, ok := control.RayPlane(ray, d.pivot, d.axis)
		if !ok || t <= 0 {
			return
		}
		v := ray.At(t).Sub(d.pivot)
		if v.Len() < 1e-9 {
			return
		}
		value += control.SignedAngle(d.startVec, v.Normalize(), d.axis)
	}
	m.presenter.SetJointValue(d.joint.Name, value, false)
}

func (m *Manipulator) endJointDrag() {
	m.drag = nil
}
