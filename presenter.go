package armviz

import (
	"context"
	"math"
	"sort"

	"github.com/gekko3d/armviz/control"
	"github.com/gekko3d/armviz/kinematics"
	"github.com/gekko3d/armviz/urdf"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultEndEffector = "tool_dummy"

	SelectionColor uint32 = 0xff6666
	HoverColor     uint32 = 0x606060
)

func DefaultMaterial() kinematics.Material {
	return kinematics.Material{
		Color:     HexColor(0x404040),
		Roughness: 0.5,
		Metalness: 0.5,
	}
}

// PresenterOptions configure how a robot is shown once loaded.
type PresenterOptions struct {
	EndEffector string
	// Offset is subtracted from every position passed to SetPosition.
	Offset       mgl64.Vec3
	IgnoreLimits bool
	Material     kinematics.Material
	// KeepDescriptionColors uses the colors declared in the description
	// instead of Material's color.
	KeepDescriptionColors bool
}

func DefaultPresenterOptions() PresenterOptions {
	return PresenterOptions{
		EndEffector:  DefaultEndEffector,
		IgnoreLimits: true,
		Material:     DefaultMaterial(),
	}
}

// EndEffectorPose is a snapshot of the end effector link's world transform.
type EndEffectorPose struct {
	Position   mgl64.Vec3
	Rotation   mgl64.Vec3 // XYZ Euler, radians
	Quaternion mgl64.Quat
	Matrix     mgl64.Mat4
}

// Presenter owns a loaded robot, its appearance and its pose. Every call is
// made from the frame loop; loading happens in the background and is adopted
// by Poll.
type Presenter struct {
	opts   PresenterOptions
	log    Logger
	assets *AssetServer

	pending     AssetId
	loaded      bool
	robot       *kinematics.Robot
	endEffector *kinematics.Link
	materials   map[string]*kinematics.Material
	onLoaded    []func()
}

// NewPresenter returns an empty presenter. assets may be nil.
func NewPresenter(assets *AssetServer, opts PresenterOptions, log Logger) *Presenter {
	if assets == nil {
		assets = NewAssetServer()
	}
	if log == nil {
		log = NewNopLogger()
	}
	if opts.EndEffector == "" {
		opts.EndEffector = DefaultEndEffector
	}
	return &Presenter{
		opts:      opts,
		log:       log,
		assets:    assets,
		materials: make(map[string]*kinematics.Material),
	}
}

// Load starts loading the description at path. The robot appears on the
// first Poll after the file is parsed.
func (p *Presenter) Load(ctx context.Context, path string) {
	p.log.Infof("Loading robot %s", path)
	p.pending = p.assets.LoadRobot(ctx, path)
}

// Poll adopts a finished load. It returns true on the call that made the
// robot available.
func (p *Presenter) Poll() bool {
	if p.pending == "" {
		return false
	}
	for _, id := range p.assets.Poll() {
		if id != p.pending {
			continue
		}
		p.pending = ""
		asset, _ := p.assets.Robot(id)
		p.assets.Release(id)
		if asset.State == AssetFailed {
			p.log.Errorf("Robot %s failed to load: %v", asset.Path, asset.Err)
			return false
		}
		if err := p.LoadDescription(asset.Description); err != nil {
			p.log.Errorf("Robot %s: %v", asset.Path, err)
			return false
		}
		return true
	}
	return false
}

// LoadDescription builds and adopts an already parsed description.
func (p *Presenter) LoadDescription(desc *urdf.Robot) error {
	robot, err := kinematics.Build(desc)
	if err != nil {
		return err
	}
	p.adopt(robot)
	return nil
}

func (p *Presenter) adopt(robot *kinematics.Robot) {
	// descriptions are Z-up, the scene is Y-up
	robot.Rotation = mgl64.QuatRotate(-math.Pi/2, kinematics.AxisX)

	for _, j := range robot.MovableJoints() {
		j.IgnoreLimits = p.opts.IgnoreLimits
	}

	p.materials = make(map[string]*kinematics.Material)
	for _, l := range robot.Links() {
		if len(l.Visuals) == 0 {
			continue
		}
		m := p.opts.Material
		if p.opts.KeepDescriptionColors && l.Visuals[0].HasColor {
			m.Color = l.Visuals[0].Material.Color
		}
		p.materials[l.Name] = &m
	}

	ee, ok := robot.Link(p.opts.EndEffector)
	if !ok {
		ee = robot.DeepestLink()
		p.log.Warnf("The link %q does not exist, using %q as end effector.", p.opts.EndEffector, ee.Name)
	}

	robot.UpdateMatrixWorld()
	p.robot = robot
	p.endEffector = ee
	p.loaded = true
	p.log.Infof("Robot %q loaded: %d links, %d joints", robot.Name, len(robot.Links()), len(robot.Joints()))

	for _, fn := range p.onLoaded {
		fn()
	}
}

// OnLoaded registers fn to run once the robot is available. It runs
// immediately when the robot is already loaded.
func (p *Presenter) OnLoaded(fn func()) {
	p.onLoaded = append(p.onLoaded, fn)
	if p.loaded {
		fn()
	}
}

func (p *Presenter) Loaded() bool { return p.loaded }

// Robot is nil until loaded.
func (p *Presenter) Robot() *kinematics.Robot { return p.robot }

func (p *Presenter) EndEffectorLink() *kinematics.Link { return p.endEffector }

func (p *Presenter) Options() PresenterOptions { return p.opts }

func (p *Presenter) ready() bool {
	if !p.loaded {
		p.log.Warnf("Robot is still loading.")
		return false
	}
	return true
}

func (p *Presenter) movable(name string) (*kinematics.Joint, bool) {
	j, ok := p.robot.Joint(name)
	if !ok {
		p.log.Warnf("The joint %q does not exist.", name)
		return nil, false
	}
	if !j.Movable() {
		p.log.Warnf("The joint %q is fixed.", name)
		return nil, false
	}
	return j, true
}

func toRadians(v float64, deg bool) float64 {
	if deg {
		return mgl64.DegToRad(v)
	}
	return v
}

// SetConfiguration assigns joint values by name. Unknown and fixed joints
// are skipped with a warning.
func (p *Presenter) SetConfiguration(cfg map[string]float64, deg bool) {
	if !p.ready() {
		return
	}
	names := make([]string, 0, len(cfg))
	for name := range cfg {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if j, ok := p.movable(name); ok {
			j.SetValue(toRadians(cfg[name], deg))
		}
	}
	p.robot.UpdateMatrixWorld()
}

// SetConfigurationList assigns values to the non-fixed joints in declaration
// order. Extra values are ignored.
func (p *Presenter) SetConfigurationList(values []float64, deg bool) {
	if !p.ready() {
		return
	}
	for i, j := range p.robot.MovableJoints() {
		if i >= len(values) {
			break
		}
		j.SetValue(toRadians(values[i], deg))
	}
	p.robot.UpdateMatrixWorld()
}

func (p *Presenter) SetJointValue(name string, v float64, deg bool) {
	if !p.ready() {
		return
	}
	if j, ok := p.movable(name); ok {
		j.SetValue(toRadians(v, deg))
	}
	p.robot.UpdateMatrixWorld()
}

// Configuration returns the values of every non-fixed joint.
func (p *Presenter) Configuration() map[string]float64 {
	cfg := map[string]float64{}
	if !p.ready() {
		return cfg
	}
	for _, j := range p.robot.MovableJoints() {
		cfg[j.Name] = j.Value()
	}
	return cfg
}

func (p *Presenter) ResetRobot() {
	if !p.ready() {
		return
	}
	for _, j := range p.robot.MovableJoints() {
		j.SetValue(0)
	}
	p.robot.UpdateMatrixWorld()
}

// SetPosition places the robot base at pos minus the configured offset.
func (p *Presenter) SetPosition(pos mgl64.Vec3) {
	if !p.ready() {
		return
	}
	p.robot.Position = pos.Sub(p.opts.Offset)
	p.robot.UpdateMatrixWorld()
}

func (p *Presenter) Position() mgl64.Vec3 {
	if p.robot == nil {
		return mgl64.Vec3{}
	}
	return p.robot.Position
}

// SetRotation sets the base orientation from XYZ Euler angles.
func (p *Presenter) SetRotation(euler mgl64.Vec3, deg bool) {
	if !p.ready() {
		return
	}
	if deg {
		euler = mgl64.Vec3{mgl64.DegToRad(euler[0]), mgl64.DegToRad(euler[1]), mgl64.DegToRad(euler[2])}
	}
	p.robot.Rotation = kinematics.EulerXYZToQuat(euler)
	p.robot.UpdateMatrixWorld()
}

// Rotation is the base orientation as XYZ Euler angles in radians.
func (p *Presenter) Rotation() mgl64.Vec3 {
	if p.robot == nil {
		return mgl64.Vec3{}
	}
	return kinematics.QuatToEulerXYZ(p.robot.Rotation)
}

// LookAt turns the robot base towards a world point.
func (p *Presenter) LookAt(target mgl64.Vec3) {
	if !p.ready() {
		return
	}
	p.robot.LookAt(target)
	p.robot.UpdateMatrixWorld()
}

func (p *Presenter) EndEffector() (EndEffectorPose, bool) {
	if !p.loaded {
		return EndEffectorPose{}, false
	}
	m := p.endEffector.World
	pos, q := kinematics.Decompose(m)
	return EndEffectorPose{
		Position:   pos,
		Rotation:   kinematics.MatToEulerXYZ(m),
		Quaternion: q,
		Matrix:     m,
	}, true
}

// Material returns the material shared by the visuals of link.
func (p *Presenter) Material(link string) (kinematics.Material, bool) {
	m, ok := p.materials[link]
	if !ok {
		return kinematics.Material{}, false
	}
	return *m, true
}

func (p *Presenter) material(link string) (*kinematics.Material, bool) {
	if !p.ready() {
		return nil, false
	}
	m, ok := p.materials[link]
	if !ok {
		p.log.Warnf("The link %q does not exist.", link)
	}
	return m, ok
}

// SetColor sets the color of a link from RGB components in [0, 1].
func (p *Presenter) SetColor(link string, rgb [3]float32) {
	if m, ok := p.material(link); ok {
		m.Color = rgb
	}
}

func (p *Presenter) SetColorHex(link string, hex uint32) {
	p.SetColor(link, HexColor(hex))
}

func (p *Presenter) SetColors(colors map[string][3]float32) {
	for link, rgb := range colors {
		p.SetColor(link, rgb)
	}
}

// SetMaterial replaces the material of a link. The current highlight is
// kept.
func (p *Presenter) SetMaterial(link string, mat kinematics.Material) {
	if m, ok := p.material(link); ok {
		emissive := m.Emissive
		*m = mat
		m.Emissive = emissive
	}
}

func (p *Presenter) SetMaterials(materials map[string]kinematics.Material) {
	for link, mat := range materials {
		p.SetMaterial(link, mat)
	}
}

// HighlightJoint sets the emissive color of every link moved directly by the
// joint, stopping at the next non-fixed joint. Links showing the selection
// color are left alone. undo clears the emissive instead.
func (p *Presenter) HighlightJoint(joint string, undo bool, color uint32) {
	if !p.loaded {
		return
	}
	j, ok := p.robot.Joint(joint)
	if !ok {
		return
	}
	emissive := HexColor(color)
	if undo {
		emissive = [3]float32{}
	}
	for _, l := range p.robot.Subtree(j) {
		m, ok := p.materials[l.Name]
		if !ok || ColorHex(m.Emissive) == SelectionColor {
			continue
		}
		m.Emissive = emissive
	}
}

func (p *Presenter) ResetEmission() {
	for _, m := range p.materials {
		m.Emissive = [3]float32{}
	}
}

// Pick returns the closest link whose visuals are hit by the ray.
func (p *Presenter) Pick(ray control.Ray) (*kinematics.Link, float64, bool) {
	if !p.loaded {
		return nil, 0, false
	}
	var best *kinematics.Link
	bestT := math.Inf(1)
	for _, l := range p.robot.Links() {
		for _, v := range l.Visuals {
			model := l.World.Mul4(v.Origin)
			if t, ok := rayBox(ray, model, VisualExtents(v).Mul(0.5)); ok && t < bestT {
				best, bestT = l, t
			}
		}
	}
	return best, bestT, best != nil
}

// VisualExtents is the size of the box drawn for a visual. Meshes are not
// loaded and show as small boxes scaled by the mesh scale.
func VisualExtents(v kinematics.Visual) mgl64.Vec3 {
	switch v.Shape {
	case kinematics.ShapeBox:
		return v.Size
	case kinematics.ShapeCylinder:
		return mgl64.Vec3{2 * v.Size[0], 2 * v.Size[1], v.Size[2]}
	case kinematics.ShapeSphere:
		return v.Size.Mul(2)
	default:
		return v.Size.Mul(0.05)
	}
}

// rayBox intersects a ray with an oriented box given by a rigid model
// transform and half extents.
func rayBox(ray control.Ray, model mgl64.Mat4, half mgl64.Vec3) (float64, bool) {
	inv := model.Inv()
	o := mgl64.TransformCoordinate(ray.Origin, inv)
	d := mgl64.TransformNormal(ray.Dir, inv)

	tmin, tmax := math.Inf(-1), math.Inf(1)
	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) < 1e-12 {
			if o[i] < -half[i] || o[i] > half[i] {
				return 0, false
			}
			continue
		}
		t1 := (-half[i] - o[i]) / d[i]
		t2 := (half[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return 0, true
	}
	return tmin, true
}

// HexColor converts 0xRRGGBB to RGB in [0, 1].
func HexColor(hex uint32) [3]float32 {
	return [3]float32{
		float32((hex>>16)&0xff) / 255,
		float32((hex>>8)&0xff) / 255,
		float32(hex&0xff) / 255,
	}
}

func ColorHex(rgb [3]float32) uint32 {
	var out uint32
	for _, c := range rgb {
		v := uint32(math.Round(mgl64.Clamp(float64(c), 0, 1) * 255))
		out = out<<8 | v
	}
	return out
}
