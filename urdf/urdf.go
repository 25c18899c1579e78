package urdf

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var (
	ErrNoRoot        = errors.New("urdf: robot has no root link")
	ErrMultipleRoots = errors.New("urdf: robot has more than one root link")
)

// Robot is the XML document of a URDF file. Only the elements needed to build
// a kinematic tree and draw primitive visuals are decoded.
type Robot struct {
	XMLName   xml.Name   `xml:"robot"`
	Name      string     `xml:"name,attr"`
	Links     []Link     `xml:"link"`
	Joints    []Joint    `xml:"joint"`
	Materials []Material `xml:"material"`
}

type Link struct {
	Name    string   `xml:"name,attr"`
	Visuals []Visual `xml:"visual"`
}

type Visual struct {
	Name     string    `xml:"name,attr"`
	Origin   *Origin   `xml:"origin"`
	Geometry Geometry  `xml:"geometry"`
	Material *Material `xml:"material"`
}

type Geometry struct {
	Box      *Box      `xml:"box"`
	Cylinder *Cylinder `xml:"cylinder"`
	Sphere   *Sphere   `xml:"sphere"`
	Mesh     *Mesh     `xml:"mesh"`
}

type Box struct {
	Size string `xml:"size,attr"`
}

type Cylinder struct {
	Radius float64 `xml:"radius,attr"`
	Length float64 `xml:"length,attr"`
}

type Sphere struct {
	Radius float64 `xml:"radius,attr"`
}

type Mesh struct {
	Filename string `xml:"filename,attr"`
	Scale    string `xml:"scale,attr"`
}

type Material struct {
	Name  string `xml:"name,attr"`
	Color *Color `xml:"color"`
}

type Color struct {
	RGBA string `xml:"rgba,attr"`
}

type Joint struct {
	Name   string  `xml:"name,attr"`
	Type   string  `xml:"type,attr"`
	Origin *Origin `xml:"origin"`
	Parent LinkRef `xml:"parent"`
	Child  LinkRef `xml:"child"`
	Axis   *Axis   `xml:"axis"`
	Limit  *Limit  `xml:"limit"`
}

type LinkRef struct {
	Link string `xml:"link,attr"`
}

type Origin struct {
	XYZ string `xml:"xyz,attr"`
	RPY string `xml:"rpy,attr"`
}

type Axis struct {
	XYZ string `xml:"xyz,attr"`
}

type Limit struct {
	Lower    float64 `xml:"lower,attr"`
	Upper    float64 `xml:"upper,attr"`
	Effort   float64 `xml:"effort,attr"`
	Velocity float64 `xml:"velocity,attr"`
}

// Load reads and parses the URDF file at path.
func Load(ctx context.Context, path string) (*Robot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("urdf: open %s: %w", path, err)
	}
	defer f.Close()

	robot, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("urdf: %s: %w", path, err)
	}
	return robot, ctx.Err()
}

// Parse decodes a URDF document and validates its link/joint structure.
func Parse(r io.Reader) (*Robot, error) {
	var robot Robot
	if err := xml.NewDecoder(r).Decode(&robot); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := robot.Validate(); err != nil {
		return nil, err
	}
	return &robot, nil
}

// Validate checks that names are unique, that joints reference declared links
// and that every link hangs off exactly one root.
func (r *Robot) Validate() error {
	links := make(map[string]bool, len(r.Links))
	for _, l := range r.Links {
		if l.Name == "" {
			return errors.New("urdf: link without a name")
		}
		if links[l.Name] {
			return fmt.Errorf("urdf: duplicate link %q", l.Name)
		}
		links[l.Name] = true
	}

	joints := make(map[string]bool, len(r.Joints))
	children := make(map[string]string, len(r.Joints))
	for _, j := range r.Joints {
		if joints[j.Name] {
			return fmt.Errorf("urdf: duplicate joint %q", j.Name)
		}
		joints[j.Name] = true
		if !links[j.Parent.Link] {
			return fmt.Errorf("urdf: joint %q references unknown parent link %q", j.Name, j.Parent.Link)
		}
		if !links[j.Child.Link] {
			return fmt.Errorf("urdf: joint %q references unknown child link %q", j.Name, j.Child.Link)
		}
		if other, ok := children[j.Child.Link]; ok {
			return fmt.Errorf("urdf: link %q is the child of both %q and %q", j.Child.Link, other, j.Name)
		}
		children[j.Child.Link] = j.Name
	}

	root, err := r.Root()
	if err != nil {
		return err
	}

	// joints closing a loop pass the checks above but are cut off from the root
	next := make(map[string][]string, len(r.Joints))
	for _, j := range r.Joints {
		next[j.Parent.Link] = append(next[j.Parent.Link], j.Child.Link)
	}
	seen := map[string]bool{root: true}
	queue := []string{root}
	for len(queue) > 0 {
		l := queue[0]
		queue = queue[1:]
		for _, c := range next[l] {
			if !seen[c] {
				seen[c] = true
				queue = append(queue, c)
			}
		}
	}
	for _, l := range r.Links {
		if !seen[l.Name] {
			return fmt.Errorf("urdf: link %q is not reachable from root %q", l.Name, root)
		}
	}
	return nil
}

// Root returns the name of the only link that is not a joint child.
func (r *Robot) Root() (string, error) {
	children := make(map[string]bool, len(r.Joints))
	for _, j := range r.Joints {
		children[j.Child.Link] = true
	}

	root := ""
	for _, l := range r.Links {
		if children[l.Name] {
			continue
		}
		if root != "" {
			return "", ErrMultipleRoots
		}
		root = l.Name
	}
	if root == "" {
		return "", ErrNoRoot
	}
	return root, nil
}

// MaterialColor resolves a visual material to RGBA, falling back to the
// robot-level material of the same name.
func (r *Robot) MaterialColor(m *Material) ([4]float64, bool) {
	if m == nil {
		return [4]float64{}, false
	}
	if m.Color != nil {
		c, err := parseFloats(m.Color.RGBA, 4)
		if err == nil {
			return [4]float64{c[0], c[1], c[2], c[3]}, true
		}
	}
	for _, g := range r.Materials {
		if g.Name == m.Name && g.Color != nil {
			c, err := parseFloats(g.Color.RGBA, 4)
			if err == nil {
				return [4]float64{c[0], c[1], c[2], c[3]}, true
			}
		}
	}
	return [4]float64{}, false
}

// Values returns the origin translation and roll-pitch-yaw; a nil origin is identity.
func (o *Origin) Values() (xyz, rpy [3]float64, err error) {
	if o == nil {
		return xyz, rpy, nil
	}
	if xyz, err = ParseVec3(o.XYZ, [3]float64{}); err != nil {
		return xyz, rpy, fmt.Errorf("origin xyz: %w", err)
	}
	if rpy, err = ParseVec3(o.RPY, [3]float64{}); err != nil {
		return xyz, rpy, fmt.Errorf("origin rpy: %w", err)
	}
	return xyz, rpy, nil
}

// Vector returns the joint axis, defaulting to +X.
func (a *Axis) Vector() ([3]float64, error) {
	if a == nil {
		return [3]float64{1, 0, 0}, nil
	}
	return ParseVec3(a.XYZ, [3]float64{1, 0, 0})
}

// ParseVec3 parses a whitespace separated triple. An empty string yields def.
func ParseVec3(s string, def [3]float64) ([3]float64, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	v, err := parseFloats(s, 3)
	if err != nil {
		return def, err
	}
	return [3]float64{v[0], v[1], v[2]}, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	fields := strings.Fields(s)
	if len(fields) != n {
		return nil, fmt.Errorf("expected %d values, got %q", n, s)
	}
	out := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", f, err)
		}
		out[i] = v
	}
	return out, nil
}
