package armviz

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
)

// PosePreset is a saved robot pose: joint values plus base placement.
type PosePreset struct {
	Robot    string             `json:"robot"`
	Joints   map[string]float64 `json:"joints"`
	Position mgl64.Vec3         `json:"position"`
	Rotation mgl64.Vec3         `json:"rotation"` // XYZ Euler, radians
}

// CapturePose records the current pose of the presenter's robot.
func CapturePose(p *Presenter) (PosePreset, error) {
	if !p.Loaded() {
		return PosePreset{}, fmt.Errorf("no robot loaded")
	}
	return PosePreset{
		Robot:    p.Robot().Name,
		Joints:   p.Configuration(),
		Position: p.Position().Add(p.Options().Offset),
		Rotation: p.Rotation(),
	}, nil
}

// Apply poses the robot through the manipulator so the target follows.
func (pp PosePreset) Apply(m *Manipulator) {
	p := m.Presenter()
	if pp.Robot != "" && p.Loaded() && pp.Robot != p.Robot().Name {
		m.log.Warnf("The pose was saved for %q, not %q.", pp.Robot, p.Robot().Name)
	}
	m.SetPosition(pp.Position)
	m.SetRotation(pp.Rotation, false)
	m.SetConfiguration(pp.Joints, false)
}

func SavePose(p *Presenter, filename string) error {
	pose, err := CapturePose(p)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(pose, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("save pose: %w", err)
	}
	return nil
}

func LoadPose(filename string) (PosePreset, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return PosePreset{}, fmt.Errorf("load pose: %w", err)
	}
	var pose PosePreset
	if err := json.Unmarshal(data, &pose); err != nil {
		return PosePreset{}, fmt.Errorf("parse pose %s: %w", filename, err)
	}
	return pose, nil
}

// PoseModule applies the pose in Path once the robot has loaded and saves
// the current pose back to Path on the save_pose key.
type PoseModule struct {
	Path string
}

func (mod PoseModule) Install(app *App, cmd *Commands) {
	m, ok := Resource[Manipulator](app)
	if !ok {
		panic("PoseModule requires ManipulationModule")
	}
	log := app.Logger()
	if mod.Path == "" {
		return
	}
	notify := func(text string) {
		log.Infof("%s", text)
		if hud, ok := Resource[Hud](app); ok {
			hud.Notify(text)
		}
	}

	if _, err := os.Stat(mod.Path); err == nil {
		m.Presenter().OnLoaded(func() {
			pose, err := LoadPose(mod.Path)
			if err != nil {
				log.Errorf("%v", err)
				return
			}
			pose.Apply(m)
			notify("Pose loaded from " + mod.Path)
		})
	}

	m.OnSavePose(func() {
		if err := SavePose(m.Presenter(), mod.Path); err != nil {
			log.Errorf("%v", err)
			return
		}
		notify("Pose saved to " + mod.Path)
	})
}
