// Package config loads the viewer settings from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/gekko3d/armviz/control"
	"github.com/gekko3d/armviz/ik"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Robot         Robot             `yaml:"robot"`
	Mode          string            `yaml:"mode"`
	ControlMode   string            `yaml:"controlMode"`
	WorldControls bool              `yaml:"worldControls"`
	Worker        bool              `yaml:"worker"`
	Solver        map[string]any    `yaml:"solver"`
	Bindings      map[string]string `yaml:"bindings"`
	Window        Window            `yaml:"window"`
	Log           Log               `yaml:"log"`
	Metrics       Metrics           `yaml:"metrics"`
	Hud           Hud               `yaml:"hud"`
}

type Robot struct {
	Path                  string     `yaml:"path"`
	EndEffector           string     `yaml:"endEffector"`
	Offset                [3]float64 `yaml:"offset"`
	IgnoreLimits          bool       `yaml:"ignoreLimits"`
	KeepDescriptionColors bool       `yaml:"keepDescriptionColors"`
	Pose                  string     `yaml:"pose"` // JSON, see armviz.PosePreset
}

type Window struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	Title    string  `yaml:"title"`
	VSync    bool    `yaml:"vsync"`
	FontSize float64 `yaml:"fontSize"`
}

type Log struct {
	Prefix string `yaml:"prefix"`
	Debug  bool   `yaml:"debug"`
}

type Metrics struct {
	Addr string `yaml:"addr"`
}

type Hud struct {
	ShowJoints bool `yaml:"showJoints"`
}

func Default() Config {
	return Config{
		Robot: Robot{
			EndEffector:  "tool_dummy",
			IgnoreLimits: true,
		},
		Mode:          control.ModeInverse.String(),
		ControlMode:   control.ControlTranslate.String(),
		WorldControls: true,
		Worker:        true,
		Window: Window{
			Width:    1280,
			Height:   720,
			Title:    "armviz",
			VSync:    true,
			FontSize: 24,
		},
		Log: Log{Prefix: "armviz"},
	}
}

// Load reads path on top of Default. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := control.ParseMode(c.Mode); err != nil {
		return err
	}
	if _, err := control.ParseControlMode(c.ControlMode); err != nil {
		return err
	}
	if _, err := c.SolverOptions(); err != nil {
		return err
	}
	if _, err := c.KeyBindings(); err != nil {
		return err
	}
	return nil
}

// SolverOptions merges the solver section onto ik.DefaultOptions.
func (c Config) SolverOptions() (ik.Options, error) {
	return ik.DefaultOptions().Merge(c.Solver)
}

// KeyBindings returns the configured bindings, or the defaults when none
// are set.
func (c Config) KeyBindings() (map[string]control.Action, error) {
	if len(c.Bindings) == 0 {
		return control.DefaultBindings(), nil
	}
	out := make(map[string]control.Action, len(c.Bindings))
	for key, name := range c.Bindings {
		a, err := control.ParseAction(name)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", key, err)
		}
		out[key] = a
	}
	return out, nil
}
