package ik

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Options tune the damped least squares solver.
type Options struct {
	UseSVD                       bool    `mapstructure:"useSVD" yaml:"useSVD"`
	MaxIterations                int     `mapstructure:"maxIterations" yaml:"maxIterations"`
	StallThreshold               float64 `mapstructure:"stallThreshold" yaml:"stallThreshold"`
	DivergeThreshold             float64 `mapstructure:"divergeThreshold" yaml:"divergeThreshold"`
	DampingFactor                float64 `mapstructure:"dampingFactor" yaml:"dampingFactor"`
	RestPoseFactor               float64 `mapstructure:"restPoseFactor" yaml:"restPoseFactor"`
	TranslationConvergeThreshold float64 `mapstructure:"translationConvergeThreshold" yaml:"translationConvergeThreshold"`
	RotationConvergeThreshold    float64 `mapstructure:"rotationConvergeThreshold" yaml:"rotationConvergeThreshold"`
	TranslationFactor            float64 `mapstructure:"translationFactor" yaml:"translationFactor"`
	RotationFactor               float64 `mapstructure:"rotationFactor" yaml:"rotationFactor"`
	TranslationStep              float64 `mapstructure:"translationStep" yaml:"translationStep"`
	RotationStep                 float64 `mapstructure:"rotationStep" yaml:"rotationStep"`
	TranslationErrorClamp        float64 `mapstructure:"translationErrorClamp" yaml:"translationErrorClamp"`
	RotationErrorClamp           float64 `mapstructure:"rotationErrorClamp" yaml:"rotationErrorClamp"`
}

func DefaultOptions() Options {
	return Options{
		UseSVD:                       true,
		MaxIterations:                5,
		StallThreshold:               1e-4,
		DivergeThreshold:             0.01,
		DampingFactor:                0.001,
		RestPoseFactor:               0.01,
		TranslationConvergeThreshold: 1e-3,
		RotationConvergeThreshold:    1e-5,
		TranslationFactor:            1,
		RotationFactor:               1,
		TranslationStep:              1e-3,
		RotationStep:                 1e-3,
		TranslationErrorClamp:        0.1,
		RotationErrorClamp:           0.1,
	}
}

// Merge returns a copy of o with the keys of m applied on top. Unknown keys
// are an error.
func (o Options) Merge(m map[string]any) (Options, error) {
	out := o
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return o, err
	}
	if err := dec.Decode(m); err != nil {
		return o, fmt.Errorf("ik: solver options: %w", err)
	}
	return out, nil
}

// ToMap is the inverse of Merge.
func (o Options) ToMap() (map[string]any, error) {
	out := map[string]any{}
	if err := mapstructure.Decode(o, &out); err != nil {
		return nil, err
	}
	return out, nil
}
