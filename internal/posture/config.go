package posture

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid posture configuration")

// Config holds the geometry thresholds used by the Classifier.
//
// Tolerances named *Tolerance are fractions of the torso length (shoulder
// center to hip center), so they do not depend on camera resolution.
type Config struct {
	// OverheadOffset is how far above the nose the level-5 anchor sits.
	OverheadOffset float64 `yaml:"overhead_offset"`
	// ImpingementLift is how far the wrists must rise above the shoulders
	// before the shoulder-impingement guard is evaluated.
	ImpingementLift float64 `yaml:"impingement_lift"`
	// ShoulderPainZone is the arm angle from vertical (degrees) above which
	// a raise is considered unsafe.
	ShoulderPainZone float64 `yaml:"shoulder_pain_zone"`

	ShoulderLevelTolerance float64 `yaml:"shoulder_level_tolerance"`
	HeadAlignTolerance     float64 `yaml:"head_align_tolerance"`
	HipLevelTolerance      float64 `yaml:"hip_level_tolerance"`
	KneeAlignTolerance     float64 `yaml:"knee_align_tolerance"`
	BalanceTolerance       float64 `yaml:"balance_tolerance"`

	// MaxBackAngle is the largest back lean from vertical (degrees) accepted
	// during a squat.
	MaxBackAngle float64 `yaml:"max_back_angle"`

	// StretchAngles are the minimum lateral bend angles for levels 1..3.
	StretchAngles []float64 `yaml:"stretch_angles"`
	// SquatKneeAngles are the maximum knee angles for levels 1..3.
	SquatKneeAngles []float64 `yaml:"squat_knee_angles"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		OverheadOffset:         20,
		ImpingementLift:        100,
		ShoulderPainZone:       160,
		ShoulderLevelTolerance: 0.15,
		HeadAlignTolerance:     0.15,
		HipLevelTolerance:      0.10,
		KneeAlignTolerance:     0.20,
		BalanceTolerance:       0.15,
		MaxBackAngle:           30,
		StretchAngles:          []float64{15, 30, 45},
		SquatKneeAngles:        []float64{165, 150, 135},
	}
}

// Validate checks that thresholds are usable and monotonic.
func (c Config) Validate() error {
	if c.OverheadOffset < 0 {
		return fmt.Errorf("%w: overhead offset must not be negative", ErrInvalidConfig)
	}
	if c.ImpingementLift < 0 {
		return fmt.Errorf("%w: impingement lift must not be negative", ErrInvalidConfig)
	}
	if c.ShoulderPainZone <= 0 || c.ShoulderPainZone > 180 {
		return fmt.Errorf("%w: shoulder pain zone must be in (0, 180]", ErrInvalidConfig)
	}
	for name, v := range map[string]float64{
		"shoulder level": c.ShoulderLevelTolerance,
		"head align":     c.HeadAlignTolerance,
		"hip level":      c.HipLevelTolerance,
		"knee align":     c.KneeAlignTolerance,
		"balance":        c.BalanceTolerance,
	} {
		if v <= 0 {
			return fmt.Errorf("%w: %s tolerance must be positive", ErrInvalidConfig, name)
		}
	}
	if c.MaxBackAngle <= 0 || c.MaxBackAngle >= 180 {
		return fmt.Errorf("%w: max back angle must be in (0, 180)", ErrInvalidConfig)
	}

	if len(c.StretchAngles) == 0 {
		return fmt.Errorf("%w: stretch angles are empty", ErrInvalidConfig)
	}
	for i, a := range c.StretchAngles {
		if a <= 0 || a >= 180 {
			return fmt.Errorf("%w: stretch angle %v out of range", ErrInvalidConfig, a)
		}
		if i > 0 && a <= c.StretchAngles[i-1] {
			return fmt.Errorf("%w: stretch angles must increase", ErrInvalidConfig)
		}
	}

	if len(c.SquatKneeAngles) == 0 {
		return fmt.Errorf("%w: squat knee angles are empty", ErrInvalidConfig)
	}
	for i, a := range c.SquatKneeAngles {
		if a <= 0 || a >= 180 {
			return fmt.Errorf("%w: squat knee angle %v out of range", ErrInvalidConfig, a)
		}
		if i > 0 && a >= c.SquatKneeAngles[i-1] {
			return fmt.Errorf("%w: squat knee angles must decrease", ErrInvalidConfig)
		}
	}

	return nil
}
