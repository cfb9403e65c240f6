package exercise

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/physioduel/internal/hold"
)

// ErrInvalidConfig is returned when an exercise configuration is unusable.
var ErrInvalidConfig = errors.New("invalid exercise configuration")

// ArmRaiseConfig configures the arm-raise machine.
type ArmRaiseConfig struct {
	HoldTime time.Duration `yaml:"hold_time"`
	Cooldown time.Duration `yaml:"cooldown"`
	// MaxLevel is the level that triggers a full attack once held (1..5).
	MaxLevel   int     `yaml:"max_level"`
	HPPerLevel float64 `yaml:"hp_per_level"`
}

// StretchConfig configures the side-stretch machines.
type StretchConfig struct {
	HoldTime       time.Duration `yaml:"hold_time"`
	Cooldown       time.Duration `yaml:"cooldown"`
	HealPerLevel   float64       `yaml:"heal_per_level"`
	PointsPerLevel int           `yaml:"points_per_level"`
}

// SquatConfig configures the squat machine.
type SquatConfig struct {
	HoldTime       time.Duration `yaml:"hold_time"`
	Cooldown       time.Duration `yaml:"cooldown"`
	HealPerLevel   float64       `yaml:"heal_per_level"`
	PointsPerLevel int           `yaml:"points_per_level"`
	// ReminderDelay is how long a player may stay standing before a
	// one-shot reminder is sent.
	ReminderDelay time.Duration `yaml:"reminder_delay"`
}

// Config groups the configuration of every exercise machine.
type Config struct {
	ArmRaise    ArmRaiseConfig `yaml:"arm_raise"`
	SideStretch StretchConfig  `yaml:"side_stretch"`
	Squat       SquatConfig    `yaml:"squat"`
}

// DefaultConfig returns the default pacing, tuned for elderly players.
func DefaultConfig() Config {
	return Config{
		ArmRaise: ArmRaiseConfig{
			HoldTime:   1500 * time.Millisecond,
			Cooldown:   time.Second,
			MaxLevel:   5,
			HPPerLevel: 4,
		},
		SideStretch: StretchConfig{
			HoldTime:       2 * time.Second,
			Cooldown:       time.Second,
			HealPerLevel:   5,
			PointsPerLevel: 10,
		},
		Squat: SquatConfig{
			HoldTime:       3 * time.Second,
			Cooldown:       2 * time.Second,
			HealPerLevel:   8,
			PointsPerLevel: 15,
			ReminderDelay:  5 * time.Second,
		},
	}
}

// Validate checks every machine configuration.
func (c Config) Validate() error {
	a := c.ArmRaise
	if err := (hold.Policy{HoldTime: a.HoldTime, CompleteAt: a.MaxLevel}).Validate(); err != nil {
		return fmt.Errorf("%w: arm raise: %v", ErrInvalidConfig, err)
	}
	if a.MaxLevel < 1 || a.MaxLevel > 5 {
		return fmt.Errorf("%w: arm raise max level must be in 1..5, got %d", ErrInvalidConfig, a.MaxLevel)
	}
	if a.HPPerLevel <= 0 {
		return fmt.Errorf("%w: arm raise hp per level must be positive", ErrInvalidConfig)
	}
	if a.Cooldown < 0 {
		return fmt.Errorf("%w: arm raise cooldown must not be negative", ErrInvalidConfig)
	}

	s := c.SideStretch
	if err := (hold.Policy{HoldTime: s.HoldTime}).Validate(); err != nil {
		return fmt.Errorf("%w: side stretch: %v", ErrInvalidConfig, err)
	}
	if s.HealPerLevel <= 0 || s.PointsPerLevel < 0 || s.Cooldown < 0 {
		return fmt.Errorf("%w: side stretch rewards and cooldown must not be negative", ErrInvalidConfig)
	}

	q := c.Squat
	if err := (hold.Policy{HoldTime: q.HoldTime}).Validate(); err != nil {
		return fmt.Errorf("%w: squat: %v", ErrInvalidConfig, err)
	}
	if q.HealPerLevel <= 0 || q.PointsPerLevel < 0 || q.Cooldown < 0 {
		return fmt.Errorf("%w: squat rewards and cooldown must not be negative", ErrInvalidConfig)
	}
	if q.ReminderDelay <= 0 {
		return fmt.Errorf("%w: squat reminder delay must be positive", ErrInvalidConfig)
	}
	return nil
}
