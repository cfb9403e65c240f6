package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/physioduel/internal/exercise"
	"github.com/ayusman/physioduel/internal/posture"
)

// NumPlayers is the number of player slots in a match.
const NumPlayers = 2

var (
	// ErrInvalidConfiguration is returned by New and Config.Validate.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrUnknownExercise is returned when switching to an unknown exercise.
	ErrUnknownExercise = errors.New("unknown exercise")
)

// StreakConfig controls the attack streak multiplier.
type StreakConfig struct {
	Step float64 `yaml:"step"`
	Cap  float64 `yaml:"cap"`
}

// ComebackConfig controls the bonus given to a trailing player.
type ComebackConfig struct {
	// Threshold is the health-fraction gap above which the bonus applies.
	Threshold float64 `yaml:"threshold"`
	Slope     float64 `yaml:"slope"`
	// Cap is the largest amount added to the base bonus of 1.
	Cap float64 `yaml:"cap"`
	// DamageFactor scales the bonus when it divides incoming damage.
	DamageFactor float64 `yaml:"damage_factor"`
}

// ProgressionConfig controls XP and leveling.
type ProgressionConfig struct {
	InitialXPToLevel float64 `yaml:"initial_xp_to_level"`
	Growth           float64 `yaml:"growth"`
	AttackGain       float64 `yaml:"attack_gain"`
	MaxHPGain        float64 `yaml:"max_hp_gain"`
	HealXPShare      float64 `yaml:"heal_xp_share"`
	AttackXPShare    float64 `yaml:"attack_xp_share"`
}

// PowerUpConfig controls power-up spawning and effects.
type PowerUpConfig struct {
	Interval time.Duration `yaml:"interval"`
	Duration time.Duration `yaml:"duration"`
	// HealthGap is the health-fraction difference required for a spawn.
	HealthGap      float64 `yaml:"health_gap"`
	ShieldFactor   float64 `yaml:"shield_factor"`
	StrengthFactor float64 `yaml:"strength_factor"`
	RegenPerSecond float64 `yaml:"regen_per_second"`
}

// Config configures a Game.
type Config struct {
	MaxHP       float64  `yaml:"max_hp"`
	PlayerNames []string `yaml:"player_names"`
	// StretchSides binds each player slot to a side-stretch side.
	StretchSides    []posture.Side `yaml:"stretch_sides"`
	InitialExercise posture.Kind   `yaml:"initial_exercise"`
	// BreakInterval is the session time between break reminders.
	BreakInterval time.Duration `yaml:"break_interval"`

	Posture     posture.Config    `yaml:"posture"`
	Exercises   exercise.Config   `yaml:"exercises"`
	Streak      StreakConfig      `yaml:"streak"`
	Comeback    ComebackConfig    `yaml:"comeback"`
	Progression ProgressionConfig `yaml:"progression"`
	PowerUps    PowerUpConfig     `yaml:"power_ups"`
}

// DefaultConfig returns the default game configuration.
func DefaultConfig() Config {
	return Config{
		MaxHP:           1000,
		PlayerNames:     []string{"Player 1", "Player 2"},
		StretchSides:    []posture.Side{posture.SideLeft, posture.SideRight},
		InitialExercise: posture.KindArmRaise,
		BreakInterval:   5 * time.Minute,
		Posture:         posture.DefaultConfig(),
		Exercises:       exercise.DefaultConfig(),
		Streak:          StreakConfig{Step: 0.1, Cap: 2.0},
		Comeback: ComebackConfig{
			Threshold:    0.3,
			Slope:        1.5,
			Cap:          1.0,
			DamageFactor: 0.75,
		},
		Progression: ProgressionConfig{
			InitialXPToLevel: 100,
			Growth:           1.5,
			AttackGain:       5,
			MaxHPGain:        100,
			HealXPShare:      0.5,
			AttackXPShare:    0.75,
		},
		PowerUps: PowerUpConfig{
			Interval:       30 * time.Second,
			Duration:       10 * time.Second,
			HealthGap:      0.2,
			ShieldFactor:   0.5,
			StrengthFactor: 2,
			RegenPerSecond: 5,
		},
	}
}

// Validate reports the first problem found, wrapped in
// ErrInvalidConfiguration.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
	}

	if c.MaxHP <= 0 {
		return invalid("max hp must be positive")
	}
	if len(c.PlayerNames) != NumPlayers {
		return invalid("expected %d player names, got %d", NumPlayers, len(c.PlayerNames))
	}
	for i, name := range c.PlayerNames {
		if name == "" {
			return invalid("player %d has no name", i+1)
		}
	}
	if len(c.StretchSides) != NumPlayers {
		return invalid("expected %d stretch sides, got %d", NumPlayers, len(c.StretchSides))
	}
	for _, side := range c.StretchSides {
		if side != posture.SideLeft && side != posture.SideRight {
			return invalid("unknown stretch side %q", side)
		}
	}
	if _, ok := posture.ParseKind(string(c.InitialExercise)); !ok {
		return invalid("unknown initial exercise %q", c.InitialExercise)
	}
	if c.BreakInterval <= 0 {
		return invalid("break interval must be positive")
	}

	if err := c.Posture.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if err := c.Exercises.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	if c.Streak.Step < 0 || c.Streak.Cap < 1 {
		return invalid("streak step must not be negative and cap must be at least 1")
	}

	cb := c.Comeback
	if cb.Threshold < 0 || cb.Threshold >= 1 || cb.Slope <= 0 || cb.Cap < 0 || cb.DamageFactor <= 0 {
		return invalid("comeback curve out of range")
	}

	p := c.Progression
	if p.InitialXPToLevel < 1 || p.Growth < 1 {
		return invalid("xp curve must start at 1 or more and not shrink")
	}
	if p.AttackGain < 0 || p.MaxHPGain < 0 || p.HealXPShare < 0 || p.AttackXPShare < 0 {
		return invalid("progression gains must not be negative")
	}

	pu := c.PowerUps
	if pu.Interval <= 0 || pu.Duration <= 0 {
		return invalid("power-up interval and duration must be positive")
	}
	if pu.HealthGap < 0 || pu.HealthGap >= 1 {
		return invalid("power-up health gap must be in [0, 1)")
	}
	if pu.ShieldFactor < 0 || pu.ShieldFactor > 1 || pu.StrengthFactor < 1 || pu.RegenPerSecond < 0 {
		return invalid("power-up effects out of range")
	}

	return nil
}
