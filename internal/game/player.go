package game

import (
	"math"
	"time"
)

// PowerUp is a temporary modifier granted to a trailing player.
type PowerUp string

const (
	// PowerUpShield scales incoming damage by ShieldFactor.
	PowerUpShield PowerUp = "shield"
	// PowerUpStrength scales outgoing damage by StrengthFactor.
	PowerUpStrength PowerUp = "strength"
	// PowerUpRegen heals RegenPerSecond while active.
	PowerUpRegen PowerUp = "regen"
)

// PowerUps lists every power-up kind.
var PowerUps = []PowerUp{PowerUpShield, PowerUpStrength, PowerUpRegen}

// Player is the record of one player in a match.
type Player struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	MaxHP            float64 `json:"max_hp"`
	HP               float64 `json:"hp"`
	AttackPower      float64 `json:"attack_power"`
	Streak           int     `json:"streak"`
	StreakMultiplier float64 `json:"streak_multiplier"`
	ComebackBonus    float64 `json:"comeback_bonus"`
	XP               float64 `json:"xp"`
	XPToLevel        float64 `json:"xp_to_level"`
	Level            int     `json:"level"`
	// PowerUps maps active power-ups to their expiry.
	PowerUps map[PowerUp]time.Time `json:"power_ups"`
}

// NewPlayer creates a player at full health.
func NewPlayer(id int, name string, cfg Config) *Player {
	return &Player{
		ID:               id,
		Name:             name,
		MaxHP:            cfg.MaxHP,
		HP:               cfg.MaxHP,
		StreakMultiplier: 1,
		ComebackBonus:    1,
		XPToLevel:        cfg.Progression.InitialXPToLevel,
		Level:            1,
		PowerUps:         make(map[PowerUp]time.Time),
	}
}

// HealthFraction returns HP as a fraction of MaxHP.
func (p *Player) HealthFraction() float64 {
	if p.MaxHP <= 0 {
		return 0
	}
	return p.HP / p.MaxHP
}

// HasPowerUp reports whether kind is active at now.
func (p *Player) HasPowerUp(kind PowerUp, now time.Time) bool {
	expiry, ok := p.PowerUps[kind]
	return ok && now.Before(expiry)
}

// Clone returns a deep copy.
func (p *Player) Clone() Player {
	c := *p
	c.PowerUps = make(map[PowerUp]time.Time, len(p.PowerUps))
	for k, v := range p.PowerUps {
		c.PowerUps[k] = v
	}
	return c
}

// ApplyDamage subtracts amount from HP after the comeback reduction and
// returns the damage actually dealt. defeated is true once HP reaches 0.
func (p *Player) ApplyDamage(amount float64, cb ComebackConfig) (dealt float64, defeated bool) {
	if p.ComebackBonus > 1 {
		amount /= p.ComebackBonus * cb.DamageFactor
	}
	dealt = math.Min(math.Max(amount, 0), p.HP)
	p.HP -= dealt

	if p.Streak > 1 {
		p.Streak = 0
		p.StreakMultiplier = 1
	}
	return dealt, p.HP <= 0
}

// ApplyHeal adds amount to HP, boosted by the comeback bonus and capped at
// MaxHP, and grants XP for the amount actually healed. It returns the HP
// healed and the number of levels gained.
func (p *Player) ApplyHeal(amount float64, cb ComebackConfig, prog ProgressionConfig) (healed float64, levels int) {
	if p.ComebackBonus > 1 {
		amount *= p.ComebackBonus
	}
	healed = p.restore(amount)
	return healed, p.AddXP(prog.HealXPShare*healed, prog)
}

// restore adds HP without any bonus or XP.
func (p *Player) restore(amount float64) float64 {
	healed := math.Min(math.Max(amount, 0), p.MaxHP-p.HP)
	p.HP += healed
	return healed
}

// OnSuccessfulAttack extends the streak and grants XP for damage dealt. It
// returns the number of levels gained.
func (p *Player) OnSuccessfulAttack(dealt float64, s StreakConfig, prog ProgressionConfig) int {
	p.Streak++
	p.StreakMultiplier = math.Min(s.Cap, 1+float64(p.Streak)*s.Step)
	return p.AddXP(prog.AttackXPShare*dealt, prog)
}

// AddXP accumulates XP and applies every level-up it pays for. Leftover XP
// carries over to the next level. It returns the number of levels gained.
func (p *Player) AddXP(amount float64, prog ProgressionConfig) int {
	p.XP += amount
	levels := 0
	for p.XPToLevel > 0 && p.XP >= p.XPToLevel {
		p.XP -= p.XPToLevel
		p.Level++
		p.AttackPower += prog.AttackGain
		p.MaxHP += prog.MaxHPGain
		p.HP += prog.MaxHPGain
		p.XPToLevel = math.Floor(p.XPToLevel * prog.Growth)
		levels++
	}
	return levels
}

// UpdateComebackBonus recomputes the bonus from the opponent's health
// fraction.
func (p *Player) UpdateComebackBonus(opponentFraction float64, cb ComebackConfig) {
	p.ComebackBonus = comebackBonus(opponentFraction-p.HealthFraction(), cb)
}

func comebackBonus(diff float64, cb ComebackConfig) float64 {
	if diff > cb.Threshold {
		return 1 + math.Min(cb.Cap, diff*cb.Slope)
	}
	return 1
}
