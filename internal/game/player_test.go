package game

import (
	"math"
	"testing"
	"time"
)

const epsilon = 1e-9

func newTestPlayer() *Player {
	return NewPlayer(0, "Player 1", DefaultConfig())
}

func TestPlayer_HPStaysInBounds(t *testing.T) {
	cfg := DefaultConfig()
	amounts := []float64{-50, 0, 1, 250, 999, 5000}

	for _, amount := range amounts {
		p := newTestPlayer()
		p.HP = 400
		p.ApplyDamage(amount, cfg.Comeback)
		if p.HP < 0 || p.HP > p.MaxHP {
			t.Errorf("damage %v: HP %v out of [0, %v]", amount, p.HP, p.MaxHP)
		}

		p = newTestPlayer()
		p.HP = 400
		p.ApplyHeal(amount, cfg.Comeback, cfg.Progression)
		if p.HP < 0 || p.HP > p.MaxHP {
			t.Errorf("heal %v: HP %v out of [0, %v]", amount, p.HP, p.MaxHP)
		}
	}
}

func TestPlayer_ApplyDamage(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("plain damage", func(t *testing.T) {
		p := newTestPlayer()
		dealt, defeated := p.ApplyDamage(120, cfg.Comeback)
		if dealt != 120 || defeated || p.HP != 880 {
			t.Errorf("dealt %v defeated %v HP %v", dealt, defeated, p.HP)
		}
	})

	t.Run("lethal damage is clamped", func(t *testing.T) {
		p := newTestPlayer()
		p.HP = 30
		dealt, defeated := p.ApplyDamage(100, cfg.Comeback)
		if dealt != 30 || !defeated || p.HP != 0 {
			t.Errorf("dealt %v defeated %v HP %v", dealt, defeated, p.HP)
		}
	})

	t.Run("comeback bonus reduces damage", func(t *testing.T) {
		p := newTestPlayer()
		p.ComebackBonus = 2
		dealt, _ := p.ApplyDamage(150, cfg.Comeback)
		if math.Abs(dealt-100) > epsilon {
			t.Errorf("dealt %v, want 100", dealt)
		}
	})

	t.Run("streak above one is reset", func(t *testing.T) {
		p := newTestPlayer()
		p.Streak, p.StreakMultiplier = 3, 1.3
		p.ApplyDamage(1, cfg.Comeback)
		if p.Streak != 0 || p.StreakMultiplier != 1 {
			t.Errorf("streak %d multiplier %v", p.Streak, p.StreakMultiplier)
		}
	})

	t.Run("streak of one is kept", func(t *testing.T) {
		p := newTestPlayer()
		p.Streak, p.StreakMultiplier = 1, 1.1
		p.ApplyDamage(1, cfg.Comeback)
		if p.Streak != 1 {
			t.Errorf("streak %d, want 1", p.Streak)
		}
	})
}

func TestPlayer_ApplyHeal(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("grants half the healed amount as xp", func(t *testing.T) {
		p := newTestPlayer()
		p.HP = 500
		healed, levels := p.ApplyHeal(40, cfg.Comeback, cfg.Progression)
		if healed != 40 || levels != 0 || p.HP != 540 || p.XP != 20 {
			t.Errorf("healed %v levels %d HP %v XP %v", healed, levels, p.HP, p.XP)
		}
	})

	t.Run("capped at max hp", func(t *testing.T) {
		p := newTestPlayer()
		p.HP = 990
		healed, _ := p.ApplyHeal(40, cfg.Comeback, cfg.Progression)
		if healed != 10 || p.HP != p.MaxHP || p.XP != 5 {
			t.Errorf("healed %v HP %v XP %v", healed, p.HP, p.XP)
		}
	})

	t.Run("comeback bonus boosts healing", func(t *testing.T) {
		p := newTestPlayer()
		p.HP = 100
		p.ComebackBonus = 1.5
		healed, _ := p.ApplyHeal(10, cfg.Comeback, cfg.Progression)
		if healed != 15 {
			t.Errorf("healed %v, want 15", healed)
		}
	})
}

func TestPlayer_OnSuccessfulAttack(t *testing.T) {
	cfg := DefaultConfig()
	p := newTestPlayer()

	p.OnSuccessfulAttack(20, cfg.Streak, cfg.Progression)
	if p.Streak != 1 || math.Abs(p.StreakMultiplier-1.1) > epsilon || p.XP != 15 {
		t.Errorf("streak %d multiplier %v XP %v", p.Streak, p.StreakMultiplier, p.XP)
	}

	for i := 0; i < 20; i++ {
		p.OnSuccessfulAttack(0, cfg.Streak, cfg.Progression)
	}
	if p.StreakMultiplier != 2.0 {
		t.Errorf("multiplier %v, want cap 2.0", p.StreakMultiplier)
	}
}

func TestPlayer_AddXP_MultipleLevels(t *testing.T) {
	cfg := DefaultConfig()
	p := newTestPlayer()
	p.HP = 600

	levels := p.AddXP(250, cfg.Progression)

	if levels != 2 || p.Level != 3 {
		t.Fatalf("levels %d level %d, want 2 and 3", levels, p.Level)
	}
	// 100 -> 150 -> 225
	if p.XPToLevel != 225 {
		t.Errorf("XPToLevel %v, want 225", p.XPToLevel)
	}
	if p.XP != 0 {
		t.Errorf("XP %v, want 0", p.XP)
	}
	if p.AttackPower != 10 || p.MaxHP != 1200 || p.HP != 800 {
		t.Errorf("attack %v maxHP %v HP %v", p.AttackPower, p.MaxHP, p.HP)
	}
}

func TestPlayer_AddXP_CarriesRemainder(t *testing.T) {
	cfg := DefaultConfig()
	p := newTestPlayer()

	p.AddXP(130, cfg.Progression)
	if p.Level != 2 || p.XP != 30 || p.XPToLevel != 150 {
		t.Errorf("level %d XP %v XPToLevel %v", p.Level, p.XP, p.XPToLevel)
	}
}

func TestPlayer_UpdateComebackBonus(t *testing.T) {
	cfg := DefaultConfig()

	a := newTestPlayer()
	b := NewPlayer(1, "Player 2", cfg)
	a.HP = 200 // 20%

	fa, fb := a.HealthFraction(), b.HealthFraction()
	a.UpdateComebackBonus(fb, cfg.Comeback)
	b.UpdateComebackBonus(fa, cfg.Comeback)

	if a.ComebackBonus <= 1 {
		t.Errorf("trailing bonus %v, want > 1", a.ComebackBonus)
	}
	if a.ComebackBonus != 2 {
		t.Errorf("trailing bonus %v, want capped 2", a.ComebackBonus)
	}
	if b.ComebackBonus != 1 {
		t.Errorf("leading bonus %v, want 1", b.ComebackBonus)
	}

	t.Run("small gaps give no bonus", func(t *testing.T) {
		a.HP = 750
		a.UpdateComebackBonus(1, cfg.Comeback)
		if a.ComebackBonus != 1 {
			t.Errorf("bonus %v, want 1", a.ComebackBonus)
		}
	})
}

func TestPlayer_HasPowerUp(t *testing.T) {
	p := newTestPlayer()
	now := time.Now()
	p.PowerUps[PowerUpShield] = now.Add(time.Second)

	if !p.HasPowerUp(PowerUpShield, now) {
		t.Error("shield should be active")
	}
	if p.HasPowerUp(PowerUpShield, now.Add(time.Second)) {
		t.Error("shield should expire at its expiry")
	}
	if p.HasPowerUp(PowerUpRegen, now) {
		t.Error("regen was never granted")
	}

	clone := p.Clone()
	delete(clone.PowerUps, PowerUpShield)
	if _, ok := p.PowerUps[PowerUpShield]; !ok {
		t.Error("Clone must not share the power-up map")
	}
}
