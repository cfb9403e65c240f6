// Package game owns the player records of a two-player exercise match and
// applies exercise events to them.
//
// Game is frame-synchronous and not safe for concurrent use: callers must
// serialize ProcessFrame, Restart and SwitchExercise.
package game

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/ayusman/physioduel/internal/exercise"
	"github.com/ayusman/physioduel/internal/pose"
	"github.com/ayusman/physioduel/internal/posture"
)

// Game-level event kinds, in addition to the exercise event kinds.
const (
	EventHit           exercise.EventKind = "hit"
	EventHealed        exercise.EventKind = "healed"
	EventLevelUp       exercise.EventKind = "level_up"
	EventPowerUp       exercise.EventKind = "power_up"
	EventGameOver      exercise.EventKind = "game_over"
	EventBreakReminder exercise.EventKind = "break_reminder"
)

// NoPlayer is used for Winner and for events that concern no single player.
const NoPlayer = -1

// BreakReminderMessage is sent at every break interval of session time.
const BreakReminderMessage = "Remember to take a short break if needed"

// Game is one match between two players.
type Game struct {
	cfg Config

	armRaise  *exercise.ArmRaise
	squat     *exercise.Squat
	stretches []*exercise.SideStretch
	tracks    map[posture.Kind][]*exercise.Track

	players  []*Player
	exercise posture.Kind
	gameOver bool
	winner   int

	lastPowerUp time.Time

	// Session clock; survives Restart.
	sessionStart   time.Time
	lastFrame      time.Time
	exerciseTime   map[posture.Kind]time.Duration
	breakReminders int

	intn func(n int) int
}

// New creates a Game after validating cfg.
func New(cfg Config) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	classifier, err := posture.NewClassifier(cfg.Posture)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	g := &Game{
		cfg:          cfg,
		armRaise:     exercise.NewArmRaise(classifier, cfg.Exercises.ArmRaise),
		squat:        exercise.NewSquat(classifier, cfg.Exercises.Squat),
		tracks:       make(map[posture.Kind][]*exercise.Track),
		exercise:     cfg.InitialExercise,
		exerciseTime: make(map[posture.Kind]time.Duration),
		intn:         rand.IntN,
	}
	for i := 0; i < NumPlayers; i++ {
		g.stretches = append(g.stretches, exercise.NewSideStretch(classifier, cfg.Exercises.SideStretch, cfg.StretchSides[i]))
	}
	for _, kind := range posture.Kinds {
		tracks := make([]*exercise.Track, NumPlayers)
		for i := range tracks {
			tracks[i] = exercise.NewTrack(i)
		}
		g.tracks[kind] = tracks
	}
	g.resetMatch()

	return g, nil
}

// SetRand replaces the random source used to pick power-ups.
func (g *Game) SetRand(r *rand.Rand) {
	g.intn = r.IntN
}

// Config returns the game configuration.
func (g *Game) Config() Config {
	return g.cfg
}

// Exercise returns the current exercise.
func (g *Game) Exercise() posture.Kind {
	return g.exercise
}

// Restart starts a new match: players, holds and exercise statistics are
// reinitialized. The session clock and the selected exercise are kept.
func (g *Game) Restart() {
	g.resetMatch()
}

func (g *Game) resetMatch() {
	g.players = make([]*Player, NumPlayers)
	for i := range g.players {
		g.players[i] = NewPlayer(i, g.cfg.PlayerNames[i], g.cfg)
	}
	for _, tracks := range g.tracks {
		for _, t := range tracks {
			t.Reset()
		}
	}
	g.gameOver = false
	g.winner = NoPlayer
	g.lastPowerUp = time.Time{}
}

// SwitchExercise selects the exercise used for subsequent frames. Every
// running hold is cancelled so a stale hold cannot credit the new exercise.
func (g *Game) SwitchExercise(kind posture.Kind) error {
	if _, ok := posture.ParseKind(string(kind)); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownExercise, kind)
	}
	for _, tracks := range g.tracks {
		for _, t := range tracks {
			t.ResetHold()
		}
	}
	g.exercise = kind
	return nil
}

func (g *Game) machine(player int) exercise.Machine {
	switch g.exercise {
	case posture.KindSideStretch:
		return g.stretches[player]
	case posture.KindSquat:
		return g.squat
	}
	return g.armRaise
}

// ProcessFrame advances the match by one frame. players holds the landmarks
// for each slot; a nil entry or a missing slot means no detection. A
// timestamp earlier than the previous frame is treated as the previous
// frame time.
func (g *Game) ProcessFrame(players []*pose.Landmarks, now time.Time) FrameResult {
	now = g.tick(now)

	if g.gameOver {
		return FrameResult{State: g.State()}
	}

	var events []exercise.Event
	g.expirePowerUps(now)
	g.updateComebackBonuses()
	events = g.spawnPowerUp(events, now)
	events = g.remindBreak(events, now)

	for i := 0; i < NumPlayers && !g.gameOver; i++ {
		var lm *pose.Landmarks
		if i < len(players) {
			lm = players[i]
		}
		track := g.tracks[g.exercise][i]
		for _, ev := range g.machine(i).Step(track, lm, now) {
			events = append(events, ev)
			events = g.apply(events, ev)
			if g.gameOver {
				break
			}
		}
	}

	return FrameResult{Events: events, State: g.State()}
}

// tick advances the session clock and returns the effective frame time.
func (g *Game) tick(now time.Time) time.Time {
	if g.lastFrame.IsZero() {
		g.sessionStart = now
		g.lastFrame = now
	}
	if now.Before(g.lastFrame) {
		now = g.lastFrame
	}
	dt := now.Sub(g.lastFrame)

	g.exerciseTime[g.exercise] += dt
	if !g.gameOver {
		g.regenerate(dt, now)
	}
	g.lastFrame = now
	return now
}

// regenerate heals players whose Regen power-up was active during the
// elapsed interval.
func (g *Game) regenerate(dt time.Duration, now time.Time) {
	if dt <= 0 {
		return
	}
	from := now.Add(-dt)
	for _, p := range g.players {
		expiry, ok := p.PowerUps[PowerUpRegen]
		if !ok || !expiry.After(from) {
			continue
		}
		active := dt
		if expiry.Before(now) {
			active = expiry.Sub(from)
		}
		p.restore(g.cfg.PowerUps.RegenPerSecond * active.Seconds())
	}
}

func (g *Game) expirePowerUps(now time.Time) {
	for _, p := range g.players {
		for kind, expiry := range p.PowerUps {
			if !now.Before(expiry) {
				delete(p.PowerUps, kind)
			}
		}
	}
}

// updateComebackBonuses recomputes both bonuses from the health fractions
// before any of them changes.
func (g *Game) updateComebackBonuses() {
	fractions := make([]float64, len(g.players))
	for i, p := range g.players {
		fractions[i] = p.HealthFraction()
	}
	for i, p := range g.players {
		p.UpdateComebackBonus(fractions[opponent(i)], g.cfg.Comeback)
	}
}

func (g *Game) spawnPowerUp(events []exercise.Event, now time.Time) []exercise.Event {
	if g.lastPowerUp.IsZero() {
		g.lastPowerUp = now
		return events
	}
	if now.Sub(g.lastPowerUp) < g.cfg.PowerUps.Interval {
		return events
	}
	g.lastPowerUp = now

	a, b := g.players[0], g.players[1]
	if math.Abs(a.HealthFraction()-b.HealthFraction()) <= g.cfg.PowerUps.HealthGap {
		return events
	}
	trailing := a
	if b.HealthFraction() < a.HealthFraction() {
		trailing = b
	}

	kind := PowerUps[g.intn(len(PowerUps))]
	trailing.PowerUps[kind] = now.Add(g.cfg.PowerUps.Duration)

	return append(events, exercise.Event{
		Kind:    EventPowerUp,
		Player:  trailing.ID,
		Message: fmt.Sprintf("%s received a %s power-up", trailing.Name, kind),
		At:      now,
	})
}

func (g *Game) remindBreak(events []exercise.Event, now time.Time) []exercise.Event {
	marks := int(now.Sub(g.sessionStart) / g.cfg.BreakInterval)
	if marks <= g.breakReminders {
		return events
	}
	g.breakReminders = marks
	return append(events, exercise.Event{
		Kind:    EventBreakReminder,
		Player:  NoPlayer,
		Message: BreakReminderMessage,
		At:      now,
	})
}

// apply turns a completion into player mutations and appends the
// resulting game events.
func (g *Game) apply(events []exercise.Event, ev exercise.Event) []exercise.Event {
	if ev.Kind != exercise.EventCompleted {
		return events
	}

	p := g.players[ev.Player]
	switch ev.Effect {
	case exercise.EffectAttack:
		return g.attack(events, p, g.players[opponent(ev.Player)], ev)
	case exercise.EffectHeal:
		healed, levels := p.ApplyHeal(ev.Magnitude, g.cfg.Comeback, g.cfg.Progression)
		if healed > 0 {
			events = append(events, exercise.Event{
				Kind:      EventHealed,
				Exercise:  ev.Exercise,
				Player:    p.ID,
				Magnitude: healed,
				Message:   fmt.Sprintf("%s healed %.0f HP", p.Name, healed),
				At:        ev.At,
			})
		}
		return g.levelUp(events, p, levels, ev.At)
	}
	return events
}

func (g *Game) attack(events []exercise.Event, attacker, target *Player, ev exercise.Event) []exercise.Event {
	damage := (ev.Magnitude + attacker.AttackPower) * attacker.StreakMultiplier
	if attacker.HasPowerUp(PowerUpStrength, ev.At) {
		damage *= g.cfg.PowerUps.StrengthFactor
	}
	if target.HasPowerUp(PowerUpShield, ev.At) {
		damage *= g.cfg.PowerUps.ShieldFactor
	}

	dealt, defeated := target.ApplyDamage(damage, g.cfg.Comeback)
	events = append(events, exercise.Event{
		Kind:      EventHit,
		Exercise:  ev.Exercise,
		Player:    target.ID,
		Magnitude: dealt,
		Message:   fmt.Sprintf("%s ATTACK: %.0f DMG to %s", attacker.Name, dealt, target.Name),
		At:        ev.At,
	})

	levels := attacker.OnSuccessfulAttack(dealt, g.cfg.Streak, g.cfg.Progression)
	events = g.levelUp(events, attacker, levels, ev.At)

	if defeated {
		g.gameOver = true
		g.winner = attacker.ID
		events = append(events, exercise.Event{
			Kind:    EventGameOver,
			Player:  attacker.ID,
			Message: fmt.Sprintf("%s WINS!", attacker.Name),
			At:      ev.At,
		})
	}
	return events
}

func (g *Game) levelUp(events []exercise.Event, p *Player, levels int, at time.Time) []exercise.Event {
	if levels == 0 {
		return events
	}
	return append(events, exercise.Event{
		Kind:    EventLevelUp,
		Player:  p.ID,
		Level:   p.Level,
		Message: fmt.Sprintf("%s reached level %d", p.Name, p.Level),
		At:      at,
	})
}

func opponent(i int) int {
	return (i + 1) % NumPlayers
}
