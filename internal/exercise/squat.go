package exercise

import (
	"fmt"
	"time"

	"github.com/ayusman/physioduel/internal/hold"
	"github.com/ayusman/physioduel/internal/pose"
	"github.com/ayusman/physioduel/internal/posture"
)

// ReminderMessage is sent once per rest period that exceeds the reminder
// delay.
const ReminderMessage = "Ready for next squat when you are"

var squatNames = map[int]string{1: "Gentle", 2: "Moderate", 3: "Deep"}

func squatName(level int) string {
	if name, ok := squatNames[level]; ok {
		return name
	}
	return fmt.Sprintf("Level %d", level)
}

// Squat is the chair squat. A held level heals the player.
type Squat struct {
	classifier *posture.Classifier
	cfg        SquatConfig
	policy     hold.Policy
}

// NewSquat creates the squat machine.
func NewSquat(c *posture.Classifier, cfg SquatConfig) *Squat {
	return &Squat{
		classifier: c,
		cfg:        cfg,
		policy:     hold.Policy{HoldTime: cfg.HoldTime},
	}
}

// Kind implements Machine.
func (m *Squat) Kind() posture.Kind {
	return posture.KindSquat
}

// Step implements Machine.
func (m *Squat) Step(t *Track, lm *pose.Landmarks, now time.Time) []Event {
	r, err := m.classifier.Squat(lm)
	if err != nil {
		return nil
	}
	t.Level, t.Angle = r.Level, r.Angle

	var tr hold.Transition
	t.Hold, tr = hold.Step(m.policy, t.Hold, hold.Observation{Level: r.Level, Now: now, FormOK: r.FormOK})

	var events []Event
	if !r.FormOK {
		events = t.advise(events, m.event(t, EventFormAdvice, now, r.Level, "Adjust your form: "+issues(r)), m.cfg.Cooldown)
	}

	switch tr.Outcome {
	case hold.LevelChanged:
		events = t.advise(events, m.event(t, EventProgress, now, tr.Level,
			fmt.Sprintf("Holding %s Squat...", squatName(tr.Level))), m.cfg.Cooldown)

	case hold.Completed:
		ev := m.event(t, EventCompleted, now, tr.Level, fmt.Sprintf("%s Squat complete!", squatName(tr.Level)))
		ev.Effect = EffectHeal
		ev.Magnitude = m.cfg.HealPerLevel * float64(tr.Level)
		t.credit(tr.Level, m.cfg.PointsPerLevel*tr.Level)
		events = t.announce(events, ev)
	}

	// Edge-triggered reminder: armed when the player is squatting, fired
	// at most once per rest period.
	if r.Level > 0 {
		t.IdleSince = time.Time{}
		t.Reminded = false
		return events
	}
	if t.IdleSince.IsZero() {
		t.IdleSince = now
		return events
	}
	if !t.Reminded && now.Sub(t.IdleSince) >= m.cfg.ReminderDelay && t.ready(now, m.cfg.Cooldown) {
		t.Reminded = true
		events = t.advise(events, m.event(t, EventFormAdvice, now, 0, ReminderMessage), m.cfg.Cooldown)
	}
	return events
}

func (m *Squat) event(t *Track, kind EventKind, now time.Time, level int, msg string) Event {
	return Event{
		Kind:     kind,
		Exercise: posture.KindSquat,
		Player:   t.Player,
		Level:    level,
		Message:  msg,
		At:       now,
	}
}
