package exercise

import (
	"fmt"
	"time"

	"github.com/ayusman/physioduel/internal/hold"
	"github.com/ayusman/physioduel/internal/pose"
	"github.com/ayusman/physioduel/internal/posture"
)

// ArmRaise is the attack exercise. Holding the max level triggers a full
// attack; returning to rest after a held lower level triggers a partial one.
type ArmRaise struct {
	classifier *posture.Classifier
	cfg        ArmRaiseConfig
	policy     hold.Policy
}

// NewArmRaise creates the arm-raise machine.
func NewArmRaise(c *posture.Classifier, cfg ArmRaiseConfig) *ArmRaise {
	return &ArmRaise{
		classifier: c,
		cfg:        cfg,
		policy: hold.Policy{
			HoldTime:       cfg.HoldTime,
			CompleteAt:     cfg.MaxLevel,
			KeepOnDecrease: true,
		},
	}
}

// Kind implements Machine.
func (m *ArmRaise) Kind() posture.Kind {
	return posture.KindArmRaise
}

// Step implements Machine.
func (m *ArmRaise) Step(t *Track, lm *pose.Landmarks, now time.Time) []Event {
	r, err := m.classifier.ArmRaise(lm)
	if err != nil {
		return nil
	}

	var events []Event
	if r.Unsafe {
		// The frame is not classified at all.
		return t.advise(events, m.event(t, EventSafetyViolation, now, 0, "Safety tip: "+r.SafetyMessage), m.cfg.Cooldown)
	}

	level := min(r.Level, m.cfg.MaxLevel)
	t.Level, t.Angle = level, r.Angle

	var tr hold.Transition
	t.Hold, tr = hold.Step(m.policy, t.Hold, hold.Observation{Level: level, Now: now, FormOK: r.FormOK})

	if !r.FormOK {
		events = t.advise(events, m.event(t, EventFormAdvice, now, level, "Posture tip: "+issues(r)), m.cfg.Cooldown)
	}

	switch tr.Outcome {
	case hold.LevelChanged:
		events = t.advise(events, m.event(t, EventProgress, now, tr.Level,
			fmt.Sprintf("Level %d - Hold position", tr.Level)), m.cfg.Cooldown)

	case hold.Completed:
		ev := m.event(t, EventCompleted, now, tr.Level, "Well done! Full movement completed")
		ev.Effect = EffectAttack
		ev.Magnitude = float64(m.cfg.MaxLevel) * m.cfg.HPPerLevel
		t.credit(tr.Level, 0)
		events = t.announce(events, ev)

	case hold.Dropped:
		ev := m.event(t, EventCompleted, now, tr.Level, "Good job! Movement completed")
		ev.Effect = EffectAttack
		ev.Magnitude = float64(tr.Level) * m.cfg.HPPerLevel
		t.credit(tr.Level, 0)
		events = t.announce(events, ev)

	case hold.DroppedEarly:
		events = t.announce(events, m.event(t, EventFormAdvice, now, tr.Level, "Hold position longer next time"))
	}

	return events
}

func (m *ArmRaise) event(t *Track, kind EventKind, now time.Time, level int, msg string) Event {
	return Event{
		Kind:     kind,
		Exercise: posture.KindArmRaise,
		Player:   t.Player,
		Level:    level,
		Message:  msg,
		At:       now,
	}
}
