package exercise

import (
	"fmt"
	"time"

	"github.com/ayusman/physioduel/internal/hold"
	"github.com/ayusman/physioduel/internal/pose"
	"github.com/ayusman/physioduel/internal/posture"
)

// SideStretch is a lateral bend bound to one anatomical side. A held level
// heals the player.
type SideStretch struct {
	classifier *posture.Classifier
	cfg        StretchConfig
	side       posture.Side
	policy     hold.Policy
}

// NewSideStretch creates a side-stretch machine for side.
func NewSideStretch(c *posture.Classifier, cfg StretchConfig, side posture.Side) *SideStretch {
	return &SideStretch{
		classifier: c,
		cfg:        cfg,
		side:       side,
		policy:     hold.Policy{HoldTime: cfg.HoldTime},
	}
}

// Kind implements Machine.
func (m *SideStretch) Kind() posture.Kind {
	return posture.KindSideStretch
}

// Side returns the side this machine measures.
func (m *SideStretch) Side() posture.Side {
	return m.side
}

// Step implements Machine.
func (m *SideStretch) Step(t *Track, lm *pose.Landmarks, now time.Time) []Event {
	r, err := m.classifier.SideStretch(lm, m.side)
	if err != nil {
		return nil
	}
	t.Level, t.Angle = r.Level, r.Angle

	var tr hold.Transition
	t.Hold, tr = hold.Step(m.policy, t.Hold, hold.Observation{Level: r.Level, Now: now, FormOK: r.FormOK})

	var events []Event
	if !r.FormOK {
		events = t.advise(events, m.event(t, EventFormAdvice, now, r.Level, issues(r)), m.cfg.Cooldown)
	}

	switch tr.Outcome {
	case hold.LevelChanged:
		events = t.advise(events, m.event(t, EventProgress, now, tr.Level,
			fmt.Sprintf("Holding Level %d stretch...", tr.Level)), m.cfg.Cooldown)

	case hold.Completed:
		points := m.cfg.PointsPerLevel * tr.Level
		ev := m.event(t, EventCompleted, now, tr.Level,
			fmt.Sprintf("Level %d complete! +%d points", tr.Level, points))
		ev.Effect = EffectHeal
		ev.Magnitude = m.cfg.HealPerLevel * float64(tr.Level)
		t.credit(tr.Level, points)
		events = t.announce(events, ev)
	}

	return events
}

func (m *SideStretch) event(t *Track, kind EventKind, now time.Time, level int, msg string) Event {
	return Event{
		Kind:     kind,
		Exercise: posture.KindSideStretch,
		Player:   t.Player,
		Level:    level,
		Message:  msg,
		At:       now,
	}
}
