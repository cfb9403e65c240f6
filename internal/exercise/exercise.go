// Package exercise turns classified postures into debounced exercise
// events. Each machine advances a per-player Track owned by the caller and
// never touches player health directly.
package exercise

import (
	"strings"
	"time"

	"github.com/ayusman/physioduel/internal/hold"
	"github.com/ayusman/physioduel/internal/pose"
	"github.com/ayusman/physioduel/internal/posture"
)

// EventKind identifies the type of an Event.
type EventKind string

const (
	EventProgress        EventKind = "progress"
	EventCompleted       EventKind = "completed"
	EventFormAdvice      EventKind = "form_advice"
	EventSafetyViolation EventKind = "safety_violation"
)

// Effect is the game effect requested by a completion.
type Effect string

const (
	EffectNone   Effect = ""
	EffectAttack Effect = "attack"
	EffectHeal   Effect = "heal"
)

// Event is a semantic event produced by an exercise machine (or, for the
// game-level kinds, by the game itself).
type Event struct {
	Kind      EventKind    `json:"kind"`
	Exercise  posture.Kind `json:"exercise,omitempty"`
	Player    int          `json:"player"`
	Level     int          `json:"level,omitempty"`
	Magnitude float64      `json:"magnitude,omitempty"`
	Effect    Effect       `json:"effect,omitempty"`
	Message   string       `json:"message"`
	At        time.Time    `json:"at"`
}

// Machine advances one exercise for one player per frame.
type Machine interface {
	Kind() posture.Kind
	// Step consumes one frame. Frames with missing landmarks produce no
	// events and leave the track untouched.
	Step(t *Track, lm *pose.Landmarks, now time.Time) []Event
}

// Track is the bookkeeping one machine keeps for one player.
type Track struct {
	Player int        `json:"player"`
	Hold   hold.State `json:"hold"`

	// Level and Angle are the last classified values.
	Level int     `json:"level"`
	Angle float64 `json:"angle"`

	LastMessage time.Time `json:"-"`
	// IdleSince is when the player last returned to level 0.
	IdleSince time.Time `json:"-"`
	Reminded  bool      `json:"-"`

	Completions map[int]int `json:"completions"`
	Score       int         `json:"score"`
}

// NewTrack creates an empty track for a player slot.
func NewTrack(player int) *Track {
	return &Track{Player: player, Completions: make(map[int]int)}
}

// Reset clears everything except the player slot.
func (t *Track) Reset() {
	*t = *NewTrack(t.Player)
}

// ResetHold cancels the running hold but keeps statistics.
func (t *Track) ResetHold() {
	t.Hold = hold.State{}
	t.Level = 0
	t.IdleSince = time.Time{}
	t.Reminded = false
}

// Clone returns a deep copy.
func (t *Track) Clone() *Track {
	c := *t
	c.Completions = make(map[int]int, len(t.Completions))
	for k, v := range t.Completions {
		c.Completions[k] = v
	}
	return &c
}

func (t *Track) ready(now time.Time, cooldown time.Duration) bool {
	return t.LastMessage.IsZero() || now.Sub(t.LastMessage) >= cooldown
}

// advise appends ev unless the cooldown is still running.
func (t *Track) advise(events []Event, ev Event, cooldown time.Duration) []Event {
	if !t.ready(ev.At, cooldown) {
		return events
	}
	t.LastMessage = ev.At
	return append(events, ev)
}

// announce appends ev regardless of the cooldown and restarts it. Used for
// outcomes that can only happen once per hold.
func (t *Track) announce(events []Event, ev Event) []Event {
	t.LastMessage = ev.At
	return append(events, ev)
}

func (t *Track) credit(level, points int) {
	t.Completions[level]++
	t.Score += points
}

func issues(r posture.Reading) string {
	return strings.Join(r.Issues, " & ")
}
