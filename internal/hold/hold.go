// Package hold implements the hold-timer that debounces exercise levels.
//
// A level only counts once it has been sustained for a minimum duration.
// The timer is a small tagged-variant state machine (Idle, Holding,
// Credited) advanced by the pure function Step, so callers own the State
// and can test transitions with plain timestamps.
package hold

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPolicy is returned by Policy.Validate.
var ErrInvalidPolicy = errors.New("invalid hold policy")

// Phase is the variant tag of a State.
type Phase int

const (
	// Idle means no level above zero is being held.
	Idle Phase = iota
	// Holding means a level is being held and has not been credited yet.
	Holding
	// Credited means the current hold already produced a completion.
	Credited
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Holding:
		return "holding"
	case Credited:
		return "credited"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// State is the hold state for one player in one exercise.
type State struct {
	Phase Phase     `json:"phase"`
	Level int       `json:"level"`
	Since time.Time `json:"since"`
	// LastCompleted is the level credited by the current cycle, 0 if none.
	LastCompleted int `json:"last_completed"`
}

// Active reports whether a level above zero is being held.
func (s State) Active() bool {
	return s.Phase != Idle
}

// Held returns how long the current level has been held at now.
func (s State) Held(now time.Time) time.Duration {
	if s.Phase == Idle {
		return 0
	}
	return now.Sub(s.Since)
}

// Observation is one classified frame.
type Observation struct {
	Level  int
	Now    time.Time
	FormOK bool
}

// Policy configures how a hold completes.
type Policy struct {
	// HoldTime is the minimum time a level must be held before it counts.
	HoldTime time.Duration
	// CompleteAt restricts completion-while-holding to a single level.
	// Zero means any level above zero completes once held.
	CompleteAt int
	// KeepOnDecrease keeps the running timer when the level decreases
	// without reaching zero. Otherwise any level change restarts it.
	KeepOnDecrease bool
}

// Validate checks that the policy can produce completions.
func (p Policy) Validate() error {
	if p.HoldTime <= 0 {
		return fmt.Errorf("%w: hold time must be positive, got %v", ErrInvalidPolicy, p.HoldTime)
	}
	if p.CompleteAt < 0 {
		return fmt.Errorf("%w: completion level must not be negative", ErrInvalidPolicy)
	}
	return nil
}

// Outcome classifies what a Step did.
type Outcome int

const (
	// None means nothing reportable happened.
	None Outcome = iota
	// LevelChanged means a new level started (or the level moved while
	// holding). The timer may or may not have restarted; see State.Since.
	LevelChanged
	// Completed means the held level was credited.
	Completed
	// Dropped means the player returned to level 0 after holding a level
	// long enough that was not credited while held.
	Dropped
	// DroppedEarly means the player returned to level 0 before the hold
	// time elapsed.
	DroppedEarly
	// Released means the player returned to level 0 after a credited hold.
	Released
	// Reset means bad form cancelled an active hold.
	Reset
)

var outcomeNames = [...]string{"none", "level_changed", "completed", "dropped", "dropped_early", "released", "reset"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Transition describes the result of a Step.
type Transition struct {
	Outcome Outcome
	// Level is the level the outcome refers to: the new level for
	// LevelChanged, the held level for Completed, Dropped, DroppedEarly,
	// Released and Reset.
	Level int
	// Held is how long Level had been held when the outcome happened.
	Held time.Duration
}

// Step advances state by one observation and returns the new state.
func Step(p Policy, s State, obs Observation) (State, Transition) {
	if !obs.FormOK {
		if !s.Active() {
			return State{}, Transition{}
		}
		return State{}, Transition{Outcome: Reset, Level: s.Level, Held: s.Held(obs.Now)}
	}

	if obs.Level <= 0 {
		switch s.Phase {
		case Holding:
			held := s.Held(obs.Now)
			if held >= p.HoldTime {
				return State{}, Transition{Outcome: Dropped, Level: s.Level, Held: held}
			}
			return State{}, Transition{Outcome: DroppedEarly, Level: s.Level, Held: held}
		case Credited:
			return State{}, Transition{Outcome: Released, Level: s.Level, Held: s.Held(obs.Now)}
		}
		return State{}, Transition{}
	}

	switch {
	case s.Phase == Idle, obs.Level > s.Level:
		return start(obs), Transition{Outcome: LevelChanged, Level: obs.Level}

	case obs.Level < s.Level:
		// A credited hold is only released by a drop to zero, so a noisy
		// frame at a lower level cannot open a second cycle.
		if s.Phase == Credited {
			return s, Transition{}
		}
		if p.KeepOnDecrease && s.Phase == Holding {
			s.Level = obs.Level
			return s, Transition{Outcome: LevelChanged, Level: obs.Level, Held: s.Held(obs.Now)}
		}
		return start(obs), Transition{Outcome: LevelChanged, Level: obs.Level}
	}

	// Same level.
	if s.Phase == Credited {
		return s, Transition{}
	}
	held := s.Held(obs.Now)
	if held < p.HoldTime || (p.CompleteAt != 0 && obs.Level != p.CompleteAt) {
		return s, Transition{}
	}
	s.Phase = Credited
	s.LastCompleted = obs.Level
	return s, Transition{Outcome: Completed, Level: obs.Level, Held: held}
}

func start(obs Observation) State {
	return State{Phase: Holding, Level: obs.Level, Since: obs.Now}
}
