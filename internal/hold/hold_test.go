package hold

import (
	"errors"
	"testing"
	"time"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) time.Time {
	return t0.Add(d)
}

// run feeds a sequence of observations and returns the final state and
// every non-None transition.
func run(p Policy, obs []Observation) (State, []Transition) {
	var s State
	var out []Transition
	for _, o := range obs {
		var tr Transition
		s, tr = Step(p, s, o)
		if tr.Outcome != None {
			out = append(out, tr)
		}
	}
	return s, out
}

func TestStep_StartsTimerOnFirstLevel(t *testing.T) {
	p := Policy{HoldTime: 2 * time.Second}

	s, tr := Step(p, State{}, Observation{Level: 2, Now: t0, FormOK: true})
	if tr.Outcome != LevelChanged || tr.Level != 2 {
		t.Fatalf("got transition %+v, want level_changed to 2", tr)
	}
	if s.Phase != Holding || s.Level != 2 || !s.Since.Equal(t0) {
		t.Errorf("unexpected state %+v", s)
	}
}

func TestStep_CompletesOnceAfterHoldTime(t *testing.T) {
	p := Policy{HoldTime: 2 * time.Second}

	s, trs := run(p, []Observation{
		{Level: 1, Now: at(0), FormOK: true},
		{Level: 1, Now: at(1900 * time.Millisecond), FormOK: true},
		{Level: 1, Now: at(2 * time.Second), FormOK: true},
		{Level: 1, Now: at(3 * time.Second), FormOK: true},
		{Level: 1, Now: at(10 * time.Second), FormOK: true},
	})

	completions := 0
	for _, tr := range trs {
		if tr.Outcome == Completed {
			completions++
			if tr.Level != 1 || tr.Held != 2*time.Second {
				t.Errorf("unexpected completion %+v", tr)
			}
		}
	}
	if completions != 1 {
		t.Fatalf("expected exactly one completion, got %d (%v)", completions, trs)
	}
	if s.Phase != Credited || s.LastCompleted != 1 {
		t.Errorf("expected credited state, got %+v", s)
	}
}

func TestStep_NewCycleRequiresLevelChange(t *testing.T) {
	p := Policy{HoldTime: time.Second}

	_, trs := run(p, []Observation{
		{Level: 2, Now: at(0), FormOK: true},
		{Level: 2, Now: at(time.Second), FormOK: true}, // completes
		{Level: 0, Now: at(2 * time.Second), FormOK: true},
		{Level: 2, Now: at(3 * time.Second), FormOK: true},
		{Level: 2, Now: at(4 * time.Second), FormOK: true}, // completes again
	})

	want := []Outcome{LevelChanged, Completed, Released, LevelChanged, Completed}
	if len(trs) != len(want) {
		t.Fatalf("got %v, want outcomes %v", trs, want)
	}
	for i, o := range want {
		if trs[i].Outcome != o {
			t.Errorf("transition %d = %v, want %v", i, trs[i].Outcome, o)
		}
	}
}

func TestStep_LevelIncreaseRestartsTimer(t *testing.T) {
	p := Policy{HoldTime: time.Second}

	s, trs := run(p, []Observation{
		{Level: 1, Now: at(0), FormOK: true},
		{Level: 2, Now: at(800 * time.Millisecond), FormOK: true},
		{Level: 2, Now: at(1500 * time.Millisecond), FormOK: true},
	})
	for _, tr := range trs {
		if tr.Outcome == Completed {
			t.Fatalf("unexpected completion %+v", tr)
		}
	}
	if !s.Since.Equal(at(800 * time.Millisecond)) {
		t.Errorf("timer should restart at the level increase, since = %v", s.Since)
	}
}

func TestStep_Decrease(t *testing.T) {
	obs := []Observation{
		{Level: 3, Now: at(0), FormOK: true},
		{Level: 2, Now: at(500 * time.Millisecond), FormOK: true},
	}

	t.Run("restarts timer by default", func(t *testing.T) {
		s, _ := run(Policy{HoldTime: time.Second}, obs)
		if s.Level != 2 || !s.Since.Equal(at(500*time.Millisecond)) {
			t.Errorf("unexpected state %+v", s)
		}
	})

	t.Run("keeps timer when configured", func(t *testing.T) {
		s, trs := run(Policy{HoldTime: time.Second, KeepOnDecrease: true}, obs)
		if s.Level != 2 || !s.Since.Equal(t0) {
			t.Errorf("unexpected state %+v", s)
		}
		if trs[len(trs)-1].Outcome != LevelChanged {
			t.Errorf("expected level change, got %v", trs)
		}
	})

	t.Run("credited hold stays credited", func(t *testing.T) {
		p := Policy{HoldTime: time.Second, KeepOnDecrease: true}
		s, trs := run(p, []Observation{
			{Level: 3, Now: at(0), FormOK: true},
			{Level: 3, Now: at(time.Second), FormOK: true},
			{Level: 2, Now: at(2 * time.Second), FormOK: true},
		})
		if s.Phase != Credited || s.Level != 3 {
			t.Errorf("unexpected state %+v", s)
		}
		if len(trs) != 2 {
			t.Errorf("decrease after credit should be silent, got %v", trs)
		}
	})
}

func TestStep_NoisyFrameDoesNotRecredit(t *testing.T) {
	p := Policy{HoldTime: 3 * time.Second}

	s, trs := run(p, []Observation{
		{Level: 3, Now: at(0), FormOK: true},
		{Level: 3, Now: at(3 * time.Second), FormOK: true}, // completes
		{Level: 2, Now: at(3100 * time.Millisecond), FormOK: true},
		{Level: 3, Now: at(3200 * time.Millisecond), FormOK: true},
		{Level: 3, Now: at(7 * time.Second), FormOK: true},
	})

	completions := 0
	for _, tr := range trs {
		if tr.Outcome == Completed {
			completions++
		}
	}
	if completions != 1 {
		t.Fatalf("expected one completion, got %d (%v)", completions, trs)
	}
	if s.Phase != Credited || s.LastCompleted != 3 {
		t.Errorf("unexpected state %+v", s)
	}

	t.Run("deeper level starts a new hold", func(t *testing.T) {
		s, tr := Step(p, s, Observation{Level: 4, Now: at(8 * time.Second), FormOK: true})
		if tr.Outcome != LevelChanged || s.Phase != Holding || s.Level != 4 {
			t.Errorf("got %+v %+v", s, tr)
		}
	})
}

func TestStep_CompleteAtSingleLevel(t *testing.T) {
	p := Policy{HoldTime: 1500 * time.Millisecond, CompleteAt: 5, KeepOnDecrease: true}

	t.Run("lower level never completes while held", func(t *testing.T) {
		s, trs := run(p, []Observation{
			{Level: 3, Now: at(0), FormOK: true},
			{Level: 3, Now: at(5 * time.Second), FormOK: true},
		})
		if s.Phase != Holding || len(trs) != 1 {
			t.Errorf("state %+v transitions %v", s, trs)
		}
	})

	t.Run("drop after satisfied hold", func(t *testing.T) {
		_, trs := run(p, []Observation{
			{Level: 3, Now: at(0), FormOK: true},
			{Level: 3, Now: at(time.Second), FormOK: true},
			{Level: 0, Now: at(1600 * time.Millisecond), FormOK: true},
		})
		last := trs[len(trs)-1]
		if last.Outcome != Dropped || last.Level != 3 {
			t.Errorf("got %+v, want dropped at level 3", last)
		}
	})

	t.Run("drop before hold time", func(t *testing.T) {
		_, trs := run(p, []Observation{
			{Level: 5, Now: at(0), FormOK: true},
			{Level: 5, Now: at(1400 * time.Millisecond), FormOK: true},
			{Level: 0, Now: at(1400 * time.Millisecond), FormOK: true},
		})
		for _, tr := range trs {
			if tr.Outcome == Completed || tr.Outcome == Dropped {
				t.Fatalf("unexpected credit %+v", tr)
			}
		}
		if last := trs[len(trs)-1]; last.Outcome != DroppedEarly || last.Level != 5 {
			t.Errorf("got %+v, want dropped_early at level 5", last)
		}
	})

	t.Run("drop after credit is released", func(t *testing.T) {
		_, trs := run(p, []Observation{
			{Level: 5, Now: at(0), FormOK: true},
			{Level: 5, Now: at(1500 * time.Millisecond), FormOK: true},
			{Level: 0, Now: at(2 * time.Second), FormOK: true},
		})
		want := []Outcome{LevelChanged, Completed, Released}
		for i, o := range want {
			if trs[i].Outcome != o {
				t.Errorf("transition %d = %v, want %v", i, trs[i].Outcome, o)
			}
		}
	})
}

func TestStep_BadFormResets(t *testing.T) {
	p := Policy{HoldTime: time.Second}

	s, trs := run(p, []Observation{
		{Level: 2, Now: at(0), FormOK: true},
		{Level: 2, Now: at(900 * time.Millisecond), FormOK: false},
		{Level: 2, Now: at(1100 * time.Millisecond), FormOK: true},
	})

	if trs[1].Outcome != Reset || trs[1].Level != 2 {
		t.Errorf("expected reset, got %+v", trs[1])
	}
	if !s.Since.Equal(at(1100 * time.Millisecond)) {
		t.Errorf("hold should restart after bad form, since = %v", s.Since)
	}

	t.Run("bad form while idle is silent", func(t *testing.T) {
		s, tr := Step(p, State{}, Observation{Level: 2, Now: t0})
		if tr.Outcome != None || s.Active() {
			t.Errorf("got %+v %+v", s, tr)
		}
	})
}

func TestStep_IdleAtZeroIsSilent(t *testing.T) {
	s, tr := Step(Policy{HoldTime: time.Second}, State{}, Observation{Level: 0, Now: t0, FormOK: true})
	if tr.Outcome != None || s != (State{}) {
		t.Errorf("got %+v %+v", s, tr)
	}
}

func TestPolicy_Validate(t *testing.T) {
	if err := (Policy{HoldTime: time.Second}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, p := range []Policy{{}, {HoldTime: -time.Second}, {HoldTime: time.Second, CompleteAt: -1}} {
		if err := p.Validate(); !errors.Is(err, ErrInvalidPolicy) {
			t.Errorf("Validate(%+v) = %v, want ErrInvalidPolicy", p, err)
		}
	}
}

func TestOutcome_String(t *testing.T) {
	if Completed.String() != "completed" || DroppedEarly.String() != "dropped_early" {
		t.Error("unexpected outcome names")
	}
	if Credited.String() != "credited" {
		t.Error("unexpected phase name")
	}
}
