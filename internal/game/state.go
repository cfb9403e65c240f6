package game

import (
	"time"

	"github.com/ayusman/physioduel/internal/exercise"
	"github.com/ayusman/physioduel/internal/posture"
)

// State is a snapshot of a Game, safe to hand to other goroutines.
type State struct {
	Exercise posture.Kind `json:"exercise"`
	Players  []Player     `json:"players"`
	// Tracks are the per-player tracks of the current exercise.
	Tracks     []exercise.Track `json:"tracks"`
	GameOver   bool             `json:"game_over"`
	Winner     int              `json:"winner"`
	WinnerName string           `json:"winner_name,omitempty"`

	SessionSeconds  float64                  `json:"session_seconds"`
	ExerciseSeconds map[posture.Kind]float64 `json:"exercise_seconds"`
}

// FrameResult is returned by ProcessFrame.
type FrameResult struct {
	Events []exercise.Event `json:"events"`
	State  State            `json:"state"`
}

// State returns a snapshot of the game.
func (g *Game) State() State {
	s := State{
		Exercise:        g.exercise,
		GameOver:        g.gameOver,
		Winner:          g.winner,
		ExerciseSeconds: make(map[posture.Kind]float64, len(g.exerciseTime)),
	}
	for _, p := range g.players {
		s.Players = append(s.Players, p.Clone())
	}
	for _, t := range g.tracks[g.exercise] {
		s.Tracks = append(s.Tracks, *t.Clone())
	}
	if g.winner != NoPlayer {
		s.WinnerName = g.players[g.winner].Name
	}
	if !g.lastFrame.IsZero() {
		s.SessionSeconds = g.lastFrame.Sub(g.sessionStart).Seconds()
	}
	for kind, d := range g.exerciseTime {
		s.ExerciseSeconds[kind] = d.Seconds()
	}
	return s
}

// Track returns a copy of the track of player for kind.
func (g *Game) Track(kind posture.Kind, player int) (exercise.Track, bool) {
	tracks, ok := g.tracks[kind]
	if !ok || player < 0 || player >= len(tracks) {
		return exercise.Track{}, false
	}
	return *tracks[player].Clone(), true
}

// SessionTime returns the time elapsed between the first and the latest
// frame.
func (g *Game) SessionTime() time.Duration {
	return g.lastFrame.Sub(g.sessionStart)
}
