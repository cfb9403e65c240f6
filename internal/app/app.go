// Package app provides the application shell around the physioduel game
// core: it serializes frames into the game, records match history and fans
// results out to subscribers.
package app

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/physioduel/internal/exercise"
	"github.com/ayusman/physioduel/internal/game"
	"github.com/ayusman/physioduel/internal/pose"
	"github.com/ayusman/physioduel/internal/posture"
	"github.com/ayusman/physioduel/internal/store"
)

// ErrAlreadyRunning is returned by Start when a pipeline is already running.
var ErrAlreadyRunning = errors.New("pipeline already running")

// Config holds configuration options for the application.
type Config struct {
	// Store records match history. Optional.
	Store *store.Store
	Game  game.Config
	// Now supplies frame times for frames without a timestamp.
	// Defaults to time.Now.
	Now func() time.Time
}

// Subscriber receives every frame result that carries events.
type Subscriber func(game.FrameResult)

// App owns the game and serializes every call into it.
type App struct {
	config Config
	game   *game.Game

	matchID    string
	matchStart time.Time
	finished   bool

	subscribers map[int]Subscriber
	nextSub     int

	// notifyMu is taken before mu by ProcessFrame and held while
	// subscribers run, so results reach subscribers in processing order.
	notifyMu sync.Mutex

	mu     sync.Mutex
	stopCh chan struct{}
	done   chan struct{}
}

// New creates a new App and starts recording the first match.
func New(config Config) (*App, error) {
	if config.Now == nil {
		config.Now = time.Now
	}

	g, err := game.New(config.Game)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:      config,
		game:        g,
		subscribers: make(map[int]Subscriber),
	}
	a.beginMatch(config.Now())
	return a, nil
}

// MatchID returns the ID of the current match.
func (a *App) MatchID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.matchID
}

// State returns a snapshot of the game.
func (a *App) State() game.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.game.State()
}

// ProcessFrame feeds one frame into the game. Frames without a timestamp
// are stamped with the configured clock. Subscribers are called in the
// order frames were processed and must not call ProcessFrame.
func (a *App) ProcessFrame(frame pose.Frame) game.FrameResult {
	now := frame.Timestamp
	if now.IsZero() {
		now = a.config.Now()
	}

	a.notifyMu.Lock()
	defer a.notifyMu.Unlock()

	a.mu.Lock()
	result := a.game.ProcessFrame(frame.Players, now)
	a.record(result)
	subs := a.subscriberList()
	a.mu.Unlock()

	if len(result.Events) > 0 {
		for _, fn := range subs {
			fn(result)
		}
	}
	return result
}

// Restart closes the current match and starts a new one.
func (a *App) Restart() game.State {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.config.Now()
	a.finishMatch(now)
	a.game.Restart()
	a.beginMatch(now)

	log.Println("Match restarted")
	return a.game.State()
}

// SwitchExercise selects the exercise for subsequent frames.
func (a *App) SwitchExercise(kind posture.Kind) (game.State, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.game.SwitchExercise(kind); err != nil {
		return game.State{}, err
	}
	log.Printf("Switched exercise to %s", kind)
	return a.game.State(), nil
}

// Subscribe registers fn for frame results that carry events. The returned
// function removes the subscription.
func (a *App) Subscribe(fn Subscriber) func() {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextSub
	a.nextSub++
	a.subscribers[id] = fn

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subscribers, id)
	}
}

// Close stops the pipeline and records the current match as abandoned if it
// has not finished.
func (a *App) Close() {
	a.Stop()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.finishMatch(a.config.Now())
}

func (a *App) subscriberList() []Subscriber {
	subs := make([]Subscriber, 0, len(a.subscribers))
	for _, fn := range a.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func (a *App) beginMatch(now time.Time) {
	a.matchID = uuid.NewString()
	a.matchStart = now
	a.finished = false

	if a.config.Store == nil {
		return
	}
	m := &store.Match{
		ID:        a.matchID,
		Exercise:  string(a.game.Exercise()),
		StartedAt: now,
	}
	if err := a.config.Store.Matches().Create(m); err != nil {
		log.Printf("Failed to record match %s: %v", a.matchID, err)
	}
}

// record stores credited completions and closes the match on game over.
func (a *App) record(result game.FrameResult) {
	for _, ev := range result.Events {
		switch ev.Kind {
		case exercise.EventCompleted:
			log.Printf("%s completed %s level %d", a.playerName(ev.Player), ev.Exercise, ev.Level)
			if a.config.Store == nil {
				continue
			}
			c := &store.Completion{
				MatchID:    a.matchID,
				Player:     ev.Player,
				Exercise:   string(ev.Exercise),
				Level:      ev.Level,
				Magnitude:  ev.Magnitude,
				Effect:     string(ev.Effect),
				Message:    ev.Message,
				OccurredAt: ev.At,
			}
			if err := a.config.Store.Completions().Add(c); err != nil {
				log.Printf("Failed to record completion: %v", err)
			}

		case game.EventGameOver:
			log.Println(ev.Message)
			a.finishMatch(ev.At)
		}
	}
}

func (a *App) finishMatch(at time.Time) {
	if a.finished {
		return
	}
	a.finished = true

	if a.config.Store == nil {
		return
	}

	state := a.game.State()
	players := make([]store.MatchPlayer, len(state.Players))
	for i, p := range state.Players {
		players[i] = store.MatchPlayer{
			Slot:  p.ID,
			Name:  p.Name,
			HP:    p.HP,
			MaxHP: p.MaxHP,
			Level: p.Level,
			XP:    p.XP,
			Score: a.score(p.ID),
		}
	}

	winner := store.NoWinner
	if state.GameOver {
		winner = state.Winner
	}
	if err := a.config.Store.Matches().Finish(a.matchID, at, winner, state.WinnerName, players); err != nil {
		log.Printf("Failed to finish match %s: %v", a.matchID, err)
	}
}

// score sums the exercise score of a player across every exercise.
func (a *App) score(player int) int {
	total := 0
	for _, kind := range posture.Kinds {
		if t, ok := a.game.Track(kind, player); ok {
			total += t.Score
		}
	}
	return total
}

func (a *App) playerName(player int) string {
	names := a.config.Game.PlayerNames
	if player >= 0 && player < len(names) {
		return names[player]
	}
	return fmt.Sprintf("Player %d", player+1)
}
