package server

import (
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/physioduel/internal/app"
	"github.com/ayusman/physioduel/internal/exercise"
	"github.com/ayusman/physioduel/internal/game"
	"github.com/ayusman/physioduel/internal/pose"
	"github.com/ayusman/physioduel/internal/store"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func newTestApp(t *testing.T, s *store.Store) *app.App {
	t.Helper()

	a, err := app.New(app.Config{
		Store: s,
		Game:  game.DefaultConfig(),
		Now:   func() time.Time { return t0 },
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	return a
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	t.Cleanup(func() {
		conn.Close()
	})
	return conn
}

func armRaiseFrame(t *testing.T, d time.Duration) []byte {
	t.Helper()

	raised, standing := pose.ArmRaisePose(5), pose.StandingPose()
	data, err := pose.EncodeFrame(pose.Frame{
		Players:   []*pose.Landmarks{&raised, &standing},
		Timestamp: t0.Add(d),
	})
	if err != nil {
		t.Fatalf("EncodeFrame() error = %v", err)
	}
	return data
}

func TestFramesHandler_ProcessesFrames(t *testing.T) {
	a := newTestApp(t, nil)
	srv := New(Config{App: a})
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	conn := dial(t, ts, "/api/frames")

	var hits int
	for d := time.Duration(0); d <= 1500*time.Millisecond; d += 100 * time.Millisecond {
		if err := conn.WriteMessage(websocket.TextMessage, armRaiseFrame(t, d)); err != nil {
			t.Fatalf("write frame: %v", err)
		}

		var result game.FrameResult
		if err := conn.ReadJSON(&result); err != nil {
			t.Fatalf("read result: %v", err)
		}
		for _, ev := range result.Events {
			if ev.Kind == game.EventHit {
				hits++
			}
		}
		if d == 1500*time.Millisecond && result.State.Players[1].HP != 980 {
			t.Errorf("expected target HP 980, got %v", result.State.Players[1].HP)
		}
	}

	if hits != 1 {
		t.Errorf("expected 1 hit, got %d", hits)
	}
}

func TestFramesHandler_InvalidFrame(t *testing.T) {
	a := newTestApp(t, nil)
	srv := New(Config{App: a})
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	conn := dial(t, ts, "/api/frames")

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	var reply socketError
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if reply.Error == "" {
		t.Error("expected an error reply")
	}

	// The socket stays usable after a bad frame
	if err := conn.WriteMessage(websocket.TextMessage, armRaiseFrame(t, 0)); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	var result game.FrameResult
	if err := conn.ReadJSON(&result); err != nil {
		t.Fatalf("read result: %v", err)
	}
	if len(result.State.Players) != 2 {
		t.Errorf("unexpected state %+v", result.State)
	}
}

func TestEventsHandler_Broadcasts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping websocket broadcast test")
	}

	a := newTestApp(t, nil)
	srv := New(Config{App: a})
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	events := dial(t, ts, "/api/events")

	// Wait for the subscriber to register
	deadline := time.Now().Add(2 * time.Second)
	for srv.events.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("events client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	for d := time.Duration(0); d <= 1500*time.Millisecond; d += 100 * time.Millisecond {
		frame, err := pose.DecodeFrame(armRaiseFrame(t, d))
		if err != nil {
			t.Fatalf("DecodeFrame() error = %v", err)
		}
		a.ProcessFrame(frame)
	}

	events.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var result game.FrameResult
		if err := events.ReadJSON(&result); err != nil {
			t.Fatalf("read broadcast: %v", err)
		}
		if len(result.Events) == 0 {
			t.Fatal("broadcast a result without events")
		}
		for _, ev := range result.Events {
			if ev.Kind == exercise.EventCompleted {
				return
			}
		}
	}
}

func TestEventsHandler_Close(t *testing.T) {
	a := newTestApp(t, nil)
	h := NewEventsHandler(a)

	h.Close()
	// Closing twice is safe
	h.Close()
}
