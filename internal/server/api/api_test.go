package api

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/physioduel/internal/app"
	"github.com/ayusman/physioduel/internal/game"
	"github.com/ayusman/physioduel/internal/store"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "physioduel-api-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
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
