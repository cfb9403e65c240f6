// Package server provides the HTTP and WebSocket server for physioduel.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/physioduel/internal/app"
	"github.com/ayusman/physioduel/internal/server/api"
	"github.com/ayusman/physioduel/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       *app.App
}

// Server represents the HTTP server for the physioduel application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	events *EventsHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	// Register live match endpoints if an App is configured
	if s.config.App != nil {
		gameHandler := api.NewGameHandler(s.config.App)
		s.mux.Handle("/api/state", gameHandler)
		s.mux.Handle("/api/restart", gameHandler)
		s.mux.Handle("/api/exercise", gameHandler)

		s.mux.Handle("/api/frames", NewFramesHandler(s.config.App))

		s.events = NewEventsHandler(s.config.App)
		s.mux.Handle("/api/events", s.events)
	}

	// Register history endpoints if Store is configured
	if s.config.Store != nil {
		matchHandler := api.NewMatchHandler(s.config.Store)
		s.mux.Handle("/api/matches", matchHandler)
		s.mux.Handle("/api/matches/", matchHandler)
		s.mux.Handle("/api/export", api.NewExportHandler(s.config.Store))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}
	if s.config.App != nil {
		response["match_id"] = s.config.App.MatchID()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// Close disconnects event subscribers.
func (s *Server) Close() {
	if s.events != nil {
		s.events.Close()
	}
}
