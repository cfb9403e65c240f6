package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/physioduel/internal/app"
	"github.com/ayusman/physioduel/internal/game"
	"github.com/ayusman/physioduel/internal/posture"
)

// GameHandler handles the live match endpoints:
// GET /api/state, POST /api/restart, GET and PUT /api/exercise.
type GameHandler struct {
	app *app.App
}

// NewGameHandler creates a new GameHandler for the given app.
func NewGameHandler(a *app.App) *GameHandler {
	return &GameHandler{app: a}
}

type exerciseRequest struct {
	Exercise string `json:"exercise"`
}

type exerciseResponse struct {
	Exercise  posture.Kind   `json:"exercise"`
	Available []posture.Kind `json:"available"`
}

// ServeHTTP implements the http.Handler interface.
func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/state":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.app.State())

	case "/api/restart":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.app.Restart())

	case "/api/exercise":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, exerciseResponse{
				Exercise:  h.app.State().Exercise,
				Available: posture.Kinds,
			})
		case http.MethodPut:
			h.switchExercise(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}

	default:
		http.NotFound(w, r)
	}
}

// switchExercise handles PUT /api/exercise.
func (h *GameHandler) switchExercise(w http.ResponseWriter, r *http.Request) {
	var req exerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Exercise == "" {
		writeError(w, http.StatusBadRequest, "Exercise is required")
		return
	}

	state, err := h.app.SwitchExercise(posture.Kind(req.Exercise))
	if err != nil {
		if errors.Is(err, game.ErrUnknownExercise) {
			writeError(w, http.StatusBadRequest, "Unknown exercise")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to switch exercise")
		return
	}

	writeJSON(w, http.StatusOK, state)
}
