package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/physioduel/internal/report"
	"github.com/ayusman/physioduel/internal/store"
)

// MatchHandler handles HTTP requests for recorded matches.
type MatchHandler struct {
	store *store.Store
}

// NewMatchHandler creates a new MatchHandler with the given store.
func NewMatchHandler(s *store.Store) *MatchHandler {
	return &MatchHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *MatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/matches, /api/matches/{id} or /api/matches/{id}/report
	path := strings.TrimPrefix(r.URL.Path, "/api/matches")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	if id, ok := strings.CutSuffix(path, "/report"); ok {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.report(w, r, id)
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type playerResponse struct {
	Slot  int     `json:"slot"`
	Name  string  `json:"name"`
	HP    float64 `json:"hp"`
	MaxHP float64 `json:"max_hp"`
	Level int     `json:"level"`
	XP    float64 `json:"xp"`
	Score int     `json:"score"`
}

type completionResponse struct {
	Player     int     `json:"player"`
	Exercise   string  `json:"exercise"`
	Level      int     `json:"level"`
	Magnitude  float64 `json:"magnitude"`
	Effect     string  `json:"effect"`
	Message    string  `json:"message"`
	OccurredAt string  `json:"occurred_at"`
}

type matchResponse struct {
	ID          string               `json:"id"`
	Exercise    string               `json:"exercise"`
	StartedAt   string               `json:"started_at"`
	EndedAt     string               `json:"ended_at,omitempty"`
	Winner      int                  `json:"winner"`
	WinnerName  string               `json:"winner_name,omitempty"`
	Players     []playerResponse     `json:"players"`
	Completions []completionResponse `json:"completions,omitempty"`
}

type listMatchesResponse struct {
	Matches []matchResponse `json:"matches"`
}

func toMatchResponse(m *store.Match) matchResponse {
	resp := matchResponse{
		ID:         m.ID,
		Exercise:   m.Exercise,
		StartedAt:  m.StartedAt.Format(timeFormat),
		Winner:     m.Winner,
		WinnerName: m.WinnerName,
		Players:    make([]playerResponse, 0, len(m.Players)),
	}
	if m.EndedAt != nil {
		resp.EndedAt = m.EndedAt.Format(timeFormat)
	}
	for _, p := range m.Players {
		resp.Players = append(resp.Players, playerResponse{
			Slot:  p.Slot,
			Name:  p.Name,
			HP:    p.HP,
			MaxHP: p.MaxHP,
			Level: p.Level,
			XP:    p.XP,
			Score: p.Score,
		})
	}
	return resp
}

// list handles GET /api/matches.
func (h *MatchHandler) list(w http.ResponseWriter, r *http.Request) {
	matches, err := h.store.Matches().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list matches")
		return
	}

	response := listMatchesResponse{
		Matches: make([]matchResponse, 0, len(matches)),
	}
	for _, m := range matches {
		response.Matches = append(response.Matches, toMatchResponse(m))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/matches/{id} and includes the credited completions.
func (h *MatchHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	m, err := h.store.Matches().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Match not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get match")
		return
	}

	completions, err := h.store.Completions().ListByMatch(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list completions")
		return
	}

	resp := toMatchResponse(m)
	for _, c := range completions {
		resp.Completions = append(resp.Completions, completionResponse{
			Player:     c.Player,
			Exercise:   c.Exercise,
			Level:      c.Level,
			Magnitude:  c.Magnitude,
			Effect:     c.Effect,
			Message:    c.Message,
			OccurredAt: c.OccurredAt.Format(timeFormat),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// delete handles DELETE /api/matches/{id}.
func (h *MatchHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Matches().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Match not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete match")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// report handles GET /api/matches/{id}/report and returns a PDF summary.
func (h *MatchHandler) report(w http.ResponseWriter, r *http.Request, id string) {
	m, err := h.store.Matches().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Match not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get match")
		return
	}

	completions, err := h.store.Completions().ListByMatch(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list completions")
		return
	}

	pdf, err := report.MatchPDF(m, completions)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="physioduel-match.pdf"`)
	w.Write(pdf)
}
