package api

import (
	"log"
	"net/http"

	"github.com/ayusman/physioduel/internal/report"
	"github.com/ayusman/physioduel/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves the session history as an XLSX workbook on
// GET /api/export.
type ExportHandler struct {
	store *store.Store
}

// NewExportHandler creates a new ExportHandler with the given store.
func NewExportHandler(s *store.Store) *ExportHandler {
	return &ExportHandler{store: s}
}

// ServeHTTP implements the http.Handler interface.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	matches, err := h.store.Matches().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list matches")
		return
	}
	completions, err := h.store.Completions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list completions")
		return
	}

	f, err := report.Build(matches, completions)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build report")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="physioduel-history.xlsx"`)
	if _, err := f.WriteTo(w); err != nil {
		log.Printf("Failed to write report: %v", err)
	}
}
