package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ayusman/physioduel/internal/report"
)

func TestExportHandler(t *testing.T) {
	s := newTestStore(t)
	seedMatch(t, s, "match-1")
	handler := NewExportHandler(s)

	req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected Content-Type %s", ct)
	}

	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(report.SheetMatches)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "match-1" {
		t.Errorf("unexpected match rows %v", rows)
	}
}

func TestExportHandler_MethodNotAllowed(t *testing.T) {
	handler := NewExportHandler(newTestStore(t))

	req := httptest.NewRequest(http.MethodPost, "/api/export", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
