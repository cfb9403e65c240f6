package report

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ayusman/physioduel/internal/store"
)

var start = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func sampleHistory() ([]*store.Match, []*store.Completion) {
	ended := start.Add(2 * time.Minute)
	matches := []*store.Match{
		{
			ID:         "match-1",
			Exercise:   "arm_raise",
			StartedAt:  start,
			EndedAt:    &ended,
			Winner:     1,
			WinnerName: "Player 2",
			Players: []store.MatchPlayer{
				{Slot: 0, Name: "Player 1", HP: 0, MaxHP: 1000, Level: 1, XP: 15},
				{Slot: 1, Name: "Player 2", HP: 420, MaxHP: 1000, Level: 2, XP: 40},
			},
		},
		{ID: "match-2", Exercise: "squat", StartedAt: start.Add(time.Hour), Winner: store.NoWinner},
	}
	completions := []*store.Completion{
		{MatchID: "match-1", Player: 1, Exercise: "arm_raise", Level: 5, Magnitude: 20, Effect: "attack", Message: "Well done! Full movement completed", OccurredAt: start.Add(3 * time.Second)},
	}
	return matches, completions
}

func TestBuild(t *testing.T) {
	matches, completions := sampleHistory()

	f, err := Build(matches, completions)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != SheetMatches || sheets[1] != SheetCompletions {
		t.Fatalf("sheets = %v, want [%s %s]", sheets, SheetMatches, SheetCompletions)
	}

	rows, err := f.GetRows(SheetMatches)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("match rows = %d, want 3", len(rows))
	}
	if rows[0][0] != "Match" || rows[0][12] != "XP 2" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "match-1" || rows[1][3] != "2026-03-01 10:02:00" || rows[1][4] != "Player 2" {
		t.Errorf("first match row = %v", rows[1])
	}
	if rows[1][9] != "Player 2" || rows[1][10] != "420" {
		t.Errorf("second player columns = %v", rows[1][9:])
	}
	// Unfinished match leaves the end time empty
	if len(rows[2]) > 3 && rows[2][3] != "" {
		t.Errorf("unfinished match end = %q, want empty", rows[2][3])
	}

	crows, err := f.GetRows(SheetCompletions)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(crows) != 2 {
		t.Fatalf("completion rows = %d, want 2", len(crows))
	}
	want := []string{"match-1", "2026-03-01 10:00:03", "2", "arm_raise", "5", "attack", "20", "Well done! Full movement completed"}
	for i, w := range want {
		if crows[1][i] != w {
			t.Errorf("completion column %d = %q, want %q", i, crows[1][i], w)
		}
	}
}

func TestBuild_Empty(t *testing.T) {
	f, err := Build(nil, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetMatches)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("rows = %d, want header only", len(rows))
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	if err := s.Matches().Create(&store.Match{ID: "m1", Exercise: "squat", StartedAt: start}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	c := &store.Completion{MatchID: "m1", Player: 0, Exercise: "squat", Level: 2, Magnitude: 16, Effect: "heal", OccurredAt: start.Add(4 * time.Second)}
	if err := s.Completions().Add(c); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	path := filepath.Join(dir, "history.xlsx")
	if err := Export(s, path); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetCompletions)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 || rows[1][3] != "squat" {
		t.Errorf("completion rows = %v", rows)
	}
}

func TestMatchPDF(t *testing.T) {
	matches, completions := sampleHistory()

	data, err := MatchPDF(matches[0], completions)
	if err != nil {
		t.Fatalf("MatchPDF() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output does not look like a PDF: %q", data[:min(len(data), 16)])
	}

	// Unfinished match without players or completions still renders
	data, err = MatchPDF(matches[1], nil)
	if err != nil {
		t.Fatalf("MatchPDF() error = %v", err)
	}
	if len(data) == 0 {
		t.Error("empty PDF")
	}
}
