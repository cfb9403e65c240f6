// Package report exports recorded session history as an XLSX workbook.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ayusman/physioduel/internal/store"
)

// Sheet names
const (
	SheetMatches     = "Matches"
	SheetCompletions = "Completions"
)

const timeLayout = "2006-01-02 15:04:05"

var matchHeaders = []string{
	"Match", "Exercise", "Started", "Ended", "Winner",
	"Player 1", "HP 1", "Level 1", "XP 1",
	"Player 2", "HP 2", "Level 2", "XP 2",
}

var completionHeaders = []string{
	"Match", "Time", "Player", "Exercise", "Level", "Effect", "Magnitude", "Message",
}

// Build creates a workbook with one sheet of matches and one of credited
// completions.
func Build(matches []*store.Match, completions []*store.Completion) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetMatches); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(SheetCompletions); err != nil {
		f.Close()
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"2E75B6"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := writeMatches(f, headerStyle, matches); err != nil {
		f.Close()
		return nil, fmt.Errorf("matches sheet: %w", err)
	}
	if err := writeCompletions(f, headerStyle, completions); err != nil {
		f.Close()
		return nil, fmt.Errorf("completions sheet: %w", err)
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Export reads the full history from the store and saves it to path.
func Export(s *store.Store, path string) error {
	matches, err := s.Matches().List()
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	completions, err := s.Completions().List()
	if err != nil {
		return fmt.Errorf("list completions: %w", err)
	}

	f, err := Build(matches, completions)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, style int, headers []string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeMatches(f *excelize.File, style int, matches []*store.Match) error {
	sheet := SheetMatches
	if err := writeHeader(f, sheet, style, matchHeaders); err != nil {
		return err
	}

	for i, m := range matches {
		values := []any{m.ID, m.Exercise, m.StartedAt.Format(timeLayout), formatEnded(m.EndedAt), m.WinnerName}
		for slot := 0; slot < 2; slot++ {
			values = append(values, playerColumns(m.Players, slot)...)
		}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 38); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", "E", 20)
}

func writeCompletions(f *excelize.File, style int, completions []*store.Completion) error {
	sheet := SheetCompletions
	if err := writeHeader(f, sheet, style, completionHeaders); err != nil {
		return err
	}

	for i, c := range completions {
		values := []any{
			c.MatchID,
			c.OccurredAt.Format(timeLayout),
			c.Player + 1,
			c.Exercise,
			c.Level,
			c.Effect,
			c.Magnitude,
			c.Message,
		}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 38); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "D", 20); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "H", "H", 40)
}

func formatEnded(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeLayout)
}

func playerColumns(players []store.MatchPlayer, slot int) []any {
	for _, p := range players {
		if p.Slot == slot {
			return []any{p.Name, p.HP, p.Level, p.XP}
		}
	}
	return []any{"", "", "", ""}
}
