package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/ayusman/physioduel/internal/store"
)

const (
	pageMargin = 40
	rowHeight  = 16
)

// MatchPDF renders a printable one-match summary: the result, each player's
// final record and every credited hold.
func MatchPDF(m *store.Match, completions []*store.Completion) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 24, "PhysioDuel Match Summary", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, rowHeight, "Match: "+m.ID, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, rowHeight, "Exercise: "+m.Exercise, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, rowHeight, "Started: "+m.StartedAt.Format(timeLayout), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, rowHeight, "Ended: "+formatEnded(m.EndedAt), "", 1, "L", false, 0, "")

	result := "No winner"
	if m.Winner != store.NoWinner {
		result = m.WinnerName + " wins"
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 22, result, "", 1, "L", false, 0, "")
	pdf.Ln(6)

	table(pdf, []string{"Player", "HP", "Level", "XP", "Score"}, []float64{175, 85, 85, 85, 85}, func(add func(...string)) {
		for _, p := range m.Players {
			add(p.Name,
				fmt.Sprintf("%.0f / %.0f", p.HP, p.MaxHP),
				fmt.Sprint(p.Level),
				fmt.Sprintf("%.0f", p.XP),
				fmt.Sprint(p.Score))
		}
	})
	pdf.Ln(12)

	table(pdf, []string{"Time", "Player", "Exercise", "Level", "Effect"}, []float64{135, 70, 125, 70, 115}, func(add func(...string)) {
		for _, c := range completions {
			add(c.OccurredAt.Format("15:04:05"),
				fmt.Sprint(c.Player+1),
				c.Exercise,
				fmt.Sprint(c.Level),
				fmt.Sprintf("%s %.0f", c.Effect, c.Magnitude))
		}
	})

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// table draws a header row and the rows produced by fill.
func table(pdf *gofpdf.Fpdf, headers []string, widths []float64, fill func(add func(...string))) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(46, 117, 182)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], rowHeight+2, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	fill(func(cells ...string) {
		for i, c := range cells {
			pdf.CellFormat(widths[i], rowHeight, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	})
}
