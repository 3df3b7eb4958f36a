package infra

// pdf.go — Closure report PDF generation using go-pdf/fpdf.
// Generates an A4 report for a closed cash day with:
//   - Store header, day and who closed it
//   - Opening balance and per-type totals
//   - Theoretical vs counted balance and the discrepancy
//   - Full entry table (time, type, label, amount)
//
// The output file is saved to storagePath/closure_{date}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"cashdesk/internal/dto"

	"github.com/go-pdf/fpdf"
)

// GenerateClosureReportPDF writes the closure report for one day.
// storagePath is created if needed. Returns the absolute path of the file.
func GenerateClosureReportPDF(report *dto.SessionReport, entries []dto.EntryResponse, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("closure_%s.pdf", report.Date)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Cashdesk", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(contentW, 6, "Daily Closure Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Day: %s", report.Date), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if report.ClosedBy != nil {
		pdf.CellFormat(contentW, 5, fmt.Sprintf("Closed by: %s", *report.ClosedBy), "", 1, "L", false, 0, "")
	}
	if report.ClosedAt != nil {
		pdf.CellFormat(contentW, 5, fmt.Sprintf("Closed at: %s", *report.ClosedAt), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	// ── Balances ─────────────────────────────────────────────────────────────
	labelW := contentW * 0.6
	valueW := contentW * 0.4

	row := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(labelW, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 6, value, "", 1, "R", false, 0, "")
	}

	row("Opening balance:", "$"+report.OpeningBalance.StringFixed(2), false)
	if report.WasModified && report.ModificationReason != nil {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(contentW, 5, fmt.Sprintf("Opening adjusted: %s", *report.ModificationReason), "", 1, "L", false, 0, "")
	}
	row("Sales:", "$"+report.Totals.Sales.StringFixed(2), false)
	row("Expenses:", "-$"+report.Totals.Expenses.StringFixed(2), false)
	row("Deposits:", "-$"+report.Totals.Deposits.StringFixed(2), false)
	row("Theoretical balance:", "$"+report.TheoreticalBalance.StringFixed(2), true)
	if report.ClosingBalanceReal != nil {
		row("Counted balance:", "$"+report.ClosingBalanceReal.StringFixed(2), true)
	}
	if report.Discrepancy != nil {
		row("Discrepancy:", "$"+report.Discrepancy.StringFixed(2), true)
	}

	pdf.Ln(3)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	// ── Entry table ──────────────────────────────────────────────────────────
	col1 := contentW * 0.18 // time
	col2 := contentW * 0.14 // type
	col3 := contentW * 0.48 // label
	col4 := contentW * 0.20 // amount

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(col1, 6, "Time", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Type", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "Label", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 6, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, e := range entries {
		at := e.OccurredAt
		if len(at) >= 16 {
			at = at[11:16] // HH:MM from RFC3339
		}
		label := e.Label
		if len(label) > 48 {
			label = label[:47] + "…"
		}
		pdf.CellFormat(col1, 5, at, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, e.Type, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col4, 5, "$"+e.Amount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("%d entries", report.EntryCount), "", 1, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
