package worker

// report_worker.go
// Processes closure report jobs from QueueReports: renders the day's report
// as PDF and, when a back-office address is configured, chains an email job.

import (
	"context"
	"encoding/json"
	"fmt"

	"cashdesk/internal/infra"
	"cashdesk/internal/service"

	"github.com/rs/zerolog/log"
)

// ReportWorker renders closure report PDFs for closed days.
type ReportWorker struct {
	sessions    service.SessionService
	ledger      service.LedgerService
	dispatcher  *Dispatcher
	storagePath string
	reportEmail string
}

// NewReportWorker wires the dependencies for the closure report pipeline.
func NewReportWorker(
	sessions service.SessionService,
	ledger service.LedgerService,
	dispatcher *Dispatcher,
	storagePath string,
	reportEmail string,
) *ReportWorker {
	return &ReportWorker{
		sessions:    sessions,
		ledger:      ledger,
		dispatcher:  dispatcher,
		storagePath: storagePath,
		reportEmail: reportEmail,
	}
}

// Process handles a single closure report job:
//  1. Parse ReportJobPayload from the job envelope
//  2. Fetch the day's report and its entries
//  3. Render the PDF to the storage path
//  4. Optionally enqueue an email job to the back office
func (w *ReportWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReportJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("report_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}

	report, err := w.sessions.Report(ctx, payload.Day)
	if err != nil {
		return fmt.Errorf("report_worker: fetch report for %s: %w", payload.Day, err)
	}
	entries, err := w.ledger.ListForDay(ctx, payload.Day, true)
	if err != nil {
		return fmt.Errorf("report_worker: fetch entries for %s: %w", payload.Day, err)
	}

	pdfPath, err := infra.GenerateClosureReportPDF(report, entries, w.storagePath)
	if err != nil {
		return fmt.Errorf("report_worker: render PDF for %s: %w", payload.Day, err)
	}
	log.Info().Str("day", payload.Day).Str("pdf", pdfPath).Msg("report_worker: closure report generated")

	if w.reportEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("Closure report — %s", payload.Day)
	body := fmt.Sprintf("Attached is the closure report for %s.\nTheoretical: $%s\n",
		payload.Day, report.TheoreticalBalance.StringFixed(2))
	if report.Discrepancy != nil {
		body += fmt.Sprintf("Counted: $%s\nDiscrepancy: $%s\n",
			report.ClosingBalanceReal.StringFixed(2), report.Discrepancy.StringFixed(2))
	}

	emailJob := EmailJobPayload{
		ToEmail: w.reportEmail,
		Subject: subject,
		Body:    body,
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		log.Warn().Err(err).Str("day", payload.Day).Msg("report_worker: failed to enqueue email")
	} else {
		log.Info().Str("day", payload.Day).Msg("report_worker: email job enqueued")
	}
	return nil
}
