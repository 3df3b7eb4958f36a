package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"cashdesk/internal/dto"
	"cashdesk/internal/model"
	"cashdesk/internal/reconcile"
	"cashdesk/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type SessionService interface {
	// Proposal resolves the carry-forward opening balance for a date.
	Proposal(ctx context.Context, date string) (*dto.OpeningProposal, error)
	// Open creates the day's session (create-if-absent). A deviation from
	// the carry-forward proposal requires a justification.
	Open(ctx context.Context, actor model.Actor, req dto.OpenSessionRequest) (*dto.SessionReport, error)
	// Close computes the closure payload from the day's ledger and the
	// denomination count and writes it atomically.
	Close(ctx context.Context, actor model.Actor, req dto.CloseSessionRequest) (*dto.ClosureResult, error)
	// Reopen reverts a closed session to open. Admin only.
	Reopen(ctx context.Context, actor model.Actor, date string) (*dto.SessionReport, error)
	// Report returns the session with live totals recomputed from the ledger.
	Report(ctx context.Context, date string) (*dto.SessionReport, error)
	History(ctx context.Context, page, limit int) ([]dto.SessionSummary, int64, error)
}

type sessionService struct {
	sessions   repository.SessionRepository
	ledger     repository.LedgerRepository
	loc        *time.Location
	events     EventPublisher   // nil in unit tests
	dispatcher ReportDispatcher // nil in unit tests
}

func NewSessionService(
	sessions repository.SessionRepository,
	ledger repository.LedgerRepository,
	loc *time.Location,
	events EventPublisher,
	dispatcher ReportDispatcher,
) SessionService {
	return &sessionService{
		sessions:   sessions,
		ledger:     ledger,
		loc:        loc,
		events:     events,
		dispatcher: dispatcher,
	}
}

// ── Proposal ──────────────────────────────────────────────────────────────────

func (s *sessionService) Proposal(ctx context.Context, date string) (*dto.OpeningProposal, error) {
	if date == "" {
		date = reconcile.DayOf(time.Now(), s.loc)
	}
	if _, err := time.Parse(reconcile.DateLayout, date); err != nil {
		return nil, validationf("invalid date %q", date)
	}

	prev, err := s.sessions.LatestClosedBefore(ctx, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// First-ever session: propose zero.
			return &dto.OpeningProposal{Date: date, ProposedBalance: decimal.Zero}, nil
		}
		return nil, err
	}

	proposed := decimal.Zero
	if prev.ClosingBalanceReal != nil {
		proposed = *prev.ClosingBalanceReal
	}
	prevDate := prev.Date
	return &dto.OpeningProposal{Date: date, ProposedBalance: proposed, PreviousDate: &prevDate}, nil
}

// ── Open ──────────────────────────────────────────────────────────────────────

func (s *sessionService) Open(ctx context.Context, actor model.Actor, req dto.OpenSessionRequest) (*dto.SessionReport, error) {
	date := req.Date
	if date == "" {
		date = reconcile.DayOf(time.Now(), s.loc)
	}
	if _, err := time.Parse(reconcile.DateLayout, date); err != nil {
		return nil, validationf("invalid date %q", req.Date)
	}
	if req.OpeningBalance.IsNegative() {
		return nil, validationf("opening balance cannot be negative")
	}

	// PreviousClosingBalance is always recorded, override or not, so the
	// discrepancy-at-open can be audited later.
	previous := decimal.Zero
	prev, err := s.sessions.LatestClosedBefore(ctx, date)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if prev != nil && prev.ClosingBalanceReal != nil {
		previous = *prev.ClosingBalanceReal
	}

	modified := !req.OpeningBalance.Equal(previous)
	var reason *string
	if modified {
		// Deviating from the carry-forward proposal requires a justification;
		// without one nothing is written.
		trimmed := strings.TrimSpace(req.Reason)
		if trimmed == "" {
			return nil, ErrJustificationRequired
		}
		reason = &trimmed
	}

	session := &model.CashSession{
		Date:                   date,
		Status:                 model.SessionOpen,
		OpeningBalance:         req.OpeningBalance,
		OpenedAt:               time.Now(),
		OpenedBy:               actor.Name,
		WasModified:            modified,
		ModificationReason:     reason,
		PreviousClosingBalance: previous,
		Imported:               req.Imported,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSessionAlreadyOpen
		}
		return nil, err
	}

	log.Info().
		Str("date", date).
		Str("opened_by", actor.Name).
		Str("opening_balance", req.OpeningBalance.StringFixed(2)).
		Bool("was_modified", modified).
		Msg("cash session opened")
	s.publish(ctx, date, EventSessionOpened)

	return s.buildReport(ctx, session)
}

// ── Close ─────────────────────────────────────────────────────────────────────

func (s *sessionService) Close(ctx context.Context, actor model.Actor, req dto.CloseSessionRequest) (*dto.ClosureResult, error) {
	session, err := s.findSession(ctx, req.Date)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionOpen {
		return nil, ErrSessionClosed
	}

	counted, err := s.countedBalance(req)
	if err != nil {
		return nil, err
	}

	start, end, err := reconcile.DayRange(req.Date, s.loc)
	if err != nil {
		return nil, validationf("%v", err)
	}
	entries, err := s.ledger.ListRange(ctx, start, end, true)
	if err != nil {
		return nil, err
	}

	totals := reconcile.SumByType(entries)
	theoretical := reconcile.Theoretical(session.OpeningBalance, totals)
	// Stored exactly as computed — a shortage of 20 stays −20, never clamped.
	discrepancy := counted.Sub(theoretical)

	closure := repository.SessionClosure{
		Real:        counted,
		Theoretical: theoretical,
		Discrepancy: discrepancy,
		ClosedAt:    time.Now(),
		ClosedBy:    actor.Name,
	}
	if err := s.sessions.Close(ctx, req.Date, closure); err != nil {
		if errors.Is(err, repository.ErrStale) {
			// Raced with another close or a reopen.
			return nil, ErrSessionClosed
		}
		return nil, err
	}

	log.Info().
		Str("date", req.Date).
		Str("closed_by", actor.Name).
		Str("theoretical", theoretical.StringFixed(2)).
		Str("counted", counted.StringFixed(2)).
		Str("discrepancy", discrepancy.StringFixed(2)).
		Msg("cash session closed")
	s.publish(ctx, req.Date, EventSessionClosed)

	if s.dispatcher != nil && !req.Imported {
		if err := s.dispatcher.EnqueueClosureReport(ctx, req.Date); err != nil {
			// The closure itself landed; the report can be regenerated.
			log.Error().Err(err).Str("date", req.Date).Msg("failed to enqueue closure report")
		}
	}

	return &dto.ClosureResult{
		Date:               req.Date,
		Totals:             totalsResponse(totals),
		TheoreticalBalance: theoretical,
		CountedBalance:     counted,
		Discrepancy:        discrepancy,
		Balanced:           reconcile.Balanced(discrepancy),
		ClosedAt:           closure.ClosedAt.Format(time.RFC3339),
		ClosedBy:           actor.Name,
	}, nil
}

func (s *sessionService) countedBalance(req dto.CloseSessionRequest) (decimal.Decimal, error) {
	if req.CountedOverride != nil {
		if req.CountedOverride.IsNegative() {
			return decimal.Zero, validationf("counted balance cannot be negative")
		}
		return *req.CountedOverride, nil
	}
	counts := make(reconcile.DenominationCount, len(req.Counts))
	for key, qty := range req.Counts {
		value, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return decimal.Zero, validationf("invalid denomination %q", key)
		}
		counts[value] = qty
	}
	if err := counts.Validate(); err != nil {
		return decimal.Zero, validationf("%v", err)
	}
	return reconcile.Counted(counts), nil
}

// ── Reopen ────────────────────────────────────────────────────────────────────

func (s *sessionService) Reopen(ctx context.Context, actor model.Actor, date string) (*dto.SessionReport, error) {
	if !actor.Admin() {
		return nil, ErrPermission
	}

	session, err := s.findSession(ctx, date)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionClosed {
		return nil, ErrSessionNotOpen
	}

	if err := s.sessions.Reopen(ctx, date); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return nil, ErrSessionNotOpen
		}
		return nil, err
	}

	// The overwritten closure values go into the log: this WARN line plus the
	// nulled fields are the only audit trail of a reopen.
	event := log.Warn().
		Str("date", date).
		Str("reopened_by", actor.Name)
	if session.ClosedBy != nil {
		event = event.Str("was_closed_by", *session.ClosedBy)
	}
	if session.ClosedAt != nil {
		event = event.Time("was_closed_at", *session.ClosedAt)
	}
	if session.Discrepancy != nil {
		event = event.Str("had_discrepancy", session.Discrepancy.StringFixed(2))
	}
	event.Msg("cash session reopened")
	s.publish(ctx, date, EventSessionReopened)

	session.Status = model.SessionOpen
	session.ClosedAt = nil
	session.ClosedBy = nil
	session.ClosingBalanceReal = nil
	session.ClosingBalanceTheoretical = nil
	session.Discrepancy = nil
	return s.buildReport(ctx, session)
}

// ── Report / History ──────────────────────────────────────────────────────────

func (s *sessionService) Report(ctx context.Context, date string) (*dto.SessionReport, error) {
	session, err := s.findSession(ctx, date)
	if err != nil {
		return nil, err
	}
	return s.buildReport(ctx, session)
}

func (s *sessionService) History(ctx context.Context, page, limit int) ([]dto.SessionSummary, int64, error) {
	sessions, total, err := s.sessions.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	summaries := make([]dto.SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		summaries = append(summaries, dto.SessionSummary{
			Date:               sess.Date,
			Status:             sess.Status,
			OpeningBalance:     sess.OpeningBalance,
			ClosingBalanceReal: sess.ClosingBalanceReal,
			Discrepancy:        sess.Discrepancy,
			ClosedBy:           sess.ClosedBy,
			WasModified:        sess.WasModified,
			Imported:           sess.Imported,
		})
	}
	return summaries, total, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *sessionService) findSession(ctx context.Context, date string) (*model.CashSession, error) {
	if _, err := time.Parse(reconcile.DateLayout, date); err != nil {
		return nil, validationf("invalid date %q", date)
	}
	session, err := s.sessions.FindByDate(ctx, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *sessionService) publish(ctx context.Context, day, kind string) {
	if s.events != nil {
		s.events.PublishCashEvent(ctx, day, kind)
	}
}

// buildReport recomputes live totals through the same engine the closure
// uses, so the in-session view and the stored record can never disagree.
func (s *sessionService) buildReport(ctx context.Context, session *model.CashSession) (*dto.SessionReport, error) {
	start, end, err := reconcile.DayRange(session.Date, s.loc)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledger.ListRange(ctx, start, end, true)
	if err != nil {
		return nil, err
	}
	totals := reconcile.SumByType(entries)

	report := &dto.SessionReport{
		Date:                   session.Date,
		Status:                 session.Status,
		OpeningBalance:         session.OpeningBalance,
		OpenedAt:               session.OpenedAt.Format(time.RFC3339),
		OpenedBy:               session.OpenedBy,
		WasModified:            session.WasModified,
		ModificationReason:     session.ModificationReason,
		PreviousClosingBalance: session.PreviousClosingBalance,
		Totals:                 totalsResponse(totals),
		TheoreticalBalance:     reconcile.Theoretical(session.OpeningBalance, totals),
		EntryCount:             len(entries),
		ClosingBalanceReal:     session.ClosingBalanceReal,
		ClosingBalanceTheoretical: session.ClosingBalanceTheoretical,
		Discrepancy:            session.Discrepancy,
		Imported:               session.Imported,
	}
	if session.ClosedAt != nil {
		t := session.ClosedAt.Format(time.RFC3339)
		report.ClosedAt = &t
	}
	report.ClosedBy = session.ClosedBy
	if session.Discrepancy != nil {
		balanced := reconcile.Balanced(*session.Discrepancy)
		report.Balanced = &balanced
	}
	return report, nil
}

func totalsResponse(t reconcile.Totals) dto.TotalsResponse {
	return dto.TotalsResponse{Sales: t.Sales, Expenses: t.Expenses, Deposits: t.Deposits}
}
