package service_test

import (
	"context"
	"testing"
	"time"

	"cashdesk/internal/dto"
	"cashdesk/internal/model"
	"cashdesk/internal/reconcile"
	"cashdesk/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	cashier    = model.Actor{Name: "Carla", Role: model.RoleCashier}
	supervisor = model.Actor{Name: "Sam", Role: model.RoleSupervisor}
	admin      = model.Actor{Name: "Ada", Role: model.RoleAdmin}
)

type sessionEnv struct {
	sessions   *fakeSessionRepo
	ledger     *fakeLedgerRepo
	events     *fakeEvents
	dispatcher *fakeDispatcher
	svc        service.SessionService
}

func newSessionEnv() *sessionEnv {
	env := &sessionEnv{
		sessions:   newFakeSessionRepo(),
		ledger:     newFakeLedgerRepo(),
		events:     &fakeEvents{},
		dispatcher: &fakeDispatcher{},
	}
	env.svc = service.NewSessionService(env.sessions, env.ledger, time.UTC, env.events, env.dispatcher)
	return env
}

// appendEntry puts a signed entry straight into the fake ledger at noon of the day.
func (e *sessionEnv) appendEntry(t *testing.T, date, typ string, amount float64) {
	t.Helper()
	day, err := time.ParseInLocation(reconcile.DateLayout, date, time.UTC)
	require.NoError(t, err)
	require.NoError(t, e.ledger.Create(context.Background(), &model.LedgerEntry{
		Type:       typ,
		Label:      "test entry",
		Category:   model.DefaultCategory,
		Amount:     reconcile.SignAmount(typ, decimal.NewFromFloat(amount)),
		OccurredAt: day.Add(12 * time.Hour),
		Actor:      cashier.Name,
	}))
}

// ── Proposal ─────────────────────────────────────────────────────────────────

func TestProposalFirstSessionIsZero(t *testing.T) {
	env := newSessionEnv()

	p, err := env.svc.Proposal(context.Background(), "2026-03-15")
	require.NoError(t, err)
	assert.True(t, p.ProposedBalance.IsZero())
	assert.Nil(t, p.PreviousDate)
}

func TestProposalCarriesForwardCountedBalance(t *testing.T) {
	env := newSessionEnv()
	closeDay(t, env, "2026-03-15", decimal.NewFromInt(500), map[string]int{"200": 5, "20": 1, "10": 1})

	// Next day — and across a multi-day gap — the proposal is the last counted balance.
	for _, date := range []string{"2026-03-16", "2026-03-20"} {
		p, err := env.svc.Proposal(context.Background(), date)
		require.NoError(t, err)
		assert.True(t, p.ProposedBalance.Equal(decimal.NewFromInt(1030)), "proposal for %s", date)
		require.NotNil(t, p.PreviousDate)
		assert.Equal(t, "2026-03-15", *p.PreviousDate)
	}
}

// closeDay opens a session with the proposed balance and closes it with counts.
func closeDay(t *testing.T, env *sessionEnv, date string, opening decimal.Decimal, counts map[string]int) *dto.ClosureResult {
	t.Helper()
	p, err := env.svc.Proposal(context.Background(), date)
	require.NoError(t, err)

	req := dto.OpenSessionRequest{Date: date, OpeningBalance: opening}
	if !opening.Equal(p.ProposedBalance) {
		req.Reason = "test override"
	}
	_, err = env.svc.Open(context.Background(), cashier, req)
	require.NoError(t, err)

	res, err := env.svc.Close(context.Background(), cashier, dto.CloseSessionRequest{Date: date, Counts: counts})
	require.NoError(t, err)
	return res
}

// ── Open ─────────────────────────────────────────────────────────────────────

func TestOpenDeviationRequiresJustification(t *testing.T) {
	env := newSessionEnv()

	// No prior session: proposal is zero, so 500 is a deviation.
	_, err := env.svc.Open(context.Background(), cashier, dto.OpenSessionRequest{
		Date: "2026-03-15", OpeningBalance: decimal.NewFromInt(500),
	})
	assert.ErrorIs(t, err, service.ErrValidation)

	// Whitespace is not a justification.
	_, err = env.svc.Open(context.Background(), cashier, dto.OpenSessionRequest{
		Date: "2026-03-15", OpeningBalance: decimal.NewFromInt(500), Reason: "   ",
	})
	assert.ErrorIs(t, err, service.ErrValidation)

	report, err := env.svc.Open(context.Background(), cashier, dto.OpenSessionRequest{
		Date: "2026-03-15", OpeningBalance: decimal.NewFromInt(500), Reason: "counted drawer by hand",
	})
	require.NoError(t, err)
	assert.True(t, report.WasModified)
	require.NotNil(t, report.ModificationReason)
	assert.Equal(t, "counted drawer by hand", *report.ModificationReason)
}

func TestOpenMatchingProposalNeedsNoReason(t *testing.T) {
	env := newSessionEnv()
	closeDay(t, env, "2026-03-15", decimal.Zero, map[string]int{"200": 5, "20": 1, "10": 1})

	report, err := env.svc.Open(context.Background(), cashier, dto.OpenSessionRequest{
		Date: "2026-03-16", OpeningBalance: decimal.NewFromInt(1030),
	})
	require.NoError(t, err)
	assert.False(t, report.WasModified)
	assert.Nil(t, report.ModificationReason)
	assert.True(t, report.PreviousClosingBalance.Equal(decimal.NewFromInt(1030)))
}

func TestOpenTwiceSameDayConflicts(t *testing.T) {
	env := newSessionEnv()

	_, err := env.svc.Open(context.Background(), cashier, dto.OpenSessionRequest{
		Date: "2026-03-15", OpeningBalance: decimal.Zero,
	})
	require.NoError(t, err)

	_, err = env.svc.Open(context.Background(), supervisor, dto.OpenSessionRequest{
		Date: "2026-03-15", OpeningBalance: decimal.Zero,
	})
	assert.ErrorIs(t, err, service.ErrStateConflict)
}

// ── Close ────────────────────────────────────────────────────────────────────

func TestCloseComputesDiscrepancy(t *testing.T) {
	env := newSessionEnv()

	_, err := env.svc.Open(context.Background(), cashier, dto.OpenSessionRequest{
		Date: "2026-03-15", OpeningBalance: decimal.NewFromInt(500), Reason: "initial float",
	})
	require.NoError(t, err)

	env.appendEntry(t, "2026-03-15", model.EntrySale, 1200)
	env.appendEntry(t, "2026-03-15", model.EntrySale, 300)
	env.appendEntry(t, "2026-03-15", model.EntryExpense, 150)
	env.appendEntry(t, "2026-03-15", model.EntryDeposit, 800)

	res, err := env.svc.Close(context.Background(), cashier, dto.CloseSessionRequest{
		Date:   "2026-03-15",
		Counts: map[string]int{"200": 5, "20": 1, "10": 1}, // 1030 counted
	})
	require.NoError(t, err)

	assert.True(t, res.TheoreticalBalance.Equal(decimal.NewFromInt(1050)))
	assert.True(t, res.CountedBalance.Equal(decimal.NewFromInt(1030)))
	assert.True(t, res.Discrepancy.Equal(decimal.NewFromInt(-20)), "shortage stays negative")
	assert.False(t, res.Balanced)
	assert.Equal(t, "Carla", res.ClosedBy)

	// All five closure fields persisted together
	stored, err := env.sessions.FindByDate(context.Background(), "2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, model.SessionClosed, stored.Status)
	require.NotNil(t, stored.Discrepancy)
	assert.True(t, stored.Discrepancy.Equal(decimal.NewFromInt(-20)))
	require.NotNil(t, stored.ClosingBalanceTheoretical)
	assert.True(t, stored.ClosingBalanceTheoretical.Equal(decimal.NewFromInt(1050)))

	// Closure report job enqueued for the day
	assert.Equal(t, []string{"2026-03-15"}, env.dispatcher.enqueued)
}

func TestCloseTwiceConflicts(t *testing.T) {
	env := newSessionEnv()
	closeDay(t, env, "2026-03-15", decimal.Zero, nil)

	_, err := env.svc.Close(context.Background(), cashier, dto.CloseSessionRequest{Date: "2026-03-15"})
	assert.ErrorIs(t, err, service.ErrStateConflict)
}

func TestCloseIgnoresEntriesOutsideDay(t *testing.T) {
	env := newSessionEnv()

	_, err := env.svc.Open(context.Background(), cashier, dto.OpenSessionRequest{
		Date: "2026-03-15", OpeningBalance: decimal.Zero,
	})
	require.NoError(t, err)

	env.appendEntry(t, "2026-03-15", model.EntrySale, 100)
	env.appendEntry(t, "2026-03-16", model.EntrySale, 999) // next day — excluded

	res, err := env.svc.Close(context.Background(), cashier, dto.CloseSessionRequest{
		Date: "2026-03-15", Counts: map[string]int{"100": 1},
	})
	require.NoError(t, err)
	assert.True(t, res.TheoreticalBalance.Equal(decimal.NewFromInt(100)))
	assert.True(t, res.Discrepancy.IsZero())
	assert.True(t, res.Balanced)
}

func TestCloseRejectsUnknownDenomination(t *testing.T) {
	env := newSessionEnv()

	_, err := env.svc.Open(context.Background(), cashier, dto.OpenSessionRequest{
		Date: "2026-03-15", OpeningBalance: decimal.Zero,
	})
	require.NoError(t, err)

	_, err = env.svc.Close(context.Background(), cashier, dto.CloseSessionRequest{
		Date: "2026-03-15", Counts: map[string]int{"500": 1},
	})
	assert.ErrorIs(t, err, service.ErrValidation)

	// The failed close left the session open
	stored, err := env.sessions.FindByDate(context.Background(), "2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, model.SessionOpen, stored.Status)
}

func TestCloseEmptyCountIsValid(t *testing.T) {
	env := newSessionEnv()

	_, err := env.svc.Open(context.Background(), cashier, dto.OpenSessionRequest{
		Date: "2026-03-15", OpeningBalance: decimal.NewFromInt(100), Reason: "float",
	})
	require.NoError(t, err)

	res, err := env.svc.Close(context.Background(), cashier, dto.CloseSessionRequest{Date: "2026-03-15"})
	require.NoError(t, err)
	assert.True(t, res.CountedBalance.IsZero())
	assert.True(t, res.Discrepancy.Equal(decimal.NewFromInt(-100)))
}

// ── Reopen ───────────────────────────────────────────────────────────────────

func TestReopenRequiresAdmin(t *testing.T) {
	env := newSessionEnv()
	closeDay(t, env, "2026-03-15", decimal.Zero, nil)

	_, err := env.svc.Reopen(context.Background(), supervisor, "2026-03-15")
	assert.ErrorIs(t, err, service.ErrPermission)
}

func TestReopenOnlyClosedSessions(t *testing.T) {
	env := newSessionEnv()

	_, err := env.svc.Open(context.Background(), cashier, dto.OpenSessionRequest{
		Date: "2026-03-15", OpeningBalance: decimal.Zero,
	})
	require.NoError(t, err)

	_, err = env.svc.Reopen(context.Background(), admin, "2026-03-15")
	assert.ErrorIs(t, err, service.ErrStateConflict)

	_, err = env.svc.Reopen(context.Background(), admin, "2026-03-20")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestReopenAndRecloseWithNewCount(t *testing.T) {
	env := newSessionEnv()

	_, err := env.svc.Open(context.Background(), cashier, dto.OpenSessionRequest{
		Date: "2026-03-15", OpeningBalance: decimal.NewFromInt(500), Reason: "float",
	})
	require.NoError(t, err)
	env.appendEntry(t, "2026-03-15", model.EntrySale, 550)

	_, err = env.svc.Close(context.Background(), cashier, dto.CloseSessionRequest{
		Date: "2026-03-15", Counts: map[string]int{"200": 5}, // 1000 vs 1050 → -50
	})
	require.NoError(t, err)

	report, err := env.svc.Reopen(context.Background(), admin, "2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, model.SessionOpen, report.Status)
	assert.Nil(t, report.Discrepancy)
	assert.Nil(t, report.ClosedAt)
	assert.Nil(t, report.ClosedBy)
	assert.Nil(t, report.Balanced)

	// The drawer recount found the missing bill: reclose balances.
	res, err := env.svc.Close(context.Background(), supervisor, dto.CloseSessionRequest{
		Date: "2026-03-15", Counts: map[string]int{"200": 5, "50": 1},
	})
	require.NoError(t, err)
	assert.True(t, res.Discrepancy.IsZero())
	assert.True(t, res.Balanced)
	assert.Equal(t, "Sam", res.ClosedBy)
}

// ── Report / History ─────────────────────────────────────────────────────────

func TestReportRecomputesLiveTotals(t *testing.T) {
	env := newSessionEnv()

	_, err := env.svc.Open(context.Background(), cashier, dto.OpenSessionRequest{
		Date: "2026-03-15", OpeningBalance: decimal.NewFromInt(500), Reason: "float",
	})
	require.NoError(t, err)
	env.appendEntry(t, "2026-03-15", model.EntrySale, 200)

	report, err := env.svc.Report(context.Background(), "2026-03-15")
	require.NoError(t, err)
	assert.True(t, report.TheoreticalBalance.Equal(decimal.NewFromInt(700)))
	assert.Equal(t, 1, report.EntryCount)

	env.appendEntry(t, "2026-03-15", model.EntryExpense, 50)

	report, err = env.svc.Report(context.Background(), "2026-03-15")
	require.NoError(t, err)
	assert.True(t, report.TheoreticalBalance.Equal(decimal.NewFromInt(650)))
	assert.Equal(t, 2, report.EntryCount)
}

func TestHistoryNewestFirst(t *testing.T) {
	env := newSessionEnv()
	closeDay(t, env, "2026-03-15", decimal.Zero, nil)
	closeDay(t, env, "2026-03-16", decimal.Zero, nil)
	closeDay(t, env, "2026-03-17", decimal.Zero, nil)

	summaries, total, err := env.svc.History(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, summaries, 2)
	assert.Equal(t, "2026-03-17", summaries[0].Date)
	assert.Equal(t, "2026-03-16", summaries[1].Date)
}

func TestLifecycleEventsPublished(t *testing.T) {
	env := newSessionEnv()
	closeDay(t, env, "2026-03-15", decimal.Zero, nil)
	_, err := env.svc.Reopen(context.Background(), admin, "2026-03-15")
	require.NoError(t, err)

	var kinds []string
	for _, e := range env.events.published {
		kinds = append(kinds, e.kind)
	}
	assert.Equal(t, []string{
		service.EventSessionOpened,
		service.EventSessionClosed,
		service.EventSessionReopened,
	}, kinds)
}
