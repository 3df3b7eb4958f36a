package service

import "context"

// EventPublisher broadcasts cash events (ledger or session changed) so
// clients can refresh live totals without polling. Publishing is
// loss-tolerant — subscribers re-fetch the report on every event — so
// implementations log failures instead of propagating them.
type EventPublisher interface {
	PublishCashEvent(ctx context.Context, day, kind string)
}

// ReportDispatcher enqueues the closure-report job after a successful close.
type ReportDispatcher interface {
	EnqueueClosureReport(ctx context.Context, day string) error
}

// Event kinds published on the cash channel.
const (
	EventLedgerChanged   = "ledger_changed"
	EventSessionOpened   = "session_opened"
	EventSessionClosed   = "session_closed"
	EventSessionReopened = "session_reopened"
)
