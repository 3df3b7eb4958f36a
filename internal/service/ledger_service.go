package service

import (
	"context"
	"errors"
	"time"

	"cashdesk/internal/dto"
	"cashdesk/internal/model"
	"cashdesk/internal/reconcile"
	"cashdesk/internal/repository"

	"github.com/google/uuid"
)

type LedgerService interface {
	// Append records a cash-affecting event. The day's session must be open.
	// There is no balance check: a drawer can go negative on paper — that is
	// a discrepancy signal at closure, not a blocking error.
	Append(ctx context.Context, actor model.Actor, req dto.AppendEntryRequest) (*dto.EntryResponse, error)
	// Update rewrites an entry; elevated role, owning day open.
	Update(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdateEntryRequest) (*dto.EntryResponse, error)
	// Remove deletes an entry; same preconditions as Update.
	Remove(ctx context.Context, actor model.Actor, id uuid.UUID) error
	// ListForDay returns the day's entries, ascending for computation or
	// descending for display. Ordering is presentation only — totals are
	// order-independent sums.
	ListForDay(ctx context.Context, date string, asc bool) ([]dto.EntryResponse, error)
}

type ledgerService struct {
	entries  repository.LedgerRepository
	sessions repository.SessionRepository
	loc      *time.Location
	events   EventPublisher // nil in unit tests
}

func NewLedgerService(
	entries repository.LedgerRepository,
	sessions repository.SessionRepository,
	loc *time.Location,
	events EventPublisher,
) LedgerService {
	return &ledgerService{entries: entries, sessions: sessions, loc: loc, events: events}
}

// ── Append ────────────────────────────────────────────────────────────────────

func (s *ledgerService) Append(ctx context.Context, actor model.Actor, req dto.AppendEntryRequest) (*dto.EntryResponse, error) {
	if !model.ValidEntryType(req.Type) {
		return nil, validationf("invalid entry type %q", req.Type)
	}
	if req.Amount.IsNegative() {
		return nil, validationf("amount must be a non-negative magnitude")
	}

	occurredAt := time.Now().In(s.loc)
	if req.OccurredAt != nil {
		occurredAt = req.OccurredAt.In(s.loc)
	}

	day := reconcile.DayOf(occurredAt, s.loc)
	if err := s.requireOpenDay(ctx, day); err != nil {
		return nil, err
	}

	category := req.Category
	if category == "" {
		category = model.DefaultCategory
	}
	var relatedID *uuid.UUID
	if req.RelatedID != nil {
		id, err := uuid.Parse(*req.RelatedID)
		if err != nil {
			return nil, validationf("invalid related_id %q", *req.RelatedID)
		}
		relatedID = &id
	}

	entry := &model.LedgerEntry{
		Type:       req.Type,
		Label:      req.Label,
		Category:   category,
		Amount:     reconcile.SignAmount(req.Type, req.Amount),
		OccurredAt: occurredAt,
		Actor:      actor.Name,
		RelatedID:  relatedID,
		Imported:   req.Imported,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}
	s.publish(ctx, day)
	return entryResponse(entry), nil
}

// ── Update ────────────────────────────────────────────────────────────────────

func (s *ledgerService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdateEntryRequest) (*dto.EntryResponse, error) {
	if !actor.Elevated() {
		return nil, ErrPermission
	}
	if !model.ValidEntryType(req.Type) {
		return nil, validationf("invalid entry type %q", req.Type)
	}
	if req.Amount.IsNegative() {
		return nil, validationf("amount must be a non-negative magnitude")
	}

	entry, err := s.findEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	day := reconcile.DayOf(entry.OccurredAt, s.loc)
	if err := s.requireOpenDay(ctx, day); err != nil {
		return nil, err
	}

	entry.Type = req.Type
	entry.Label = req.Label
	if req.Category != "" {
		entry.Category = req.Category
	}
	// Re-sign from the raw magnitude and the (possibly changed) type.
	entry.Amount = reconcile.SignAmount(req.Type, req.Amount)

	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, err
	}
	s.publish(ctx, day)
	return entryResponse(entry), nil
}

// ── Remove ────────────────────────────────────────────────────────────────────

func (s *ledgerService) Remove(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if !actor.Elevated() {
		return ErrPermission
	}
	entry, err := s.findEntry(ctx, id)
	if err != nil {
		return err
	}
	day := reconcile.DayOf(entry.OccurredAt, s.loc)
	if err := s.requireOpenDay(ctx, day); err != nil {
		return err
	}
	if err := s.entries.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, day)
	return nil
}

// ── ListForDay ────────────────────────────────────────────────────────────────

func (s *ledgerService) ListForDay(ctx context.Context, date string, asc bool) ([]dto.EntryResponse, error) {
	start, end, err := reconcile.DayRange(date, s.loc)
	if err != nil {
		return nil, validationf("%v", err)
	}
	entries, err := s.entries.ListRange(ctx, start, end, asc)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, *entryResponse(&entries[i]))
	}
	return out, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// requireOpenDay enforces the lock-out: a closed day's ledger is immutable,
// and a day with no session cannot accumulate entries.
func (s *ledgerService) requireOpenDay(ctx context.Context, day string) error {
	session, err := s.sessions.FindByDate(ctx, day)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotOpen
		}
		return err
	}
	if session.Status != model.SessionOpen {
		return ErrSessionClosed
	}
	return nil
}

func (s *ledgerService) findEntry(ctx context.Context, id uuid.UUID) (*model.LedgerEntry, error) {
	entry, err := s.entries.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *ledgerService) publish(ctx context.Context, day string) {
	if s.events != nil {
		s.events.PublishCashEvent(ctx, day, EventLedgerChanged)
	}
}

func entryResponse(e *model.LedgerEntry) *dto.EntryResponse {
	var related *string
	if e.RelatedID != nil {
		r := e.RelatedID.String()
		related = &r
	}
	return &dto.EntryResponse{
		ID:         e.ID.String(),
		Type:       e.Type,
		Label:      e.Label,
		Category:   e.Category,
		Amount:     e.Amount,
		OccurredAt: e.OccurredAt.Format(time.RFC3339),
		Actor:      e.Actor,
		RelatedID:  related,
		Imported:   e.Imported,
	}
}
