package service_test

// In-memory repository fakes. They reproduce the store-level contracts the
// services rely on: create-if-absent on sessions, status-guarded closure
// updates, and per-transaction counter increments.

import (
	"context"
	"sort"
	"time"

	"cashdesk/internal/model"
	"cashdesk/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Sessions ─────────────────────────────────────────────────────────────────

type fakeSessionRepo struct {
	sessions map[string]*model.CashSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*model.CashSession)}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *model.CashSession) error {
	if _, exists := r.sessions[s.Date]; exists {
		return repository.ErrDuplicate
	}
	cp := *s
	r.sessions[s.Date] = &cp
	return nil
}

func (r *fakeSessionRepo) FindByDate(_ context.Context, date string) (*model.CashSession, error) {
	s, ok := r.sessions[date]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) LatestClosedBefore(_ context.Context, date string) (*model.CashSession, error) {
	var best *model.CashSession
	for d, s := range r.sessions {
		if d < date && s.Status == model.SessionClosed {
			if best == nil || d > best.Date {
				best = s
			}
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (r *fakeSessionRepo) Close(_ context.Context, date string, c repository.SessionClosure) error {
	s, ok := r.sessions[date]
	if !ok || s.Status != model.SessionOpen {
		return repository.ErrStale
	}
	real, theoretical, discrepancy := c.Real, c.Theoretical, c.Discrepancy
	closedAt, closedBy := c.ClosedAt, c.ClosedBy
	s.Status = model.SessionClosed
	s.ClosingBalanceReal = &real
	s.ClosingBalanceTheoretical = &theoretical
	s.Discrepancy = &discrepancy
	s.ClosedAt = &closedAt
	s.ClosedBy = &closedBy
	return nil
}

func (r *fakeSessionRepo) Reopen(_ context.Context, date string) error {
	s, ok := r.sessions[date]
	if !ok || s.Status != model.SessionClosed {
		return repository.ErrStale
	}
	s.Status = model.SessionOpen
	s.ClosingBalanceReal = nil
	s.ClosingBalanceTheoretical = nil
	s.Discrepancy = nil
	s.ClosedAt = nil
	s.ClosedBy = nil
	return nil
}

func (r *fakeSessionRepo) List(_ context.Context, page, limit int) ([]model.CashSession, int64, error) {
	var all []model.CashSession
	for _, s := range r.sessions {
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Date > all[j].Date })
	total := int64(len(all))
	offset := (page - 1) * limit
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// seed installs a session directly, bypassing the create-if-absent guard.
func (r *fakeSessionRepo) seed(s *model.CashSession) {
	cp := *s
	r.sessions[s.Date] = &cp
}

// ── Ledger ───────────────────────────────────────────────────────────────────

type fakeLedgerRepo struct {
	entries []model.LedgerEntry
}

func newFakeLedgerRepo() *fakeLedgerRepo { return &fakeLedgerRepo{} }

func (r *fakeLedgerRepo) Create(_ context.Context, e *model.LedgerEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *fakeLedgerRepo) CreateTx(_ *gorm.DB, e *model.LedgerEntry) error {
	return r.Create(context.Background(), e)
}

func (r *fakeLedgerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.LedgerEntry, error) {
	for i := range r.entries {
		if r.entries[i].ID == id {
			cp := r.entries[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeLedgerRepo) Update(_ context.Context, e *model.LedgerEntry) error {
	for i := range r.entries {
		if r.entries[i].ID == e.ID {
			r.entries[i] = *e
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeLedgerRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range r.entries {
		if r.entries[i].ID == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeLedgerRepo) ListRange(_ context.Context, start, end time.Time, asc bool) ([]model.LedgerEntry, error) {
	var out []model.LedgerEntry
	for _, e := range r.entries {
		if !e.OccurredAt.Before(start) && e.OccurredAt.Before(end) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if asc {
			return out[i].OccurredAt.Before(out[j].OccurredAt)
		}
		return out[j].OccurredAt.Before(out[i].OccurredAt)
	})
	return out, nil
}

// ── Sales ────────────────────────────────────────────────────────────────────

type fakeSaleRepo struct {
	sales map[uuid.UUID]*model.Sale
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *fakeSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	cp := *s
	r.sales[s.ID] = &cp
	return nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSaleRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	return r.FindByID(context.Background(), id)
}

func (r *fakeSaleRepo) UpdateTx(_ *gorm.DB, s *model.Sale) error {
	if _, ok := r.sales[s.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *s
	r.sales[s.ID] = &cp
	return nil
}

func (r *fakeSaleRepo) List(_ context.Context, page, limit int) ([]model.Sale, int64, error) {
	var all []model.Sale
	for _, s := range r.sales {
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	offset := (page - 1) * limit
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ── Counters ─────────────────────────────────────────────────────────────────

type fakeCounterRepo struct {
	values map[string]int64
}

func newFakeCounterRepo() *fakeCounterRepo {
	return &fakeCounterRepo{values: make(map[string]int64)}
}

func (r *fakeCounterRepo) NextTx(_ *gorm.DB, name string) (int64, error) {
	r.values[name]++
	return r.values[name], nil
}

// ── Users ────────────────────────────────────────────────────────────────────

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.Active {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) List(_ context.Context, includeInactive bool) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if includeInactive || u.Active {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Active = active
	return nil
}

// ── Events / dispatcher ──────────────────────────────────────────────────────

type publishedEvent struct {
	day  string
	kind string
}

type fakeEvents struct {
	published []publishedEvent
}

func (f *fakeEvents) PublishCashEvent(_ context.Context, day, kind string) {
	f.published = append(f.published, publishedEvent{day: day, kind: kind})
}

type fakeDispatcher struct {
	enqueued []string
}

func (f *fakeDispatcher) EnqueueClosureReport(_ context.Context, day string) error {
	f.enqueued = append(f.enqueued, day)
	return nil
}
