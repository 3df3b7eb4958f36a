package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cashdesk/internal/dto"
	"cashdesk/internal/model"
	"cashdesk/internal/reconcile"
	"cashdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// invoiceCounter is the named counter feeding sale numbers.
const invoiceCounter = "invoice"

type SaleService interface {
	// Create stores a sale and, when an initial payment is given, the linked
	// ledger entry — all inside one transaction.
	Create(ctx context.Context, actor model.Actor, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	// AddPayment posts a payment against a sale: the sale row is locked,
	// paid/remaining move together with the ledger append, all-or-nothing.
	AddPayment(ctx context.Context, actor model.Actor, saleID uuid.UUID, req dto.AddPaymentRequest) (*dto.SaleResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, page, limit int) (*dto.SaleListResponse, error)
}

type saleService struct {
	db       *gorm.DB // nil in unit tests
	sales    repository.SaleRepository
	counters repository.CounterRepository
	entries  repository.LedgerRepository
	sessions repository.SessionRepository
	loc      *time.Location
	events   EventPublisher
}

func NewSaleService(
	db *gorm.DB,
	sales repository.SaleRepository,
	counters repository.CounterRepository,
	entries repository.LedgerRepository,
	sessions repository.SessionRepository,
	loc *time.Location,
	events EventPublisher,
) SaleService {
	return &saleService{
		db:       db,
		sales:    sales,
		counters: counters,
		entries:  entries,
		sessions: sessions,
		loc:      loc,
		events:   events,
	}
}

// runTx executes fn inside a GORM transaction when db is available, or calls
// fn(nil) directly in unit-test mode.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Create ────────────────────────────────────────────────────────────────────

func (s *saleService) Create(ctx context.Context, actor model.Actor, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if !req.Total.IsPositive() {
		return nil, validationf("total must be positive")
	}
	if req.Payment.IsNegative() {
		return nil, validationf("payment cannot be negative")
	}
	if req.Payment.GreaterThan(req.Total) {
		return nil, validationf("payment exceeds sale total")
	}

	now := time.Now().In(s.loc)
	if err := s.requireOpenDay(ctx, reconcile.DayOf(now, s.loc)); err != nil {
		return nil, err
	}

	sale := &model.Sale{
		Client:    req.Client,
		Total:     req.Total,
		Paid:      req.Payment,
		Remaining: req.Total.Sub(req.Payment),
		CreatedBy: actor.Name,
	}
	err := runTx(ctx, s.db, func(tx *gorm.DB) error {
		number, err := s.counters.NextTx(tx, invoiceCounter)
		if err != nil {
			return err
		}
		sale.Number = number
		if err := s.sales.CreateTx(tx, sale); err != nil {
			return err
		}
		if req.Payment.IsPositive() {
			entry := paymentEntry(sale, req.Payment, now, actor)
			if err := s.entries.CreateTx(tx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.Payment.IsPositive() {
		s.publish(ctx, reconcile.DayOf(now, s.loc))
	}
	return saleResponse(sale), nil
}

// ── AddPayment ────────────────────────────────────────────────────────────────

func (s *saleService) AddPayment(ctx context.Context, actor model.Actor, saleID uuid.UUID, req dto.AddPaymentRequest) (*dto.SaleResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, validationf("payment amount must be positive")
	}

	now := time.Now().In(s.loc)
	if err := s.requireOpenDay(ctx, reconcile.DayOf(now, s.loc)); err != nil {
		return nil, err
	}

	var sale *model.Sale
	err := runTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		sale, err = s.sales.FindForUpdateTx(tx, saleID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if req.Amount.GreaterThan(sale.Remaining) {
			return validationf("payment %s exceeds remaining balance %s",
				req.Amount.StringFixed(2), sale.Remaining.StringFixed(2))
		}
		sale.Paid = sale.Paid.Add(req.Amount)
		sale.Remaining = sale.Remaining.Sub(req.Amount)
		if err := s.sales.UpdateTx(tx, sale); err != nil {
			return err
		}
		return s.entries.CreateTx(tx, paymentEntry(sale, req.Amount, now, actor))
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, reconcile.DayOf(now, s.loc))
	return saleResponse(sale), nil
}

// ── Get / List ────────────────────────────────────────────────────────────────

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return saleResponse(sale), nil
}

func (s *saleService) List(ctx context.Context, page, limit int) (*dto.SaleListResponse, error) {
	sales, total, err := s.sales.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	resp := &dto.SaleListResponse{Total: total, Page: page, Limit: limit}
	for i := range sales {
		resp.Data = append(resp.Data, *saleResponse(&sales[i]))
	}
	return resp, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *saleService) requireOpenDay(ctx context.Context, day string) error {
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

func (s *saleService) publish(ctx context.Context, day string) {
	if s.events != nil {
		s.events.PublishCashEvent(ctx, day, EventLedgerChanged)
	}
}

func paymentEntry(sale *model.Sale, amount decimal.Decimal, at time.Time, actor model.Actor) *model.LedgerEntry {
	id := sale.ID
	return &model.LedgerEntry{
		Type:       model.EntrySale,
		Label:      fmt.Sprintf("Payment on sale #%d (%s)", sale.Number, sale.Client),
		Category:   "sales",
		Amount:     reconcile.SignAmount(model.EntrySale, amount),
		OccurredAt: at,
		Actor:      actor.Name,
		RelatedID:  &id,
	}
}

func saleResponse(s *model.Sale) *dto.SaleResponse {
	return &dto.SaleResponse{
		ID:        s.ID.String(),
		Number:    s.Number,
		Client:    s.Client,
		Total:     s.Total,
		Paid:      s.Paid,
		Remaining: s.Remaining,
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}
}
