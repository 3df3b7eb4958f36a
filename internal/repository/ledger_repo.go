package repository

import (
	"context"
	"time"

	"cashdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LedgerRepository interface {
	Create(ctx context.Context, e *model.LedgerEntry) error
	// CreateTx appends inside an existing transaction (sale payment posting).
	CreateTx(tx *gorm.DB, e *model.LedgerEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.LedgerEntry, error)
	Update(ctx context.Context, e *model.LedgerEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListRange returns entries with occurred_at in [start, end), ascending
	// when asc is true (report computation) and descending otherwise (display).
	ListRange(ctx context.Context, start, end time.Time, asc bool) ([]model.LedgerEntry, error)
}

type ledgerRepo struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) LedgerRepository { return &ledgerRepo{db: db} }

func (r *ledgerRepo) Create(ctx context.Context, e *model.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *ledgerRepo) CreateTx(tx *gorm.DB, e *model.LedgerEntry) error {
	return tx.Create(e).Error
}

func (r *ledgerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.LedgerEntry, error) {
	var e model.LedgerEntry
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &e, nil
}

func (r *ledgerRepo) Update(ctx context.Context, e *model.LedgerEntry) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *ledgerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.LedgerEntry{}, "id = ?", id).Error
}

func (r *ledgerRepo) ListRange(ctx context.Context, start, end time.Time, asc bool) ([]model.LedgerEntry, error) {
	order := "occurred_at DESC"
	if asc {
		order = "occurred_at ASC"
	}
	var entries []model.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("occurred_at >= ? AND occurred_at < ?", start, end).
		Order(order).
		Find(&entries).Error
	return entries, err
}
