package repository

import (
	"context"
	"time"

	"cashdesk/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionClosure carries the five closure fields written together in one
// conditional update. Partial visibility of a half-closed session is not
// possible: either all five land or none do.
type SessionClosure struct {
	Real        decimal.Decimal
	Theoretical decimal.Decimal
	Discrepancy decimal.Decimal
	ClosedAt    time.Time
	ClosedBy    string
}

type SessionRepository interface {
	// Create is create-if-absent: returns ErrDuplicate when a session for
	// the date already exists, whatever its status.
	Create(ctx context.Context, s *model.CashSession) error
	FindByDate(ctx context.Context, date string) (*model.CashSession, error)
	// LatestClosedBefore returns the most recently closed session strictly
	// before date, or ErrNotFound.
	LatestClosedBefore(ctx context.Context, date string) (*model.CashSession, error)
	// Close flips an OPEN session to CLOSED atomically; ErrStale when the
	// session is not open anymore (or never was).
	Close(ctx context.Context, date string, c SessionClosure) error
	// Reopen nulls the closure fields of a CLOSED session; ErrStale when the
	// session is not closed.
	Reopen(ctx context.Context, date string) error
	List(ctx context.Context, page, limit int) ([]model.CashSession, int64, error)
}

type sessionRepo struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &sessionRepo{db: db} }

func (r *sessionRepo) Create(ctx context.Context, s *model.CashSession) error {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(s)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *sessionRepo) FindByDate(ctx context.Context, date string) (*model.CashSession, error) {
	var s model.CashSession
	if err := r.db.WithContext(ctx).First(&s, "date = ?", date).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &s, nil
}

func (r *sessionRepo) LatestClosedBefore(ctx context.Context, date string) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Where("date < ? AND status = ?", date, model.SessionClosed).
		Order("date DESC").
		Limit(1).
		First(&s).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &s, nil
}

func (r *sessionRepo) Close(ctx context.Context, date string, c SessionClosure) error {
	res := r.db.WithContext(ctx).
		Model(&model.CashSession{}).
		Where("date = ? AND status = ?", date, model.SessionOpen).
		Updates(map[string]interface{}{
			"status":                      model.SessionClosed,
			"closing_balance_real":        c.Real,
			"closing_balance_theoretical": c.Theoretical,
			"discrepancy":                 c.Discrepancy,
			"closed_at":                   c.ClosedAt,
			"closed_by":                   c.ClosedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

func (r *sessionRepo) Reopen(ctx context.Context, date string) error {
	res := r.db.WithContext(ctx).
		Model(&model.CashSession{}).
		Where("date = ? AND status = ?", date, model.SessionClosed).
		Updates(map[string]interface{}{
			"status":                      model.SessionOpen,
			"closing_balance_real":        nil,
			"closing_balance_theoretical": nil,
			"discrepancy":                 nil,
			"closed_at":                   nil,
			"closed_by":                   nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

func (r *sessionRepo) List(ctx context.Context, page, limit int) ([]model.CashSession, int64, error) {
	var sessions []model.CashSession
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.CashSession{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).
		Order("date DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&sessions).Error
	return sessions, total, err
}
