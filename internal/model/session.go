package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session status values.
const (
	SessionOpen   = "open"
	SessionClosed = "closed"
)

// CashSession is one calendar day's cash-drawer lifecycle record.
// The date IS the primary key, so at most one session can ever exist per day —
// concurrent double-open attempts are resolved by the store, not by the app.
//
// The five closure fields (ClosedAt, ClosedBy, ClosingBalanceReal,
// ClosingBalanceTheoretical, Discrepancy) are either all null (session open)
// or all set (session closed). They are written in a single conditional
// UPDATE, never one at a time.
type CashSession struct {
	Date   string `gorm:"type:date;primaryKey"`
	Status string `gorm:"type:varchar(10);not null;default:'open'"`

	OpeningBalance decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	OpenedAt       time.Time       `gorm:"not null"`
	OpenedBy       string          `gorm:"not null"`

	// WasModified marks an opening balance that deviates from the previous
	// day's counted closing balance. ModificationReason is then required.
	WasModified        bool `gorm:"not null;default:false"`
	ModificationReason *string

	// PreviousClosingBalance snapshots the prior closed session's counted
	// balance at open time. Denormalized for audit — never recomputed later.
	PreviousClosingBalance decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	ClosedAt                  *time.Time
	ClosedBy                  *string
	ClosingBalanceReal        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ClosingBalanceTheoretical *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Discrepancy               *decimal.Decimal `gorm:"type:decimal(12,2)"`

	// Imported marks sessions created by the bulk historical importer so they
	// can be filtered separately from live data.
	Imported bool `gorm:"not null;default:false"`
}

func (CashSession) TableName() string { return "cash_sessions" }
