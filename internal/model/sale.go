package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is a sale document the ledger posts payments against. Each payment
// appends a sale-type ledger entry (RelatedID = Sale.ID) and moves amount
// from Remaining to Paid inside one transaction.
type Sale struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number int64     `gorm:"uniqueIndex;not null"`
	Client string    `gorm:"not null"`

	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Paid      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Remaining decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	CreatedBy string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Sale) TableName() string { return "sales" }
