package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger entry types.
// Sign convention: sale is positive (cash in), expense and deposit are
// negative (cash out). The stored amount always matches the type — the
// service re-signs the raw magnitude at write time and never trusts input.
const (
	EntrySale    = "sale"
	EntryExpense = "expense"
	EntryDeposit = "deposit"
)

// DefaultCategory is the generic bucket used when no category is given.
const DefaultCategory = "general"

// LedgerEntry is one cash-affecting event. Entries are mutable only while
// their owning day's session is open, and only by an elevated role; once the
// day is closed they are immutable and undeletable.
type LedgerEntry struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Type     string          `gorm:"type:varchar(10);not null"`
	Label    string          `gorm:"not null"`
	Category string          `gorm:"not null;default:'general'"`
	Amount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// OccurredAt buckets the entry into its calendar day (store-local
	// midnight to midnight). Stamped server-side on creation.
	OccurredAt time.Time `gorm:"index;not null"`
	Actor      string    `gorm:"not null"`
	// RelatedID links to the originating sale document, when any.
	RelatedID *uuid.UUID `gorm:"type:uuid"`
	Imported  bool       `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (LedgerEntry) TableName() string { return "ledger_entries" }

// ValidEntryType reports whether t is one of the three ledger entry types.
func ValidEntryType(t string) bool {
	return t == EntrySale || t == EntryExpense || t == EntryDeposit
}
