package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type AppendEntryRequest struct {
	Type  string `json:"type"  validate:"required,oneof=sale expense deposit"`
	Label string `json:"label" validate:"required,min=2"`
	// Category defaults to "general" when empty.
	Category string `json:"category"`
	// Amount is the UI-facing absolute value; the stored sign is re-derived
	// from the type at write time.
	Amount    decimal.Decimal `json:"amount" validate:"min=0"`
	RelatedID *string         `json:"related_id" validate:"omitempty,uuid"`
	// OccurredAt and Imported are set by the bulk importer only.
	OccurredAt *time.Time `json:"-"`
	Imported   bool       `json:"-"`
}

type UpdateEntryRequest struct {
	Type     string          `json:"type"  validate:"required,oneof=sale expense deposit"`
	Label    string          `json:"label" validate:"required,min=2"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount" validate:"min=0"`
}

type EntryResponse struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Label      string          `json:"label"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt string          `json:"occurred_at"`
	Actor      string          `json:"actor"`
	RelatedID  *string         `json:"related_id"`
	Imported   bool            `json:"imported"`
}
