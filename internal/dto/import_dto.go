package dto

import "github.com/shopspring/decimal"

// ImportEntry is one pre-parsed historical ledger row. Column mapping and
// file parsing happen upstream; the service only sees clean rows.
type ImportEntry struct {
	Type     string          `json:"type"   validate:"required,oneof=sale expense deposit"`
	Label    string          `json:"label"  validate:"required"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount" validate:"min=0"`
	// Time of day ("15:04"); defaults to noon so entries land mid-day.
	Time string `json:"time" validate:"omitempty,datetime=15:04"`
}

type ImportDay struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	// OpeningBalance overrides the carry-forward proposal; nil accepts it.
	OpeningBalance *decimal.Decimal `json:"opening_balance"`
	Reason         string           `json:"reason"`
	Entries        []ImportEntry    `json:"entries" validate:"dive"`
	// ClosingBalance is the counted closing balance from the source records.
	ClosingBalance decimal.Decimal `json:"closing_balance" validate:"min=0"`
}

type ImportRequest struct {
	Days []ImportDay `json:"days" validate:"required,min=1,dive"`
}

type ImportDayResult struct {
	Date        string          `json:"date"`
	Entries     int             `json:"entries"`
	Discrepancy decimal.Decimal `json:"discrepancy"`
	Balanced    bool            `json:"balanced"`
}

type ImportResult struct {
	Days    int               `json:"days"`
	Entries int               `json:"entries"`
	Detail  []ImportDayResult `json:"detail"`
}
