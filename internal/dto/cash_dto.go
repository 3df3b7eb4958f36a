package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenSessionRequest struct {
	// Date defaults to today (store-local) when empty.
	Date           string          `json:"date"            validate:"omitempty,datetime=2006-01-02"`
	OpeningBalance decimal.Decimal `json:"opening_balance" validate:"min=0"`
	// Reason is required when the opening balance deviates from the
	// carry-forward proposal.
	Reason string `json:"reason"`
	// Imported is set by the bulk importer only, never bound from JSON.
	Imported bool `json:"-"`
}

type CloseSessionRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	// Counts maps denomination value ("200", "100", …) to bill quantity.
	// Missing denominations count as zero; an all-zero count is valid.
	Counts map[string]int `json:"counts"`
	// CountedOverride bypasses the denomination count; import path only.
	CountedOverride *decimal.Decimal `json:"-"`
	Imported        bool             `json:"-"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OpeningProposal struct {
	Date string `json:"date"`
	// ProposedBalance is the prior closed session's counted balance, or zero
	// when no prior closed session exists.
	ProposedBalance decimal.Decimal `json:"proposed_balance"`
	PreviousDate    *string         `json:"previous_date"`
}

type TotalsResponse struct {
	Sales    decimal.Decimal `json:"sales"`
	Expenses decimal.Decimal `json:"expenses"`
	Deposits decimal.Decimal `json:"deposits"`
}

type SessionReport struct {
	Date                   string          `json:"date"`
	Status                 string          `json:"status"`
	OpeningBalance         decimal.Decimal `json:"opening_balance"`
	OpenedAt               string          `json:"opened_at"`
	OpenedBy               string          `json:"opened_by"`
	WasModified            bool            `json:"was_modified"`
	ModificationReason     *string         `json:"modification_reason"`
	PreviousClosingBalance decimal.Decimal `json:"previous_closing_balance"`

	Totals             TotalsResponse  `json:"totals"`
	TheoreticalBalance decimal.Decimal `json:"theoretical_balance"`
	EntryCount         int             `json:"entry_count"`

	ClosedAt                  *string          `json:"closed_at"`
	ClosedBy                  *string          `json:"closed_by"`
	ClosingBalanceReal        *decimal.Decimal `json:"closing_balance_real"`
	ClosingBalanceTheoretical *decimal.Decimal `json:"closing_balance_theoretical"`
	Discrepancy               *decimal.Decimal `json:"discrepancy"`
	Balanced                  *bool            `json:"balanced"`

	Imported bool `json:"imported"`
}

type ClosureResult struct {
	Date               string          `json:"date"`
	Totals             TotalsResponse  `json:"totals"`
	TheoreticalBalance decimal.Decimal `json:"theoretical_balance"`
	CountedBalance     decimal.Decimal `json:"counted_balance"`
	Discrepancy        decimal.Decimal `json:"discrepancy"`
	Balanced           bool            `json:"balanced"`
	ClosedAt           string          `json:"closed_at"`
	ClosedBy           string          `json:"closed_by"`
}

type SessionSummary struct {
	Date               string           `json:"date"`
	Status             string           `json:"status"`
	OpeningBalance     decimal.Decimal  `json:"opening_balance"`
	ClosingBalanceReal *decimal.Decimal `json:"closing_balance_real"`
	Discrepancy        *decimal.Decimal `json:"discrepancy"`
	ClosedBy           *string          `json:"closed_by"`
	WasModified        bool             `json:"was_modified"`
	Imported           bool             `json:"imported"`
}
