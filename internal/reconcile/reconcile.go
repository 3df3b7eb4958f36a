// Package reconcile holds the pure reconciliation computations: per-type
// totals, theoretical balance, denomination counting, and discrepancy.
//
// Everything here is stateless and deterministic — the live in-session view
// and the persisted closure record run through the same functions, which is
// what makes a closure auditable after the fact.
package reconcile

import (
	"fmt"

	"cashdesk/internal/model"

	"github.com/shopspring/decimal"
)

// Denominations is the fixed bill set used for physical counts.
var Denominations = []int64{200, 100, 50, 20, 10, 5, 1}

// DenominationCount maps bill value to the number of bills counted.
// Missing denominations count as zero; an all-zero count is valid.
type DenominationCount map[int64]int

// Validate rejects unknown denominations and negative quantities.
func (c DenominationCount) Validate() error {
	known := make(map[int64]bool, len(Denominations))
	for _, d := range Denominations {
		known[d] = true
	}
	for value, qty := range c {
		if !known[value] {
			return fmt.Errorf("unknown denomination %d", value)
		}
		if qty < 0 {
			return fmt.Errorf("negative quantity %d for denomination %d", qty, value)
		}
	}
	return nil
}

// Counted returns the physically counted balance: Σ value × quantity.
func Counted(c DenominationCount) decimal.Decimal {
	total := decimal.Zero
	for value, qty := range c {
		total = total.Add(decimal.NewFromInt(value).Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}

// Totals are the day's absolute sums per entry type.
type Totals struct {
	Sales    decimal.Decimal
	Expenses decimal.Decimal
	Deposits decimal.Decimal
}

// SumByType partitions entries by type and sums absolute amounts.
// Order-independent: totals are plain sums.
func SumByType(entries []model.LedgerEntry) Totals {
	t := Totals{Sales: decimal.Zero, Expenses: decimal.Zero, Deposits: decimal.Zero}
	for _, e := range entries {
		switch e.Type {
		case model.EntrySale:
			t.Sales = t.Sales.Add(e.Amount.Abs())
		case model.EntryExpense:
			t.Expenses = t.Expenses.Add(e.Amount.Abs())
		case model.EntryDeposit:
			t.Deposits = t.Deposits.Add(e.Amount.Abs())
		}
	}
	return t
}

// Theoretical is the balance the drawer should hold:
// opening + sales − expenses − deposits.
func Theoretical(opening decimal.Decimal, t Totals) decimal.Decimal {
	return opening.Add(t.Sales).Sub(t.Expenses).Sub(t.Deposits)
}

// balancedEpsilon absorbs rounding noise for DISPLAY only. The stored
// discrepancy is always the exact computed value, never clamped to zero.
var balancedEpsilon = decimal.NewFromFloat(0.01)

// Balanced reports whether a discrepancy is small enough to show as balanced.
func Balanced(discrepancy decimal.Decimal) bool {
	return discrepancy.Abs().LessThan(balancedEpsilon)
}

// SignAmount derives the stored signed amount from an entry type and a raw
// magnitude. The input's own sign is ignored.
func SignAmount(entryType string, magnitude decimal.Decimal) decimal.Decimal {
	m := magnitude.Abs()
	if entryType == model.EntrySale {
		return m
	}
	return m.Neg()
}
