package dto

import "github.com/shopspring/decimal"

type CreateSaleRequest struct {
	Client string          `json:"client" validate:"required,min=2"`
	Total  decimal.Decimal `json:"total"  validate:"required,gt=0"`
	// Payment is the cash handed over at sale time; zero means fully on credit.
	Payment decimal.Decimal `json:"payment" validate:"min=0"`
}

type AddPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0"`
}

type SaleResponse struct {
	ID        string          `json:"id"`
	Number    int64           `json:"number"`
	Client    string          `json:"client"`
	Total     decimal.Decimal `json:"total"`
	Paid      decimal.Decimal `json:"paid"`
	Remaining decimal.Decimal `json:"remaining"`
	CreatedBy string          `json:"created_by"`
	CreatedAt string          `json:"created_at"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
