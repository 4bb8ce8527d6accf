package application

import (
	"time"

	"github.com/shopspring/decimal"

	domainApp "coinlend-backend/internal/domain/application"
	domainInvoice "coinlend-backend/internal/domain/invoice"
)

type CreateApplicationInput struct {
	BorrowerID         string          `json:"borrower_id"`
	PrincipalAmount    decimal.Decimal `json:"principal_amount"`
	PrincipalCurrency  string          `json:"principal_currency"`
	CollateralCurrency string          `json:"collateral_currency"`
	MaxInterestRate    decimal.Decimal `json:"max_interest_rate"`
	TermMonths         int             `json:"term_months"`
	LiquidationMode    string          `json:"liquidation_mode"`
	MinLtv             decimal.Decimal `json:"min_ltv"`
	MaxLtv             decimal.Decimal `json:"max_ltv"`
	ExpiresInDays      int             `json:"expires_in_days,omitempty"` // 0 uses the platform default
}

type InvoiceDTO struct {
	InvoiceID      string          `json:"invoice_id"`
	Currency       string          `json:"currency"`
	Amount         decimal.Decimal `json:"amount"`
	DepositAddress string          `json:"deposit_address"`
	Status         string          `json:"status"`
}

type ApplicationDTO struct {
	ApplicationID      string          `json:"application_id"`
	BorrowerID         string          `json:"borrower_id"`
	PrincipalAmount    decimal.Decimal `json:"principal_amount"`
	PrincipalCurrency  string          `json:"principal_currency"`
	CollateralCurrency string          `json:"collateral_currency"`
	CollateralAmount   decimal.Decimal `json:"collateral_amount"`
	MaxInterestRate    decimal.Decimal `json:"max_interest_rate"`
	TermMonths         int             `json:"term_months"`
	LiquidationMode    string          `json:"liquidation_mode"`
	MinLtv             decimal.Decimal `json:"min_ltv"`
	MaxLtv             decimal.Decimal `json:"max_ltv"`
	Status             string          `json:"status"`
	CollateralInvoice  *InvoiceDTO     `json:"collateral_invoice,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	PublishedAt        *time.Time      `json:"published_at,omitempty"`
	MatchedAt          *time.Time      `json:"matched_at,omitempty"`
	ExpiresAt          *time.Time      `json:"expires_at,omitempty"`
	ClosedAt           *time.Time      `json:"closed_at,omitempty"`
}

func applicationDTO(a *domainApp.LoanApplication, inv *domainInvoice.Invoice) *ApplicationDTO {
	dto := &ApplicationDTO{
		ApplicationID:      a.ApplicationID,
		BorrowerID:         a.BorrowerID,
		PrincipalAmount:    a.PrincipalAmount,
		PrincipalCurrency:  a.PrincipalCurrency,
		CollateralCurrency: a.CollateralCurrency,
		CollateralAmount:   a.CollateralAmount,
		MaxInterestRate:    a.MaxInterestRate,
		TermMonths:         a.TermMonths,
		LiquidationMode:    string(a.LiquidationMode),
		MinLtv:             a.MinLtv,
		MaxLtv:             a.MaxLtv,
		Status:             string(a.Status),
		CreatedAt:          a.CreatedAt,
		PublishedAt:        a.PublishedAt,
		MatchedAt:          a.MatchedAt,
		ExpiresAt:          a.ExpiresAt,
		ClosedAt:           a.ClosedAt,
	}
	if inv != nil {
		dto.CollateralInvoice = &InvoiceDTO{
			InvoiceID:      inv.InvoiceID,
			Currency:       inv.Currency,
			Amount:         inv.Amount,
			DepositAddress: inv.DepositAddress,
			Status:         string(inv.Status),
		}
	}
	return dto
}
