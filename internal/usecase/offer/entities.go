package offer

import (
	"time"

	"github.com/shopspring/decimal"

	domainInvoice "coinlend-backend/internal/domain/invoice"
	domainOffer "coinlend-backend/internal/domain/offer"
)

type CreateOfferInput struct {
	LenderID          string          `json:"lender_id"`
	LenderType        string          `json:"lender_type"`
	PrincipalCurrency string          `json:"principal_currency"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	InterestRate      decimal.Decimal `json:"interest_rate"`
	TermOptions       []int           `json:"term_options"`
	MinLoanAmount     decimal.Decimal `json:"min_loan_amount"`
	MaxLoanAmount     decimal.Decimal `json:"max_loan_amount"`
	LiquidationMode   string          `json:"liquidation_mode"`
	ExpiresInDays     int             `json:"expires_in_days,omitempty"` // 0 uses the platform default
}

type InvoiceDTO struct {
	InvoiceID      string          `json:"invoice_id"`
	Currency       string          `json:"currency"`
	Amount         decimal.Decimal `json:"amount"`
	DepositAddress string          `json:"deposit_address"`
	Status         string          `json:"status"`
}

type OfferDTO struct {
	OfferID           string          `json:"offer_id"`
	LenderID          string          `json:"lender_id"`
	LenderType        string          `json:"lender_type"`
	PrincipalCurrency string          `json:"principal_currency"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	AvailableAmount   decimal.Decimal `json:"available_amount"`
	DisbursedAmount   decimal.Decimal `json:"disbursed_amount"`
	InterestRate      decimal.Decimal `json:"interest_rate"`
	TermOptions       []int           `json:"term_options"`
	MinLoanAmount     decimal.Decimal `json:"min_loan_amount"`
	MaxLoanAmount     decimal.Decimal `json:"max_loan_amount"`
	LiquidationMode   string          `json:"liquidation_mode"`
	Status            string          `json:"status"`
	FundingInvoice    *InvoiceDTO     `json:"funding_invoice,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	PublishedAt       *time.Time      `json:"published_at,omitempty"`
	ExpiresAt         *time.Time      `json:"expires_at,omitempty"`
	ClosedAt          *time.Time      `json:"closed_at,omitempty"`
}

func offerDTO(o *domainOffer.LoanOffer, inv *domainInvoice.Invoice) *OfferDTO {
	dto := &OfferDTO{
		OfferID:           o.OfferID,
		LenderID:          o.LenderID,
		LenderType:        string(o.LenderType),
		PrincipalCurrency: o.PrincipalCurrency,
		TotalAmount:       o.TotalAmount,
		AvailableAmount:   o.AvailableAmount,
		DisbursedAmount:   o.DisbursedAmount,
		InterestRate:      o.InterestRate,
		TermOptions:       o.Terms(),
		MinLoanAmount:     o.MinLoanAmount,
		MaxLoanAmount:     o.MaxLoanAmount,
		LiquidationMode:   string(o.LiquidationMode),
		Status:            string(o.Status),
		CreatedAt:         o.CreatedAt,
		PublishedAt:       o.PublishedAt,
		ExpiresAt:         o.ExpiresAt,
		ClosedAt:          o.ClosedAt,
	}
	if inv != nil {
		dto.FundingInvoice = &InvoiceDTO{
			InvoiceID:      inv.InvoiceID,
			Currency:       inv.Currency,
			Amount:         inv.Amount,
			DepositAddress: inv.DepositAddress,
			Status:         string(inv.Status),
		}
	}
	return dto
}
