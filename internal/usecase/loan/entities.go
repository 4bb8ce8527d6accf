package loan

import (
	"time"

	"github.com/shopspring/decimal"

	domainLoan "coinlend-backend/internal/domain/loan"
)

type LoanDTO struct {
	LoanID               string          `json:"loan_id"`
	OfferID              string          `json:"offer_id"`
	ApplicationID        string          `json:"application_id"`
	BorrowerID           string          `json:"borrower_id"`
	LenderID             string          `json:"lender_id"`
	PrincipalAmount      decimal.Decimal `json:"principal_amount"`
	PrincipalCurrency    string          `json:"principal_currency"`
	CollateralAmount     decimal.Decimal `json:"collateral_amount"`
	CollateralCurrency   string          `json:"collateral_currency"`
	InterestRate         decimal.Decimal `json:"interest_rate"`
	TermMonths           int             `json:"term_months"`
	LiquidationMode      string          `json:"liquidation_mode"`
	MatchedLtv           decimal.Decimal `json:"matched_ltv"`
	MaxLtvRatio          decimal.Decimal `json:"max_ltv_ratio"`
	CurrentLtv           decimal.Decimal `json:"current_ltv"`
	InterestAmount       decimal.Decimal `json:"interest_amount"`
	OriginationFee       decimal.Decimal `json:"origination_fee"`
	LenderFee            decimal.Decimal `json:"lender_fee"`
	RedeliveryAmount     decimal.Decimal `json:"redelivery_amount"`
	PrincipalOutstanding decimal.Decimal `json:"principal_outstanding"`
	InterestOutstanding  decimal.Decimal `json:"interest_outstanding"`
	TotalOutstanding     decimal.Decimal `json:"total_outstanding"`
	RepaidAmount         decimal.Decimal `json:"repaid_amount"`
	Status               string          `json:"status"`
	OriginationDate      time.Time       `json:"origination_date"`
	MaturityDate         time.Time       `json:"maturity_date"`
	DisbursementDate     *time.Time      `json:"disbursement_date,omitempty"`
	RepaidDate           *time.Time      `json:"repaid_date,omitempty"`
	LiquidationDate      *time.Time      `json:"liquidation_date,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

func loanDTO(l *domainLoan.Loan) *LoanDTO {
	return &LoanDTO{
		LoanID:               l.LoanID,
		OfferID:              l.OfferID,
		ApplicationID:        l.ApplicationID,
		BorrowerID:           l.BorrowerID,
		LenderID:             l.LenderID,
		PrincipalAmount:      l.PrincipalAmount,
		PrincipalCurrency:    l.PrincipalCurrency,
		CollateralAmount:     l.CollateralAmount,
		CollateralCurrency:   l.CollateralCurrency,
		InterestRate:         l.InterestRate,
		TermMonths:           l.TermMonths,
		LiquidationMode:      string(l.LiquidationMode),
		MatchedLtv:           l.MatchedLtv,
		MaxLtvRatio:          l.MaxLtvRatio,
		CurrentLtv:           l.CurrentLtv,
		InterestAmount:       l.InterestAmount,
		OriginationFee:       l.OriginationFee,
		LenderFee:            l.LenderFee,
		RedeliveryAmount:     l.RedeliveryAmount,
		PrincipalOutstanding: l.PrincipalOutstanding,
		InterestOutstanding:  l.InterestOutstanding,
		TotalOutstanding:     l.TotalOutstanding(),
		RepaidAmount:         l.RepaidAmount,
		Status:               string(l.Status),
		OriginationDate:      l.OriginationDate,
		MaturityDate:         l.MaturityDate,
		DisbursementDate:     l.DisbursementDate,
		RepaidDate:           l.RepaidDate,
		LiquidationDate:      l.LiquidationDate,
		CreatedAt:            l.CreatedAt,
	}
}
