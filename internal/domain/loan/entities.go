package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = errors.New("loan not found")
	ErrInvalidTransition   = errors.New("invalid loan state transition")
	ErrCollateralShortfall = errors.New("collateral value below origination floor")
	ErrOverpayment         = errors.New("payment exceeds outstanding amount")
	ErrNotLiquidatable     = errors.New("loan not eligible for liquidation")
	ErrAlreadySettled      = errors.New("loan already settled")
)

type Status string

const (
	StatusOriginated Status = "originated"
	StatusActive     Status = "active"
	StatusRepaid     Status = "repaid"
	StatusLiquidated Status = "liquidated"
)

type LiquidationMode string

const (
	LiquidationPartial LiquidationMode = "partial"
	LiquidationFull    LiquidationMode = "full"
)

// Loan is the settled agreement born from one matched offer and
// application pair. Monetary fields are fixed at origination except
// the outstanding split, RepaidAmount, CollateralAmount (reduced by
// partial liquidation) and CurrentLtv.
type Loan struct {
	ID                 uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	LoanID             string          `gorm:"column:loan_id;type:char(32);not null;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	OfferID            string          `gorm:"column:offer_id;type:char(32);not null;index" json:"offer_id"`
	ApplicationID      string          `gorm:"column:application_id;type:char(32);not null;uniqueIndex:ux_loans_application" json:"application_id"`
	BorrowerID         string          `gorm:"column:borrower_id;type:char(32);not null;index:idx_loans_borrower" json:"borrower_id"`
	LenderID           string          `gorm:"column:lender_id;type:char(32);not null;index:idx_loans_lender" json:"lender_id"`
	PrincipalAmount    decimal.Decimal `gorm:"column:principal_amount;type:decimal(30,8);not null" json:"principal_amount"`
	PrincipalCurrency  string          `gorm:"column:principal_currency;size:16;not null" json:"principal_currency"`
	CollateralAmount   decimal.Decimal `gorm:"column:collateral_amount;type:decimal(30,8);not null" json:"collateral_amount"`
	CollateralCurrency string          `gorm:"column:collateral_currency;size:16;not null" json:"collateral_currency"`
	InterestRate       decimal.Decimal `gorm:"column:interest_rate;type:decimal(10,4);not null" json:"interest_rate"`
	TermMonths         int             `gorm:"column:term_months;not null" json:"term_months"`
	LiquidationMode    LiquidationMode `gorm:"column:liquidation_mode;size:16;not null" json:"liquidation_mode"`

	MatchedLtv             decimal.Decimal `gorm:"column:matched_ltv;type:decimal(12,6);not null" json:"matched_ltv"`
	MaxLtvRatio            decimal.Decimal `gorm:"column:max_ltv_ratio;type:decimal(12,6);not null" json:"max_ltv_ratio"`
	CurrentLtv             decimal.Decimal `gorm:"column:current_ltv;type:decimal(12,6);not null" json:"current_ltv"`
	McLtvRatio             decimal.Decimal `gorm:"column:mc_ltv_ratio;type:decimal(12,6);not null" json:"mc_ltv_ratio"`
	MinCollateralValuation decimal.Decimal `gorm:"column:min_collateral_valuation;type:decimal(30,8);not null" json:"min_collateral_valuation"`
	ExchangeRate           decimal.Decimal `gorm:"column:exchange_rate;type:decimal(30,12);not null" json:"exchange_rate"`

	InterestAmount       decimal.Decimal `gorm:"column:interest_amount;type:decimal(30,8);not null" json:"interest_amount"`
	OriginationFee       decimal.Decimal `gorm:"column:origination_fee;type:decimal(30,8);not null" json:"origination_fee"`
	LenderFee            decimal.Decimal `gorm:"column:lender_fee;type:decimal(30,8);not null" json:"lender_fee"`
	LiquidationFee       decimal.Decimal `gorm:"column:liquidation_fee;type:decimal(30,8);not null" json:"liquidation_fee"`
	RedeliveryAmount     decimal.Decimal `gorm:"column:redelivery_amount;type:decimal(30,8);not null" json:"redelivery_amount"`
	PrincipalOutstanding decimal.Decimal `gorm:"column:principal_outstanding;type:decimal(30,8);not null" json:"principal_outstanding"`
	InterestOutstanding  decimal.Decimal `gorm:"column:interest_outstanding;type:decimal(30,8);not null" json:"interest_outstanding"`
	RepaidAmount         decimal.Decimal `gorm:"column:repaid_amount;type:decimal(30,8);not null" json:"repaid_amount"`

	Status           Status     `gorm:"column:status;size:16;not null;default:'originated';index:idx_loans_status" json:"status"`
	OriginationDate  time.Time  `gorm:"column:origination_date;not null" json:"origination_date"`
	MaturityDate     time.Time  `gorm:"column:maturity_date;not null" json:"maturity_date"`
	DisbursementDate *time.Time `gorm:"column:disbursement_date" json:"disbursement_date,omitempty"`
	RepaidDate       *time.Time `gorm:"column:repaid_date" json:"repaid_date,omitempty"`
	LiquidationDate  *time.Time `gorm:"column:liquidation_date" json:"liquidation_date,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// TotalOutstanding is the remaining redelivery obligation.
func (l *Loan) TotalOutstanding() decimal.Decimal {
	return l.PrincipalOutstanding.Add(l.InterestOutstanding)
}
