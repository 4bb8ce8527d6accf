package liquidation

import (
	"github.com/shopspring/decimal"

	domainLoan "coinlend-backend/internal/domain/loan"
)

// LtvCheck is one margin observation. Breached means the loan crossed
// its liquidation threshold at the observed valuation.
type LtvCheck struct {
	LoanID          string          `json:"loan_id"`
	CurrentLtv      decimal.Decimal `json:"current_ltv"`
	MaxLtvRatio     decimal.Decimal `json:"max_ltv_ratio"`
	CollateralValue decimal.Decimal `json:"collateral_value"`
	Breached        bool            `json:"breached"`
}

// LiquidationResult reports one executed liquidation. Mode is the mode
// actually run: a partial request that could not restore the target
// LTV escalates and reports full with Escalated set.
type LiquidationResult struct {
	LoanID             string                     `json:"loan_id"`
	Mode               domainLoan.LiquidationMode `json:"mode"`
	Escalated          bool                       `json:"escalated"`
	CollateralSeized   decimal.Decimal            `json:"collateral_seized"`
	Proceeds           decimal.Decimal            `json:"proceeds"`
	LiquidationFee     decimal.Decimal            `json:"liquidation_fee"`
	EarlySettlementFee decimal.Decimal            `json:"early_settlement_fee"`
	LenderPaid         decimal.Decimal            `json:"lender_paid"`
	BorrowerSurplus    decimal.Decimal            `json:"borrower_surplus"`
	Outstanding        decimal.Decimal            `json:"outstanding"`
	CurrentLtv         decimal.Decimal            `json:"current_ltv"`
	Completed          bool                       `json:"completed"`
}

// SweepError records one loan the sweep could not process. The sweep
// moves on; the loan stays eligible for the next pass.
type SweepError struct {
	LoanID  string `json:"loan_id"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

type SweepSummary struct {
	Checked    int                 `json:"checked"`
	Breached   int                 `json:"breached"`
	Liquidated int                 `json:"liquidated"`
	Results    []LiquidationResult `json:"results,omitempty"`
	Errors     []SweepError        `json:"errors,omitempty"`
	HasMore    bool                `json:"has_more"`
}
