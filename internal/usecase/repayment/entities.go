package repayment

import "github.com/shopspring/decimal"

// RepaymentResult reports how one payment was absorbed. Outstanding is
// the redelivery obligation left after the payment; CollateralReleased
// is non-zero only on the payment that completes the loan.
type RepaymentResult struct {
	LoanID             string          `json:"loan_id"`
	Paid               decimal.Decimal `json:"paid"`
	PrincipalPaid      decimal.Decimal `json:"principal_paid"`
	InterestPaid       decimal.Decimal `json:"interest_paid"`
	Outstanding        decimal.Decimal `json:"outstanding"`
	EarlySettlementFee decimal.Decimal `json:"early_settlement_fee"`
	CollateralReleased decimal.Decimal `json:"collateral_released"`
	Completed          bool            `json:"completed"`
}
