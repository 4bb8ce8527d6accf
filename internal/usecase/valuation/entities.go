package valuation

import (
	"github.com/shopspring/decimal"

	"coinlend-backend/internal/domain/offer"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// FeeSchedule holds the platform's flat fee percentages. All helpers
// round half-up at the given currency precision so repeated ledger
// math never drifts.
type FeeSchedule struct {
	OriginationPct       decimal.Decimal
	LenderIndividualPct  decimal.Decimal
	LenderInstitutionPct decimal.Decimal
	LiquidationPct       decimal.Decimal
	EarlySettlementPct   decimal.Decimal
}

// InterestAmount = principal x rate/100 x termMonths/12.
func InterestAmount(principal, ratePct decimal.Decimal, termMonths int, decimals int32) decimal.Decimal {
	months := decimal.NewFromInt(int64(termMonths))
	return principal.Mul(ratePct).Div(hundred).Mul(months).Div(twelve).Round(decimals)
}

// Redelivery is the borrower's total obligation: principal + interest.
func Redelivery(principal, interest decimal.Decimal) decimal.Decimal {
	return principal.Add(interest)
}

func (f FeeSchedule) Origination(principal decimal.Decimal, decimals int32) decimal.Decimal {
	return principal.Mul(f.OriginationPct).Div(hundred).Round(decimals)
}

// Lender fee is tiered by lender type and charged on interest earned.
func (f FeeSchedule) Lender(interest decimal.Decimal, lt offer.LenderType, decimals int32) decimal.Decimal {
	pct := f.LenderIndividualPct
	if lt == offer.LenderInstitution {
		pct = f.LenderInstitutionPct
	}
	return interest.Mul(pct).Div(hundred).Round(decimals)
}

// LiquidationQuote is the at-origination worst-case liquidation fee,
// a flat rate on principal.
func (f FeeSchedule) LiquidationQuote(principal decimal.Decimal, decimals int32) decimal.Decimal {
	return principal.Mul(f.LiquidationPct).Div(hundred).Round(decimals)
}

// LiquidationOnValue is the fee actually charged at liquidation time,
// a flat rate on the seized collateral value.
func (f FeeSchedule) LiquidationOnValue(value decimal.Decimal, decimals int32) decimal.Decimal {
	return value.Mul(f.LiquidationPct).Div(hundred).Round(decimals)
}

// LiquidationFraction is LiquidationPct as a plain fraction (0.02 for
// 2%), used by the partial-seizure solver.
func (f FeeSchedule) LiquidationFraction() decimal.Decimal {
	return f.LiquidationPct.Div(hundred)
}

// EarlySettlement is charged on the amount being retired ahead of
// maturity.
func (f FeeSchedule) EarlySettlement(amount decimal.Decimal, decimals int32) decimal.Decimal {
	return amount.Mul(f.EarlySettlementPct).Div(hundred).Round(decimals)
}
