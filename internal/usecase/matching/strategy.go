package matching

import (
	"github.com/shopspring/decimal"

	domainApp "coinlend-backend/internal/domain/application"
	domainOffer "coinlend-backend/internal/domain/offer"
)

// rateEpsilon absorbs representation noise when a lender pins an
// exact rate.
var rateEpsilon = decimal.New(1, -3)

// SelectStrategy picks the filter set once per batch: enhanced as soon
// as either party supplied criteria, basic otherwise.
func SelectStrategy(lc *LenderCriteria, bc *BorrowerCriteria) StrategyKind {
	if lc != nil || bc != nil {
		return StrategyEnhanced
	}
	return StrategyBasic
}

// FindCompatibleOffers filters offers against the application. Input
// order is preserved: the caller hands offers in creation order and
// first-fit means taking the first element of the result. No
// re-ranking happens here, whatever the criteria say.
func FindCompatibleOffers(kind StrategyKind, app *domainApp.LoanApplication, offers []domainOffer.LoanOffer, targetOfferID string, lc *LenderCriteria, bc *BorrowerCriteria) []CompatibleOffer {
	var out []CompatibleOffer
	for i := range offers {
		o := &offers[i]
		if targetOfferID != "" && o.OfferID != targetOfferID {
			continue
		}
		if kind == StrategyEnhanced {
			if !lenderCriteriaAllow(lc, o) {
				continue
			}
			if !borrowerCriteriaAllow(bc, o) {
				continue
			}
		}
		if !basicCompatible(app, o) {
			continue
		}
		out = append(out, CompatibleOffer{Offer: o})
	}
	return out
}

// basicCompatible applies the three hard filters every match must
// pass: amount fit (advertised range and remaining capacity), term
// fit, rate ceiling.
func basicCompatible(app *domainApp.LoanApplication, o *domainOffer.LoanOffer) bool {
	p := app.PrincipalAmount
	if p.LessThan(o.MinLoanAmount) || p.GreaterThan(o.MaxLoanAmount) {
		return false
	}
	if p.GreaterThan(o.AvailableAmount) {
		return false
	}
	if !o.HasTerm(app.TermMonths) {
		return false
	}
	if o.InterestRate.GreaterThan(app.MaxInterestRate) {
		return false
	}
	return true
}

func lenderCriteriaAllow(lc *LenderCriteria, o *domainOffer.LoanOffer) bool {
	if lc == nil {
		return true
	}
	if len(lc.DurationOptions) > 0 && !intersects(lc.DurationOptions, o.Terms()) {
		return false
	}
	if lc.FixedInterestRate != nil && o.InterestRate.Sub(*lc.FixedInterestRate).Abs().GreaterThan(rateEpsilon) {
		return false
	}
	if lc.MinPrincipal != nil && o.MaxLoanAmount.LessThan(*lc.MinPrincipal) {
		return false
	}
	if lc.MaxPrincipal != nil && o.MinLoanAmount.GreaterThan(*lc.MaxPrincipal) {
		return false
	}
	return true
}

func borrowerCriteriaAllow(bc *BorrowerCriteria, o *domainOffer.LoanOffer) bool {
	if bc == nil {
		return true
	}
	if bc.FixedDuration != nil && !o.HasTerm(*bc.FixedDuration) {
		return false
	}
	if bc.FixedPrincipalAmount != nil {
		p := *bc.FixedPrincipalAmount
		if p.LessThan(o.MinLoanAmount) || p.GreaterThan(o.MaxLoanAmount) || p.GreaterThan(o.AvailableAmount) {
			return false
		}
	}
	if bc.MaxInterestRate != nil && o.InterestRate.GreaterThan(*bc.MaxInterestRate) {
		return false
	}
	return true
}

func intersects(a, b []int) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
