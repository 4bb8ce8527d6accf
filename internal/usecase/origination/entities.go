package origination

import (
	"time"

	"github.com/shopspring/decimal"

	domainApp "coinlend-backend/internal/domain/application"
	domainOffer "coinlend-backend/internal/domain/offer"
)

// OriginateInput carries one matched pair into origination. Price is
// the collateral unit price in the principal currency at match time;
// MatchedLtv was computed from it by the caller.
type OriginateInput struct {
	Offer       *domainOffer.LoanOffer
	Application *domainApp.LoanApplication
	MatchedLtv  decimal.Decimal
	Price       decimal.Decimal
	MatchedAt   time.Time
}
