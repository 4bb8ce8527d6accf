package notify

import "context"

// Queue is the fire-and-forget notification contract. Implementations
// must never let a delivery failure escape into the caller's
// settlement path; errors are returned for logging only.
type Queue interface {
	Queue(ctx context.Context, eventType string, payload any) error
}

const (
	EventOfferPublished       = "offer.published"
	EventOfferClosed          = "offer.closed"
	EventApplicationPublished = "application.published"
	EventApplicationMatched   = "application.matched"
	EventLoanMatched          = "loan.matched"
	EventLoanDisbursed        = "loan.disbursed"
	EventLoanRepaid           = "loan.repaid"
	EventLoanLiquidated       = "loan.liquidated"
)
