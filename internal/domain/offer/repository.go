package offer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, o *LoanOffer) error
	GetByOfferID(ctx context.Context, offerID string) (*LoanOffer, error)
	GetByOfferIDForUpdate(ctx context.Context, offerID string) (*LoanOffer, error)
	ListByLender(ctx context.Context, lenderID string) ([]LoanOffer, error)
	// ListOpen returns published offers with available capacity in the
	// given principal currency, oldest first.
	ListOpen(ctx context.Context, currency string) ([]LoanOffer, error)

	// Status transitions are conditional updates; zero affected rows
	// means the guard failed and nothing was written.
	Publish(ctx context.Context, offerID string, at time.Time) error
	Pause(ctx context.Context, offerID string, at time.Time) error
	Resume(ctx context.Context, offerID string, at time.Time) error
	Close(ctx context.Context, offerID string, at time.Time) error
	ExpireStale(ctx context.Context, asOf time.Time) (int64, error)

	// ReserveCapacity atomically moves amount from available to
	// disbursed while the offer is published; ErrInsufficientCapacity
	// when status or remaining capacity does not allow it.
	ReserveCapacity(ctx context.Context, offerID string, amount decimal.Decimal) error
	// CloseIfExhausted closes a published offer whose available
	// capacity reached zero. Reports whether it closed the offer.
	CloseIfExhausted(ctx context.Context, offerID string, at time.Time) (bool, error)
}
