package offermock

import (
	domain "coinlend-backend/internal/domain/offer"
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repo stubs domain.Repository; tests set only the fields they touch.
type Repo struct {
	CreateFn                func(ctx context.Context, o *domain.LoanOffer) error
	GetByOfferIDFn          func(ctx context.Context, offerID string) (*domain.LoanOffer, error)
	GetByOfferIDForUpdateFn func(ctx context.Context, offerID string) (*domain.LoanOffer, error)
	ListByLenderFn          func(ctx context.Context, lenderID string) ([]domain.LoanOffer, error)
	ListOpenFn              func(ctx context.Context, currency string) ([]domain.LoanOffer, error)
	PublishFn               func(ctx context.Context, offerID string, at time.Time) error
	PauseFn                 func(ctx context.Context, offerID string, at time.Time) error
	ResumeFn                func(ctx context.Context, offerID string, at time.Time) error
	CloseFn                 func(ctx context.Context, offerID string, at time.Time) error
	ExpireStaleFn           func(ctx context.Context, asOf time.Time) (int64, error)
	ReserveCapacityFn       func(ctx context.Context, offerID string, amount decimal.Decimal) error
	CloseIfExhaustedFn      func(ctx context.Context, offerID string, at time.Time) (bool, error)
}

var _ domain.Repository = (*Repo)(nil)

func (m *Repo) Create(ctx context.Context, o *domain.LoanOffer) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, o)
	}
	return nil
}

func (m *Repo) GetByOfferID(ctx context.Context, offerID string) (*domain.LoanOffer, error) {
	if m.GetByOfferIDFn != nil {
		return m.GetByOfferIDFn(ctx, offerID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByOfferIDForUpdate(ctx context.Context, offerID string) (*domain.LoanOffer, error) {
	if m.GetByOfferIDForUpdateFn != nil {
		return m.GetByOfferIDForUpdateFn(ctx, offerID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByLender(ctx context.Context, lenderID string) ([]domain.LoanOffer, error) {
	if m.ListByLenderFn != nil {
		return m.ListByLenderFn(ctx, lenderID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListOpen(ctx context.Context, currency string) ([]domain.LoanOffer, error) {
	if m.ListOpenFn != nil {
		return m.ListOpenFn(ctx, currency)
	}
	return nil, context.Canceled
}

func (m *Repo) Publish(ctx context.Context, offerID string, at time.Time) error {
	if m.PublishFn != nil {
		return m.PublishFn(ctx, offerID, at)
	}
	return nil
}

func (m *Repo) Pause(ctx context.Context, offerID string, at time.Time) error {
	if m.PauseFn != nil {
		return m.PauseFn(ctx, offerID, at)
	}
	return nil
}

func (m *Repo) Resume(ctx context.Context, offerID string, at time.Time) error {
	if m.ResumeFn != nil {
		return m.ResumeFn(ctx, offerID, at)
	}
	return nil
}

func (m *Repo) Close(ctx context.Context, offerID string, at time.Time) error {
	if m.CloseFn != nil {
		return m.CloseFn(ctx, offerID, at)
	}
	return nil
}

func (m *Repo) ExpireStale(ctx context.Context, asOf time.Time) (int64, error) {
	if m.ExpireStaleFn != nil {
		return m.ExpireStaleFn(ctx, asOf)
	}
	return 0, nil
}

func (m *Repo) ReserveCapacity(ctx context.Context, offerID string, amount decimal.Decimal) error {
	if m.ReserveCapacityFn != nil {
		return m.ReserveCapacityFn(ctx, offerID, amount)
	}
	return nil
}

func (m *Repo) CloseIfExhausted(ctx context.Context, offerID string, at time.Time) (bool, error) {
	if m.CloseIfExhaustedFn != nil {
		return m.CloseIfExhaustedFn(ctx, offerID, at)
	}
	return false, nil
}
