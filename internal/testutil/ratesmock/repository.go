package ratesmock

import (
	domain "coinlend-backend/internal/domain/rates"
	"context"
	"time"
)

// Repo satisfies domain.Repository through optional function fields.
type Repo struct {
	UpsertCurrencyFn func(ctx context.Context, c *domain.Currency) error
	GetCurrencyFn    func(ctx context.Context, code string) (*domain.Currency, error)
	ListCurrenciesFn func(ctx context.Context) ([]domain.Currency, error)
	AddRateFn        func(ctx context.Context, r *domain.ExchangeRate) error
	LatestRateFn     func(ctx context.Context, blockchain, token string, asOf time.Time) (*domain.ExchangeRate, error)
}

var _ domain.Repository = (*Repo)(nil)

func (m *Repo) UpsertCurrency(ctx context.Context, c *domain.Currency) error {
	if m.UpsertCurrencyFn != nil {
		return m.UpsertCurrencyFn(ctx, c)
	}
	return nil
}

func (m *Repo) GetCurrency(ctx context.Context, code string) (*domain.Currency, error) {
	if m.GetCurrencyFn != nil {
		return m.GetCurrencyFn(ctx, code)
	}
	return nil, context.Canceled
}

func (m *Repo) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	if m.ListCurrenciesFn != nil {
		return m.ListCurrenciesFn(ctx)
	}
	return nil, context.Canceled
}

func (m *Repo) AddRate(ctx context.Context, r *domain.ExchangeRate) error {
	if m.AddRateFn != nil {
		return m.AddRateFn(ctx, r)
	}
	return nil
}

func (m *Repo) LatestRate(ctx context.Context, blockchain, token string, asOf time.Time) (*domain.ExchangeRate, error) {
	if m.LatestRateFn != nil {
		return m.LatestRateFn(ctx, blockchain, token, asOf)
	}
	return nil, context.Canceled
}
