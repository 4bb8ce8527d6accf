package ratesmock

import (
	domain "coinlend-backend/internal/domain/rates"
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Fixed serves a static currency registry and USD price table.
type Fixed struct {
	currencies map[string]domain.Currency
	prices     map[string]decimal.Decimal
}

var _ domain.Repository = (*Fixed)(nil)

func NewFixed() *Fixed {
	return &Fixed{
		currencies: make(map[string]domain.Currency),
		prices:     make(map[string]decimal.Decimal),
	}
}

func (f *Fixed) WithCurrency(code, blockchain, token string, decimals int32) *Fixed {
	f.currencies[code] = domain.Currency{
		Code: code, Blockchain: blockchain, Token: token, Decimals: decimals,
	}
	return f
}

func (f *Fixed) WithPrice(blockchain, token string, usd decimal.Decimal) *Fixed {
	f.prices[blockchain+"|"+token] = usd
	return f
}

func (f *Fixed) UpsertCurrency(ctx context.Context, c *domain.Currency) error {
	f.currencies[c.Code] = *c
	return nil
}

func (f *Fixed) GetCurrency(ctx context.Context, code string) (*domain.Currency, error) {
	c, ok := f.currencies[code]
	if !ok {
		return nil, domain.ErrCurrencyNotFound
	}
	return &c, nil
}

func (f *Fixed) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	out := make([]domain.Currency, 0, len(f.currencies))
	for _, c := range f.currencies {
		out = append(out, c)
	}
	return out, nil
}

func (f *Fixed) AddRate(ctx context.Context, r *domain.ExchangeRate) error {
	f.prices[r.Blockchain+"|"+r.Token] = r.Rate
	return nil
}

func (f *Fixed) LatestRate(ctx context.Context, blockchain, token string, asOf time.Time) (*domain.ExchangeRate, error) {
	p, ok := f.prices[blockchain+"|"+token]
	if !ok {
		return nil, domain.ErrRateUnavailable
	}
	return &domain.ExchangeRate{Blockchain: blockchain, Token: token, Rate: p, AsOf: asOf}, nil
}
