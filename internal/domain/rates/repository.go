package rates

import (
	"context"
	"time"
)

type Repository interface {
	UpsertCurrency(ctx context.Context, c *Currency) error
	GetCurrency(ctx context.Context, code string) (*Currency, error)
	ListCurrencies(ctx context.Context) ([]Currency, error)

	// AddRate appends a quote; rows are immutable once written.
	AddRate(ctx context.Context, r *ExchangeRate) error
	// LatestRate returns the newest quote with as_of <= asOf.
	LatestRate(ctx context.Context, blockchain, token string, asOf time.Time) (*ExchangeRate, error)
}
