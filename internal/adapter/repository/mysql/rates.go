package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "coinlend-backend/internal/domain/rates"
)

type RatesRepository struct {
	db *gorm.DB
}

func NewRatesRepository(db *gorm.DB) *RatesRepository {
	return &RatesRepository{db: db}
}

func (r *RatesRepository) UpsertCurrency(ctx context.Context, c *domain.Currency) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"blockchain", "token", "decimals", "updated_at"}),
		}).
		Create(c).Error
}

func (r *RatesRepository) GetCurrency(ctx context.Context, code string) (*domain.Currency, error) {
	var out domain.Currency
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrCurrencyNotFound, code)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *RatesRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	var out []domain.Currency
	err := r.db.WithContext(ctx).Order("code ASC").Find(&out).Error
	return out, err
}

func (r *RatesRepository) AddRate(ctx context.Context, rate *domain.ExchangeRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

// LatestRate picks the newest quote at or before asOf, so historical
// valuations stay reproducible.
func (r *RatesRepository) LatestRate(ctx context.Context, blockchain, token string, asOf time.Time) (*domain.ExchangeRate, error) {
	var out domain.ExchangeRate
	err := r.db.WithContext(ctx).
		Where("blockchain = ? AND token = ? AND as_of <= ?", blockchain, token, asOf).
		Order("as_of DESC, id DESC").
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrRateUnavailable, blockchain, token)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
