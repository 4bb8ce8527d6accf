package valuation

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"coinlend-backend/internal/domain/loan"
	"coinlend-backend/internal/domain/rates"
)

var ErrInvalidInput = errors.New("invalid valuation input")

// Service converts between registered currencies and prices
// collateral. All lookups resolve through point-in-time USD quotes so
// any historical valuation can be recomputed from stored rates.
type Service struct {
	rates rates.Repository
	Fees  FeeSchedule
}

func NewService(r rates.Repository, fees FeeSchedule) *Service {
	return &Service{rates: r, Fees: fees}
}

func (s *Service) Currency(ctx context.Context, code string) (*rates.Currency, error) {
	return s.rates.GetCurrency(ctx, code)
}

type IngestRateInput struct {
	Blockchain string          `json:"blockchain"`
	Token      string          `json:"token"`
	Rate       decimal.Decimal `json:"rate"`
	AsOf       time.Time       `json:"as_of"`
}

// IngestRate appends one oracle quote. Quotes are immutable; a
// correction is a newer row, never a rewrite of an old one.
func (s *Service) IngestRate(ctx context.Context, in IngestRateInput) (*rates.ExchangeRate, error) {
	if in.Blockchain == "" || in.Token == "" || !in.Rate.IsPositive() {
		return nil, ErrInvalidInput
	}
	asOf := in.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	r := &rates.ExchangeRate{
		Blockchain: in.Blockchain,
		Token:      in.Token,
		Rate:       in.Rate,
		AsOf:       asOf,
	}
	if err := s.rates.AddRate(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// priceIn returns how many units of quote one unit of base was worth
// as of the given time.
func (s *Service) priceIn(ctx context.Context, base, quote *rates.Currency, asOf time.Time) (decimal.Decimal, error) {
	if base.Code == quote.Code {
		return decimal.NewFromInt(1), nil
	}
	br, err := s.rates.LatestRate(ctx, base.Blockchain, base.Token, asOf)
	if err != nil {
		return decimal.Decimal{}, err
	}
	qr, err := s.rates.LatestRate(ctx, quote.Blockchain, quote.Token, asOf)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !qr.Rate.IsPositive() || !br.Rate.IsPositive() {
		return decimal.Decimal{}, rates.ErrRateUnavailable
	}
	return br.Rate.DivRound(qr.Rate, 18), nil
}

// Convert values amount of fromCcy in toCcy, rounded half-up at the
// target currency precision. Also returns the cross rate used.
func (s *Service) Convert(ctx context.Context, amount decimal.Decimal, fromCcy, toCcy string, asOf time.Time) (decimal.Decimal, decimal.Decimal, error) {
	from, err := s.rates.GetCurrency(ctx, fromCcy)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	to, err := s.rates.GetCurrency(ctx, toCcy)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	price, err := s.priceIn(ctx, from, to, asOf)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	return amount.Mul(price).Round(to.Decimals), price, nil
}

// RequiredCollateral sizes the deposit so the collateral value covers
// the principal at the target LTV: value x ltv >= principal. The
// amount rounds up at the collateral precision; the returned rate is
// the collateral unit price in principal currency.
func (s *Service) RequiredCollateral(ctx context.Context, principal decimal.Decimal, principalCcy, collateralCcy string, targetLtv decimal.Decimal, asOf time.Time) (decimal.Decimal, decimal.Decimal, error) {
	if !principal.IsPositive() || !targetLtv.IsPositive() {
		return decimal.Decimal{}, decimal.Decimal{}, ErrInvalidInput
	}
	p, err := s.rates.GetCurrency(ctx, principalCcy)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	c, err := s.rates.GetCurrency(ctx, collateralCcy)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	price, err := s.priceIn(ctx, c, p, asOf)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	amount := principal.DivRound(targetLtv.Mul(price), c.Decimals+8).RoundUp(c.Decimals)
	return amount, price, nil
}

// CollateralValue prices a collateral amount in the principal
// currency; returns the value and the unit price used.
func (s *Service) CollateralValue(ctx context.Context, amount decimal.Decimal, collateralCcy, principalCcy string, asOf time.Time) (decimal.Decimal, decimal.Decimal, error) {
	value, price, err := s.Convert(ctx, amount, collateralCcy, principalCcy, asOf)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	return value, price, nil
}

// CurrentLtv recomputes the loan's LTV against the latest valuation.
func (s *Service) CurrentLtv(ctx context.Context, l *loan.Loan, asOf time.Time) (decimal.Decimal, error) {
	value, _, err := s.CollateralValue(ctx, l.CollateralAmount, l.CollateralCurrency, l.PrincipalCurrency, asOf)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return Ltv(l.PrincipalOutstanding, value), nil
}

// Ltv is outstanding principal over collateral value, 6dp. A positive
// debt with no collateral value reports 1 (fully under-collateralized).
func Ltv(outstanding, collateralValue decimal.Decimal) decimal.Decimal {
	if !collateralValue.IsPositive() {
		if outstanding.IsPositive() {
			return decimal.NewFromInt(1)
		}
		return decimal.Zero
	}
	return outstanding.DivRound(collateralValue, 6)
}
