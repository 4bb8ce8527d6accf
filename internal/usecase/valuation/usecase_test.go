package valuation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"coinlend-backend/internal/domain/loan"
	"coinlend-backend/internal/domain/offer"
	"coinlend-backend/internal/domain/rates"
	"coinlend-backend/internal/testutil/ratesmock"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testFees() FeeSchedule {
	return FeeSchedule{
		OriginationPct:       dec("3"),
		LenderIndividualPct:  dec("10"),
		LenderInstitutionPct: dec("5"),
		LiquidationPct:       dec("2"),
		EarlySettlementPct:   dec("1"),
	}
}

func fixedRates() *ratesmock.Fixed {
	return ratesmock.NewFixed().
		WithCurrency("USDT", "ethereum", "usdt", 2).
		WithCurrency("BTC", "bitcoin", "btc", 8).
		WithPrice("ethereum", "usdt", dec("1")).
		WithPrice("bitcoin", "btc", dec("50000"))
}

func TestInterestAmount_Deterministic(t *testing.T) {
	tests := []struct {
		principal string
		rate      string
		months    int
		want      string
	}{
		{"10000", "12.5", 6, "625"},
		{"10000", "12.5", 12, "1250"},
		{"3000", "8", 12, "240"},
		{"1000", "7.33", 7, "42.76"}, // 1000*0.0733*7/12 = 42.7583..., half-up at 2dp
	}
	for _, tt := range tests {
		got := InterestAmount(dec(tt.principal), dec(tt.rate), tt.months, 2)
		if !got.Equal(dec(tt.want)) {
			t.Fatalf("interest(%s, %s, %d) = %s, want %s", tt.principal, tt.rate, tt.months, got, tt.want)
		}
	}
}

func TestFeeSchedule_Origination(t *testing.T) {
	f := testFees()
	if got := f.Origination(dec("10000"), 2); !got.Equal(dec("300")) {
		t.Fatalf("origination fee = %s, want 300", got)
	}
}

func TestFeeSchedule_LenderTiers(t *testing.T) {
	f := testFees()
	interest := dec("625")
	if got := f.Lender(interest, offer.LenderIndividual, 2); !got.Equal(dec("62.5")) {
		t.Fatalf("individual lender fee = %s, want 62.5", got)
	}
	if got := f.Lender(interest, offer.LenderInstitution, 2); !got.Equal(dec("31.25")) {
		t.Fatalf("institution lender fee = %s, want 31.25", got)
	}
}

func TestFeeSchedule_LiquidationAndEarly(t *testing.T) {
	f := testFees()
	if got := f.LiquidationQuote(dec("10000"), 2); !got.Equal(dec("200")) {
		t.Fatalf("liquidation quote = %s, want 200", got)
	}
	if got := f.LiquidationOnValue(dec("4300"), 2); !got.Equal(dec("86")) {
		t.Fatalf("liquidation on value = %s, want 86", got)
	}
	if got := f.EarlySettlement(dec("10000"), 2); !got.Equal(dec("100")) {
		t.Fatalf("early settlement fee = %s, want 100", got)
	}
	if got := f.LiquidationFraction(); !got.Equal(dec("0.02")) {
		t.Fatalf("liquidation fraction = %s, want 0.02", got)
	}
}

func TestService_RequiredCollateral(t *testing.T) {
	svc := NewService(fixedRates(), testFees())
	asOf := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	amount, price, err := svc.RequiredCollateral(context.Background(), dec("10000"), "USDT", "BTC", dec("0.5"), asOf)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	// 10000 / (0.5 * 50000) = 0.4 BTC
	if !amount.Equal(dec("0.4")) {
		t.Fatalf("required collateral = %s, want 0.4", amount)
	}
	if !price.Equal(dec("50000")) {
		t.Fatalf("price = %s, want 50000", price)
	}
	// coverage: value * ltv >= principal
	if amount.Mul(price).Mul(dec("0.5")).LessThan(dec("10000")) {
		t.Fatalf("coverage inequality violated")
	}
}

func TestService_RequiredCollateral_RoundsUp(t *testing.T) {
	r := ratesmock.NewFixed().
		WithCurrency("USDT", "ethereum", "usdt", 2).
		WithCurrency("ETH", "ethereum", "eth", 8).
		WithPrice("ethereum", "usdt", dec("1")).
		WithPrice("ethereum", "eth", dec("3001"))
	svc := NewService(r, testFees())

	amount, price, err := svc.RequiredCollateral(context.Background(), dec("7000"), "USDT", "ETH", dec("0.55"), time.Now())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if amount.Mul(price).Mul(dec("0.55")).LessThan(dec("7000")) {
		t.Fatalf("coverage inequality violated: %s", amount)
	}
	// one smallest unit less must not cover
	oneUnit := dec("0.00000001")
	if amount.Sub(oneUnit).Mul(price).Mul(dec("0.55")).GreaterThanOrEqual(dec("7000")) {
		t.Fatalf("amount not minimal: %s", amount)
	}
}

func TestService_RequiredCollateral_RateUnavailable(t *testing.T) {
	r := ratesmock.NewFixed().
		WithCurrency("USDT", "ethereum", "usdt", 2).
		WithCurrency("BTC", "bitcoin", "btc", 8).
		WithPrice("ethereum", "usdt", dec("1"))
	svc := NewService(r, testFees())

	_, _, err := svc.RequiredCollateral(context.Background(), dec("100"), "USDT", "BTC", dec("0.5"), time.Now())
	if !errors.Is(err, rates.ErrRateUnavailable) {
		t.Fatalf("want ErrRateUnavailable, got %v", err)
	}
}

func TestService_RequiredCollateral_InvalidInput(t *testing.T) {
	svc := NewService(fixedRates(), testFees())
	if _, _, err := svc.RequiredCollateral(context.Background(), dec("-5"), "USDT", "BTC", dec("0.5"), time.Now()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
	if _, _, err := svc.RequiredCollateral(context.Background(), dec("100"), "USDT", "BTC", decimal.Zero, time.Now()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}

func TestService_Convert_SameCurrency(t *testing.T) {
	svc := NewService(fixedRates(), testFees())
	got, price, err := svc.Convert(context.Background(), dec("123.456"), "USDT", "USDT", time.Now())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !price.Equal(dec("1")) {
		t.Fatalf("price = %s, want 1", price)
	}
	// rounded half-up at USDT's 2dp
	if !got.Equal(dec("123.46")) {
		t.Fatalf("converted = %s, want 123.46", got)
	}
}

func TestService_CurrentLtv(t *testing.T) {
	svc := NewService(fixedRates(), testFees())
	l := &loan.Loan{
		PrincipalOutstanding: dec("10000"),
		CollateralAmount:     dec("0.4"),
		CollateralCurrency:   "BTC",
		PrincipalCurrency:    "USDT",
	}
	got, err := svc.CurrentLtv(context.Background(), l, time.Now())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	// 10000 / (0.4 * 50000) = 0.5
	if !got.Equal(dec("0.5")) {
		t.Fatalf("ltv = %s, want 0.5", got)
	}
}

func TestLtv_Degenerate(t *testing.T) {
	if got := Ltv(dec("100"), decimal.Zero); !got.Equal(dec("1")) {
		t.Fatalf("unbacked ltv = %s, want 1", got)
	}
	if got := Ltv(decimal.Zero, decimal.Zero); !got.IsZero() {
		t.Fatalf("empty ltv = %s, want 0", got)
	}
}

func TestService_IngestRate(t *testing.T) {
	reg := fixedRates()
	svc := NewService(reg, testFees())
	asOf := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	got, err := svc.IngestRate(context.Background(), IngestRateInput{
		Blockchain: "bitcoin",
		Token:      "btc",
		Rate:       dec("52000"),
		AsOf:       asOf,
	})
	if err != nil {
		t.Fatalf("IngestRate: %v", err)
	}
	if !got.Rate.Equal(dec("52000")) || !got.AsOf.Equal(asOf) {
		t.Fatalf("stored quote = %+v", got)
	}

	latest, err := reg.LatestRate(context.Background(), "bitcoin", "btc", asOf)
	if err != nil {
		t.Fatalf("LatestRate: %v", err)
	}
	if !latest.Rate.Equal(dec("52000")) {
		t.Fatalf("latest = %s, want 52000", latest.Rate)
	}
}

func TestService_IngestRate_Invalid(t *testing.T) {
	svc := NewService(fixedRates(), testFees())
	for _, in := range []IngestRateInput{
		{Token: "btc", Rate: dec("1")},
		{Blockchain: "bitcoin", Rate: dec("1")},
		{Blockchain: "bitcoin", Token: "btc"},
		{Blockchain: "bitcoin", Token: "btc", Rate: dec("-5")},
	} {
		if _, err := svc.IngestRate(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("input %+v: err = %v, want ErrInvalidInput", in, err)
		}
	}
}

func TestService_Convert_StoreFault(t *testing.T) {
	// a transient repository failure must surface unchanged, not be
	// mistaken for a missing rate
	boom := errors.New("connection reset")
	repo := &ratesmock.Repo{
		GetCurrencyFn: func(ctx context.Context, code string) (*rates.Currency, error) {
			switch code {
			case "USDT":
				return &rates.Currency{Code: "USDT", Blockchain: "ethereum", Token: "usdt", Decimals: 2}, nil
			case "BTC":
				return &rates.Currency{Code: "BTC", Blockchain: "bitcoin", Token: "btc", Decimals: 8}, nil
			}
			return nil, rates.ErrCurrencyNotFound
		},
		LatestRateFn: func(ctx context.Context, blockchain, token string, asOf time.Time) (*rates.ExchangeRate, error) {
			return nil, boom
		},
	}
	svc := NewService(repo, testFees())

	_, _, err := svc.Convert(context.Background(), dec("100"), "USDT", "BTC", time.Now().UTC())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the store fault", err)
	}
	if errors.Is(err, rates.ErrRateUnavailable) {
		t.Fatalf("store fault must not map to ErrRateUnavailable")
	}
}
