package origination

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	domainApp "coinlend-backend/internal/domain/application"
	domainLedger "coinlend-backend/internal/domain/ledger"
	domainLoan "coinlend-backend/internal/domain/loan"
	domainOffer "coinlend-backend/internal/domain/offer"
	"coinlend-backend/internal/domain/uow"
	"coinlend-backend/internal/testutil/ledgermock"
	"coinlend-backend/internal/testutil/loanmock"
	"coinlend-backend/internal/testutil/ratesmock"
	"coinlend-backend/internal/testutil/uowmock"
	"coinlend-backend/internal/usecase/valuation"
)

const platformID = "00000000000000000000000000000001"

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testFees() valuation.FeeSchedule {
	return valuation.FeeSchedule{
		OriginationPct:       dec("3"),
		LenderIndividualPct:  dec("10"),
		LenderInstitutionPct: dec("5"),
		LiquidationPct:       dec("2"),
		EarlySettlementPct:   dec("1"),
	}
}

func matchedPair() (*domainOffer.LoanOffer, *domainApp.LoanApplication) {
	off := &domainOffer.LoanOffer{
		OfferID:           "of1",
		LenderID:          strings.Repeat("a", 32),
		LenderType:        domainOffer.LenderIndividual,
		PrincipalCurrency: "USDT",
		InterestRate:      dec("12.5"),
	}
	app := &domainApp.LoanApplication{
		ApplicationID:      "ap1",
		BorrowerID:         strings.Repeat("b", 32),
		PrincipalAmount:    dec("10000"),
		PrincipalCurrency:  "USDT",
		CollateralCurrency: "BTC",
		CollateralAmount:   dec("0.4"),
		TermMonths:         6,
		LiquidationMode:    domainLoan.LiquidationPartial,
		MinLtv:             dec("0.5"),
		MaxLtv:             dec("0.6"),
	}
	return off, app
}

func testRepos(mem *ledgermock.Mem, loans *loanmock.Repo) uow.Repos {
	return uow.Repos{
		Loans:  loans,
		Ledger: mem,
		Rates:  ratesmock.NewFixed().WithCurrency("USDT", "ethereum", "usdt", 2),
	}
}

func TestService_OriginateIn_WritesLoanAndLedgerUnit(t *testing.T) {
	off, app := matchedPair()
	lender, borrower := off.LenderID, app.BorrowerID
	matchedAt := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	mem := ledgermock.NewMem()
	mem.Seed(lender, "USDT", domainLedger.AccountFunding, dec("50000"))

	var created *domainLoan.Loan
	loans := &loanmock.Repo{
		CreateFn: func(ctx context.Context, l *domainLoan.Loan) error {
			created = l
			return nil
		},
	}
	repos := testRepos(mem, loans)
	s := NewService(loans, uowmock.Passthrough(repos), testFees(), testLogger(), platformID)

	l, err := s.OriginateIn(context.Background(), repos, OriginateInput{
		Offer:       off,
		Application: app,
		MatchedLtv:  dec("0.5"),
		Price:       dec("50000"),
		MatchedAt:   matchedAt,
	})
	if err != nil {
		t.Fatalf("OriginateIn: %v", err)
	}
	if created == nil || created.LoanID != l.LoanID {
		t.Fatalf("loan row not written")
	}

	if l.Status != domainLoan.StatusOriginated {
		t.Fatalf("status = %s, want originated", l.Status)
	}
	if !l.InterestAmount.Equal(dec("625")) {
		t.Fatalf("interest = %s, want 625", l.InterestAmount)
	}
	if !l.OriginationFee.Equal(dec("300")) {
		t.Fatalf("origination fee = %s, want 300", l.OriginationFee)
	}
	if !l.LenderFee.Equal(dec("62.5")) {
		t.Fatalf("lender fee = %s, want 62.5", l.LenderFee)
	}
	if !l.LiquidationFee.Equal(dec("200")) {
		t.Fatalf("liquidation quote = %s, want 200", l.LiquidationFee)
	}
	if !l.RedeliveryAmount.Equal(dec("10625")) {
		t.Fatalf("redelivery = %s, want 10625", l.RedeliveryAmount)
	}
	if !l.PrincipalOutstanding.Equal(dec("10000")) || !l.InterestOutstanding.Equal(dec("625")) {
		t.Fatalf("outstanding = %s + %s, want 10000 + 625", l.PrincipalOutstanding, l.InterestOutstanding)
	}
	if !l.MinCollateralValuation.Equal(dec("16666.67")) {
		t.Fatalf("min collateral valuation = %s, want 16666.67", l.MinCollateralValuation)
	}
	if !l.McLtvRatio.Equal(dec("0.6375")) {
		t.Fatalf("mc ltv = %s, want 0.6375", l.McLtvRatio)
	}
	if !l.MaturityDate.Equal(matchedAt.AddDate(0, 6, 0)) {
		t.Fatalf("maturity = %v", l.MaturityDate)
	}
	if !l.CurrentLtv.Equal(dec("0.5")) || !l.ExchangeRate.Equal(dec("50000")) {
		t.Fatalf("valuation snapshot ltv=%s rate=%s", l.CurrentLtv, l.ExchangeRate)
	}

	if got := mem.Balance(lender, "USDT", domainLedger.AccountFunding); !got.Equal(dec("40000")) {
		t.Fatalf("lender funding = %s, want 40000", got)
	}
	if got := mem.Balance(borrower, "USDT", domainLedger.AccountMain); !got.Equal(dec("9700")) {
		t.Fatalf("borrower main = %s, want 9700", got)
	}
	if got := mem.Balance(platformID, "USDT", domainLedger.AccountMain); !got.Equal(dec("300")) {
		t.Fatalf("platform main = %s, want 300", got)
	}
}

func TestService_OriginateIn_CollateralShortfall(t *testing.T) {
	off, app := matchedPair()
	mem := ledgermock.NewMem()
	mem.Seed(off.LenderID, "USDT", domainLedger.AccountFunding, dec("50000"))
	createCalled := false
	loans := &loanmock.Repo{
		CreateFn: func(ctx context.Context, l *domainLoan.Loan) error {
			createCalled = true
			return nil
		},
	}
	repos := testRepos(mem, loans)
	s := NewService(loans, uowmock.Passthrough(repos), testFees(), testLogger(), platformID)

	// BTC slumped between application and match: 0.61 sits above the 0.6 ceiling.
	_, err := s.OriginateIn(context.Background(), repos, OriginateInput{
		Offer:       off,
		Application: app,
		MatchedLtv:  dec("0.61"),
		Price:       dec("40983"),
		MatchedAt:   time.Now().UTC(),
	})
	if !errors.Is(err, domainLoan.ErrCollateralShortfall) {
		t.Fatalf("want ErrCollateralShortfall, got %v", err)
	}
	if createCalled {
		t.Fatalf("loan must not be written on shortfall")
	}
	if got := mem.Balance(off.LenderID, "USDT", domainLedger.AccountFunding); !got.Equal(dec("50000")) {
		t.Fatalf("lender funding touched on shortfall: %s", got)
	}
}

func TestService_OriginateIn_LenderUnderfunded(t *testing.T) {
	off, app := matchedPair()
	mem := ledgermock.NewMem()
	mem.Seed(off.LenderID, "USDT", domainLedger.AccountFunding, dec("5000"))
	loans := &loanmock.Repo{
		CreateFn: func(ctx context.Context, l *domainLoan.Loan) error { return nil },
	}
	repos := testRepos(mem, loans)
	s := NewService(loans, uowmock.Passthrough(repos), testFees(), testLogger(), platformID)

	_, err := s.OriginateIn(context.Background(), repos, OriginateInput{
		Offer:       off,
		Application: app,
		MatchedLtv:  dec("0.5"),
		Price:       dec("50000"),
		MatchedAt:   time.Now().UTC(),
	})
	if !errors.Is(err, domainLedger.ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance, got %v", err)
	}
}

func TestService_OriginateIn_InstitutionLenderFeeTier(t *testing.T) {
	off, app := matchedPair()
	off.LenderType = domainOffer.LenderInstitution
	mem := ledgermock.NewMem()
	mem.Seed(off.LenderID, "USDT", domainLedger.AccountFunding, dec("50000"))
	loans := &loanmock.Repo{}
	repos := testRepos(mem, loans)
	s := NewService(loans, uowmock.Passthrough(repos), testFees(), testLogger(), platformID)

	l, err := s.OriginateIn(context.Background(), repos, OriginateInput{
		Offer:       off,
		Application: app,
		MatchedLtv:  dec("0.5"),
		Price:       dec("50000"),
		MatchedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("OriginateIn: %v", err)
	}
	if !l.LenderFee.Equal(dec("31.25")) {
		t.Fatalf("institution lender fee = %s, want 31.25", l.LenderFee)
	}
}

func TestService_Disburse(t *testing.T) {
	t.Run("activates and stamps", func(t *testing.T) {
		var activatedAt time.Time
		loans := &loanmock.Repo{
			ActivateFn: func(ctx context.Context, loanID string, at time.Time) error {
				activatedAt = at
				return nil
			},
			GetByLoanIDFn: func(ctx context.Context, loanID string) (*domainLoan.Loan, error) {
				return &domainLoan.Loan{LoanID: loanID, Status: domainLoan.StatusActive, DisbursementDate: &activatedAt}, nil
			},
		}
		repos := uow.Repos{Loans: loans}
		s := NewService(loans, uowmock.Passthrough(repos), testFees(), testLogger(), platformID)

		l, err := s.Disburse(context.Background(), "ln1")
		if err != nil {
			t.Fatalf("Disburse: %v", err)
		}
		if l.Status != domainLoan.StatusActive {
			t.Fatalf("status = %s, want active", l.Status)
		}
		if activatedAt.IsZero() {
			t.Fatalf("activation time not stamped")
		}
	})

	t.Run("guard failure surfaces", func(t *testing.T) {
		loans := &loanmock.Repo{
			ActivateFn: func(ctx context.Context, loanID string, at time.Time) error {
				return domainLoan.ErrInvalidTransition
			},
		}
		repos := uow.Repos{Loans: loans}
		s := NewService(loans, uowmock.Passthrough(repos), testFees(), testLogger(), platformID)

		if _, err := s.Disburse(context.Background(), "ln1"); !errors.Is(err, domainLoan.ErrInvalidTransition) {
			t.Fatalf("want ErrInvalidTransition, got %v", err)
		}
	})
}
