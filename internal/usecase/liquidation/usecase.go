package liquidation

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	domainLedger "coinlend-backend/internal/domain/ledger"
	domainLoan "coinlend-backend/internal/domain/loan"
	"coinlend-backend/internal/domain/notify"
	"coinlend-backend/internal/domain/uow"
	ledgeruc "coinlend-backend/internal/usecase/ledger"
	"coinlend-backend/internal/usecase/valuation"
)

var one = decimal.NewFromInt(1)

// Service watches active loans for margin breaches and turns
// collateral into principal-currency proceeds when they occur. Each
// liquidation is one locked transaction; the sweep isolates per-loan
// failures the same way the match engine does.
type Service struct {
	loans      domainLoan.Repository
	tx         uow.UnitOfWork
	val        *valuation.Service
	queue      notify.Queue
	log        *logrus.Logger
	platformID string
	batchSize  int
	now        func() time.Time
}

func NewService(loans domainLoan.Repository, tx uow.UnitOfWork, val *valuation.Service, queue notify.Queue, log *logrus.Logger, platformID string, batchSize int) *Service {
	return &Service{
		loans:      loans,
		tx:         tx,
		val:        val,
		queue:      queue,
		log:        log,
		platformID: platformID,
		batchSize:  batchSize,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func guardActive(l *domainLoan.Loan) error {
	switch l.Status {
	case domainLoan.StatusActive:
		return nil
	case domainLoan.StatusRepaid, domainLoan.StatusLiquidated:
		return domainLoan.ErrAlreadySettled
	default:
		return fmt.Errorf("%w: loan %s is %s", domainLoan.ErrInvalidTransition, l.LoanID, l.Status)
	}
}

// Check revalues the collateral, persists the fresh LTV on the loan
// and reports whether the liquidation threshold was crossed.
func (s *Service) Check(ctx context.Context, loanID string, asOf time.Time) (*LtvCheck, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	var check *LtvCheck
	err := s.tx.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if err := guardActive(l); err != nil {
			return err
		}
		value, _, err := s.val.CollateralValue(ctx, l.CollateralAmount, l.CollateralCurrency, l.PrincipalCurrency, asOf)
		if err != nil {
			return err
		}
		ltv := valuation.Ltv(l.PrincipalOutstanding, value)
		l.CurrentLtv = ltv
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		check = &LtvCheck{
			LoanID:          l.LoanID,
			CurrentLtv:      ltv,
			MaxLtvRatio:     l.MaxLtvRatio,
			CollateralValue: value,
			Breached:        ltv.GreaterThanOrEqual(l.MaxLtvRatio),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return check, nil
}

// Liquidate executes the loan's chosen liquidation mode against the
// current valuation. The loan must be past its threshold; use
// RequestEarlyLiquidation for a voluntary exit.
func (s *Service) Liquidate(ctx context.Context, loanID string, asOf time.Time) (*LiquidationResult, error) {
	return s.liquidate(ctx, loanID, asOf, false)
}

// RequestEarlyLiquidation is the borrower's voluntary exit: the whole
// collateral is sold regardless of LTV or the loan's configured mode,
// with the early settlement fee added before maturity.
func (s *Service) RequestEarlyLiquidation(ctx context.Context, loanID string, asOf time.Time) (*LiquidationResult, error) {
	return s.liquidate(ctx, loanID, asOf, true)
}

func (s *Service) liquidate(ctx context.Context, loanID string, asOf time.Time, voluntary bool) (*LiquidationResult, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	var res *LiquidationResult
	err := s.tx.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if err := guardActive(l); err != nil {
			return err
		}

		value, price, err := s.val.CollateralValue(ctx, l.CollateralAmount, l.CollateralCurrency, l.PrincipalCurrency, asOf)
		if err != nil {
			return err
		}
		if !voluntary {
			ltv := valuation.Ltv(l.PrincipalOutstanding, value)
			if ltv.LessThan(l.MaxLtvRatio) {
				return fmt.Errorf("%w: ltv %s below threshold %s", domainLoan.ErrNotLiquidatable, ltv, l.MaxLtvRatio)
			}
		}

		cur, err := r.Rates.GetCurrency(ctx, l.PrincipalCurrency)
		if err != nil {
			return err
		}
		col, err := r.Rates.GetCurrency(ctx, l.CollateralCurrency)
		if err != nil {
			return err
		}

		mode := l.LiquidationMode
		if voluntary {
			mode = domainLoan.LiquidationFull
		}

		escalated := false
		if mode == domainLoan.LiquidationPartial {
			seize, ok := partialSeize(l, price, s.val.Fees.LiquidationFraction(), col.Decimals)
			if ok {
				out, err := s.partial(ctx, r, l, seize, price, cur.Decimals, asOf)
				if err != nil {
					return err
				}
				res = out
				return nil
			}
			escalated = true
		}

		out, err := s.full(ctx, r, l, value, voluntary, cur.Decimals, asOf)
		if err != nil {
			return err
		}
		out.Escalated = escalated
		res = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.finish(ctx, res)
	return res, nil
}

// partialSeize sizes the collateral slice whose fee-netted proceeds,
// applied to principal, restore the LTV to the matched ratio t:
//
//	seize = (P - t*C*p) / (p * (1 - f - t))
//
// ok is false when no slice below the full collateral can restore the
// target, in which case the liquidation takes everything.
func partialSeize(l *domainLoan.Loan, price, feeFraction decimal.Decimal, colDecimals int32) (seize decimal.Decimal, ok bool) {
	t := l.MatchedLtv
	denom := price.Mul(one.Sub(feeFraction).Sub(t))
	if !denom.IsPositive() {
		return decimal.Decimal{}, false
	}
	numer := l.PrincipalOutstanding.Sub(t.Mul(l.CollateralAmount).Mul(price))
	if !numer.IsPositive() {
		return decimal.Decimal{}, false
	}
	seize = numer.DivRound(denom, colDecimals+8).RoundUp(colDecimals)
	if seize.GreaterThanOrEqual(l.CollateralAmount) {
		return decimal.Decimal{}, false
	}
	return seize, true
}

func (s *Service) partial(ctx context.Context, r uow.Repos, l *domainLoan.Loan, seize, price decimal.Decimal, decimals int32, asOf time.Time) (*LiquidationResult, error) {
	proceeds := seize.Mul(price).Round(decimals)
	fee := s.val.Fees.LiquidationOnValue(proceeds, decimals)
	net := proceeds.Sub(fee)
	interestPaid := decimal.Min(net, l.InterestOutstanding)
	principalPaid := decimal.Min(net.Sub(interestPaid), l.PrincipalOutstanding)
	surplus := net.Sub(interestPaid).Sub(principalPaid)
	lenderPaid := interestPaid.Add(principalPaid)

	if err := s.ledgerLegs(ctx, r, l, seize, fee, decimal.Zero, lenderPaid, surplus, asOf); err != nil {
		return nil, err
	}

	l.CollateralAmount = l.CollateralAmount.Sub(seize)
	l.InterestOutstanding = l.InterestOutstanding.Sub(interestPaid)
	l.PrincipalOutstanding = l.PrincipalOutstanding.Sub(principalPaid)
	l.RepaidAmount = l.RepaidAmount.Add(lenderPaid)
	l.CurrentLtv = valuation.Ltv(l.PrincipalOutstanding, l.CollateralAmount.Mul(price).Round(decimals))
	if err := r.Loans.Save(ctx, l); err != nil {
		return nil, err
	}

	return &LiquidationResult{
		LoanID:           l.LoanID,
		Mode:             domainLoan.LiquidationPartial,
		CollateralSeized: seize,
		Proceeds:         proceeds,
		LiquidationFee:   fee,
		LenderPaid:       lenderPaid,
		BorrowerSurplus:  surplus,
		Outstanding:      l.TotalOutstanding(),
		CurrentLtv:       l.CurrentLtv,
	}, nil
}

func (s *Service) full(ctx context.Context, r uow.Repos, l *domainLoan.Loan, value decimal.Decimal, voluntary bool, decimals int32, asOf time.Time) (*LiquidationResult, error) {
	seize := l.CollateralAmount
	proceeds := value
	fee := s.val.Fees.LiquidationOnValue(proceeds, decimals)
	outstanding := l.TotalOutstanding()
	earlyFee := decimal.Zero
	if voluntary && asOf.Before(l.MaturityDate) {
		earlyFee = s.val.Fees.EarlySettlement(outstanding, decimals)
	}

	net := proceeds.Sub(fee).Sub(earlyFee)
	lenderPaid := decimal.Min(net, outstanding)
	if lenderPaid.IsNegative() {
		lenderPaid = decimal.Zero
	}
	surplus := net.Sub(lenderPaid)
	if surplus.IsNegative() {
		surplus = decimal.Zero
	}

	if err := s.ledgerLegs(ctx, r, l, seize, fee, earlyFee, lenderPaid, surplus, asOf); err != nil {
		return nil, err
	}

	l.CollateralAmount = decimal.Zero
	l.InterestOutstanding = decimal.Zero
	l.PrincipalOutstanding = decimal.Zero
	l.RepaidAmount = l.RepaidAmount.Add(lenderPaid)
	l.CurrentLtv = decimal.Zero
	if err := r.Loans.Save(ctx, l); err != nil {
		return nil, err
	}
	if err := r.Loans.MarkLiquidated(ctx, l.LoanID, asOf); err != nil {
		return nil, err
	}

	return &LiquidationResult{
		LoanID:             l.LoanID,
		Mode:               domainLoan.LiquidationFull,
		CollateralSeized:   seize,
		Proceeds:           proceeds,
		LiquidationFee:     fee,
		EarlySettlementFee: earlyFee,
		LenderPaid:         lenderPaid,
		BorrowerSurplus:    surplus,
		Outstanding:        decimal.Zero,
		CurrentLtv:         decimal.Zero,
		Completed:          true,
	}, nil
}

func (s *Service) ledgerLegs(ctx context.Context, r uow.Repos, l *domainLoan.Loan, seize, fee, earlyFee, lenderPaid, surplus decimal.Decimal, asOf time.Time) error {
	if _, err := ledgeruc.ApplyTo(ctx, r.Ledger, ledgeruc.ApplyInput{
		UserID:       l.BorrowerID,
		Currency:     l.CollateralCurrency,
		AccountType:  domainLedger.AccountCollateral,
		MutationType: domainLedger.MutationCollateralSeized,
		Amount:       seize.Neg(),
		Reference:    l.LoanID,
		MutationDate: asOf,
	}); err != nil {
		return err
	}
	if fee.IsPositive() {
		if _, err := ledgeruc.ApplyTo(ctx, r.Ledger, ledgeruc.ApplyInput{
			UserID:       s.platformID,
			Currency:     l.PrincipalCurrency,
			AccountType:  domainLedger.AccountMain,
			MutationType: domainLedger.MutationLiquidationFee,
			Amount:       fee,
			Reference:    l.LoanID,
			MutationDate: asOf,
		}); err != nil {
			return err
		}
	}
	if earlyFee.IsPositive() {
		if _, err := ledgeruc.ApplyTo(ctx, r.Ledger, ledgeruc.ApplyInput{
			UserID:       s.platformID,
			Currency:     l.PrincipalCurrency,
			AccountType:  domainLedger.AccountMain,
			MutationType: domainLedger.MutationEarlySettlementFee,
			Amount:       earlyFee,
			Reference:    l.LoanID,
			MutationDate: asOf,
		}); err != nil {
			return err
		}
	}
	if lenderPaid.IsPositive() {
		if _, err := ledgeruc.ApplyTo(ctx, r.Ledger, ledgeruc.ApplyInput{
			UserID:       l.LenderID,
			Currency:     l.PrincipalCurrency,
			AccountType:  domainLedger.AccountMain,
			MutationType: domainLedger.MutationLiquidationProceeds,
			Amount:       lenderPaid,
			Reference:    l.LoanID,
			MutationDate: asOf,
		}); err != nil {
			return err
		}
	}
	if surplus.IsPositive() {
		if _, err := ledgeruc.ApplyTo(ctx, r.Ledger, ledgeruc.ApplyInput{
			UserID:       l.BorrowerID,
			Currency:     l.PrincipalCurrency,
			AccountType:  domainLedger.AccountMain,
			MutationType: domainLedger.MutationLiquidationSurplus,
			Amount:       surplus,
			Reference:    l.LoanID,
			MutationDate: asOf,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) finish(ctx context.Context, res *LiquidationResult) {
	s.log.WithFields(logrus.Fields{
		"loan_id":     res.LoanID,
		"mode":        string(res.Mode),
		"seized":      res.CollateralSeized.String(),
		"proceeds":    res.Proceeds.String(),
		"lender_paid": res.LenderPaid.String(),
		"outstanding": res.Outstanding.String(),
		"completed":   res.Completed,
	}).Info("liquidation executed")

	if !res.Completed {
		return
	}
	if err := s.queue.Queue(ctx, notify.EventLoanLiquidated, map[string]any{
		"loan_id":           res.LoanID,
		"collateral_seized": res.CollateralSeized.String(),
		"lender_paid":       res.LenderPaid.String(),
		"borrower_surplus":  res.BorrowerSurplus.String(),
	}); err != nil {
		s.log.WithError(err).Warn("notification enqueue failed")
	}
}

// Sweep walks a page of active loans, revalues each and liquidates the
// ones past their threshold. Failures are collected per loan and never
// stop the pass.
func (s *Service) Sweep(ctx context.Context, batchSize int, asOf time.Time) (*SweepSummary, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	size := batchSize
	if size <= 0 {
		size = s.batchSize
	}

	sum := &SweepSummary{}
	record := func(loanID, stage string, err error) {
		sum.Errors = append(sum.Errors, SweepError{LoanID: loanID, Stage: stage, Message: err.Error(), Err: err})
		s.log.WithError(err).WithFields(logrus.Fields{
			"loan_id": loanID,
			"stage":   stage,
		}).Warn("liquidation sweep unit failed")
	}

	loans, err := s.loans.ListActive(ctx, size+1)
	if err != nil {
		return nil, err
	}
	if len(loans) > size {
		sum.HasMore = true
		loans = loans[:size]
	}

	for i := range loans {
		l := &loans[i]
		sum.Checked++
		check, err := s.Check(ctx, l.LoanID, asOf)
		if err != nil {
			record(l.LoanID, "check", err)
			continue
		}
		if !check.Breached {
			continue
		}
		sum.Breached++
		res, err := s.Liquidate(ctx, l.LoanID, asOf)
		if err != nil {
			record(l.LoanID, "liquidate", err)
			continue
		}
		sum.Liquidated++
		sum.Results = append(sum.Results, *res)
	}

	s.log.WithFields(logrus.Fields{
		"checked":    sum.Checked,
		"breached":   sum.Breached,
		"liquidated": sum.Liquidated,
		"errors":     len(sum.Errors),
		"has_more":   sum.HasMore,
	}).Info("liquidation sweep finished")
	return sum, nil
}
