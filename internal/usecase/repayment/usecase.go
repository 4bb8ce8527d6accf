package repayment

import (
	"context"
	"errors"
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

var ErrInvalidAmount = errors.New("invalid repayment amount")

// Service settles borrower payments against active loans. Every
// payment is one locked transaction: the borrower debit, the lender
// credit, the outstanding update and any completion legs commit or
// roll back together.
type Service struct {
	loans      domainLoan.Repository
	tx         uow.UnitOfWork
	fees       valuation.FeeSchedule
	queue      notify.Queue
	log        *logrus.Logger
	platformID string
	now        func() time.Time
}

func NewService(loans domainLoan.Repository, tx uow.UnitOfWork, fees valuation.FeeSchedule, queue notify.Queue, log *logrus.Logger, platformID string) *Service {
	return &Service{
		loans:      loans,
		tx:         tx,
		fees:       fees,
		queue:      queue,
		log:        log,
		platformID: platformID,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Repay applies one payment to the loan. Interest is cleared before
// principal. A partial payment moves money and outstanding amounts but
// no collateral; the payment that clears both components also settles
// the lender fee, releases the collateral and retires the loan.
func (s *Service) Repay(ctx context.Context, loanID string, amount decimal.Decimal, asOf time.Time) (*RepaymentResult, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	var res *RepaymentResult
	err := s.tx.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		out, err := s.settle(ctx, r, l, amount, decimal.Zero, asOf)
		if err != nil {
			return err
		}
		res = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.finish(ctx, res)
	return res, nil
}

// RequestEarlyRepayment settles the whole outstanding balance before
// maturity in a single payment. Before the maturity date the borrower
// also pays the early settlement fee on the amount being retired; at
// or past maturity this is an ordinary full repayment.
func (s *Service) RequestEarlyRepayment(ctx context.Context, loanID string, asOf time.Time) (*RepaymentResult, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}

	var res *RepaymentResult
	err := s.tx.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		outstanding := l.TotalOutstanding()
		fee := decimal.Zero
		if asOf.Before(l.MaturityDate) {
			cur, err := r.Rates.GetCurrency(ctx, l.PrincipalCurrency)
			if err != nil {
				return err
			}
			fee = s.fees.EarlySettlement(outstanding, cur.Decimals)
		}
		out, err := s.settle(ctx, r, l, outstanding, fee, asOf)
		if err != nil {
			return err
		}
		res = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.finish(ctx, res)
	return res, nil
}

// settle runs inside the caller's locked transaction. amount must not
// exceed the outstanding total; fee is the extra early settlement
// charge, zero for ordinary payments.
func (s *Service) settle(ctx context.Context, r uow.Repos, l *domainLoan.Loan, amount, fee decimal.Decimal, asOf time.Time) (*RepaymentResult, error) {
	switch l.Status {
	case domainLoan.StatusActive:
	case domainLoan.StatusRepaid, domainLoan.StatusLiquidated:
		return nil, domainLoan.ErrAlreadySettled
	default:
		return nil, fmt.Errorf("%w: loan %s is %s", domainLoan.ErrInvalidTransition, l.LoanID, l.Status)
	}

	outstanding := l.TotalOutstanding()
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: nothing outstanding on loan %s", ErrInvalidAmount, l.LoanID)
	}
	if amount.GreaterThan(outstanding) {
		return nil, fmt.Errorf("%w: paid %s, outstanding %s", domainLoan.ErrOverpayment, amount, outstanding)
	}

	interestPaid := decimal.Min(amount, l.InterestOutstanding)
	principalPaid := amount.Sub(interestPaid)

	if _, err := ledgeruc.ApplyTo(ctx, r.Ledger, ledgeruc.ApplyInput{
		UserID:       l.BorrowerID,
		Currency:     l.PrincipalCurrency,
		AccountType:  domainLedger.AccountMain,
		MutationType: domainLedger.MutationRepaymentReceived,
		Amount:       amount.Neg(),
		Reference:    l.LoanID,
		MutationDate: asOf,
	}); err != nil {
		return nil, err
	}
	if _, err := ledgeruc.ApplyTo(ctx, r.Ledger, ledgeruc.ApplyInput{
		UserID:       l.LenderID,
		Currency:     l.PrincipalCurrency,
		AccountType:  domainLedger.AccountMain,
		MutationType: domainLedger.MutationRepaymentPaidOut,
		Amount:       amount,
		Reference:    l.LoanID,
		MutationDate: asOf,
	}); err != nil {
		return nil, err
	}
	if fee.IsPositive() {
		if _, err := ledgeruc.ApplyTo(ctx, r.Ledger, ledgeruc.ApplyInput{
			UserID:       l.BorrowerID,
			Currency:     l.PrincipalCurrency,
			AccountType:  domainLedger.AccountMain,
			MutationType: domainLedger.MutationEarlySettlementFee,
			Amount:       fee.Neg(),
			Reference:    l.LoanID,
			MutationDate: asOf,
		}); err != nil {
			return nil, err
		}
		if _, err := ledgeruc.ApplyTo(ctx, r.Ledger, ledgeruc.ApplyInput{
			UserID:       s.platformID,
			Currency:     l.PrincipalCurrency,
			AccountType:  domainLedger.AccountMain,
			MutationType: domainLedger.MutationEarlySettlementFee,
			Amount:       fee,
			Reference:    l.LoanID,
			MutationDate: asOf,
		}); err != nil {
			return nil, err
		}
	}

	l.InterestOutstanding = l.InterestOutstanding.Sub(interestPaid)
	l.PrincipalOutstanding = l.PrincipalOutstanding.Sub(principalPaid)
	l.RepaidAmount = l.RepaidAmount.Add(amount)

	res := &RepaymentResult{
		LoanID:             l.LoanID,
		Paid:               amount,
		PrincipalPaid:      principalPaid,
		InterestPaid:       interestPaid,
		Outstanding:        l.TotalOutstanding(),
		EarlySettlementFee: fee,
		CollateralReleased: decimal.Zero,
	}

	if res.Outstanding.IsZero() {
		if err := s.complete(ctx, r, l, asOf); err != nil {
			return nil, err
		}
		res.CollateralReleased = l.CollateralAmount
		res.Completed = true
		return res, nil
	}

	if err := r.Loans.Save(ctx, l); err != nil {
		return nil, err
	}
	return res, nil
}

// complete settles the terminal legs: lender fee to the platform,
// collateral handed back to the borrower's main account, guarded
// active → repaid flip.
func (s *Service) complete(ctx context.Context, r uow.Repos, l *domainLoan.Loan, asOf time.Time) error {
	if l.LenderFee.IsPositive() {
		if _, err := ledgeruc.ApplyTo(ctx, r.Ledger, ledgeruc.ApplyInput{
			UserID:       l.LenderID,
			Currency:     l.PrincipalCurrency,
			AccountType:  domainLedger.AccountMain,
			MutationType: domainLedger.MutationLenderFee,
			Amount:       l.LenderFee.Neg(),
			Reference:    l.LoanID,
			MutationDate: asOf,
		}); err != nil {
			return err
		}
		if _, err := ledgeruc.ApplyTo(ctx, r.Ledger, ledgeruc.ApplyInput{
			UserID:       s.platformID,
			Currency:     l.PrincipalCurrency,
			AccountType:  domainLedger.AccountMain,
			MutationType: domainLedger.MutationLenderFee,
			Amount:       l.LenderFee,
			Reference:    l.LoanID,
			MutationDate: asOf,
		}); err != nil {
			return err
		}
	}

	if l.CollateralAmount.IsPositive() {
		if _, err := ledgeruc.ApplyTo(ctx, r.Ledger, ledgeruc.ApplyInput{
			UserID:       l.BorrowerID,
			Currency:     l.CollateralCurrency,
			AccountType:  domainLedger.AccountCollateral,
			MutationType: domainLedger.MutationCollateralReleased,
			Amount:       l.CollateralAmount.Neg(),
			Reference:    l.LoanID,
			MutationDate: asOf,
		}); err != nil {
			return err
		}
		if _, err := ledgeruc.ApplyTo(ctx, r.Ledger, ledgeruc.ApplyInput{
			UserID:       l.BorrowerID,
			Currency:     l.CollateralCurrency,
			AccountType:  domainLedger.AccountMain,
			MutationType: domainLedger.MutationCollateralReleased,
			Amount:       l.CollateralAmount,
			Reference:    l.LoanID,
			MutationDate: asOf,
		}); err != nil {
			return err
		}
	}

	l.CurrentLtv = decimal.Zero
	if err := r.Loans.Save(ctx, l); err != nil {
		return err
	}
	return r.Loans.MarkRepaid(ctx, l.LoanID, asOf)
}

func (s *Service) finish(ctx context.Context, res *RepaymentResult) {
	s.log.WithFields(logrus.Fields{
		"loan_id":     res.LoanID,
		"paid":        res.Paid.String(),
		"interest":    res.InterestPaid.String(),
		"principal":   res.PrincipalPaid.String(),
		"outstanding": res.Outstanding.String(),
		"completed":   res.Completed,
	}).Info("repayment settled")

	if !res.Completed {
		return
	}
	if err := s.queue.Queue(ctx, notify.EventLoanRepaid, map[string]any{
		"loan_id":             res.LoanID,
		"collateral_released": res.CollateralReleased.String(),
	}); err != nil {
		s.log.WithError(err).Warn("notification enqueue failed")
	}
}
