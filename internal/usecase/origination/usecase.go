package origination

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	domainLedger "coinlend-backend/internal/domain/ledger"
	domainLoan "coinlend-backend/internal/domain/loan"
	"coinlend-backend/internal/domain/uow"
	ledgeruc "coinlend-backend/internal/usecase/ledger"
	"coinlend-backend/internal/usecase/valuation"
	"coinlend-backend/pkg/id"
)

// Service turns a matched offer/application pair into a funded loan.
// OriginateIn composes into the caller's transaction so the loan row,
// capacity reservation and ledger unit commit or roll back together.
type Service struct {
	loans      domainLoan.Repository
	tx         uow.UnitOfWork
	fees       valuation.FeeSchedule
	log        *logrus.Logger
	platformID string
	now        func() time.Time
}

func NewService(loans domainLoan.Repository, tx uow.UnitOfWork, fees valuation.FeeSchedule, log *logrus.Logger, platformID string) *Service {
	return &Service{
		loans:      loans,
		tx:         tx,
		fees:       fees,
		log:        log,
		platformID: platformID,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// OriginateIn writes the loan and its disbursement ledger unit inside
// the caller's transaction. The borrower receives principal net of the
// origination fee; the gross principal leaves the lender's funding
// account so offer capacity and lender money always move in lockstep.
func (s *Service) OriginateIn(ctx context.Context, r uow.Repos, in OriginateInput) (*domainLoan.Loan, error) {
	app := in.Application
	off := in.Offer

	if !in.MatchedLtv.IsPositive() || in.MatchedLtv.GreaterThanOrEqual(app.MaxLtv) {
		return nil, fmt.Errorf("%w: matched ltv %s, ceiling %s", domainLoan.ErrCollateralShortfall, in.MatchedLtv, app.MaxLtv)
	}

	cur, err := r.Rates.GetCurrency(ctx, app.PrincipalCurrency)
	if err != nil {
		return nil, err
	}

	principal := app.PrincipalAmount
	interest := valuation.InterestAmount(principal, off.InterestRate, app.TermMonths, cur.Decimals)
	originationFee := s.fees.Origination(principal, cur.Decimals)
	lenderFee := s.fees.Lender(interest, off.LenderType, cur.Decimals)
	liquidationFee := s.fees.LiquidationQuote(principal, cur.Decimals)
	redelivery := valuation.Redelivery(principal, interest)
	minValuation := principal.DivRound(app.MaxLtv, cur.Decimals)
	mcLtv := redelivery.DivRound(minValuation, 6)

	l := &domainLoan.Loan{
		LoanID:             id.NewID32(),
		OfferID:            off.OfferID,
		ApplicationID:      app.ApplicationID,
		BorrowerID:         app.BorrowerID,
		LenderID:           off.LenderID,
		PrincipalAmount:    principal,
		PrincipalCurrency:  app.PrincipalCurrency,
		CollateralAmount:   app.CollateralAmount,
		CollateralCurrency: app.CollateralCurrency,
		InterestRate:       off.InterestRate,
		TermMonths:         app.TermMonths,
		LiquidationMode:    app.LiquidationMode,

		MatchedLtv:             in.MatchedLtv,
		MaxLtvRatio:            app.MaxLtv,
		CurrentLtv:             in.MatchedLtv,
		McLtvRatio:             mcLtv,
		MinCollateralValuation: minValuation,
		ExchangeRate:           in.Price,

		InterestAmount:       interest,
		OriginationFee:       originationFee,
		LenderFee:            lenderFee,
		LiquidationFee:       liquidationFee,
		RedeliveryAmount:     redelivery,
		PrincipalOutstanding: principal,
		InterestOutstanding:  interest,

		Status:          domainLoan.StatusOriginated,
		OriginationDate: in.MatchedAt,
		MaturityDate:    in.MatchedAt.AddDate(0, app.TermMonths, 0),
	}

	if err := r.Loans.Create(ctx, l); err != nil {
		return nil, err
	}

	if _, err := ledgeruc.ApplyTo(ctx, r.Ledger, ledgeruc.ApplyInput{
		UserID:       off.LenderID,
		Currency:     app.PrincipalCurrency,
		AccountType:  domainLedger.AccountFunding,
		MutationType: domainLedger.MutationLoanDisbursed,
		Amount:       principal.Neg(),
		Reference:    l.LoanID,
		MutationDate: in.MatchedAt,
	}); err != nil {
		return nil, err
	}
	if _, err := ledgeruc.ApplyTo(ctx, r.Ledger, ledgeruc.ApplyInput{
		UserID:       app.BorrowerID,
		Currency:     app.PrincipalCurrency,
		AccountType:  domainLedger.AccountMain,
		MutationType: domainLedger.MutationLoanDisbursed,
		Amount:       principal.Sub(originationFee),
		Reference:    l.LoanID,
		MutationDate: in.MatchedAt,
	}); err != nil {
		return nil, err
	}
	if originationFee.IsPositive() {
		if _, err := ledgeruc.ApplyTo(ctx, r.Ledger, ledgeruc.ApplyInput{
			UserID:       s.platformID,
			Currency:     app.PrincipalCurrency,
			AccountType:  domainLedger.AccountMain,
			MutationType: domainLedger.MutationOriginationFee,
			Amount:       originationFee,
			Reference:    l.LoanID,
			MutationDate: in.MatchedAt,
		}); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// Disburse releases an originated loan to the borrower: a guarded
// originated → active flip in its own small transaction. A failure
// leaves the loan originated for a later retry; nothing advances
// silently.
func (s *Service) Disburse(ctx context.Context, loanID string) (*domainLoan.Loan, error) {
	at := s.now()
	err := s.tx.WithinTx(ctx, func(r uow.Repos) error {
		return r.Loans.Activate(ctx, loanID, at)
	})
	if err != nil {
		return nil, err
	}
	l, err := s.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"loan_id":     l.LoanID,
		"borrower_id": l.BorrowerID,
		"principal":   l.PrincipalAmount.String(),
	}).Info("loan disbursed")
	return l, nil
}
