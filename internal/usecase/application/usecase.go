package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	domainApp "coinlend-backend/internal/domain/application"
	domainInvoice "coinlend-backend/internal/domain/invoice"
	domainLoan "coinlend-backend/internal/domain/loan"
	"coinlend-backend/internal/domain/uow"
	"coinlend-backend/internal/usecase/valuation"
	"coinlend-backend/pkg/id"
)

var (
	ErrInvalidInput = errors.New("invalid application input")
	ErrNotOwner     = errors.New("application does not belong to borrower")
)

var one = decimal.NewFromInt(1)

type Usecase struct {
	applications domainApp.Repository
	invoices     domainInvoice.Repository
	tx           uow.UnitOfWork
	val          *valuation.Service
	log          *logrus.Logger
	ttlDays      int
	now          func() time.Time
}

func NewUsecase(applications domainApp.Repository, invoices domainInvoice.Repository, tx uow.UnitOfWork, val *valuation.Service, log *logrus.Logger, ttlDays int) *Usecase {
	return &Usecase{
		applications: applications,
		invoices:     invoices,
		tx:           tx,
		val:          val,
		log:          log,
		ttlDays:      ttlDays,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a pending application together with the collateral
// invoice. The demanded deposit is sized so the loan starts at MinLtv,
// leaving headroom before MaxLtv triggers liquidation.
func (u *Usecase) Create(ctx context.Context, in CreateApplicationInput) (*ApplicationDTO, error) {
	if err := u.validateCreate(&in); err != nil {
		return nil, err
	}
	if _, err := u.val.Currency(ctx, in.PrincipalCurrency); err != nil {
		return nil, err
	}
	col, err := u.val.Currency(ctx, in.CollateralCurrency)
	if err != nil {
		return nil, err
	}

	asOf := u.now()
	collateralAmount, _, err := u.val.RequiredCollateral(ctx, in.PrincipalAmount, in.PrincipalCurrency, in.CollateralCurrency, in.MinLtv, asOf)
	if err != nil {
		return nil, err
	}

	ttl := u.ttlDays
	if in.ExpiresInDays > 0 {
		ttl = in.ExpiresInDays
	}
	expiresAt := asOf.Add(time.Duration(ttl) * 24 * time.Hour)

	a := &domainApp.LoanApplication{
		ApplicationID:      id.NewID32(),
		BorrowerID:         in.BorrowerID,
		PrincipalAmount:    in.PrincipalAmount,
		PrincipalCurrency:  in.PrincipalCurrency,
		CollateralCurrency: in.CollateralCurrency,
		CollateralAmount:   collateralAmount,
		MaxInterestRate:    in.MaxInterestRate,
		TermMonths:         in.TermMonths,
		LiquidationMode:    domainLoan.LiquidationMode(in.LiquidationMode),
		MinLtv:             in.MinLtv,
		MaxLtv:             in.MaxLtv,
		Status:             domainApp.StatusPendingCollateral,
		StateUpdatedAt:     asOf,
		ExpiresAt:          &expiresAt,
	}
	inv := &domainInvoice.Invoice{
		InvoiceID:      id.NewID32(),
		UserID:         in.BorrowerID,
		Purpose:        domainInvoice.PurposeApplicationCollateral,
		SubjectID:      a.ApplicationID,
		Currency:       in.CollateralCurrency,
		Amount:         collateralAmount,
		DepositAddress: id.NewDepositAddress(col.Blockchain),
		Status:         domainInvoice.StatusPending,
	}
	a.CollateralInvoiceID = inv.InvoiceID

	err = u.tx.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Applications.Create(ctx, a); err != nil {
			return err
		}
		return r.Invoices.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"application_id": a.ApplicationID,
		"borrower_id":    a.BorrowerID,
		"principal":      a.PrincipalAmount.String(),
		"collateral":     a.CollateralAmount.String(),
		"invoice_id":     inv.InvoiceID,
	}).Info("loan application drafted")

	return applicationDTO(a, inv), nil
}

func (u *Usecase) validateCreate(in *CreateApplicationInput) error {
	if len(in.BorrowerID) != 32 {
		return fmt.Errorf("%w: borrower_id must be a 32 char id", ErrInvalidInput)
	}
	if !in.PrincipalAmount.IsPositive() {
		return fmt.Errorf("%w: principal_amount must be positive", ErrInvalidInput)
	}
	if in.TermMonths <= 0 {
		return fmt.Errorf("%w: term_months must be positive", ErrInvalidInput)
	}
	if !in.MaxInterestRate.IsPositive() {
		return fmt.Errorf("%w: max_interest_rate must be positive", ErrInvalidInput)
	}
	if in.PrincipalCurrency == in.CollateralCurrency {
		return fmt.Errorf("%w: collateral currency must differ from principal currency", ErrInvalidInput)
	}
	if !in.MinLtv.IsPositive() || in.MinLtv.GreaterThanOrEqual(in.MaxLtv) || in.MaxLtv.GreaterThanOrEqual(one) {
		return fmt.Errorf("%w: ltv bounds must satisfy 0 < min < max < 1", ErrInvalidInput)
	}
	switch domainLoan.LiquidationMode(in.LiquidationMode) {
	case domainLoan.LiquidationPartial, domainLoan.LiquidationFull:
	case "":
		in.LiquidationMode = string(domainLoan.LiquidationPartial)
	default:
		return fmt.Errorf("%w: unknown liquidation_mode %q", ErrInvalidInput, in.LiquidationMode)
	}
	if in.ExpiresInDays < 0 {
		return fmt.Errorf("%w: expires_in_days cannot be negative", ErrInvalidInput)
	}
	return nil
}

func (u *Usecase) Get(ctx context.Context, applicationID string) (*ApplicationDTO, error) {
	a, err := u.applications.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	var inv *domainInvoice.Invoice
	if a.CollateralInvoiceID != "" {
		if got, err := u.invoices.GetByInvoiceID(ctx, a.CollateralInvoiceID); err == nil {
			inv = got
		}
	}
	return applicationDTO(a, inv), nil
}

// Close withdraws an application that has not matched yet.
func (u *Usecase) Close(ctx context.Context, applicationID, borrowerID string) (*ApplicationDTO, error) {
	a, err := u.applications.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if a.BorrowerID != borrowerID {
		return nil, ErrNotOwner
	}
	if err := u.applications.Close(ctx, applicationID, u.now()); err != nil {
		return nil, err
	}
	a, err = u.applications.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	u.log.WithFields(logrus.Fields{
		"application_id": a.ApplicationID,
		"status":         a.Status,
	}).Info("loan application closed")
	return applicationDTO(a, nil), nil
}

func (u *Usecase) ListByBorrower(ctx context.Context, borrowerID string) ([]*ApplicationDTO, error) {
	items, err := u.applications.ListByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	out := make([]*ApplicationDTO, 0, len(items))
	for _, a := range items {
		out = append(out, applicationDTO(&a, nil))
	}
	return out, nil
}
