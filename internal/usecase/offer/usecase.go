package offer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	domainInvoice "coinlend-backend/internal/domain/invoice"
	domainLoan "coinlend-backend/internal/domain/loan"
	domainOffer "coinlend-backend/internal/domain/offer"
	"coinlend-backend/internal/domain/uow"
	"coinlend-backend/internal/usecase/valuation"
	"coinlend-backend/pkg/id"
)

var (
	ErrInvalidInput = errors.New("invalid offer input")
	ErrNotOwner     = errors.New("offer does not belong to lender")
)

type Usecase struct {
	offers   domainOffer.Repository
	invoices domainInvoice.Repository
	tx       uow.UnitOfWork
	val      *valuation.Service
	log      *logrus.Logger
	ttlDays  int
	now      func() time.Time
}

func NewUsecase(offers domainOffer.Repository, invoices domainInvoice.Repository, tx uow.UnitOfWork, val *valuation.Service, log *logrus.Logger, ttlDays int) *Usecase {
	return &Usecase{
		offers:   offers,
		invoices: invoices,
		tx:       tx,
		val:      val,
		log:      log,
		ttlDays:  ttlDays,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a draft offer together with the funding invoice the lender
// must pay before the offer goes live.
func (u *Usecase) Create(ctx context.Context, in CreateOfferInput) (*OfferDTO, error) {
	if err := u.validateCreate(ctx, &in); err != nil {
		return nil, err
	}

	cur, err := u.val.Currency(ctx, in.PrincipalCurrency)
	if err != nil {
		return nil, err
	}

	ttl := u.ttlDays
	if in.ExpiresInDays > 0 {
		ttl = in.ExpiresInDays
	}
	expiresAt := u.now().Add(time.Duration(ttl) * 24 * time.Hour)

	o := &domainOffer.LoanOffer{
		OfferID:           id.NewID32(),
		LenderID:          in.LenderID,
		LenderType:        domainOffer.LenderType(in.LenderType),
		PrincipalCurrency: in.PrincipalCurrency,
		TotalAmount:       in.TotalAmount,
		AvailableAmount:   in.TotalAmount,
		InterestRate:      in.InterestRate,
		TermOptions:       domainOffer.JoinTerms(in.TermOptions),
		MinLoanAmount:     in.MinLoanAmount,
		MaxLoanAmount:     in.MaxLoanAmount,
		LiquidationMode:   domainLoan.LiquidationMode(in.LiquidationMode),
		Status:            domainOffer.StatusDraft,
		StateUpdatedAt:    u.now(),
		ExpiresAt:         &expiresAt,
	}
	inv := &domainInvoice.Invoice{
		InvoiceID:      id.NewID32(),
		UserID:         in.LenderID,
		Purpose:        domainInvoice.PurposeOfferFunding,
		SubjectID:      o.OfferID,
		Currency:       in.PrincipalCurrency,
		Amount:         in.TotalAmount,
		DepositAddress: id.NewDepositAddress(cur.Blockchain),
		Status:         domainInvoice.StatusPending,
	}
	o.FundingInvoiceID = inv.InvoiceID

	err = u.tx.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Offers.Create(ctx, o); err != nil {
			return err
		}
		return r.Invoices.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"offer_id":   o.OfferID,
		"lender_id":  o.LenderID,
		"currency":   o.PrincipalCurrency,
		"total":      o.TotalAmount.String(),
		"invoice_id": inv.InvoiceID,
	}).Info("loan offer drafted")

	return offerDTO(o, inv), nil
}

func (u *Usecase) validateCreate(ctx context.Context, in *CreateOfferInput) error {
	if len(in.LenderID) != 32 {
		return fmt.Errorf("%w: lender_id must be a 32 char id", ErrInvalidInput)
	}
	switch domainOffer.LenderType(in.LenderType) {
	case domainOffer.LenderIndividual, domainOffer.LenderInstitution:
	case "":
		in.LenderType = string(domainOffer.LenderIndividual)
	default:
		return fmt.Errorf("%w: unknown lender_type %q", ErrInvalidInput, in.LenderType)
	}
	switch domainLoan.LiquidationMode(in.LiquidationMode) {
	case domainLoan.LiquidationPartial, domainLoan.LiquidationFull:
	case "":
		in.LiquidationMode = string(domainLoan.LiquidationPartial)
	default:
		return fmt.Errorf("%w: unknown liquidation_mode %q", ErrInvalidInput, in.LiquidationMode)
	}
	if !in.TotalAmount.IsPositive() {
		return fmt.Errorf("%w: total_amount must be positive", ErrInvalidInput)
	}
	if !in.MinLoanAmount.IsPositive() {
		return fmt.Errorf("%w: min_loan_amount must be positive", ErrInvalidInput)
	}
	if in.MaxLoanAmount.LessThan(in.MinLoanAmount) {
		return fmt.Errorf("%w: max_loan_amount below min_loan_amount", ErrInvalidInput)
	}
	if in.MaxLoanAmount.GreaterThan(in.TotalAmount) {
		return fmt.Errorf("%w: max_loan_amount exceeds total_amount", ErrInvalidInput)
	}
	if !in.InterestRate.IsPositive() {
		return fmt.Errorf("%w: interest_rate must be positive", ErrInvalidInput)
	}
	if len(in.TermOptions) == 0 {
		return fmt.Errorf("%w: at least one term option is required", ErrInvalidInput)
	}
	for _, m := range in.TermOptions {
		if m <= 0 {
			return fmt.Errorf("%w: term option %d is not a positive month count", ErrInvalidInput, m)
		}
	}
	if in.ExpiresInDays < 0 {
		return fmt.Errorf("%w: expires_in_days cannot be negative", ErrInvalidInput)
	}
	return nil
}

// Pause takes a published offer out of matching without cancelling it.
func (u *Usecase) Pause(ctx context.Context, offerID, lenderID string) (*OfferDTO, error) {
	return u.transition(ctx, offerID, lenderID, func(ctx context.Context, at time.Time) error {
		return u.offers.Pause(ctx, offerID, at)
	})
}

// Resume puts a paused offer back into matching.
func (u *Usecase) Resume(ctx context.Context, offerID, lenderID string) (*OfferDTO, error) {
	return u.transition(ctx, offerID, lenderID, func(ctx context.Context, at time.Time) error {
		return u.offers.Resume(ctx, offerID, at)
	})
}

// Close retires an offer permanently. Loans already originated from it are
// not affected.
func (u *Usecase) Close(ctx context.Context, offerID, lenderID string) (*OfferDTO, error) {
	return u.transition(ctx, offerID, lenderID, func(ctx context.Context, at time.Time) error {
		return u.offers.Close(ctx, offerID, at)
	})
}

func (u *Usecase) transition(ctx context.Context, offerID, lenderID string, op func(ctx context.Context, at time.Time) error) (*OfferDTO, error) {
	o, err := u.offers.GetByOfferID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if o.LenderID != lenderID {
		return nil, ErrNotOwner
	}
	if err := op(ctx, u.now()); err != nil {
		return nil, err
	}
	o, err = u.offers.GetByOfferID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	u.log.WithFields(logrus.Fields{
		"offer_id": o.OfferID,
		"status":   o.Status,
	}).Info("loan offer state changed")
	return offerDTO(o, nil), nil
}

func (u *Usecase) Get(ctx context.Context, offerID string) (*OfferDTO, error) {
	o, err := u.offers.GetByOfferID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	var inv *domainInvoice.Invoice
	if o.FundingInvoiceID != "" {
		if got, err := u.invoices.GetByInvoiceID(ctx, o.FundingInvoiceID); err == nil {
			inv = got
		}
	}
	return offerDTO(o, inv), nil
}

func (u *Usecase) ListByLender(ctx context.Context, lenderID string) ([]*OfferDTO, error) {
	items, err := u.offers.ListByLender(ctx, lenderID)
	if err != nil {
		return nil, err
	}
	out := make([]*OfferDTO, 0, len(items))
	for _, o := range items {
		out = append(out, offerDTO(&o, nil))
	}
	return out, nil
}
