package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	domainInvoice "coinlend-backend/internal/domain/invoice"
	domainLedger "coinlend-backend/internal/domain/ledger"
	"coinlend-backend/internal/domain/notify"
	"coinlend-backend/internal/domain/uow"
	ledgeruc "coinlend-backend/internal/usecase/ledger"
)

var ErrUnknownPurpose = errors.New("invoice purpose not recognized")

type PaidInvoiceDTO struct {
	InvoiceID string          `json:"invoice_id"`
	UserID    string          `json:"user_id"`
	Purpose   string          `json:"purpose"`
	SubjectID string          `json:"subject_id"`
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	PaidAt    time.Time       `json:"paid_at"`
}

// Usecase confirms custody deposits. Payment confirmation is the
// custody webhook surface: it credits the depositor's ledger account
// and publishes the offer or application the invoice funds.
type Usecase struct {
	invoices domainInvoice.Repository
	tx       uow.UnitOfWork
	queue    notify.Queue
	log      *logrus.Logger
	now      func() time.Time
}

func NewUsecase(invoices domainInvoice.Repository, tx uow.UnitOfWork, queue notify.Queue, log *logrus.Logger) *Usecase {
	return &Usecase{
		invoices: invoices,
		tx:       tx,
		queue:    queue,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// MarkPaid settles one invoice: pending → paid, ledger credit, subject
// publish, all in one transaction. Replays hit the paid guard and fail
// without side effects.
func (u *Usecase) MarkPaid(ctx context.Context, invoiceID string) (*PaidInvoiceDTO, error) {
	at := u.now()
	var inv *domainInvoice.Invoice
	var event string

	err := u.tx.WithinTx(ctx, func(r uow.Repos) error {
		got, err := r.Invoices.GetByInvoiceID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if err := r.Invoices.MarkPaid(ctx, invoiceID, at); err != nil {
			return err
		}

		accountType := domainLedger.AccountFunding
		switch got.Purpose {
		case domainInvoice.PurposeOfferFunding:
			event = notify.EventOfferPublished
			if err := r.Offers.Publish(ctx, got.SubjectID, at); err != nil {
				return err
			}
		case domainInvoice.PurposeApplicationCollateral:
			accountType = domainLedger.AccountCollateral
			event = notify.EventApplicationPublished
			if err := r.Applications.Publish(ctx, got.SubjectID, at); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownPurpose, got.Purpose)
		}

		if _, err := ledgeruc.ApplyTo(ctx, r.Ledger, ledgeruc.ApplyInput{
			UserID:       got.UserID,
			Currency:     got.Currency,
			AccountType:  accountType,
			MutationType: domainLedger.MutationInvoiceReceived,
			Amount:       got.Amount,
			Reference:    got.InvoiceID,
			MutationDate: at,
		}); err != nil {
			return err
		}
		inv = got
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"invoice_id": inv.InvoiceID,
		"purpose":    inv.Purpose,
		"subject_id": inv.SubjectID,
		"amount":     inv.Amount.String(),
	}).Info("invoice paid")

	if err := u.queue.Queue(ctx, event, map[string]any{
		"subject_id": inv.SubjectID,
		"invoice_id": inv.InvoiceID,
	}); err != nil {
		u.log.WithError(err).WithField("event", event).Warn("notification enqueue failed")
	}

	return &PaidInvoiceDTO{
		InvoiceID: inv.InvoiceID,
		UserID:    inv.UserID,
		Purpose:   string(inv.Purpose),
		SubjectID: inv.SubjectID,
		Currency:  inv.Currency,
		Amount:    inv.Amount,
		Status:    string(domainInvoice.StatusPaid),
		PaidAt:    at,
	}, nil
}

func (u *Usecase) Get(ctx context.Context, invoiceID string) (*domainInvoice.Invoice, error) {
	return u.invoices.GetByInvoiceID(ctx, invoiceID)
}
