package invoicemock

import (
	domain "coinlend-backend/internal/domain/invoice"
	"context"
	"time"
)

// Repo stubs the small invoice repository surface.
type Repo struct {
	CreateFn         func(ctx context.Context, inv *domain.Invoice) error
	GetByInvoiceIDFn func(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	MarkPaidFn       func(ctx context.Context, invoiceID string, at time.Time) error
}

var _ domain.Repository = (*Repo)(nil)

func (m *Repo) Create(ctx context.Context, inv *domain.Invoice) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, inv)
	}
	return nil
}

func (m *Repo) GetByInvoiceID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	if m.GetByInvoiceIDFn != nil {
		return m.GetByInvoiceIDFn(ctx, invoiceID)
	}
	return nil, context.Canceled
}

func (m *Repo) MarkPaid(ctx context.Context, invoiceID string, at time.Time) error {
	if m.MarkPaidFn != nil {
		return m.MarkPaidFn(ctx, invoiceID, at)
	}
	return nil
}
