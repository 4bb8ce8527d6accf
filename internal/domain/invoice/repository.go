package invoice

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByInvoiceID(ctx context.Context, invoiceID string) (*Invoice, error)
	// MarkPaid flips pending → paid once; guarded update.
	MarkPaid(ctx context.Context, invoiceID string, at time.Time) error
}
