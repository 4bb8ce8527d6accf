package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	domain "coinlend-backend/internal/domain/invoice"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *InvoiceRepository) GetByInvoiceID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	var out domain.Invoice
	err := r.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkPaid settles a pending invoice exactly once; replayed confirmations
// fail the status guard.
func (r *InvoiceRepository) MarkPaid(ctx context.Context, invoiceID string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.Invoice{}).
		Where("invoice_id = ? AND status = ?", invoiceID, domain.StatusPending).
		Updates(map[string]any{
			"status":  domain.StatusPaid,
			"paid_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		inv, err := r.GetByInvoiceID(ctx, invoiceID)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: invoice %s is %s", domain.ErrInvalidTransition, invoiceID, inv.Status)
	}
	return nil
}
