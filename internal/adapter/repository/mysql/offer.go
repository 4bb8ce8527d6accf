package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "coinlend-backend/internal/domain/offer"
)

type OfferRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

func (r *OfferRepository) Create(ctx context.Context, o *domain.LoanOffer) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OfferRepository) GetByOfferID(ctx context.Context, offerID string) (*domain.LoanOffer, error) {
	var out domain.LoanOffer
	err := r.db.WithContext(ctx).Where("offer_id = ?", offerID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *OfferRepository) GetByOfferIDForUpdate(ctx context.Context, offerID string) (*domain.LoanOffer, error) {
	var out domain.LoanOffer
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("offer_id = ?", offerID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *OfferRepository) ListByLender(ctx context.Context, lenderID string) ([]domain.LoanOffer, error) {
	var out []domain.LoanOffer
	err := r.db.WithContext(ctx).
		Where("lender_id = ?", lenderID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *OfferRepository) ListOpen(ctx context.Context, currency string) ([]domain.LoanOffer, error) {
	var out []domain.LoanOffer
	err := r.db.WithContext(ctx).
		Where("status = ? AND principal_currency = ? AND available_amount > 0", domain.StatusPublished, currency).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *OfferRepository) Publish(ctx context.Context, offerID string, at time.Time) error {
	return r.transition(ctx, offerID, []domain.Status{domain.StatusDraft}, map[string]any{
		"status":           domain.StatusPublished,
		"published_at":     at,
		"state_updated_at": at,
	})
}

func (r *OfferRepository) Pause(ctx context.Context, offerID string, at time.Time) error {
	return r.transition(ctx, offerID, []domain.Status{domain.StatusPublished}, map[string]any{
		"status":           domain.StatusPaused,
		"state_updated_at": at,
	})
}

func (r *OfferRepository) Resume(ctx context.Context, offerID string, at time.Time) error {
	return r.transition(ctx, offerID, []domain.Status{domain.StatusPaused}, map[string]any{
		"status":           domain.StatusPublished,
		"state_updated_at": at,
	})
}

func (r *OfferRepository) Close(ctx context.Context, offerID string, at time.Time) error {
	return r.transition(ctx, offerID, []domain.Status{domain.StatusPublished, domain.StatusPaused}, map[string]any{
		"status":           domain.StatusClosed,
		"closed_at":        at,
		"state_updated_at": at,
	})
}

// transition runs one guarded status update. Zero affected rows means the
// offer is missing or not in any of the from states, and nothing was written.
func (r *OfferRepository) transition(ctx context.Context, offerID string, from []domain.Status, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.LoanOffer{}).
		Where("offer_id = ? AND status IN ?", offerID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		o, err := r.GetByOfferID(ctx, offerID)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: offer %s is %s", domain.ErrInvalidTransition, offerID, o.Status)
	}
	return nil
}

func (r *OfferRepository) ExpireStale(ctx context.Context, asOf time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.LoanOffer{}).
		Where("status IN ? AND expires_at IS NOT NULL AND expires_at <= ?",
			[]domain.Status{domain.StatusDraft, domain.StatusPublished, domain.StatusPaused}, asOf).
		Updates(map[string]any{
			"status":           domain.StatusExpired,
			"state_updated_at": asOf,
		})
	return res.RowsAffected, res.Error
}

// ReserveCapacity moves amount from available to disbursed in a single
// conditional update, so concurrent matchers cannot oversubscribe the offer.
func (r *OfferRepository) ReserveCapacity(ctx context.Context, offerID string, amount decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&domain.LoanOffer{}).
		Where("offer_id = ? AND status = ? AND available_amount >= ?", offerID, domain.StatusPublished, amount).
		Updates(map[string]any{
			"available_amount": gorm.Expr("available_amount - ?", amount),
			"disbursed_amount": gorm.Expr("disbursed_amount + ?", amount),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: offer %s cannot cover %s", domain.ErrInsufficientCapacity, offerID, amount)
	}
	return nil
}

func (r *OfferRepository) CloseIfExhausted(ctx context.Context, offerID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.LoanOffer{}).
		Where("offer_id = ? AND status = ? AND available_amount = 0", offerID, domain.StatusPublished).
		Updates(map[string]any{
			"status":           domain.StatusClosed,
			"closed_at":        at,
			"state_updated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
