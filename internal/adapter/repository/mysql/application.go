package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	domain "coinlend-backend/internal/domain/application"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *domain.LoanApplication) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApplicationRepository) GetByApplicationID(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	var out domain.LoanApplication
	err := r.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ApplicationRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]domain.LoanApplication, error) {
	var out []domain.LoanApplication
	err := r.db.WithContext(ctx).
		Where("borrower_id = ?", borrowerID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *ApplicationRepository) ListPublished(ctx context.Context, limit int) ([]domain.LoanApplication, error) {
	var out []domain.LoanApplication
	q := r.db.WithContext(ctx).
		Where("status = ?", domain.StatusPublished).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return out, q.Find(&out).Error
}

func (r *ApplicationRepository) CountPublished(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.LoanApplication{}).
		Where("status = ?", domain.StatusPublished).
		Count(&n).Error
	return n, err
}

func (r *ApplicationRepository) Publish(ctx context.Context, applicationID string, at time.Time) error {
	return r.transition(ctx, applicationID, []domain.Status{domain.StatusPendingCollateral}, map[string]any{
		"status":           domain.StatusPublished,
		"published_at":     at,
		"state_updated_at": at,
	})
}

// MarkMatched claims the application for exactly one loan. The status guard
// makes the second concurrent claim lose with ErrAlreadyMatched.
func (r *ApplicationRepository) MarkMatched(ctx context.Context, applicationID string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.LoanApplication{}).
		Where("application_id = ? AND status = ?", applicationID, domain.StatusPublished).
		Updates(map[string]any{
			"status":           domain.StatusMatched,
			"matched_at":       at,
			"state_updated_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		a, err := r.GetByApplicationID(ctx, applicationID)
		if err != nil {
			return err
		}
		if a.Status == domain.StatusMatched {
			return domain.ErrAlreadyMatched
		}
		return fmt.Errorf("%w: application %s is %s", domain.ErrInvalidTransition, applicationID, a.Status)
	}
	return nil
}

func (r *ApplicationRepository) Close(ctx context.Context, applicationID string, at time.Time) error {
	return r.transition(ctx, applicationID, []domain.Status{domain.StatusPendingCollateral, domain.StatusPublished}, map[string]any{
		"status":           domain.StatusClosed,
		"closed_at":        at,
		"state_updated_at": at,
	})
}

func (r *ApplicationRepository) transition(ctx context.Context, applicationID string, from []domain.Status, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.LoanApplication{}).
		Where("application_id = ? AND status IN ?", applicationID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		a, err := r.GetByApplicationID(ctx, applicationID)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: application %s is %s", domain.ErrInvalidTransition, applicationID, a.Status)
	}
	return nil
}

func (r *ApplicationRepository) ExpireStale(ctx context.Context, asOf time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.LoanApplication{}).
		Where("status IN ? AND expires_at IS NOT NULL AND expires_at <= ?",
			[]domain.Status{domain.StatusPendingCollateral, domain.StatusPublished}, asOf).
		Updates(map[string]any{
			"status":           domain.StatusExpired,
			"state_updated_at": asOf,
		})
	return res.RowsAffected, res.Error
}
