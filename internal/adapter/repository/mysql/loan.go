package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "coinlend-backend/internal/domain/loan"
)

type LoanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

func (r *LoanRepository) Create(ctx context.Context, l *domain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	var out domain.Loan
	err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	var out domain.Loan
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *LoanRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]domain.Loan, error) {
	var out []domain.Loan
	err := r.db.WithContext(ctx).
		Where("borrower_id = ?", borrowerID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *LoanRepository) ListActive(ctx context.Context, limit int) ([]domain.Loan, error) {
	var out []domain.Loan
	q := r.db.WithContext(ctx).
		Where("status = ?", domain.StatusActive).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return out, q.Find(&out).Error
}

func (r *LoanRepository) Activate(ctx context.Context, loanID string, at time.Time) error {
	return r.transition(ctx, loanID, domain.StatusOriginated, map[string]any{
		"status":            domain.StatusActive,
		"disbursement_date": at,
	})
}

func (r *LoanRepository) MarkRepaid(ctx context.Context, loanID string, at time.Time) error {
	return r.transition(ctx, loanID, domain.StatusActive, map[string]any{
		"status":      domain.StatusRepaid,
		"repaid_date": at,
	})
}

func (r *LoanRepository) MarkLiquidated(ctx context.Context, loanID string, at time.Time) error {
	return r.transition(ctx, loanID, domain.StatusActive, map[string]any{
		"status":           domain.StatusLiquidated,
		"liquidation_date": at,
	})
}

// transition runs one guarded status update. On zero affected rows the loan
// is re-read to report what blocked it: a settled loan stays settled.
func (r *LoanRepository) transition(ctx context.Context, loanID string, from domain.Status, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.Loan{}).
		Where("loan_id = ? AND status = ?", loanID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		l, err := r.GetByLoanID(ctx, loanID)
		if err != nil {
			return err
		}
		switch l.Status {
		case domain.StatusRepaid, domain.StatusLiquidated:
			return fmt.Errorf("%w: loan %s is %s", domain.ErrAlreadySettled, loanID, l.Status)
		default:
			return fmt.Errorf("%w: loan %s is %s", domain.ErrInvalidTransition, loanID, l.Status)
		}
	}
	return nil
}

func (r *LoanRepository) Save(ctx context.Context, l *domain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}
