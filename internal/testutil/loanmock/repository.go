package loanmock

import (
	domain "coinlend-backend/internal/domain/loan"
	"context"
	"time"
)

// Repo stubs domain.Repository with per-method function fields.
// Unset writes succeed silently; unset reads fail so a test can't
// accidentally depend on data it never arranged.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Loan, error)
	ListByBorrowerFn       func(ctx context.Context, borrowerID string) ([]domain.Loan, error)
	ListActiveFn           func(ctx context.Context, limit int) ([]domain.Loan, error)
	ActivateFn             func(ctx context.Context, loanID string, at time.Time) error
	MarkRepaidFn           func(ctx context.Context, loanID string, at time.Time) error
	MarkLiquidatedFn       func(ctx context.Context, loanID string, at time.Time) error
	SaveFn                 func(ctx context.Context, l *domain.Loan) error
}

var _ domain.Repository = (*Repo)(nil)

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByBorrower(ctx context.Context, borrowerID string) ([]domain.Loan, error) {
	if m.ListByBorrowerFn != nil {
		return m.ListByBorrowerFn(ctx, borrowerID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListActive(ctx context.Context, limit int) ([]domain.Loan, error) {
	if m.ListActiveFn != nil {
		return m.ListActiveFn(ctx, limit)
	}
	return nil, context.Canceled
}

func (m *Repo) Activate(ctx context.Context, loanID string, at time.Time) error {
	if m.ActivateFn != nil {
		return m.ActivateFn(ctx, loanID, at)
	}
	return nil
}

func (m *Repo) MarkRepaid(ctx context.Context, loanID string, at time.Time) error {
	if m.MarkRepaidFn != nil {
		return m.MarkRepaidFn(ctx, loanID, at)
	}
	return nil
}

func (m *Repo) MarkLiquidated(ctx context.Context, loanID string, at time.Time) error {
	if m.MarkLiquidatedFn != nil {
		return m.MarkLiquidatedFn(ctx, loanID, at)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}
