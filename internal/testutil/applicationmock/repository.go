package applicationmock

import (
	domain "coinlend-backend/internal/domain/application"
	"context"
	"time"
)

// Repo is a func-field test double for domain.Repository.
type Repo struct {
	CreateFn             func(ctx context.Context, a *domain.LoanApplication) error
	GetByApplicationIDFn func(ctx context.Context, applicationID string) (*domain.LoanApplication, error)
	ListByBorrowerFn     func(ctx context.Context, borrowerID string) ([]domain.LoanApplication, error)
	ListPublishedFn      func(ctx context.Context, limit int) ([]domain.LoanApplication, error)
	CountPublishedFn     func(ctx context.Context) (int64, error)
	PublishFn            func(ctx context.Context, applicationID string, at time.Time) error
	MarkMatchedFn        func(ctx context.Context, applicationID string, at time.Time) error
	CloseFn              func(ctx context.Context, applicationID string, at time.Time) error
	ExpireStaleFn        func(ctx context.Context, asOf time.Time) (int64, error)
}

var _ domain.Repository = (*Repo)(nil)

func (m *Repo) Create(ctx context.Context, a *domain.LoanApplication) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByApplicationID(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	if m.GetByApplicationIDFn != nil {
		return m.GetByApplicationIDFn(ctx, applicationID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByBorrower(ctx context.Context, borrowerID string) ([]domain.LoanApplication, error) {
	if m.ListByBorrowerFn != nil {
		return m.ListByBorrowerFn(ctx, borrowerID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListPublished(ctx context.Context, limit int) ([]domain.LoanApplication, error) {
	if m.ListPublishedFn != nil {
		return m.ListPublishedFn(ctx, limit)
	}
	return nil, context.Canceled
}

func (m *Repo) CountPublished(ctx context.Context) (int64, error) {
	if m.CountPublishedFn != nil {
		return m.CountPublishedFn(ctx)
	}
	return 0, nil
}

func (m *Repo) Publish(ctx context.Context, applicationID string, at time.Time) error {
	if m.PublishFn != nil {
		return m.PublishFn(ctx, applicationID, at)
	}
	return nil
}

func (m *Repo) MarkMatched(ctx context.Context, applicationID string, at time.Time) error {
	if m.MarkMatchedFn != nil {
		return m.MarkMatchedFn(ctx, applicationID, at)
	}
	return nil
}

func (m *Repo) Close(ctx context.Context, applicationID string, at time.Time) error {
	if m.CloseFn != nil {
		return m.CloseFn(ctx, applicationID, at)
	}
	return nil
}

func (m *Repo) ExpireStale(ctx context.Context, asOf time.Time) (int64, error) {
	if m.ExpireStaleFn != nil {
		return m.ExpireStaleFn(ctx, asOf)
	}
	return 0, nil
}
