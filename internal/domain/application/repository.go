package application

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, a *LoanApplication) error
	GetByApplicationID(ctx context.Context, applicationID string) (*LoanApplication, error)
	ListByBorrower(ctx context.Context, borrowerID string) ([]LoanApplication, error)
	// ListPublished returns up to limit published applications in
	// first-come order (creation time ascending).
	ListPublished(ctx context.Context, limit int) ([]LoanApplication, error)
	CountPublished(ctx context.Context) (int64, error)

	Publish(ctx context.Context, applicationID string, at time.Time) error
	// MarkMatched flips published → matched exactly once via a
	// status-guarded update; ErrAlreadyMatched if the guard fails on a
	// row that exists.
	MarkMatched(ctx context.Context, applicationID string, at time.Time) error
	Close(ctx context.Context, applicationID string, at time.Time) error
	ExpireStale(ctx context.Context, asOf time.Time) (int64, error)
}
