package loan

import (
	"context"
	"time"
)

type Repository interface {
	// Create writes the loan row; DB uniqueness enforces at most one
	// loan per application.
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	ListByBorrower(ctx context.Context, borrowerID string) ([]Loan, error)
	ListActive(ctx context.Context, limit int) ([]Loan, error)

	// Conditional status transitions; zero affected rows means the
	// guard failed and nothing was written.
	Activate(ctx context.Context, loanID string, at time.Time) error
	MarkRepaid(ctx context.Context, loanID string, at time.Time) error
	MarkLiquidated(ctx context.Context, loanID string, at time.Time) error

	Save(ctx context.Context, l *Loan) error
}
