package uowmock

import (
	"context"
	"errors"

	"coinlend-backend/internal/domain/loan"
	"coinlend-backend/internal/domain/uow"
)

var _ uow.UnitOfWork = (*UoW)(nil)

var errNoStub = errors.New("uowmock: no transaction stub")

// UoW is a function-backed uow.UnitOfWork. Tests that never reach the
// transaction can use New(); tests that do want Passthrough.
type UoW struct {
	WithinTxFn     func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinLoanTxFn func(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error
}

func New() *UoW { return &UoW{} }

// Passthrough runs every transaction body directly against r, as if
// each one committed. The loan-scoped variant resolves the loan
// through the repos' locked read, like the real unit of work.
func Passthrough(r uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error {
			return fn(r)
		},
		WithinLoanTxFn: func(ctx context.Context, loanID string, fn func(uow.Repos, *loan.Loan) error) error {
			l, err := r.Loans.GetByLoanIDForUpdate(ctx, loanID)
			if err != nil {
				return err
			}
			return fn(r, l)
		},
	}
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn == nil {
		return errNoStub
	}
	return m.WithinTxFn(ctx, fn)
}

func (m *UoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	if m.WithinLoanTxFn == nil {
		return errNoStub
	}
	return m.WithinLoanTxFn(ctx, loanID, fn)
}
