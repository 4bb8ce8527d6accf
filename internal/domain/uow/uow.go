package uow

import (
	"context"

	"coinlend-backend/internal/domain/application"
	"coinlend-backend/internal/domain/invoice"
	"coinlend-backend/internal/domain/ledger"
	"coinlend-backend/internal/domain/loan"
	"coinlend-backend/internal/domain/offer"
	"coinlend-backend/internal/domain/rates"
)

// Repos bundles every repository bound to one transaction.
type Repos struct {
	Offers       offer.Repository
	Applications application.Repository
	Loans        loan.Repository
	Ledger       ledger.Repository
	Invoices     invoice.Repository
	Rates        rates.Repository
}

// UnitOfWork runs a function inside a single database transaction and
// hands it transaction-scoped repositories.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx locks the loan row before fn runs, so settlement
	// paths serialize per loan.
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
