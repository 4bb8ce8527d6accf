package mysql

import (
	"context"

	"gorm.io/gorm"

	"coinlend-backend/internal/domain/loan"
	"coinlend-backend/internal/domain/uow"
)

// GormUoW commits or rolls back each body as one gorm transaction.
type GormUoW struct{ db *gorm.DB }

var _ uow.UnitOfWork = (*GormUoW)(nil)

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func txRepos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Offers:       NewOfferRepository(tx),
		Applications: NewApplicationRepository(tx),
		Loans:        NewLoanRepository(tx),
		Ledger:       NewLedgerRepository(tx),
		Invoices:     NewInvoiceRepository(tx),
		Rates:        NewRatesRepository(tx),
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(txRepos(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := txRepos(tx)
		// the locked read serializes all settlement work on this loan
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
