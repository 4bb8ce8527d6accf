package loan

import (
	"context"

	domainLoan "coinlend-backend/internal/domain/loan"
)

// Usecase is the read side of settled loans. Loans are only ever
// created by the matching engine and mutated by the repayment and
// liquidation services, so there is no create or update path here.
type Usecase struct{ repo domainLoan.Repository }

func NewUsecase(r domainLoan.Repository) *Usecase { return &Usecase{repo: r} }

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.repo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return loanDTO(l), nil
}

func (u *Usecase) ListByBorrower(ctx context.Context, borrowerID string) ([]*LoanDTO, error) {
	items, err := u.repo.ListByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	out := make([]*LoanDTO, 0, len(items))
	for i := range items {
		out = append(out, loanDTO(&items[i]))
	}
	return out, nil
}
