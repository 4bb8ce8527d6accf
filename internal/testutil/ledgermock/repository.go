package ledgermock

import (
	domain "coinlend-backend/internal/domain/ledger"
	"context"

	"github.com/shopspring/decimal"
)

// Repo lets ledger tests stub individual repository calls.
type Repo struct {
	EnsureAccountFn func(ctx context.Context, userID, currency string, at domain.AccountType) error
	GetAccountFn    func(ctx context.Context, userID, currency string, at domain.AccountType) (*domain.Account, error)
	ListAccountsFn  func(ctx context.Context, userID string) ([]domain.Account, error)
	AdjustBalanceFn func(ctx context.Context, userID, currency string, at domain.AccountType, delta decimal.Decimal) (decimal.Decimal, error)
	AppendEntryFn   func(ctx context.Context, e *domain.AccountMutationEntry) error
	ListEntriesFn   func(ctx context.Context, userID string, limit int) ([]domain.AccountMutationEntry, error)
	SumEntriesFn    func(ctx context.Context, userID, currency string, at domain.AccountType) (decimal.Decimal, error)
}

var _ domain.Repository = (*Repo)(nil)

func (m *Repo) EnsureAccount(ctx context.Context, userID, currency string, at domain.AccountType) error {
	if m.EnsureAccountFn != nil {
		return m.EnsureAccountFn(ctx, userID, currency, at)
	}
	return nil
}

func (m *Repo) GetAccount(ctx context.Context, userID, currency string, at domain.AccountType) (*domain.Account, error) {
	if m.GetAccountFn != nil {
		return m.GetAccountFn(ctx, userID, currency, at)
	}
	return nil, context.Canceled
}

func (m *Repo) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	if m.ListAccountsFn != nil {
		return m.ListAccountsFn(ctx, userID)
	}
	return nil, context.Canceled
}

func (m *Repo) AdjustBalance(ctx context.Context, userID, currency string, at domain.AccountType, delta decimal.Decimal) (decimal.Decimal, error) {
	if m.AdjustBalanceFn != nil {
		return m.AdjustBalanceFn(ctx, userID, currency, at, delta)
	}
	return decimal.Decimal{}, context.Canceled
}

func (m *Repo) AppendEntry(ctx context.Context, e *domain.AccountMutationEntry) error {
	if m.AppendEntryFn != nil {
		return m.AppendEntryFn(ctx, e)
	}
	return nil
}

func (m *Repo) ListEntries(ctx context.Context, userID string, limit int) ([]domain.AccountMutationEntry, error) {
	if m.ListEntriesFn != nil {
		return m.ListEntriesFn(ctx, userID, limit)
	}
	return nil, context.Canceled
}

func (m *Repo) SumEntries(ctx context.Context, userID, currency string, at domain.AccountType) (decimal.Decimal, error) {
	if m.SumEntriesFn != nil {
		return m.SumEntriesFn(ctx, userID, currency, at)
	}
	return decimal.Decimal{}, context.Canceled
}
