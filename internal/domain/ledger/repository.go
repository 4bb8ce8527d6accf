package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	// EnsureAccount inserts a zero-balance row if none exists yet.
	EnsureAccount(ctx context.Context, userID, currency string, at AccountType) error
	GetAccount(ctx context.Context, userID, currency string, at AccountType) (*Account, error)
	ListAccounts(ctx context.Context, userID string) ([]Account, error)

	// AdjustBalance applies a signed delta and returns the resulting
	// balance. The update is conditional: it only lands if the result
	// stays non-negative, otherwise ErrInsufficientBalance and no write.
	AdjustBalance(ctx context.Context, userID, currency string, at AccountType, delta decimal.Decimal) (decimal.Decimal, error)

	// AppendEntry inserts one mutation line. Entries are append-only.
	AppendEntry(ctx context.Context, e *AccountMutationEntry) error
	ListEntries(ctx context.Context, userID string, limit int) ([]AccountMutationEntry, error)
	// SumEntries is the audit aggregate; it must always equal the
	// account row's balance.
	SumEntries(ctx context.Context, userID, currency string, at AccountType) (decimal.Decimal, error)
}
