package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "coinlend-backend/internal/domain/ledger"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// EnsureAccount inserts the zero-balance row once; the owner unique index
// absorbs repeats.
func (r *LedgerRepository) EnsureAccount(ctx context.Context, userID, currency string, at domain.AccountType) error {
	acct := &domain.Account{
		UserID:      userID,
		Currency:    currency,
		AccountType: at,
		Balance:     decimal.Zero,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(acct).Error
}

func (r *LedgerRepository) GetAccount(ctx context.Context, userID, currency string, at domain.AccountType) (*domain.Account, error) {
	var out domain.Account
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND currency = ? AND account_type = ?", userID, currency, at).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *LedgerRepository) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	var out []domain.Account
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("currency ASC, account_type ASC").
		Find(&out).Error
	return out, err
}

// AdjustBalance locks the account row, applies the signed delta and writes
// the result back. A delta that would take the balance below zero leaves the
// row untouched and returns ErrInsufficientBalance.
func (r *LedgerRepository) AdjustBalance(ctx context.Context, userID, currency string, at domain.AccountType, delta decimal.Decimal) (decimal.Decimal, error) {
	var acct domain.Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND currency = ? AND account_type = ?", userID, currency, at).
		First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, domain.ErrAccountNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}

	next := acct.Balance.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s %s %s has %s, delta %s",
			domain.ErrInsufficientBalance, userID, currency, at, acct.Balance, delta)
	}

	err = r.db.WithContext(ctx).Model(&domain.Account{}).
		Where("id = ?", acct.ID).
		Update("balance", next).Error
	if err != nil {
		return decimal.Zero, err
	}
	return next, nil
}

func (r *LedgerRepository) AppendEntry(ctx context.Context, e *domain.AccountMutationEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *LedgerRepository) ListEntries(ctx context.Context, userID string, limit int) ([]domain.AccountMutationEntry, error) {
	var out []domain.AccountMutationEntry
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return out, q.Find(&out).Error
}

func (r *LedgerRepository) SumEntries(ctx context.Context, userID, currency string, at domain.AccountType) (decimal.Decimal, error) {
	row := r.db.WithContext(ctx).Model(&domain.AccountMutationEntry{}).
		Where("user_id = ? AND currency = ? AND account_type = ?", userID, currency, at).
		Select("COALESCE(SUM(amount), 0)").
		Row()
	var sum decimal.Decimal
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}
