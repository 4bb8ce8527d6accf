package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	domainLedger "coinlend-backend/internal/domain/ledger"
	"coinlend-backend/internal/domain/uow"
	"coinlend-backend/pkg/id"
)

var ErrInvalidMutation = errors.New("invalid ledger mutation")

// ApplyTo appends one mutation against the given repository handle.
// The balance adjustment is conditional (never below zero) and lands
// in the same transaction as the entry insert, so callers already
// inside a unit of work can compose settlement legs safely.
func ApplyTo(ctx context.Context, repo domainLedger.Repository, in ApplyInput) (*domainLedger.AccountMutationEntry, error) {
	if in.UserID == "" || in.Currency == "" || in.AccountType == "" || in.MutationType == "" {
		return nil, ErrInvalidMutation
	}
	if in.Amount.IsZero() {
		return nil, ErrInvalidMutation
	}
	if err := repo.EnsureAccount(ctx, in.UserID, in.Currency, in.AccountType); err != nil {
		return nil, err
	}
	newBal, err := repo.AdjustBalance(ctx, in.UserID, in.Currency, in.AccountType, in.Amount)
	if err != nil {
		return nil, err
	}
	e := &domainLedger.AccountMutationEntry{
		EntryID:      id.NewID32(),
		UserID:       in.UserID,
		Currency:     in.Currency,
		AccountType:  in.AccountType,
		MutationType: in.MutationType,
		Amount:       in.Amount,
		BalanceAfter: newBal,
		Reference:    in.Reference,
		MutationDate: in.MutationDate.UTC(),
	}
	if err := repo.AppendEntry(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

type Usecase struct {
	repo domainLedger.Repository
	uow  uow.UnitOfWork
	log  *logrus.Logger
	now  func() time.Time
}

func NewUsecase(repo domainLedger.Repository, tx uow.UnitOfWork, log *logrus.Logger) *Usecase {
	return &Usecase{repo: repo, uow: tx, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Apply runs one mutation in its own transaction.
func (u *Usecase) Apply(ctx context.Context, in ApplyInput) (*EntryDTO, error) {
	var out *domainLedger.AccountMutationEntry
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		e, err := ApplyTo(ctx, r.Ledger, in)
		if err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entryDTO(out), nil
}

// Balance reads the materialized account balance; an account that was
// never touched reports zero.
func (u *Usecase) Balance(ctx context.Context, userID, currency string, at domainLedger.AccountType) (decimal.Decimal, error) {
	acct, err := u.repo.GetAccount(ctx, userID, currency, at)
	if err != nil {
		if errors.Is(err, domainLedger.ErrAccountNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Decimal{}, err
	}
	return acct.Balance, nil
}

func (u *Usecase) Balances(ctx context.Context, userID string) ([]BalanceDTO, error) {
	accts, err := u.repo.ListAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]BalanceDTO, 0, len(accts))
	for _, a := range accts {
		out = append(out, BalanceDTO{Currency: a.Currency, AccountType: string(a.AccountType), Balance: a.Balance})
	}
	return out, nil
}

func (u *Usecase) Entries(ctx context.Context, userID string, limit int) ([]EntryDTO, error) {
	entries, err := u.repo.ListEntries(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]EntryDTO, 0, len(entries))
	for i := range entries {
		out = append(out, *entryDTO(&entries[i]))
	}
	return out, nil
}

// Withdraw debits the user's main account. The conditional update
// inside ApplyTo is the only overdraw check; there is no separate
// read-then-write window.
func (u *Usecase) Withdraw(ctx context.Context, in WithdrawInput) (*EntryDTO, error) {
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidMutation
	}
	dto, err := u.Apply(ctx, ApplyInput{
		UserID:       in.UserID,
		Currency:     in.Currency,
		AccountType:  domainLedger.AccountMain,
		MutationType: domainLedger.MutationWithdrawalRequested,
		Amount:       in.Amount.Neg(),
		Reference:    in.Reference,
		MutationDate: u.now(),
	})
	if err != nil {
		return nil, err
	}
	u.log.WithFields(logrus.Fields{"user_id": in.UserID, "currency": in.Currency, "amount": in.Amount}).
		Info("withdrawal requested")
	return dto, nil
}

// RefundWithdrawal credits back a withdrawal that custody rejected.
func (u *Usecase) RefundWithdrawal(ctx context.Context, in WithdrawInput) (*EntryDTO, error) {
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidMutation
	}
	return u.Apply(ctx, ApplyInput{
		UserID:       in.UserID,
		Currency:     in.Currency,
		AccountType:  domainLedger.AccountMain,
		MutationType: domainLedger.MutationWithdrawalRefunded,
		Amount:       in.Amount,
		Reference:    in.Reference,
		MutationDate: u.now(),
	})
}

// Audit compares the materialized balance with the entry sum.
func (u *Usecase) Audit(ctx context.Context, userID, currency string, at domainLedger.AccountType) (balance, sum decimal.Decimal, ok bool, err error) {
	balance, err = u.Balance(ctx, userID, currency, at)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, false, err
	}
	sum, err = u.repo.SumEntries(ctx, userID, currency, at)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, false, err
	}
	return balance, sum, balance.Equal(sum), nil
}
