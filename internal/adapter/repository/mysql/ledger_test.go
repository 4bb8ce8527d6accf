package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "coinlend-backend/internal/domain/ledger"
	"coinlend-backend/pkg/id"
)

func TestLedgerRepository_EnsureAccountIdempotent(t *testing.T) {
	db := openTestDB(t, &accountSQLite{})
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	user := id.NewID32()
	if err := repo.EnsureAccount(ctx, user, "USDT", domain.AccountMain); err != nil {
		t.Fatalf("EnsureAccount: %v", err)
	}
	if _, err := repo.AdjustBalance(ctx, user, "USDT", domain.AccountMain, dec("250")); err != nil {
		t.Fatalf("AdjustBalance: %v", err)
	}

	// a repeat must neither fail nor reset the balance
	if err := repo.EnsureAccount(ctx, user, "USDT", domain.AccountMain); err != nil {
		t.Fatalf("repeat EnsureAccount: %v", err)
	}
	got, err := repo.GetAccount(ctx, user, "USDT", domain.AccountMain)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if !got.Balance.Equal(dec("250")) {
		t.Fatalf("Balance = %s, want 250", got.Balance)
	}

	var n int64
	if err := db.Model(&accountSQLite{}).Where("user_id = ?", user).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("found %d account rows, want 1", n)
	}
}

func TestLedgerRepository_AdjustBalance(t *testing.T) {
	db := openTestDB(t, &accountSQLite{})
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	user := id.NewID32()
	if err := repo.EnsureAccount(ctx, user, "USDT", domain.AccountMain); err != nil {
		t.Fatalf("EnsureAccount: %v", err)
	}

	bal, err := repo.AdjustBalance(ctx, user, "USDT", domain.AccountMain, dec("1000"))
	if err != nil || !bal.Equal(dec("1000")) {
		t.Fatalf("credit: bal=%s err=%v", bal, err)
	}
	bal, err = repo.AdjustBalance(ctx, user, "USDT", domain.AccountMain, dec("-400"))
	if err != nil || !bal.Equal(dec("600")) {
		t.Fatalf("debit: bal=%s err=%v", bal, err)
	}

	if _, err := repo.AdjustBalance(ctx, user, "USDT", domain.AccountMain, dec("-600.01")); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("overdraft: want ErrInsufficientBalance, got %v", err)
	}
	got, _ := repo.GetAccount(ctx, user, "USDT", domain.AccountMain)
	if !got.Balance.Equal(dec("600")) {
		t.Fatalf("failed debit must not move the balance, got %s", got.Balance)
	}

	if _, err := repo.AdjustBalance(ctx, user, "USDT", domain.AccountMain, dec("-600")); err != nil {
		t.Fatalf("exact drain must pass: %v", err)
	}

	if _, err := repo.AdjustBalance(ctx, id.NewID32(), "USDT", domain.AccountMain, dec("1")); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("missing account: want ErrAccountNotFound, got %v", err)
	}
}

func TestLedgerRepository_GetAccountNotFound(t *testing.T) {
	db := openTestDB(t, &accountSQLite{})
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	if _, err := repo.GetAccount(ctx, id.NewID32(), "USDT", domain.AccountMain); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}

func TestLedgerRepository_ListAccounts(t *testing.T) {
	db := openTestDB(t, &accountSQLite{})
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	user := id.NewID32()
	for _, at := range []domain.AccountType{domain.AccountMain, domain.AccountCollateral} {
		if err := repo.EnsureAccount(ctx, user, "BTC", at); err != nil {
			t.Fatalf("EnsureAccount: %v", err)
		}
	}
	if err := repo.EnsureAccount(ctx, id.NewID32(), "BTC", domain.AccountMain); err != nil {
		t.Fatalf("EnsureAccount: %v", err)
	}

	got, err := repo.ListAccounts(ctx, user)
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d accounts, want 2", len(got))
	}
}

func TestLedgerRepository_EntriesAndAudit(t *testing.T) {
	db := openTestDB(t, &accountSQLite{}, &mutationSQLite{})
	repo := NewLedgerRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	user := id.NewID32()
	if err := repo.EnsureAccount(ctx, user, "USDT", domain.AccountMain); err != nil {
		t.Fatalf("EnsureAccount: %v", err)
	}

	amounts := []string{"1000", "-400", "250"}
	running := dec("0")
	for _, a := range amounts {
		delta := dec(a)
		bal, err := repo.AdjustBalance(ctx, user, "USDT", domain.AccountMain, delta)
		if err != nil {
			t.Fatalf("AdjustBalance(%s): %v", a, err)
		}
		running = running.Add(delta)
		if !bal.Equal(running) {
			t.Fatalf("running balance = %s, want %s", bal, running)
		}
		err = repo.AppendEntry(ctx, &domain.AccountMutationEntry{
			EntryID:      id.NewID32(),
			UserID:       user,
			Currency:     "USDT",
			AccountType:  domain.AccountMain,
			MutationType: domain.MutationInvoiceReceived,
			Amount:       delta,
			BalanceAfter: bal,
			Reference:    "iv-1",
			MutationDate: now,
		})
		if err != nil {
			t.Fatalf("AppendEntry(%s): %v", a, err)
		}
	}

	entries, err := repo.ListEntries(ctx, user, 2)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// newest first
	if !entries[0].Amount.Equal(dec("250")) || !entries[1].Amount.Equal(dec("-400")) {
		t.Fatalf("wrong order: [%s, %s]", entries[0].Amount, entries[1].Amount)
	}

	sum, err := repo.SumEntries(ctx, user, "USDT", domain.AccountMain)
	if err != nil {
		t.Fatalf("SumEntries: %v", err)
	}
	acct, _ := repo.GetAccount(ctx, user, "USDT", domain.AccountMain)
	if !sum.Equal(acct.Balance) {
		t.Fatalf("entry sum %s diverges from balance %s", sum, acct.Balance)
	}

	sum, err = repo.SumEntries(ctx, user, "BTC", domain.AccountMain)
	if err != nil {
		t.Fatalf("SumEntries on empty set: %v", err)
	}
	if !sum.IsZero() {
		t.Fatalf("empty set sum = %s, want 0", sum)
	}
}
