package ledgermock

import (
	domain "coinlend-backend/internal/domain/ledger"
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// Mem is an in-memory Repository for flows that need real balance
// arithmetic instead of stubbed methods.
type Mem struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
	entries  []domain.AccountMutationEntry
}

var _ domain.Repository = (*Mem)(nil)

func NewMem() *Mem {
	return &Mem{balances: make(map[string]decimal.Decimal)}
}

func memKey(userID, currency string, at domain.AccountType) string {
	return userID + "|" + currency + "|" + string(at)
}

func (m *Mem) EnsureAccount(ctx context.Context, userID, currency string, at domain.AccountType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey(userID, currency, at)
	if _, ok := m.balances[k]; !ok {
		m.balances[k] = decimal.Zero
	}
	return nil
}

func (m *Mem) GetAccount(ctx context.Context, userID, currency string, at domain.AccountType) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bal, ok := m.balances[memKey(userID, currency, at)]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &domain.Account{UserID: userID, Currency: currency, AccountType: at, Balance: bal}, nil
}

func (m *Mem) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Account
	for k, bal := range m.balances {
		var u, c, at string
		for i, part := range splitKey(k) {
			switch i {
			case 0:
				u = part
			case 1:
				c = part
			case 2:
				at = part
			}
		}
		if u == userID {
			out = append(out, domain.Account{UserID: u, Currency: c, AccountType: domain.AccountType(at), Balance: bal})
		}
	}
	return out, nil
}

func splitKey(k string) []string {
	out := make([]string, 0, 3)
	start := 0
	for i := 0; i < len(k); i++ {
		if k[i] == '|' {
			out = append(out, k[start:i])
			start = i + 1
		}
	}
	return append(out, k[start:])
}

func (m *Mem) AdjustBalance(ctx context.Context, userID, currency string, at domain.AccountType, delta decimal.Decimal) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey(userID, currency, at)
	next := m.balances[k].Add(delta)
	if next.IsNegative() {
		return decimal.Decimal{}, domain.ErrInsufficientBalance
	}
	m.balances[k] = next
	return next, nil
}

func (m *Mem) AppendEntry(ctx context.Context, e *domain.AccountMutationEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *e)
	return nil
}

func (m *Mem) ListEntries(ctx context.Context, userID string, limit int) ([]domain.AccountMutationEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AccountMutationEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].UserID == userID {
			out = append(out, m.entries[i])
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *Mem) SumEntries(ctx context.Context, userID, currency string, at domain.AccountType) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := decimal.Zero
	for _, e := range m.entries {
		if e.UserID == userID && e.Currency == currency && e.AccountType == at {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

// Balance is a test convenience around GetAccount.
func (m *Mem) Balance(userID, currency string, at domain.AccountType) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[memKey(userID, currency, at)]
}

// Seed sets a balance directly, bypassing entries.
func (m *Mem) Seed(userID, currency string, at domain.AccountType, bal decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[memKey(userID, currency, at)] = bal
}
