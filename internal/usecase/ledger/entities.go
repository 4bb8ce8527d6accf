package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	domainLedger "coinlend-backend/internal/domain/ledger"
)

type ApplyInput struct {
	UserID       string
	Currency     string
	AccountType  domainLedger.AccountType
	MutationType domainLedger.MutationType
	Amount       decimal.Decimal // signed; positive credits, negative debits
	Reference    string
	MutationDate time.Time
}

type WithdrawInput struct {
	UserID    string          `json:"user_id"`
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
}

type BalanceDTO struct {
	Currency    string          `json:"currency"`
	AccountType string          `json:"account_type"`
	Balance     decimal.Decimal `json:"balance"`
}

type EntryDTO struct {
	EntryID      string          `json:"entry_id"`
	Currency     string          `json:"currency"`
	AccountType  string          `json:"account_type"`
	MutationType string          `json:"mutation_type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Reference    string          `json:"reference,omitempty"`
	MutationDate time.Time       `json:"mutation_date"`
}

func entryDTO(e *domainLedger.AccountMutationEntry) *EntryDTO {
	return &EntryDTO{
		EntryID:      e.EntryID,
		Currency:     e.Currency,
		AccountType:  string(e.AccountType),
		MutationType: string(e.MutationType),
		Amount:       e.Amount,
		BalanceAfter: e.BalanceAfter,
		Reference:    e.Reference,
		MutationDate: e.MutationDate,
	}
}
