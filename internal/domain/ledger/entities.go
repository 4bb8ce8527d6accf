package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound     = errors.New("ledger account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

type AccountType string

const (
	AccountMain       AccountType = "main"
	AccountFunding    AccountType = "funding"
	AccountCollateral AccountType = "collateral"
)

type MutationType string

const (
	MutationInvoiceReceived     MutationType = "invoice_received"
	MutationLoanDisbursed       MutationType = "loan_disbursed"
	MutationOriginationFee      MutationType = "origination_fee"
	MutationRepaymentReceived   MutationType = "repayment_received"
	MutationRepaymentPaidOut    MutationType = "repayment_paid_out"
	MutationLenderFee           MutationType = "lender_fee"
	MutationCollateralReleased  MutationType = "collateral_released"
	MutationCollateralSeized    MutationType = "collateral_seized"
	MutationLiquidationProceeds MutationType = "liquidation_proceeds"
	MutationLiquidationSurplus  MutationType = "liquidation_surplus"
	MutationLiquidationFee      MutationType = "liquidation_fee"
	MutationEarlySettlementFee  MutationType = "early_settlement_fee"
	MutationWithdrawalRequested MutationType = "withdrawal_requested"
	MutationWithdrawalRefunded  MutationType = "withdrawal_refunded"
)

// Account holds the materialized balance for one (user, currency,
// account type). It is derived state: only the apply path changes it,
// in the same transaction as the entry append. balance == sum of all
// entry amounts at every point in time.
type Account struct {
	ID          uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      string          `gorm:"column:user_id;type:char(32);not null;uniqueIndex:ux_accounts_owner,priority:1"`
	Currency    string          `gorm:"column:currency;size:16;not null;uniqueIndex:ux_accounts_owner,priority:2"`
	AccountType AccountType     `gorm:"column:account_type;size:16;not null;uniqueIndex:ux_accounts_owner,priority:3"`
	Balance     decimal.Decimal `gorm:"column:balance;type:decimal(30,8);not null"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
}

func (Account) TableName() string { return "accounts" }

// AccountMutationEntry is one immutable ledger line. Amount sign
// encodes credit/debit; BalanceAfter is the account balance right
// after this entry. Rows are never updated or deleted.
type AccountMutationEntry struct {
	ID           uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	EntryID      string          `gorm:"column:entry_id;type:char(32);not null;uniqueIndex:ux_mutations_entry_id"`
	UserID       string          `gorm:"column:user_id;type:char(32);not null;index:idx_mutations_owner,priority:1"`
	Currency     string          `gorm:"column:currency;size:16;not null;index:idx_mutations_owner,priority:2"`
	AccountType  AccountType     `gorm:"column:account_type;size:16;not null;index:idx_mutations_owner,priority:3"`
	MutationType MutationType    `gorm:"column:mutation_type;size:32;not null"`
	Amount       decimal.Decimal `gorm:"column:amount;type:decimal(30,8);not null"`
	BalanceAfter decimal.Decimal `gorm:"column:balance_after;type:decimal(30,8);not null"`
	Reference    string          `gorm:"column:reference;size:64;index"`
	MutationDate time.Time       `gorm:"column:mutation_date;not null"`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
}

func (AccountMutationEntry) TableName() string { return "account_mutations" }
