package mysql

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// --- SQLite-friendly schema only for tests (no ENUM, no DECIMAL) ---
//
// Money columns become REAL so comparisons and the capacity arithmetic stay
// numeric; the unique indexes the guarded updates rely on are mirrored.

type offerSQLite struct {
	ID                uint64     `gorm:"primaryKey;column:id"`
	OfferID           string     `gorm:"size:32;column:offer_id;uniqueIndex:ux_offers_offer_id"`
	LenderID          string     `gorm:"size:32;column:lender_id"`
	LenderType        string     `gorm:"column:lender_type"`
	PrincipalCurrency string     `gorm:"column:principal_currency"`
	TotalAmount       float64    `gorm:"column:total_amount"`
	AvailableAmount   float64    `gorm:"column:available_amount"`
	DisbursedAmount   float64    `gorm:"column:disbursed_amount"`
	InterestRate      float64    `gorm:"column:interest_rate"`
	TermOptions       string     `gorm:"column:term_options"`
	MinLoanAmount     float64    `gorm:"column:min_loan_amount"`
	MaxLoanAmount     float64    `gorm:"column:max_loan_amount"`
	LiquidationMode   string     `gorm:"column:liquidation_mode"`
	Status            string     `gorm:"type:text;column:status"`
	FundingInvoiceID  string     `gorm:"size:32;column:funding_invoice_id"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
	StateUpdatedAt    time.Time  `gorm:"column:state_updated_at"`
	PublishedAt       *time.Time `gorm:"column:published_at"`
	ExpiresAt         *time.Time `gorm:"column:expires_at"`
	ClosedAt          *time.Time `gorm:"column:closed_at"`
}

func (offerSQLite) TableName() string { return "loan_offers" }

type applicationSQLite struct {
	ID                  uint64     `gorm:"primaryKey;column:id"`
	ApplicationID       string     `gorm:"size:32;column:application_id;uniqueIndex:ux_applications_application_id"`
	BorrowerID          string     `gorm:"size:32;column:borrower_id"`
	PrincipalAmount     float64    `gorm:"column:principal_amount"`
	PrincipalCurrency   string     `gorm:"column:principal_currency"`
	CollateralCurrency  string     `gorm:"column:collateral_currency"`
	CollateralAmount    float64    `gorm:"column:collateral_amount"`
	MaxInterestRate     float64    `gorm:"column:max_interest_rate"`
	TermMonths          int        `gorm:"column:term_months"`
	LiquidationMode     string     `gorm:"column:liquidation_mode"`
	MinLtv              float64    `gorm:"column:min_ltv"`
	MaxLtv              float64    `gorm:"column:max_ltv"`
	Status              string     `gorm:"type:text;column:status"`
	CollateralInvoiceID string     `gorm:"size:32;column:collateral_invoice_id"`
	CreatedAt           time.Time  `gorm:"column:created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at"`
	StateUpdatedAt      time.Time  `gorm:"column:state_updated_at"`
	PublishedAt         *time.Time `gorm:"column:published_at"`
	MatchedAt           *time.Time `gorm:"column:matched_at"`
	ExpiresAt           *time.Time `gorm:"column:expires_at"`
	ClosedAt            *time.Time `gorm:"column:closed_at"`
}

func (applicationSQLite) TableName() string { return "loan_applications" }

type loanSQLite struct {
	ID                     uint64     `gorm:"primaryKey;column:id"`
	LoanID                 string     `gorm:"size:32;column:loan_id;uniqueIndex:ux_loans_loan_id"`
	OfferID                string     `gorm:"size:32;column:offer_id"`
	ApplicationID          string     `gorm:"size:32;column:application_id;uniqueIndex:ux_loans_application"`
	BorrowerID             string     `gorm:"size:32;column:borrower_id"`
	LenderID               string     `gorm:"size:32;column:lender_id"`
	PrincipalAmount        float64    `gorm:"column:principal_amount"`
	PrincipalCurrency      string     `gorm:"column:principal_currency"`
	CollateralAmount       float64    `gorm:"column:collateral_amount"`
	CollateralCurrency     string     `gorm:"column:collateral_currency"`
	InterestRate           float64    `gorm:"column:interest_rate"`
	TermMonths             int        `gorm:"column:term_months"`
	LiquidationMode        string     `gorm:"column:liquidation_mode"`
	MatchedLtv             float64    `gorm:"column:matched_ltv"`
	MaxLtvRatio            float64    `gorm:"column:max_ltv_ratio"`
	CurrentLtv             float64    `gorm:"column:current_ltv"`
	McLtvRatio             float64    `gorm:"column:mc_ltv_ratio"`
	MinCollateralValuation float64    `gorm:"column:min_collateral_valuation"`
	ExchangeRate           float64    `gorm:"column:exchange_rate"`
	InterestAmount         float64    `gorm:"column:interest_amount"`
	OriginationFee         float64    `gorm:"column:origination_fee"`
	LenderFee              float64    `gorm:"column:lender_fee"`
	LiquidationFee         float64    `gorm:"column:liquidation_fee"`
	RedeliveryAmount       float64    `gorm:"column:redelivery_amount"`
	PrincipalOutstanding   float64    `gorm:"column:principal_outstanding"`
	InterestOutstanding    float64    `gorm:"column:interest_outstanding"`
	RepaidAmount           float64    `gorm:"column:repaid_amount"`
	Status                 string     `gorm:"type:text;column:status"`
	OriginationDate        time.Time  `gorm:"column:origination_date"`
	MaturityDate           time.Time  `gorm:"column:maturity_date"`
	DisbursementDate       *time.Time `gorm:"column:disbursement_date"`
	RepaidDate             *time.Time `gorm:"column:repaid_date"`
	LiquidationDate        *time.Time `gorm:"column:liquidation_date"`
	CreatedAt              time.Time  `gorm:"column:created_at"`
	UpdatedAt              time.Time  `gorm:"column:updated_at"`
}

func (loanSQLite) TableName() string { return "loans" }

type accountSQLite struct {
	ID          uint64    `gorm:"primaryKey;column:id"`
	UserID      string    `gorm:"size:32;column:user_id;uniqueIndex:ux_accounts_owner,priority:1"`
	Currency    string    `gorm:"column:currency;uniqueIndex:ux_accounts_owner,priority:2"`
	AccountType string    `gorm:"column:account_type;uniqueIndex:ux_accounts_owner,priority:3"`
	Balance     float64   `gorm:"column:balance"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (accountSQLite) TableName() string { return "accounts" }

type mutationSQLite struct {
	ID           uint64    `gorm:"primaryKey;column:id"`
	EntryID      string    `gorm:"size:32;column:entry_id;uniqueIndex:ux_mutations_entry_id"`
	UserID       string    `gorm:"size:32;column:user_id"`
	Currency     string    `gorm:"column:currency"`
	AccountType  string    `gorm:"column:account_type"`
	MutationType string    `gorm:"column:mutation_type"`
	Amount       float64   `gorm:"column:amount"`
	BalanceAfter float64   `gorm:"column:balance_after"`
	Reference    string    `gorm:"column:reference"`
	MutationDate time.Time `gorm:"column:mutation_date"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (mutationSQLite) TableName() string { return "account_mutations" }

type invoiceSQLite struct {
	ID             uint64     `gorm:"primaryKey;column:id"`
	InvoiceID      string     `gorm:"size:32;column:invoice_id;uniqueIndex:ux_invoices_invoice_id"`
	UserID         string     `gorm:"size:32;column:user_id"`
	Purpose        string     `gorm:"column:purpose"`
	SubjectID      string     `gorm:"size:32;column:subject_id"`
	Currency       string     `gorm:"column:currency"`
	Amount         float64    `gorm:"column:amount"`
	DepositAddress string     `gorm:"column:deposit_address"`
	Status         string     `gorm:"type:text;column:status"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
	PaidAt         *time.Time `gorm:"column:paid_at"`
}

func (invoiceSQLite) TableName() string { return "invoices" }

type currencySQLite struct {
	ID         uint64    `gorm:"primaryKey;column:id"`
	Code       string    `gorm:"column:code;uniqueIndex:ux_currencies_code"`
	Blockchain string    `gorm:"column:blockchain"`
	Token      string    `gorm:"column:token"`
	Decimals   int32     `gorm:"column:decimals"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (currencySQLite) TableName() string { return "currencies" }

type rateSQLite struct {
	ID         uint64    `gorm:"primaryKey;column:id"`
	Blockchain string    `gorm:"column:blockchain"`
	Token      string    `gorm:"column:token"`
	Rate       float64   `gorm:"column:rate"`
	AsOf       time.Time `gorm:"column:as_of"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (rateSQLite) TableName() string { return "exchange_rates" }

// openTestDB creates an in-memory sqlite DB and migrates ONLY the
// sqlite-safe models passed in, never the domain models.
func openTestDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}
