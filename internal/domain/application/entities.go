package application

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"coinlend-backend/internal/domain/loan"
)

var (
	ErrNotFound          = errors.New("loan application not found")
	ErrInvalidTransition = errors.New("invalid application state transition")
	ErrAlreadyMatched    = errors.New("application already matched")
)

type Status string

const (
	StatusPendingCollateral Status = "pending_collateral"
	StatusPublished         Status = "published"
	StatusMatched           Status = "matched"
	StatusClosed            Status = "closed"
	StatusExpired           Status = "expired"
)

// LoanApplication is a borrower's request. CollateralAmount is the
// deposit demanded at creation (sized against MinLtv); MaxLtv becomes
// the liquidation ceiling of the originated loan. Matched is
// terminal-once: later matching passes never see the row again.
type LoanApplication struct {
	ID                  uint64               `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	ApplicationID       string               `gorm:"column:application_id;type:char(32);not null;uniqueIndex:ux_applications_application_id" json:"application_id"`
	BorrowerID          string               `gorm:"column:borrower_id;type:char(32);not null;index:idx_applications_borrower" json:"borrower_id"`
	PrincipalAmount     decimal.Decimal      `gorm:"column:principal_amount;type:decimal(30,8);not null" json:"principal_amount"`
	PrincipalCurrency   string               `gorm:"column:principal_currency;size:16;not null" json:"principal_currency"`
	CollateralCurrency  string               `gorm:"column:collateral_currency;size:16;not null" json:"collateral_currency"`
	CollateralAmount    decimal.Decimal      `gorm:"column:collateral_amount;type:decimal(30,8);not null" json:"collateral_amount"`
	MaxInterestRate     decimal.Decimal      `gorm:"column:max_interest_rate;type:decimal(10,4);not null" json:"max_interest_rate"`
	TermMonths          int                  `gorm:"column:term_months;not null" json:"term_months"`
	LiquidationMode     loan.LiquidationMode `gorm:"column:liquidation_mode;size:16;not null" json:"liquidation_mode"`
	MinLtv              decimal.Decimal      `gorm:"column:min_ltv;type:decimal(12,6);not null" json:"min_ltv"`
	MaxLtv              decimal.Decimal      `gorm:"column:max_ltv;type:decimal(12,6);not null" json:"max_ltv"`
	Status              Status               `gorm:"column:status;size:24;not null;default:'pending_collateral';index:idx_applications_status" json:"status"`
	CollateralInvoiceID string               `gorm:"column:collateral_invoice_id;type:char(32)" json:"collateral_invoice_id"`
	CreatedAt           time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
	StateUpdatedAt      time.Time            `gorm:"column:state_updated_at" json:"state_updated_at"`
	PublishedAt         *time.Time           `gorm:"column:published_at" json:"published_at,omitempty"`
	MatchedAt           *time.Time           `gorm:"column:matched_at" json:"matched_at,omitempty"`
	ExpiresAt           *time.Time           `gorm:"column:expires_at;index" json:"expires_at,omitempty"`
	ClosedAt            *time.Time           `gorm:"column:closed_at" json:"closed_at,omitempty"`
}

func (LoanApplication) TableName() string { return "loan_applications" }
