package invoice

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("invoice not found")
	ErrInvalidTransition = errors.New("invalid invoice state transition")
)

type Purpose string

const (
	PurposeOfferFunding          Purpose = "offer_funding"
	PurposeApplicationCollateral Purpose = "application_collateral"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusExpired Status = "expired"
)

// Invoice records an expected custody deposit. Payment confirmation
// credits the ledger and publishes the subject offer or application.
type Invoice struct {
	ID             uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	InvoiceID      string          `gorm:"column:invoice_id;type:char(32);not null;uniqueIndex:ux_invoices_invoice_id" json:"invoice_id"`
	UserID         string          `gorm:"column:user_id;type:char(32);not null;index:idx_invoices_user" json:"user_id"`
	Purpose        Purpose         `gorm:"column:purpose;size:32;not null" json:"purpose"`
	SubjectID      string          `gorm:"column:subject_id;type:char(32);not null;index:idx_invoices_subject" json:"subject_id"`
	Currency       string          `gorm:"column:currency;size:16;not null" json:"currency"`
	Amount         decimal.Decimal `gorm:"column:amount;type:decimal(30,8);not null" json:"amount"`
	DepositAddress string          `gorm:"column:deposit_address;size:128;not null" json:"deposit_address"`
	Status         Status          `gorm:"column:status;size:16;not null;default:'pending'" json:"status"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	PaidAt         *time.Time      `gorm:"column:paid_at" json:"paid_at,omitempty"`
}

func (Invoice) TableName() string { return "invoices" }
