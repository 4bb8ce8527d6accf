package offer

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"coinlend-backend/internal/domain/loan"
)

var (
	ErrNotFound             = errors.New("loan offer not found")
	ErrInvalidTransition    = errors.New("invalid offer state transition")
	ErrInsufficientCapacity = errors.New("insufficient offer capacity")
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusPaused    Status = "paused"
	StatusClosed    Status = "closed"
	StatusExpired   Status = "expired"
)

type LenderType string

const (
	LenderIndividual  LenderType = "individual"
	LenderInstitution LenderType = "institution"
)

// LoanOffer is a lender's funding commitment. AvailableAmount and
// DisbursedAmount always sum to TotalAmount; capacity moves between
// them only through the conditional reserve update.
type LoanOffer struct {
	ID                uint64               `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	OfferID           string               `gorm:"column:offer_id;type:char(32);not null;uniqueIndex:ux_offers_offer_id" json:"offer_id"`
	LenderID          string               `gorm:"column:lender_id;type:char(32);not null;index:idx_offers_lender" json:"lender_id"`
	LenderType        LenderType           `gorm:"column:lender_type;size:16;not null;default:'individual'" json:"lender_type"`
	PrincipalCurrency string               `gorm:"column:principal_currency;size:16;not null;index:idx_offers_open,priority:2" json:"principal_currency"`
	TotalAmount       decimal.Decimal      `gorm:"column:total_amount;type:decimal(30,8);not null" json:"total_amount"`
	AvailableAmount   decimal.Decimal      `gorm:"column:available_amount;type:decimal(30,8);not null" json:"available_amount"`
	DisbursedAmount   decimal.Decimal      `gorm:"column:disbursed_amount;type:decimal(30,8);not null" json:"disbursed_amount"`
	InterestRate      decimal.Decimal      `gorm:"column:interest_rate;type:decimal(10,4);not null" json:"interest_rate"`
	TermOptions       string               `gorm:"column:term_options;size:128;not null" json:"term_options"`
	MinLoanAmount     decimal.Decimal      `gorm:"column:min_loan_amount;type:decimal(30,8);not null" json:"min_loan_amount"`
	MaxLoanAmount     decimal.Decimal      `gorm:"column:max_loan_amount;type:decimal(30,8);not null" json:"max_loan_amount"`
	LiquidationMode   loan.LiquidationMode `gorm:"column:liquidation_mode;size:16;not null" json:"liquidation_mode"`
	Status            Status               `gorm:"column:status;size:16;not null;default:'draft';index:idx_offers_open,priority:1" json:"status"`
	FundingInvoiceID  string               `gorm:"column:funding_invoice_id;type:char(32)" json:"funding_invoice_id"`
	CreatedAt         time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
	StateUpdatedAt    time.Time            `gorm:"column:state_updated_at" json:"state_updated_at"`
	PublishedAt       *time.Time           `gorm:"column:published_at" json:"published_at,omitempty"`
	ExpiresAt         *time.Time           `gorm:"column:expires_at;index" json:"expires_at,omitempty"`
	ClosedAt          *time.Time           `gorm:"column:closed_at" json:"closed_at,omitempty"`
}

func (LoanOffer) TableName() string { return "loan_offers" }

// Terms parses the stored CSV term list (months).
func (o *LoanOffer) Terms() []int {
	parts := strings.Split(o.TermOptions, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err == nil && n > 0 {
			out = append(out, n)
		}
	}
	return out
}

func (o *LoanOffer) HasTerm(months int) bool {
	for _, t := range o.Terms() {
		if t == months {
			return true
		}
	}
	return false
}

// JoinTerms renders a term list into the stored CSV form.
func JoinTerms(terms []int) string {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		parts = append(parts, strconv.Itoa(t))
	}
	return strings.Join(parts, ",")
}
