package matching

import (
	"time"

	"github.com/shopspring/decimal"

	domainOffer "coinlend-backend/internal/domain/offer"
)

type StrategyKind string

const (
	StrategyBasic    StrategyKind = "basic"
	StrategyEnhanced StrategyKind = "enhanced"
)

// LenderCriteria narrows the candidate offers on the lender side
// before the basic filters run. Nil fields mean no constraint.
type LenderCriteria struct {
	DurationOptions   []int            `json:"duration_options,omitempty"`
	FixedInterestRate *decimal.Decimal `json:"fixed_interest_rate,omitempty"`
	MinPrincipal      *decimal.Decimal `json:"min_principal,omitempty"`
	MaxPrincipal      *decimal.Decimal `json:"max_principal,omitempty"`
}

// BorrowerCriteria narrows on the borrower side.
// PreferInstitutionalLenders is advisory only; it never reorders the
// first-come candidate list.
type BorrowerCriteria struct {
	FixedDuration              *int             `json:"fixed_duration,omitempty"`
	FixedPrincipalAmount       *decimal.Decimal `json:"fixed_principal_amount,omitempty"`
	MaxInterestRate            *decimal.Decimal `json:"max_interest_rate,omitempty"`
	PreferInstitutionalLenders bool             `json:"prefer_institutional_lenders,omitempty"`
}

type CompatibleOffer struct {
	Offer *domainOffer.LoanOffer
}

type BatchInput struct {
	BatchSize           int               `json:"batch_size,omitempty"`
	AsOf                time.Time         `json:"as_of,omitempty"`
	TargetApplicationID string            `json:"target_application_id,omitempty"`
	TargetOfferID       string            `json:"target_offer_id,omitempty"`
	LenderCriteria      *LenderCriteria   `json:"lender_criteria,omitempty"`
	BorrowerCriteria    *BorrowerCriteria `json:"borrower_criteria,omitempty"`
}

type MatchedLoan struct {
	LoanID          string          `json:"loan_id"`
	OfferID         string          `json:"offer_id"`
	ApplicationID   string          `json:"application_id"`
	BorrowerID      string          `json:"borrower_id"`
	LenderID        string          `json:"lender_id"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	InterestRate    decimal.Decimal `json:"interest_rate"`
	TermMonths      int             `json:"term_months"`
	Disbursed       bool            `json:"disbursed"`
}

// BatchError is one failed application unit. The unit rolled back;
// the application stays visible to the next batch.
type BatchError struct {
	ApplicationID string `json:"application_id"`
	Stage         string `json:"stage"`
	Message       string `json:"message"`
	Err           error  `json:"-"`
}

type BatchSummary struct {
	Strategy              StrategyKind  `json:"strategy"`
	ProcessedApplications int           `json:"processed_applications"`
	ProcessedOffers       int           `json:"processed_offers"`
	MatchedPairs          int           `json:"matched_pairs"`
	MatchedLoans          []MatchedLoan `json:"matched_loans,omitempty"`
	Errors                []BatchError  `json:"errors,omitempty"`
	HasMore               bool          `json:"has_more"`
}
