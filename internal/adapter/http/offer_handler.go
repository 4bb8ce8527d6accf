package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"coinlend-backend/internal/usecase/offer"
)

type OfferHandler struct{ uc *offer.Usecase }

func NewOfferHandler(uc *offer.Usecase) *OfferHandler { return &OfferHandler{uc: uc} }

type createOfferReq struct {
	LenderID          string          `json:"lender_id"          validate:"required,hex32"`
	LenderType        string          `json:"lender_type"        validate:"omitempty,oneof=individual institution"`
	PrincipalCurrency string          `json:"principal_currency" validate:"required,ccy"`
	TotalAmount       decimal.Decimal `json:"total_amount"       validate:"required,gt=0"`
	InterestRate      decimal.Decimal `json:"interest_rate"      validate:"required,gt=0"`
	TermOptions       []int           `json:"term_options"       validate:"required,min=1,dive,gt=0"`
	MinLoanAmount     decimal.Decimal `json:"min_loan_amount"    validate:"required,gt=0"`
	MaxLoanAmount     decimal.Decimal `json:"max_loan_amount"    validate:"required,gt=0"`
	LiquidationMode   string          `json:"liquidation_mode"   validate:"omitempty,oneof=partial full"`
	ExpiresInDays     int             `json:"expires_in_days"    validate:"omitempty,gt=0"`
}

func (h *OfferHandler) CreateOffer(c echo.Context) error {
	var req createOfferReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Create(c.Request().Context(), offer.CreateOfferInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *OfferHandler) GetOffer(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("offer_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *OfferHandler) PauseOffer(c echo.Context) error  { return h.transition(c, h.uc.Pause) }
func (h *OfferHandler) ResumeOffer(c echo.Context) error { return h.transition(c, h.uc.Resume) }
func (h *OfferHandler) CloseOffer(c echo.Context) error  { return h.transition(c, h.uc.Close) }

// transition runs one owner-gated lifecycle op. The acting lender
// comes from the gateway header, never the body.
func (h *OfferHandler) transition(c echo.Context, op func(ctx context.Context, offerID, lenderID string) (*offer.OfferDTO, error)) error {
	lenderID := actorID(c)
	if lenderID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing Ax-Actor-Id"})
	}
	dto, err := op(c.Request().Context(), c.Param("offer_id"), lenderID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
