package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"coinlend-backend/internal/usecase/application"
)

type ApplicationHandler struct{ uc *application.Usecase }

func NewApplicationHandler(uc *application.Usecase) *ApplicationHandler {
	return &ApplicationHandler{uc: uc}
}

type createApplicationReq struct {
	BorrowerID         string          `json:"borrower_id"         validate:"required,hex32"`
	PrincipalAmount    decimal.Decimal `json:"principal_amount"    validate:"required,gt=0"`
	PrincipalCurrency  string          `json:"principal_currency"  validate:"required,ccy"`
	CollateralCurrency string          `json:"collateral_currency" validate:"required,ccy"`
	MaxInterestRate    decimal.Decimal `json:"max_interest_rate"   validate:"required,gt=0"`
	TermMonths         int             `json:"term_months"         validate:"required,gt=0"`
	LiquidationMode    string          `json:"liquidation_mode"    validate:"omitempty,oneof=partial full"`
	MinLtv             decimal.Decimal `json:"min_ltv"             validate:"required,gt=0"`
	MaxLtv             decimal.Decimal `json:"max_ltv"             validate:"required,gt=0"`
	ExpiresInDays      int             `json:"expires_in_days"     validate:"omitempty,gt=0"`
}

func (h *ApplicationHandler) CreateApplication(c echo.Context) error {
	var req createApplicationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Create(c.Request().Context(), application.CreateApplicationInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ApplicationHandler) GetApplication(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("application_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// CloseApplication withdraws an application before it matches. The
// acting borrower comes from the gateway header, never the body.
func (h *ApplicationHandler) CloseApplication(c echo.Context) error {
	borrowerID := actorID(c)
	if borrowerID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing Ax-Actor-Id"})
	}
	dto, err := h.uc.Close(c.Request().Context(), c.Param("application_id"), borrowerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
