package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"coinlend-backend/internal/usecase/expiry"
	"coinlend-backend/internal/usecase/liquidation"
	"coinlend-backend/internal/usecase/matching"
	"coinlend-backend/internal/usecase/valuation"
)

// AdminHandler exposes the operational surfaces: batch matching, the
// sweeps the scheduler also runs, and oracle rate ingestion. These
// routes sit behind the ops gateway, not the public API.
type AdminHandler struct {
	matcher      *matching.Engine
	liquidations *liquidation.Service
	expiry       *expiry.Service
	val          *valuation.Service
}

func NewAdminHandler(matcher *matching.Engine, liquidations *liquidation.Service, expiry *expiry.Service, val *valuation.Service) *AdminHandler {
	return &AdminHandler{matcher: matcher, liquidations: liquidations, expiry: expiry, val: val}
}

type matchBatchReq struct {
	BatchSize           int                        `json:"batch_size"            validate:"omitempty,gt=0"`
	AsOf                time.Time                  `json:"as_of"`
	TargetApplicationID string                     `json:"target_application_id" validate:"omitempty,hex32"`
	TargetOfferID       string                     `json:"target_offer_id"       validate:"omitempty,hex32"`
	LenderCriteria      *matching.LenderCriteria   `json:"lender_criteria"`
	BorrowerCriteria    *matching.BorrowerCriteria `json:"borrower_criteria"`
}

func (h *AdminHandler) RunMatchBatch(c echo.Context) error {
	var req matchBatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	sum, err := h.matcher.ProcessBatch(c.Request().Context(), matching.BatchInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, sum)
}

type sweepReq struct {
	BatchSize int       `json:"batch_size" validate:"omitempty,gt=0"`
	AsOf      time.Time `json:"as_of"`
}

func (h *AdminHandler) RunLiquidationSweep(c echo.Context) error {
	var req sweepReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	sum, err := h.liquidations.Sweep(c.Request().Context(), req.BatchSize, req.AsOf)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *AdminHandler) RunExpirySweep(c echo.Context) error {
	var req sweepReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	sum, err := h.expiry.Run(c.Request().Context(), req.AsOf)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, sum)
}

type ingestRateReq struct {
	Blockchain string          `json:"blockchain" validate:"required"`
	Token      string          `json:"token"      validate:"required"`
	Rate       decimal.Decimal `json:"rate"       validate:"required,gt=0"`
	AsOf       time.Time       `json:"as_of"`
}

func (h *AdminHandler) IngestRate(c echo.Context) error {
	var req ingestRateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	quote, err := h.val.IngestRate(c.Request().Context(), valuation.IngestRateInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, quote)
}
