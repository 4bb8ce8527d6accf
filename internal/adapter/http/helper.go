package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	domainApp "coinlend-backend/internal/domain/application"
	domainInvoice "coinlend-backend/internal/domain/invoice"
	domainLedger "coinlend-backend/internal/domain/ledger"
	domainLoan "coinlend-backend/internal/domain/loan"
	domainOffer "coinlend-backend/internal/domain/offer"
	domainRates "coinlend-backend/internal/domain/rates"
	"coinlend-backend/internal/usecase/application"
	"coinlend-backend/internal/usecase/ledger"
	"coinlend-backend/internal/usecase/offer"
	"coinlend-backend/internal/usecase/repayment"
	"coinlend-backend/internal/usecase/valuation"
)

// actorID is the authenticated caller, as stamped by the gateway.
func actorID(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get("Ax-Actor-Id"))
}

// respondError maps domain errors onto HTTP codes. Input problems are
// 400, missing aggregates 404, ownership violations 403 and state
// guard failures 409. Anything unrecognized stays an opaque 500.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domainOffer.ErrNotFound),
		errors.Is(err, domainApp.ErrNotFound),
		errors.Is(err, domainLoan.ErrNotFound),
		errors.Is(err, domainInvoice.ErrNotFound),
		errors.Is(err, domainLedger.ErrAccountNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, offer.ErrNotOwner),
		errors.Is(err, application.ErrNotOwner):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, offer.ErrInvalidInput),
		errors.Is(err, application.ErrInvalidInput),
		errors.Is(err, repayment.ErrInvalidAmount),
		errors.Is(err, valuation.ErrInvalidInput),
		errors.Is(err, ledger.ErrInvalidMutation),
		errors.Is(err, domainRates.ErrCurrencyNotFound),
		errors.Is(err, domainRates.ErrRateUnavailable):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainOffer.ErrInvalidTransition),
		errors.Is(err, domainApp.ErrInvalidTransition),
		errors.Is(err, domainLoan.ErrInvalidTransition),
		errors.Is(err, domainInvoice.ErrInvalidTransition),
		errors.Is(err, domainApp.ErrAlreadyMatched),
		errors.Is(err, domainLoan.ErrAlreadySettled),
		errors.Is(err, domainLoan.ErrOverpayment),
		errors.Is(err, domainLoan.ErrNotLiquidatable),
		errors.Is(err, domainOffer.ErrInsufficientCapacity),
		errors.Is(err, domainLedger.ErrInsufficientBalance):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
