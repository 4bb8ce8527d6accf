package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"coinlend-backend/internal/usecase/liquidation"
	"coinlend-backend/internal/usecase/loan"
	"coinlend-backend/internal/usecase/repayment"
)

type LoanHandler struct {
	loans        *loan.Usecase
	repayments   *repayment.Service
	liquidations *liquidation.Service
}

func NewLoanHandler(loans *loan.Usecase, repayments *repayment.Service, liquidations *liquidation.Service) *LoanHandler {
	return &LoanHandler{loans: loans, repayments: repayments, liquidations: liquidations}
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	dto, err := h.loans.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type repayReq struct {
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0"`
}

func (h *LoanHandler) RepayLoan(c echo.Context) error {
	var req repayReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	res, err := h.repayments.Repay(c.Request().Context(), c.Param("loan_id"), req.Amount, time.Time{})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// EarlyRepayLoan settles the whole outstanding balance now; the
// service adds the early settlement fee when maturity is still ahead.
func (h *LoanHandler) EarlyRepayLoan(c echo.Context) error {
	res, err := h.repayments.RequestEarlyRepayment(c.Request().Context(), c.Param("loan_id"), time.Time{})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// EarlyLiquidateLoan is the borrower's voluntary exit through
// collateral sale instead of a cash payment.
func (h *LoanHandler) EarlyLiquidateLoan(c echo.Context) error {
	res, err := h.liquidations.RequestEarlyLiquidation(c.Request().Context(), c.Param("loan_id"), time.Time{})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
