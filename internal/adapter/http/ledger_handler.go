package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"coinlend-backend/internal/usecase/ledger"
)

const defaultMutationLimit = 50

type LedgerHandler struct{ uc *ledger.Usecase }

func NewLedgerHandler(uc *ledger.Usecase) *LedgerHandler { return &LedgerHandler{uc: uc} }

func (h *LedgerHandler) GetBalances(c echo.Context) error {
	out, err := h.uc.Balances(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LedgerHandler) GetMutations(c echo.Context) error {
	limit := defaultMutationLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = n
	}
	out, err := h.uc.Entries(c.Request().Context(), c.Param("user_id"), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type withdrawReq struct {
	Currency  string          `json:"currency"  validate:"required,ccy"`
	Amount    decimal.Decimal `json:"amount"    validate:"required,gt=0"`
	Reference string          `json:"reference"`
}

// Withdraw debits the user's main account. The overdraw check happens
// inside the mutation itself, so a race with a concurrent settlement
// can only fail, never go negative.
func (h *LedgerHandler) Withdraw(c echo.Context) error {
	var req withdrawReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	out, err := h.uc.Withdraw(c.Request().Context(), ledger.WithdrawInput{
		UserID:    c.Param("user_id"),
		Currency:  req.Currency,
		Amount:    req.Amount,
		Reference: req.Reference,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}
