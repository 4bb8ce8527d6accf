package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"coinlend-backend/internal/usecase/invoice"
)

type InvoiceHandler struct{ uc *invoice.Usecase }

func NewInvoiceHandler(uc *invoice.Usecase) *InvoiceHandler { return &InvoiceHandler{uc: uc} }

// PayInvoice is the custody confirmation surface: the deposit watcher
// calls it once funds for an invoice are final.
func (h *InvoiceHandler) PayInvoice(c echo.Context) error {
	dto, err := h.uc.MarkPaid(c.Request().Context(), c.Param("invoice_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
