package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Handler serves the endpoints that belong to no domain service.
type Handler struct {
	service string
	started time.Time
}

func NewHandler() *Handler {
	return &Handler{service: "coinlend-api", started: time.Now().UTC()}
}

// Health reports liveness. The uptime field makes restart loops
// visible from probe logs alone.
func (h *Handler) Health(c echo.Context) error {
	now := time.Now().UTC()
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"service": h.service,
		"time":    now.Format(time.RFC3339Nano),
		"uptime":  now.Sub(h.started).Round(time.Millisecond).String(),
	})
}
