package health

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for the health endpoint.
type Handlers struct {
	service *Service
}

// NewHandlers creates new health handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers health routes on an Echo group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.Get)
}

// Get returns the current health report. Degraded bridges answer 503 so
// load balancers and probes can act on the status code alone.
// GET /health
func (h *Handlers) Get(c echo.Context) error {
	report := h.service.Check()
	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, report)
}
