// handlers_dashboard.go - Dashboard statistics handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mediboard/backend/internal/stats"
)

// DashboardHandlerImpl implements the DashboardHandler interface
type DashboardHandlerImpl struct {
	events *stats.EventStore
}

// NewDashboardHandler creates a new dashboard handler instance
func NewDashboardHandler(events *stats.EventStore) DashboardHandler {
	return &DashboardHandlerImpl{events: events}
}

// HandleDashboardSummary returns aggregate upload activity for the dashboard
func (h *DashboardHandlerImpl) HandleDashboardSummary(c echo.Context) error {
	if h.events == nil {
		return NewServiceUnavailableError("statistics are not enabled")
	}

	summary, err := h.events.Summary()
	if err != nil {
		return NewInternalError("failed to compute summary", err)
	}

	return c.JSON(http.StatusOK, summary)
}
