package http

import (
	"net/http"

	"lendmitra-backend/internal/usecase/dashboard"

	"github.com/labstack/echo/v4"
)

type DashboardHandler struct{ uc *dashboard.Usecase }

func NewDashboardHandler(uc *dashboard.Usecase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

func (h *DashboardHandler) Stats(c echo.Context) error {
	stats, err := h.uc.Stats(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) ApprovalQueue(c echo.Context) error {
	queue, err := h.uc.ApprovalQueue(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, queue)
}

func (h *DashboardHandler) AuditTrail(c echo.Context) error {
	events, err := h.uc.AuditTrail(c.Request().Context(), c.Param("application_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, events)
}
