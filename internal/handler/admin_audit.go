package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// auditListLimit caps how many trail entries one request returns.
const auditListLimit = 500

// ListAudit handles GET /auditoria, newest entries first.
func (h *AdminHandler) ListAudit(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entries, err := h.AuditLog.List(ctx, auditListLimit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al consultar la auditoría"})
	}
	return c.JSON(http.StatusOK, entries)
}
