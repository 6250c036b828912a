// Package handler contains the HTTP handlers for the wedding administration
// API. Handlers bind and validate request bodies, delegate to repositories
// and the reconciliation engine, and map repository errors to HTTP status
// codes with Spanish user-facing messages.
package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bodasuite/boda-suite/internal/audit"
	"github.com/bodasuite/boda-suite/internal/config"
	"github.com/bodasuite/boda-suite/internal/receipt"
	"github.com/bodasuite/boda-suite/internal/reconcile"
	"github.com/bodasuite/boda-suite/internal/repository"
)

// AdminHandler bundles the dependencies shared by every protected business
// endpoint. All fields are injected at startup; nothing here is global.
type AdminHandler struct {
	Cfg      config.Config
	Configs  *repository.ConfigRepo
	Hotels   *repository.HotelRepo
	Rooms    *repository.RoomRepo
	Guests   *repository.GuestRepo
	Payments *repository.PaymentRepo
	Stats    *repository.StatsRepo
	Engine   *reconcile.Engine
	Audits   *audit.Recorder
	AuditLog *repository.AuditRepo
	Receipts *receipt.Renderer
}

var errNoIdentity = errors.New("no authenticated identity in context")

// getIdentity extracts the account id and email placed in the context by
// the JWT middleware.
func getIdentity(c echo.Context) (uint64, string, error) {
	id, ok := c.Get("user_id").(uint64)
	if !ok || id == 0 {
		return 0, "", errNoIdentity
	}
	email, _ := c.Get("user_email").(string)
	return id, email, nil
}

// parseID parses the :id path parameter.
func parseID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
