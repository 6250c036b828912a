package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health is the only unauthenticated business endpoint. Load balancers and
// the frontend use it to verify that the service is up.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
