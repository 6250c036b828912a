package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bodasuite/boda-suite/internal/audit"
	"github.com/bodasuite/boda-suite/internal/repository"
)

// GetHotel handles GET /hotel, returning an empty object before the first
// save.
func (h *AdminHandler) GetHotel(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hotel, err := h.Hotels.Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrHotelNotFound) {
			return c.JSON(http.StatusOK, echo.Map{})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al consultar el hotel"})
	}
	return c.JSON(http.StatusOK, hotel)
}

// SaveHotel handles POST /hotel with singleton upsert semantics.
func (h *AdminHandler) SaveHotel(c echo.Context) error {
	userID, userEmail, err := getIdentity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No autorizado"})
	}

	var body struct {
		Nombre             string   `json:"nombre"`
		Direccion          string   `json:"direccion"`
		ServiciosIncluidos []string `json:"servicios_incluidos"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cuerpo de solicitud inválido"})
	}
	if strings.TrimSpace(body.Nombre) == "" || strings.TrimSpace(body.Direccion) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Nombre y dirección del hotel son requeridos"})
	}

	hotel := &repository.Hotel{
		Nombre:             strings.TrimSpace(body.Nombre),
		Direccion:          strings.TrimSpace(body.Direccion),
		ServiciosIncluidos: body.ServiciosIncluidos,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Hotels.Upsert(ctx, hotel); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo guardar el hotel"})
	}

	h.Audits.Record("hotel", audit.ActionUpdate,
		fmt.Sprintf("Hotel configurado: %s - Dirección: %s", hotel.Nombre, hotel.Direccion),
		userID, userEmail)

	return c.JSON(http.StatusOK, hotel)
}
