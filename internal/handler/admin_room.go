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

type roomReq struct {
	Nombre           string  `json:"nombre"`
	Precio           float64 `json:"precio"`
	Capacidad        int     `json:"capacidad"`
	CuposDisponibles int     `json:"cupos_disponibles"`
}

func (r *roomReq) validate() string {
	if strings.TrimSpace(r.Nombre) == "" {
		return "El nombre de la habitación es requerido"
	}
	if r.Precio < 0 {
		return "El precio no puede ser negativo"
	}
	if r.Capacidad <= 0 {
		return "La capacidad debe ser mayor a cero"
	}
	if r.CuposDisponibles < 0 {
		return "Los cupos disponibles no pueden ser negativos"
	}
	return ""
}

// ListRooms handles GET /habitaciones.
func (h *AdminHandler) ListRooms(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rooms, err := h.Rooms.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al consultar las habitaciones"})
	}
	return c.JSON(http.StatusOK, rooms)
}

// CreateRoom handles POST /habitaciones.
func (h *AdminHandler) CreateRoom(c echo.Context) error {
	userID, userEmail, err := getIdentity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No autorizado"})
	}

	var body roomReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cuerpo de solicitud inválido"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	room := &repository.Room{
		Nombre:           strings.TrimSpace(body.Nombre),
		Precio:           body.Precio,
		Capacidad:        body.Capacidad,
		CuposDisponibles: body.CuposDisponibles,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Rooms.Create(ctx, room); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo crear la habitación"})
	}

	h.Audits.Record("habitaciones", audit.ActionCreate,
		fmt.Sprintf("Habitación creada: %s - Precio: %.2f - Capacidad: %d", room.Nombre, room.Precio, room.Capacidad),
		userID, userEmail)

	return c.JSON(http.StatusCreated, room)
}

// UpdateRoom handles PUT /habitaciones/:id. A price change re-derives the
// payment status of every guest assigned to the room.
func (h *AdminHandler) UpdateRoom(c echo.Context) error {
	userID, userEmail, err := getIdentity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No autorizado"})
	}

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ID inválido"})
	}

	var body roomReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cuerpo de solicitud inválido"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	prev, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Habitación no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al consultar la habitación"})
	}

	room := &repository.Room{
		ID:               id,
		Nombre:           strings.TrimSpace(body.Nombre),
		Precio:           body.Precio,
		Capacidad:        body.Capacidad,
		CuposDisponibles: body.CuposDisponibles,
	}
	if err := h.Rooms.Update(ctx, room); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Habitación no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo actualizar la habitación"})
	}

	if prev.Precio != room.Precio {
		guestIDs, err := h.Rooms.GuestIDs(ctx, id)
		if err == nil {
			for _, gid := range guestIDs {
				if _, err := h.Engine.Reconcile(ctx, gid); err != nil {
					c.Logger().Warnf("reconciliación tras cambio de precio falló para invitado %d: %v", gid, err)
				}
			}
		}
	}

	h.Audits.Record("habitaciones", audit.ActionUpdate,
		fmt.Sprintf("Habitación actualizada: %s - Precio: %.2f", room.Nombre, room.Precio),
		userID, userEmail)

	return c.JSON(http.StatusOK, room)
}

// DeleteRoom handles DELETE /habitaciones/:id. Rooms with assigned guests
// cannot be removed.
func (h *AdminHandler) DeleteRoom(c echo.Context) error {
	userID, userEmail, err := getIdentity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No autorizado"})
	}

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ID inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Habitación no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al consultar la habitación"})
	}

	if err := h.Rooms.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "No se puede eliminar una habitación con invitados asignados"})
		case errors.Is(err, repository.ErrRoomNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Habitación no encontrada"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo eliminar la habitación"})
		}
	}

	h.Audits.Record("habitaciones", audit.ActionDelete,
		fmt.Sprintf("Habitación eliminada: %s", room.Nombre),
		userID, userEmail)

	return c.JSON(http.StatusOK, echo.Map{"message": "Habitación eliminada correctamente"})
}
