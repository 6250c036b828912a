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

type guestReq struct {
	Nombre       string  `json:"nombre"`
	Contacto     string  `json:"contacto"`
	HabitacionID *uint64 `json:"habitacion_id"`
}

// ListGuests handles GET /invitados. Every row is reconciled before the
// list is returned, so stored statuses never lag behind the payment data.
func (h *AdminHandler) ListGuests(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := h.Engine.ReconcileAll(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al reconciliar los invitados"})
	}
	guests, err := h.Guests.ListWithBalances(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al consultar los invitados"})
	}
	return c.JSON(http.StatusOK, guests)
}

// GetGuest handles GET /invitados/:id.
func (h *AdminHandler) GetGuest(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ID inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Engine.Reconcile(ctx, id); err != nil {
		if errors.Is(err, repository.ErrGuestNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Invitado no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al consultar el invitado"})
	}
	guest, err := h.Guests.GetWithBalance(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrGuestNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Invitado no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al consultar el invitado"})
	}
	return c.JSON(http.StatusOK, guest)
}

// CreateGuest handles POST /invitados.
func (h *AdminHandler) CreateGuest(c echo.Context) error {
	userID, userEmail, err := getIdentity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No autorizado"})
	}

	var body guestReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cuerpo de solicitud inválido"})
	}
	if strings.TrimSpace(body.Nombre) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "El nombre del invitado es requerido"})
	}

	guest := &repository.Guest{
		Nombre:       strings.TrimSpace(body.Nombre),
		Contacto:     strings.TrimSpace(body.Contacto),
		HabitacionID: body.HabitacionID,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Guests.Create(ctx, guest); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "La habitación indicada no existe"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo crear el invitado"})
	}

	if _, err := h.Engine.Reconcile(ctx, guest.ID); err != nil {
		c.Logger().Warnf("reconciliación inicial falló para invitado %d: %v", guest.ID, err)
	}

	h.Audits.Record("invitados", audit.ActionCreate,
		fmt.Sprintf("Invitado creado: %s", guest.Nombre),
		userID, userEmail)

	created, err := h.Guests.GetWithBalance(ctx, guest.ID)
	if err != nil {
		return c.JSON(http.StatusCreated, guest)
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateGuest handles PUT /invitados/:id. A room change re-derives the
// guest's payment status against the new room price.
func (h *AdminHandler) UpdateGuest(c echo.Context) error {
	userID, userEmail, err := getIdentity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No autorizado"})
	}

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ID inválido"})
	}

	var body guestReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cuerpo de solicitud inválido"})
	}
	if strings.TrimSpace(body.Nombre) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "El nombre del invitado es requerido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	guest := &repository.Guest{
		ID:           id,
		Nombre:       strings.TrimSpace(body.Nombre),
		Contacto:     strings.TrimSpace(body.Contacto),
		HabitacionID: body.HabitacionID,
	}
	if err := h.Guests.Update(ctx, guest); err != nil {
		switch {
		case errors.Is(err, repository.ErrGuestNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Invitado no encontrado"})
		case errors.Is(err, repository.ErrRoomNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "La habitación indicada no existe"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo actualizar el invitado"})
		}
	}

	if _, err := h.Engine.Reconcile(ctx, id); err != nil {
		c.Logger().Warnf("reconciliación falló para invitado %d: %v", id, err)
	}

	h.Audits.Record("invitados", audit.ActionUpdate,
		fmt.Sprintf("Invitado actualizado: %s", guest.Nombre),
		userID, userEmail)

	updated, err := h.Guests.GetWithBalance(ctx, id)
	if err != nil {
		return c.JSON(http.StatusOK, guest)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteGuest handles DELETE /invitados/:id, removing the guest's payments
// in the same transaction.
func (h *AdminHandler) DeleteGuest(c echo.Context) error {
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

	guest, err := h.Guests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrGuestNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Invitado no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al consultar el invitado"})
	}

	if err := h.Guests.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrGuestNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Invitado no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo eliminar el invitado"})
	}

	h.Audits.Record("invitados", audit.ActionDelete,
		fmt.Sprintf("Invitado eliminado: %s", guest.Nombre),
		userID, userEmail)

	return c.JSON(http.StatusOK, echo.Map{"message": "Invitado eliminado correctamente"})
}

// ListGuestPayments handles GET /invitados/:id/pagos. The response pairs
// the payment history with a freshly re-aggregated balance snapshot of the
// guest, so the caller never has to trust the cached status column.
func (h *AdminHandler) ListGuestPayments(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ID inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Engine.Reconcile(ctx, id); err != nil {
		if errors.Is(err, repository.ErrGuestNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Invitado no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al consultar el invitado"})
	}
	guest, err := h.Guests.GetWithBalance(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrGuestNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Invitado no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al consultar el invitado"})
	}

	payments, err := h.Payments.ListByGuest(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al consultar los pagos"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"pagos":    payments,
		"invitado": guest,
	})
}
