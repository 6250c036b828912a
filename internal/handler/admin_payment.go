package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bodasuite/boda-suite/internal/audit"
	"github.com/bodasuite/boda-suite/internal/queue"
	"github.com/bodasuite/boda-suite/internal/receipt"
	"github.com/bodasuite/boda-suite/internal/repository"
	queue_publisher "github.com/bodasuite/boda-suite/internal/service"
)

// ListPayments handles GET /pagos, returning every payment joined with its
// guest and the guest's current balance.
func (h *AdminHandler) ListPayments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	payments, err := h.Payments.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al consultar los pagos"})
	}
	return c.JSON(http.StatusOK, payments)
}

// CreatePayment handles POST /pagos. The payment is inserted, the guest's
// status re-derived, and the PDF receipt rendered before the response is
// written. Publishing the broker event is best effort and never fails the
// request.
func (h *AdminHandler) CreatePayment(c echo.Context) error {
	userID, userEmail, err := getIdentity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No autorizado"})
	}

	var body struct {
		InvitadoID uint64  `json:"invitado_id"`
		Monto      float64 `json:"monto"`
		MetodoPago string  `json:"metodo_pago"`
		FechaPago  string  `json:"fecha_pago"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cuerpo de solicitud inválido"})
	}
	if body.Monto <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "El monto debe ser mayor a cero"})
	}
	if strings.TrimSpace(body.MetodoPago) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "El método de pago es requerido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	pago := &repository.Payment{
		InvitadoID: body.InvitadoID,
		Monto:      body.Monto,
		MetodoPago: strings.TrimSpace(body.MetodoPago),
		FechaPago:  strings.TrimSpace(body.FechaPago),
	}
	if pago.FechaPago == "" {
		pago.FechaPago = time.Now().UTC().Format(time.RFC3339)
	}

	if err := h.Payments.Create(ctx, pago); err != nil {
		if errors.Is(err, repository.ErrGuestNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Invitado no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo registrar el pago"})
	}

	res, err := h.Engine.Reconcile(ctx, pago.InvitadoID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "El pago se registró pero la reconciliación falló"})
	}

	invitado, err := h.Guests.GetWithBalance(ctx, pago.InvitadoID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al consultar el invitado"})
	}

	h.Audits.Record("pagos", audit.ActionCreate,
		fmt.Sprintf("Pago registrado: %.2f (%s) para %s", pago.Monto, pago.MetodoPago, invitado.Nombre),
		userID, userEmail)

	recibo, err := h.renderReceipt(ctx, pago, invitado)
	if err != nil {
		c.Logger().Errorf("no se pudo generar el recibo del pago %d: %v", pago.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "El pago se registró pero el recibo no pudo generarse"})
	}

	if url := queue.BrokerURL(); url != "" {
		event := queue.PaymentRecordedEvent{
			PagoID:         pago.ID,
			InvitadoID:     invitado.ID,
			InvitadoNombre: invitado.Nombre,
			Monto:          pago.Monto,
			MetodoPago:     pago.MetodoPago,
			FechaPago:      pago.FechaPago,
			EstadoPago:     res.Estado,
			SaldoPendiente: res.SaldoPendiente,
			ReciboArchivo:  recibo.FileName,
			RegistradoPor:  userEmail,
			RegistradoEn:   time.Now().UTC().Format(time.RFC3339),
		}
		_ = queue_publisher.PublishPaymentRecorded(ctx, url, event)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"id":     pago.ID,
		"recibo": recibo,
	})
}

// RegenerateReceipt handles POST /pagos/:id/recibo, producing a fresh PDF
// for an existing payment.
func (h *AdminHandler) RegenerateReceipt(c echo.Context) error {
	userID, userEmail, err := getIdentity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No autorizado"})
	}

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ID inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	pago, err := h.Payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Pago no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al consultar el pago"})
	}

	invitado, err := h.Guests.GetWithBalance(ctx, pago.InvitadoID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al consultar el invitado"})
	}

	recibo, err := h.renderReceipt(ctx, pago, invitado)
	if err != nil {
		c.Logger().Errorf("no se pudo regenerar el recibo del pago %d: %v", pago.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo generar el recibo"})
	}

	h.Audits.Record("pagos", audit.ActionUpdate,
		fmt.Sprintf("Recibo regenerado para el pago %d de %s", pago.ID, invitado.Nombre),
		userID, userEmail)

	return c.JSON(http.StatusOK, echo.Map{
		"id":     pago.ID,
		"recibo": recibo,
	})
}

// DownloadReceipt handles GET /recibos/:fileName, streaming a previously
// rendered PDF.
func (h *AdminHandler) DownloadReceipt(c echo.Context) error {
	fileName := c.Param("fileName")

	path, err := h.Receipts.Path(fileName)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Nombre de archivo inválido"})
	}
	if _, err := os.Stat(path); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Recibo no encontrado"})
	}
	return c.Attachment(path, fileName)
}

// renderReceipt gathers the optional wedding and hotel context and renders
// the PDF. Missing configuration never blocks a receipt.
func (h *AdminHandler) renderReceipt(ctx context.Context, pago *repository.Payment, invitado *repository.GuestWithBalance) (receipt.Receipt, error) {
	cfg, err := h.Configs.Get(ctx)
	if err != nil && !errors.Is(err, repository.ErrConfigNotFound) {
		return receipt.Receipt{}, err
	}
	hotel, err := h.Hotels.Get(ctx)
	if err != nil && !errors.Is(err, repository.ErrHotelNotFound) {
		return receipt.Receipt{}, err
	}
	return h.Receipts.Render(pago, invitado, cfg, hotel)
}
