package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/bodasuite/boda-suite/internal/audit"
	"github.com/bodasuite/boda-suite/internal/repository"
)

const maxUploadBytes = 5 << 20 // cover images are capped at 5MB

// GetConfig handles GET /configuracion. Before the first save an empty
// object is returned instead of a 404, matching what the dashboard expects.
func (h *AdminHandler) GetConfig(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cfg, err := h.Configs.Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrConfigNotFound) {
			return c.JSON(http.StatusOK, echo.Map{})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al consultar la configuración"})
	}
	return c.JSON(http.StatusOK, cfg)
}

// SaveConfig handles POST /configuracion with singleton upsert semantics.
func (h *AdminHandler) SaveConfig(c echo.Context) error {
	userID, userEmail, err := getIdentity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No autorizado"})
	}

	var body struct {
		NombreNovia   string  `json:"nombre_novia"`
		NombreNovio   string  `json:"nombre_novio"`
		FechaBoda     string  `json:"fecha_boda"`
		HoraBoda      string  `json:"hora_boda"`
		LugarBoda     string  `json:"lugar_boda"`
		ImagenPortada *string `json:"imagen_portada"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cuerpo de solicitud inválido"})
	}
	if strings.TrimSpace(body.NombreNovia) == "" || strings.TrimSpace(body.NombreNovio) == "" ||
		body.FechaBoda == "" || body.HoraBoda == "" || strings.TrimSpace(body.LugarBoda) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Todos los campos de la boda son requeridos"})
	}

	cfg := &repository.WeddingConfig{
		NombreNovia:   strings.TrimSpace(body.NombreNovia),
		NombreNovio:   strings.TrimSpace(body.NombreNovio),
		FechaBoda:     body.FechaBoda,
		HoraBoda:      body.HoraBoda,
		LugarBoda:     strings.TrimSpace(body.LugarBoda),
		ImagenPortada: body.ImagenPortada,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Configs.Upsert(ctx, cfg); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo guardar la configuración"})
	}

	h.Audits.Record("configuracion_boda", audit.ActionUpdate,
		fmt.Sprintf("Configuración de boda actualizada: %s & %s - Fecha: %s", cfg.NombreNovia, cfg.NombreNovio, cfg.FechaBoda),
		userID, userEmail)

	return c.JSON(http.StatusOK, cfg)
}

// UploadPortada handles POST /configuracion/portada: a multipart image
// upload stored in the uploads directory. Only the resulting file path is
// part of the data contract; the bytes are opaque.
func (h *AdminHandler) UploadPortada(c echo.Context) error {
	if _, _, err := getIdentity(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No autorizado"})
	}

	file, err := c.FormFile("imagen")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No se ha subido ningún archivo"})
	}
	if file.Size > maxUploadBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "La imagen no puede superar 5MB"})
	}
	if ct := file.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Solo se permiten archivos de imagen"})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo leer el archivo"})
	}
	defer src.Close()

	if err := os.MkdirAll(h.Cfg.UploadsDir, 0o755); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo guardar el archivo"})
	}
	fileName := "portada-" + uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	dst, err := os.Create(filepath.Join(h.Cfg.UploadsDir, fileName))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo guardar el archivo"})
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo guardar el archivo"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"fileName": fileName,
		"filePath": "/uploads/" + fileName,
		"message":  "Imagen subida exitosamente",
	})
}
