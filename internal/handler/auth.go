package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bodasuite/boda-suite/internal/config"
	"github.com/bodasuite/boda-suite/internal/repository"
	"github.com/bodasuite/boda-suite/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
}

type authResp struct {
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    userPart `json:"user"`
}

// Register creates an account and returns a token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cuerpo de solicitud inválido"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email y contraseña son requeridos"})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "La contraseña debe tener al menos 6 caracteres"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "El usuario ya existe"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo crear el usuario"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, req.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo generar el token"})
	}

	return c.JSON(http.StatusCreated, authResp{
		Message: "Usuario registrado exitosamente",
		Token:   access.Token,
		User:    userPart{ID: uid, Email: req.Email},
	})
}

// Login verifies credentials and returns a fresh token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cuerpo de solicitud inválido"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email y contraseña son requeridos"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Credenciales inválidas"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error al consultar el usuario"})
	}
	if !utils.VerifyPassword(u.Password, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Credenciales inválidas"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "No se pudo generar el token"})
	}

	return c.JSON(http.StatusOK, authResp{
		Message: "Inicio de sesión exitoso",
		Token:   access.Token,
		User:    userPart{ID: u.ID, Email: u.Email},
	})
}

// VerifyToken confirms the bearer token is still valid and echoes the
// identity it binds.
func (h *AuthHandler) VerifyToken(c echo.Context) error {
	id, email, err := getIdentity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No autorizado"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"valid": true,
		"user":  userPart{ID: id, Email: email},
	})
}
