// Package router defines how HTTP routes are registered for the API.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/bodasuite/boda-suite/internal/config"
	"github.com/bodasuite/boda-suite/internal/handler"
	"github.com/bodasuite/boda-suite/internal/middleware"
)

// RegisterRoutes wires up the unauthenticated service endpoints: the health
// check and the Prometheus scrape target.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers the authentication endpoints. The register and
// login routes are rate limited per client IP when Redis is available.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, rl config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/auth")
	g.Use(middleware.NewTokenBucket(rl, rdb))
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
}

// RegisterAdmin registers every business endpoint behind the JWT middleware.
func RegisterAdmin(e *echo.Echo, a *handler.AuthHandler, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group("")
	g.Use(middleware.JWTAuth(jwtSecret))

	g.GET("/verify-token", a.VerifyToken)
	g.GET("/dashboard/stats", h.DashboardStats)

	g.GET("/configuracion", h.GetConfig)
	g.POST("/configuracion", h.SaveConfig)
	g.POST("/configuracion/portada", h.UploadPortada)

	g.GET("/hotel", h.GetHotel)
	g.POST("/hotel", h.SaveHotel)

	g.GET("/habitaciones", h.ListRooms)
	g.POST("/habitaciones", h.CreateRoom)
	g.PUT("/habitaciones/:id", h.UpdateRoom)
	g.DELETE("/habitaciones/:id", h.DeleteRoom)

	g.GET("/invitados", h.ListGuests)
	g.POST("/invitados", h.CreateGuest)
	g.GET("/invitados/:id", h.GetGuest)
	g.PUT("/invitados/:id", h.UpdateGuest)
	g.DELETE("/invitados/:id", h.DeleteGuest)
	g.GET("/invitados/:id/pagos", h.ListGuestPayments)

	g.GET("/pagos", h.ListPayments)
	g.POST("/pagos", h.CreatePayment)
	g.POST("/pagos/:id/recibo", h.RegenerateReceipt)
	g.GET("/recibos/:fileName", h.DownloadReceipt)

	g.GET("/auditoria", h.ListAudit)
}

// CORS returns the CORS middleware for the current environment: the
// configured development origins in dev, any origin in prod where the API
// sits behind the frontend host.
func CORS(cfg config.Config) echo.MiddlewareFunc {
	if cfg.IsProd() {
		return echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		})
	}
	return echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	})
}

// RegisterStatic exposes the uploaded image directory as a static file
// tree. Receipts are deliberately not served statically; they go through
// the authenticated download endpoint.
func RegisterStatic(e *echo.Echo, cfg config.Config) {
	e.Static("/uploads", cfg.UploadsDir)
}
