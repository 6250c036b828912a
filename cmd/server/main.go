// Entry point for the wedding administration API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/bodasuite/boda-suite/internal/audit"
	"github.com/bodasuite/boda-suite/internal/config"
	"github.com/bodasuite/boda-suite/internal/database"
	"github.com/bodasuite/boda-suite/internal/handler"
	"github.com/bodasuite/boda-suite/internal/middleware"
	"github.com/bodasuite/boda-suite/internal/queue"
	"github.com/bodasuite/boda-suite/internal/receipt"
	"github.com/bodasuite/boda-suite/internal/reconcile"
	"github.com/bodasuite/boda-suite/internal/repository"
	"github.com/bodasuite/boda-suite/internal/router"
	"github.com/bodasuite/boda-suite/pkg/logging"
)

const (
	defaultAdminEmail    = "admin@bodasuite.com"
	defaultAdminPassword = "admin123"
)

func main() {
	_ = godotenv.Load() // optional .env for local development
	logging.Setup()

	cfg := config.Load()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		slog.Error("open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.SeedAdmin(ctx, db, defaultAdminEmail, defaultAdminPassword, cfg.BcryptCost); err != nil {
		cancel()
		slog.Error("seed admin user", "error", err)
		os.Exit(1)
	}
	cancel()

	users := repository.NewUserRepo(db)
	configs := repository.NewConfigRepo(db)
	hotels := repository.NewHotelRepo(db)
	rooms := repository.NewRoomRepo(db)
	guests := repository.NewGuestRepo(db)
	payments := repository.NewPaymentRepo(db)
	stats := repository.NewStatsRepo(db)
	audits := repository.NewAuditRepo(db)

	recorder := audit.NewRecorder(audits)
	defer recorder.Close()

	engine := reconcile.NewEngine(guests)

	receipts, err := receipt.NewRenderer(cfg.ReceiptsDir)
	if err != nil {
		slog.Error("prepare receipts directory", "dir", cfg.ReceiptsDir, "error", err)
		os.Exit(1)
	}

	rdb := config.NewRedisClient()
	rlCfg := config.LoadRateLimitConfig()

	if url := queue.BrokerURL(); url != "" {
		go queue.StartPaymentConsumer(url)
	}

	authHandler := handler.NewAuthHandler(cfg, users)
	adminHandler := &handler.AdminHandler{
		Cfg:      cfg,
		Configs:  configs,
		Hotels:   hotels,
		Rooms:    rooms,
		Guests:   guests,
		Payments: payments,
		Stats:    stats,
		Engine:   engine,
		Audits:   recorder,
		AuditLog: audits,
		Receipts: receipts,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(router.CORS(cfg))
	e.Use(middleware.Metrics())

	router.RegisterRoutes(e)
	router.RegisterStatic(e, cfg)
	router.RegisterAuth(e, authHandler, rlCfg, rdb)
	router.RegisterAdmin(e, authHandler, adminHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		slog.Info("server listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	recorder.Close()
}
