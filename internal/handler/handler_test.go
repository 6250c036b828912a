package handler_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bodasuite/boda-suite/internal/audit"
	"github.com/bodasuite/boda-suite/internal/config"
	"github.com/bodasuite/boda-suite/internal/database"
	"github.com/bodasuite/boda-suite/internal/handler"
	"github.com/bodasuite/boda-suite/internal/receipt"
	"github.com/bodasuite/boda-suite/internal/reconcile"
	"github.com/bodasuite/boda-suite/internal/repository"
	"github.com/bodasuite/boda-suite/internal/router"
	"github.com/bodasuite/boda-suite/internal/utils"
)

type testApp struct {
	e           *echo.Echo
	db          *sql.DB
	cfg         config.Config
	guests      *repository.GuestRepo
	rooms       *repository.RoomRepo
	payments    *repository.PaymentRepo
	audits      *repository.AuditRepo
	recorder    *audit.Recorder
	receiptsDir string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Config{
		Env:         "dev",
		Port:        "0",
		JWTSecret:   "clave-de-prueba",
		DBPath:      filepath.Join(dir, "test.db"),
		ReceiptsDir: filepath.Join(dir, "recibos"),
		UploadsDir:  filepath.Join(dir, "uploads"),
		BcryptCost:  4,
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := repository.NewUserRepo(db)
	configs := repository.NewConfigRepo(db)
	hotels := repository.NewHotelRepo(db)
	rooms := repository.NewRoomRepo(db)
	guests := repository.NewGuestRepo(db)
	payments := repository.NewPaymentRepo(db)
	stats := repository.NewStatsRepo(db)
	audits := repository.NewAuditRepo(db)

	recorder := audit.NewRecorder(audits)
	t.Cleanup(recorder.Close)

	receipts, err := receipt.NewRenderer(cfg.ReceiptsDir)
	if err != nil {
		t.Fatalf("prepare receipts dir: %v", err)
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
		Engine:   reconcile.NewEngine(guests),
		Audits:   recorder,
		AuditLog: audits,
		Receipts: receipts,
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, config.RateLimitConfig{}, nil)
	router.RegisterAdmin(e, authHandler, adminHandler, cfg.JWTSecret)

	return &testApp{
		e:           e,
		db:          db,
		cfg:         cfg,
		guests:      guests,
		rooms:       rooms,
		payments:    payments,
		audits:      audits,
		recorder:    recorder,
		receiptsDir: cfg.ReceiptsDir,
	}
}

func (a *testApp) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) token(t *testing.T) string {
	t.Helper()
	access, err := utils.NewAccessToken(a.cfg.JWTSecret, 1, "admin@bodasuite.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return access.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodGet, "/invitados", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}

	rec = app.request(t, http.MethodGet, "/invitados", "no-es-un-jwt", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("bad token: status = %d, want 403", rec.Code)
	}
}

func TestRegisterLoginVerify(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "novios@example.com", "password": "secreto123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var reg struct {
		Token string `json:"token"`
		User  struct {
			ID    uint64 `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	decode(t, rec, &reg)
	if reg.Token == "" || reg.User.Email != "novios@example.com" {
		t.Fatalf("register response incomplete: %s", rec.Body.String())
	}

	t.Run("duplicate email", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/auth/register", "", map[string]string{
			"email": "novios@example.com", "password": "secreto123",
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("short password", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/auth/register", "", map[string]string{
			"email": "otro@example.com", "password": "abc",
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("login ok", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/auth/login", "", map[string]string{
			"email": "novios@example.com", "password": "secreto123",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("login wrong password", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/auth/login", "", map[string]string{
			"email": "novios@example.com", "password": "incorrecta",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("verify token", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/verify-token", reg.Token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Valid bool `json:"valid"`
		}
		decode(t, rec, &resp)
		if !resp.Valid {
			t.Fatalf("verify response: %s", rec.Body.String())
		}
	})
}

func TestPaymentFlow(t *testing.T) {
	app := newTestApp(t)
	token := app.token(t)

	rec := app.request(t, http.MethodPost, "/habitaciones", token, map[string]any{
		"nombre": "Suite Nupcial", "precio": 2000.0, "capacidad": 2, "cupos_disponibles": 3,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create room: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var room repository.Room
	decode(t, rec, &room)

	rec = app.request(t, http.MethodPost, "/invitados", token, map[string]any{
		"nombre": "Ana López", "contacto": "555-1234", "habitacion_id": room.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create guest: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var guest repository.GuestWithBalance
	decode(t, rec, &guest)
	if guest.EstadoPago != reconcile.StatusPendiente {
		t.Fatalf("new guest estado = %q, want %q", guest.EstadoPago, reconcile.StatusPendiente)
	}

	t.Run("monto must be positive", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/pagos", token, map[string]any{
			"invitado_id": guest.ID, "monto": 0, "metodo_pago": "Efectivo",
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown guest", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/pagos", token, map[string]any{
			"invitado_id": 9999, "monto": 100.0, "metodo_pago": "Efectivo",
		})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	rec = app.request(t, http.MethodPost, "/pagos", token, map[string]any{
		"invitado_id": guest.ID, "monto": 800.0, "metodo_pago": "Transferencia",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create payment: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID     uint64 `json:"id"`
		Recibo struct {
			FileName string `json:"fileName"`
		} `json:"recibo"`
	}
	decode(t, rec, &created)
	if created.ID == 0 || created.Recibo.FileName == "" {
		t.Fatalf("payment response incomplete: %s", rec.Body.String())
	}
	if _, err := os.Stat(filepath.Join(app.receiptsDir, created.Recibo.FileName)); err != nil {
		t.Fatalf("receipt file not written: %v", err)
	}

	t.Run("status becomes Parcial", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, fmt.Sprintf("/invitados/%d", guest.ID), token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("get guest: status = %d", rec.Code)
		}
		var g repository.GuestWithBalance
		decode(t, rec, &g)
		if g.EstadoPago != reconcile.StatusParcial || g.SaldoPendiente != 1200 {
			t.Fatalf("after payment: estado %q saldo %v, want Parcial/1200", g.EstadoPago, g.SaldoPendiente)
		}
	})

	t.Run("payment history carries balance snapshot", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, fmt.Sprintf("/invitados/%d/pagos", guest.ID), token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("list payments: status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Pagos    []repository.Payment        `json:"pagos"`
			Invitado repository.GuestWithBalance `json:"invitado"`
		}
		decode(t, rec, &resp)
		if len(resp.Pagos) != 1 || resp.Pagos[0].Monto != 800 {
			t.Fatalf("pagos = %+v, want one payment of 800", resp.Pagos)
		}
		if resp.Invitado.EstadoPago != reconcile.StatusParcial || resp.Invitado.SaldoPendiente != 1200 {
			t.Fatalf("snapshot: estado %q saldo %v, want Parcial/1200",
				resp.Invitado.EstadoPago, resp.Invitado.SaldoPendiente)
		}
	})

	t.Run("payment history of unknown guest", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/invitados/9999/pagos", token, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("overpayment clamps to Pagado", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/pagos", token, map[string]any{
			"invitado_id": guest.ID, "monto": 5000.0, "metodo_pago": "Efectivo",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create payment: status = %d", rec.Code)
		}
		rec = app.request(t, http.MethodGet, fmt.Sprintf("/invitados/%d", guest.ID), token, nil)
		var g repository.GuestWithBalance
		decode(t, rec, &g)
		if g.EstadoPago != reconcile.StatusPagado || g.SaldoPendiente != 0 {
			t.Fatalf("after overpayment: estado %q saldo %v, want Pagado/0", g.EstadoPago, g.SaldoPendiente)
		}
	})

	t.Run("receipt download", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/recibos/"+created.Recibo.FileName, token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("download: status = %d", rec.Code)
		}
		rec = app.request(t, http.MethodGet, "/recibos/no-existe.pdf", token, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("missing receipt: status = %d, want 404", rec.Code)
		}
	})

	t.Run("audit trail records the mutations", func(t *testing.T) {
		app.recorder.Flush()
		rec := app.request(t, http.MethodGet, "/auditoria", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("auditoria: status = %d", rec.Code)
		}
		var entries []repository.AuditEntry
		decode(t, rec, &entries)
		// room create + guest create + two payments
		if len(entries) < 4 {
			t.Fatalf("got %d audit entries, want at least 4", len(entries))
		}
	})
}

func TestRoomDeleteGuard(t *testing.T) {
	app := newTestApp(t)
	token := app.token(t)

	rec := app.request(t, http.MethodPost, "/habitaciones", token, map[string]any{
		"nombre": "Doble", "precio": 900.0, "capacidad": 2, "cupos_disponibles": 2,
	})
	var room repository.Room
	decode(t, rec, &room)

	rec = app.request(t, http.MethodPost, "/invitados", token, map[string]any{
		"nombre": "Carlos Ruiz", "contacto": "555-2222", "habitacion_id": room.ID,
	})
	var guest repository.GuestWithBalance
	decode(t, rec, &guest)

	rec = app.request(t, http.MethodDelete, fmt.Sprintf("/habitaciones/%d", room.ID), token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("delete occupied room: status = %d, want 400", rec.Code)
	}

	rec = app.request(t, http.MethodDelete, fmt.Sprintf("/invitados/%d", guest.ID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete guest: status = %d", rec.Code)
	}
	rec = app.request(t, http.MethodDelete, fmt.Sprintf("/habitaciones/%d", room.ID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete freed room: status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestRoomPriceChangeReReconciles(t *testing.T) {
	app := newTestApp(t)
	token := app.token(t)

	rec := app.request(t, http.MethodPost, "/habitaciones", token, map[string]any{
		"nombre": "Sencilla", "precio": 1000.0, "capacidad": 1, "cupos_disponibles": 1,
	})
	var room repository.Room
	decode(t, rec, &room)

	rec = app.request(t, http.MethodPost, "/invitados", token, map[string]any{
		"nombre": "Elena Torres", "contacto": "555-4444", "habitacion_id": room.ID,
	})
	var guest repository.GuestWithBalance
	decode(t, rec, &guest)

	rec = app.request(t, http.MethodPost, "/pagos", token, map[string]any{
		"invitado_id": guest.ID, "monto": 1000.0, "metodo_pago": "Efectivo",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create payment: status = %d", rec.Code)
	}

	// Fully paid at the old price.
	rec = app.request(t, http.MethodGet, fmt.Sprintf("/invitados/%d", guest.ID), token, nil)
	var g repository.GuestWithBalance
	decode(t, rec, &g)
	if g.EstadoPago != reconcile.StatusPagado {
		t.Fatalf("estado = %q, want Pagado", g.EstadoPago)
	}

	// Raising the price reopens the balance.
	rec = app.request(t, http.MethodPut, fmt.Sprintf("/habitaciones/%d", room.ID), token, map[string]any{
		"nombre": "Sencilla", "precio": 1500.0, "capacidad": 1, "cupos_disponibles": 1,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update room: status = %d, body %s", rec.Code, rec.Body.String())
	}

	stored, err := app.guests.GetByID(t.Context(), guest.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.EstadoPago != reconcile.StatusParcial {
		t.Fatalf("after price raise estado = %q, want Parcial", stored.EstadoPago)
	}
}

func TestConfigAndHotelSingletons(t *testing.T) {
	app := newTestApp(t)
	token := app.token(t)

	rec := app.request(t, http.MethodGet, "/configuracion", token, nil)
	if rec.Code != http.StatusOK || rec.Body.String() == "" {
		t.Fatalf("empty config: status = %d", rec.Code)
	}

	rec = app.request(t, http.MethodPost, "/hotel", token, map[string]any{
		"nombre": "Hotel Mirador", "direccion": "Av. Reforma 100",
		"servicios_incluidos": []string{"Desayuno", "WiFi"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("save hotel: status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = app.request(t, http.MethodGet, "/hotel", token, nil)
	var hotel repository.Hotel
	decode(t, rec, &hotel)
	if hotel.Nombre != "Hotel Mirador" || len(hotel.ServiciosIncluidos) != 2 {
		t.Fatalf("hotel round trip failed: %s", rec.Body.String())
	}
}
