package reconcile

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/bodasuite/boda-suite/internal/database"
	"github.com/bodasuite/boda-suite/internal/repository"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name       string
		precio     float64
		pagado     float64
		wantEstado string
		wantSaldo  float64
	}{
		{"sin pagos", 1000, 0, StatusPendiente, 1000},
		{"pago parcial", 1000, 400, StatusParcial, 600},
		{"pago exacto", 1000, 1000, StatusPagado, 0},
		{"sobrepago", 1000, 1200, StatusPagado, 0},
		{"precio cero", 0, 0, StatusPagado, 0},
		{"centavos pendientes", 1000, 999.99, StatusParcial, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(tt.precio, tt.pagado)
			if got.Estado != tt.wantEstado {
				t.Errorf("Derive(%v, %v).Estado = %q, want %q", tt.precio, tt.pagado, got.Estado, tt.wantEstado)
			}
			if diff := got.SaldoPendiente - tt.wantSaldo; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Derive(%v, %v).SaldoPendiente = %v, want %v", tt.precio, tt.pagado, got.SaldoPendiente, tt.wantSaldo)
			}
		})
	}
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedGuestWithRoom(t *testing.T, db *sql.DB, precio float64) uint64 {
	t.Helper()
	ctx := context.Background()
	if _, err := db.ExecContext(ctx,
		"INSERT INTO hotel (id, nombre, direccion) VALUES (1, 'Hotel Prueba', 'Calle 1')"); err != nil {
		t.Fatalf("seed hotel: %v", err)
	}
	res, err := db.ExecContext(ctx,
		"INSERT INTO habitaciones (hotel_id, nombre, precio, capacidad, cupos_disponibles) VALUES (1, 'Suite', ?, 2, 5)", precio)
	if err != nil {
		t.Fatalf("seed room: %v", err)
	}
	roomID, _ := res.LastInsertId()
	res, err = db.ExecContext(ctx,
		"INSERT INTO invitados (nombre, contacto, habitacion_id) VALUES ('Ana López', '555-1234', ?)", roomID)
	if err != nil {
		t.Fatalf("seed guest: %v", err)
	}
	guestID, _ := res.LastInsertId()
	return uint64(guestID)
}

func addPayment(t *testing.T, db *sql.DB, guestID uint64, monto float64) {
	t.Helper()
	if _, err := db.ExecContext(context.Background(),
		"INSERT INTO pagos (invitado_id, monto, metodo_pago, fecha_pago) VALUES (?, ?, 'Efectivo', '2026-08-01')",
		guestID, monto); err != nil {
		t.Fatalf("seed payment: %v", err)
	}
}

func TestEngineReconcile(t *testing.T) {
	db := newTestDB(t)
	guests := repository.NewGuestRepo(db)
	engine := NewEngine(guests)
	ctx := context.Background()

	guestID := seedGuestWithRoom(t, db, 1500)

	res, err := engine.Reconcile(ctx, guestID)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if res.Estado != StatusPendiente || res.SaldoPendiente != 1500 {
		t.Fatalf("sin pagos: got %+v", res)
	}

	addPayment(t, db, guestID, 500)
	res, err = engine.Reconcile(ctx, guestID)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if res.Estado != StatusParcial || res.SaldoPendiente != 1000 {
		t.Fatalf("pago parcial: got %+v", res)
	}

	// The derived status must be persisted on the guest row.
	g, err := guests.GetByID(ctx, guestID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if g.EstadoPago != StatusParcial {
		t.Fatalf("persisted estado = %q, want %q", g.EstadoPago, StatusParcial)
	}

	addPayment(t, db, guestID, 2000) // overpays
	res, err = engine.Reconcile(ctx, guestID)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if res.Estado != StatusPagado || res.SaldoPendiente != 0 {
		t.Fatalf("sobrepago: got %+v", res)
	}

	// Reconciling again with no new payments must not change anything.
	again, err := engine.Reconcile(ctx, guestID)
	if err != nil {
		t.Fatalf("Reconcile (repeat): %v", err)
	}
	if again != res {
		t.Fatalf("repeat reconcile changed result: %+v vs %+v", again, res)
	}
}

func TestEngineReconcileGuestWithoutRoom(t *testing.T) {
	db := newTestDB(t)
	guests := repository.NewGuestRepo(db)
	engine := NewEngine(guests)
	ctx := context.Background()

	res, err := db.ExecContext(ctx,
		"INSERT INTO invitados (nombre, contacto) VALUES ('Sin Habitación', '555-0000')")
	if err != nil {
		t.Fatalf("seed guest: %v", err)
	}
	id, _ := res.LastInsertId()

	got, err := engine.Reconcile(ctx, uint64(id))
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if got.Estado != StatusPendiente || got.SaldoPendiente != 0 {
		t.Fatalf("guest without room: got %+v, want Pendiente/0", got)
	}
}

func TestEngineReconcileAll(t *testing.T) {
	db := newTestDB(t)
	guests := repository.NewGuestRepo(db)
	engine := NewEngine(guests)
	ctx := context.Background()

	paid := seedGuestWithRoom(t, db, 800)
	addPayment(t, db, paid, 800)

	res, err := db.ExecContext(ctx,
		"INSERT INTO invitados (nombre, contacto) VALUES ('Otro Invitado', '555-9999')")
	if err != nil {
		t.Fatalf("seed guest: %v", err)
	}
	otherID, _ := res.LastInsertId()

	all, err := engine.ReconcileAll(ctx)
	if err != nil {
		t.Fatalf("ReconcileAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d results, want 2", len(all))
	}
	if all[paid].Estado != StatusPagado {
		t.Errorf("paid guest estado = %q, want %q", all[paid].Estado, StatusPagado)
	}
	if all[uint64(otherID)].Estado != StatusPendiente {
		t.Errorf("roomless guest estado = %q, want %q", all[uint64(otherID)].Estado, StatusPendiente)
	}
}
