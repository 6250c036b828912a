package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Guest represents an invitee in the `invitados` table. EstadoPago is a
// derived value: it caches the result of payment reconciliation and is
// recomputed from the pagos table on every listing read.
type Guest struct {
	ID           uint64  `json:"id"`
	Nombre       string  `json:"nombre"`
	Contacto     string  `json:"contacto"`
	HabitacionID *uint64 `json:"habitacion_id"`
	EstadoPago   string  `json:"estado_pago"`
}

// GuestWithBalance joins a guest with its room and aggregated payments.
// SaldoPendiente is never persisted; it is recomputed on every read.
type GuestWithBalance struct {
	Guest
	HabitacionNombre *string `json:"habitacion_nombre"`
	HabitacionPrecio float64 `json:"habitacion_precio"`
	TotalPagado      float64 `json:"total_pagado"`
	SaldoPendiente   float64 `json:"saldo_pendiente"`
}

// ErrGuestNotFound is returned when a guest cannot be found.
var ErrGuestNotFound = errors.New("guest not found")

// GuestRepo encapsulates all database queries related to guests.
type GuestRepo struct {
	db *sql.DB
}

func NewGuestRepo(db *sql.DB) *GuestRepo {
	return &GuestRepo{db: db}
}

// Create inserts a new guest. When a room is referenced it must exist.
func (r *GuestRepo) Create(ctx context.Context, g *Guest) error {
	if g.HabitacionID != nil {
		var n int
		if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM habitaciones WHERE id = ?", *g.HabitacionID).Scan(&n); err != nil {
			return err
		}
		if n == 0 {
			return ErrRoomNotFound
		}
	}
	if g.EstadoPago == "" {
		g.EstadoPago = "Pendiente"
	}
	const q = "INSERT INTO invitados (nombre, contacto, habitacion_id, estado_pago) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, g.Nombre, g.Contacto, g.HabitacionID, g.EstadoPago)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return nil
}

// GetByID fetches a guest by primary key without joining balances.
func (r *GuestRepo) GetByID(ctx context.Context, id uint64) (*Guest, error) {
	const q = "SELECT id, nombre, contacto, habitacion_id, estado_pago FROM invitados WHERE id = ?"
	var g Guest
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&g.ID, &g.Nombre, &g.Contacto, &g.HabitacionID, &g.EstadoPago); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGuestNotFound
		}
		return nil, err
	}
	return &g, nil
}

const balanceQuery = `
SELECT
    i.id, i.nombre, i.contacto, i.habitacion_id, i.estado_pago,
    h.nombre AS habitacion_nombre,
    COALESCE(h.precio, 0) AS habitacion_precio,
    COALESCE(pagos_totales.total_pagado, 0) AS total_pagado
FROM invitados i
LEFT JOIN habitaciones h ON i.habitacion_id = h.id
LEFT JOIN (
    SELECT invitado_id, SUM(monto) AS total_pagado
    FROM pagos
    GROUP BY invitado_id
) pagos_totales ON i.id = pagos_totales.invitado_id`

// GetWithBalance fetches a single guest with its room price and the sum of
// its recorded payments. Single-guest reads always re-aggregate instead of
// trusting the cached estado_pago column.
func (r *GuestRepo) GetWithBalance(ctx context.Context, id uint64) (*GuestWithBalance, error) {
	var g GuestWithBalance
	if err := r.db.QueryRowContext(ctx, balanceQuery+" WHERE i.id = ?", id).Scan(
		&g.ID, &g.Nombre, &g.Contacto, &g.HabitacionID, &g.EstadoPago,
		&g.HabitacionNombre, &g.HabitacionPrecio, &g.TotalPagado); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGuestNotFound
		}
		return nil, err
	}
	g.SaldoPendiente = pendingBalance(g.HabitacionPrecio, g.TotalPagado)
	return &g, nil
}

// pendingBalance clamps the outstanding amount at zero; overpayments never
// surface as negative balances.
func pendingBalance(precio, pagado float64) float64 {
	if saldo := precio - pagado; saldo > 0 {
		return saldo
	}
	return 0
}

// ListWithBalances returns all guests joined with room data and payment
// totals, ordered by name.
func (r *GuestRepo) ListWithBalances(ctx context.Context) ([]*GuestWithBalance, error) {
	rows, err := r.db.QueryContext(ctx, balanceQuery+" ORDER BY i.nombre")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*GuestWithBalance
	for rows.Next() {
		g := new(GuestWithBalance)
		if err := rows.Scan(&g.ID, &g.Nombre, &g.Contacto, &g.HabitacionID, &g.EstadoPago,
			&g.HabitacionNombre, &g.HabitacionPrecio, &g.TotalPagado); err != nil {
			return nil, err
		}
		g.SaldoPendiente = pendingBalance(g.HabitacionPrecio, g.TotalPagado)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the mutable fields of a guest. A referenced room must
// exist. Returns ErrGuestNotFound when no row is affected.
func (r *GuestRepo) Update(ctx context.Context, g *Guest) error {
	if g.HabitacionID != nil {
		var n int
		if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM habitaciones WHERE id = ?", *g.HabitacionID).Scan(&n); err != nil {
			return err
		}
		if n == 0 {
			return ErrRoomNotFound
		}
	}
	const q = "UPDATE invitados SET nombre = ?, contacto = ?, habitacion_id = ? WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, g.Nombre, g.Contacto, g.HabitacionID, g.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrGuestNotFound
	}
	return nil
}

// UpdateStatus persists the recomputed payment status onto the guest row.
func (r *GuestRepo) UpdateStatus(ctx context.Context, id uint64, estado string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE invitados SET estado_pago = ? WHERE id = ?", estado, id)
	return err
}

// Delete removes a guest and its payments in one transaction. Payments are
// append-only from the API surface; the cascade here is the only way they
// ever leave the table.
func (r *GuestRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM pagos WHERE invitado_id = ?", id); err != nil {
		return err
	}
	var res sql.Result
	if res, err = tx.ExecContext(ctx, "DELETE FROM invitados WHERE id = ?", id); err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrGuestNotFound
		return err
	}
	return nil
}
