package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Payment represents a row in the `pagos` table. Payments are append-only:
// there is no update or delete path; they only disappear when their guest is
// deleted.
type Payment struct {
	ID         uint64  `json:"id"`
	InvitadoID uint64  `json:"invitado_id"`
	Monto      float64 `json:"monto"`
	MetodoPago string  `json:"metodo_pago"`
	FechaPago  string  `json:"fecha_pago"`
}

// PaymentWithGuest joins a payment with its guest name and the guest's
// re-aggregated balance, for the joined listing endpoint.
type PaymentWithGuest struct {
	Payment
	InvitadoNombre   string  `json:"invitado_nombre"`
	HabitacionPrecio float64 `json:"habitacion_precio"`
	TotalPagado      float64 `json:"total_pagado"`
	SaldoPendiente   float64 `json:"saldo_pendiente"`
}

// ErrPaymentNotFound is returned when a payment cannot be found.
var ErrPaymentNotFound = errors.New("payment not found")

// PaymentRepo encapsulates all database queries related to payments.
type PaymentRepo struct {
	db *sql.DB
}

func NewPaymentRepo(db *sql.DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

// Create inserts a new payment. The referenced guest must exist.
func (r *PaymentRepo) Create(ctx context.Context, p *Payment) error {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM invitados WHERE id = ?", p.InvitadoID).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return ErrGuestNotFound
	}
	const q = "INSERT INTO pagos (invitado_id, monto, metodo_pago, fecha_pago) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, p.InvitadoID, p.Monto, p.MetodoPago, p.FechaPago)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID fetches a payment by primary key.
func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (*Payment, error) {
	const q = "SELECT id, invitado_id, monto, metodo_pago, fecha_pago FROM pagos WHERE id = ?"
	var p Payment
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.InvitadoID, &p.Monto, &p.MetodoPago, &p.FechaPago); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListByGuest returns the payment history of one guest, newest first.
func (r *PaymentRepo) ListByGuest(ctx context.Context, guestID uint64) ([]*Payment, error) {
	const q = `SELECT id, invitado_id, monto, metodo_pago, fecha_pago
	           FROM pagos WHERE invitado_id = ? ORDER BY fecha_pago DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, guestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Payment
	for rows.Next() {
		p := new(Payment)
		if err := rows.Scan(&p.ID, &p.InvitadoID, &p.Monto, &p.MetodoPago, &p.FechaPago); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListAll returns every payment joined with guest and balance data, newest
// first. The pending balance is recomputed in the query rather than read
// from any stored column.
func (r *PaymentRepo) ListAll(ctx context.Context) ([]*PaymentWithGuest, error) {
	const q = `
	SELECT
	    p.id, p.invitado_id, p.monto, p.metodo_pago, p.fecha_pago,
	    COALESCE(i.nombre, 'Desconocido') AS invitado_nombre,
	    COALESCE(h.precio, 0) AS habitacion_precio,
	    COALESCE(pagos_totales.total_pagado, 0) AS total_pagado,
	    MAX(COALESCE(h.precio, 0) - COALESCE(pagos_totales.total_pagado, 0), 0) AS saldo_pendiente
	FROM pagos p
	LEFT JOIN invitados i ON p.invitado_id = i.id
	LEFT JOIN habitaciones h ON i.habitacion_id = h.id
	LEFT JOIN (
	    SELECT invitado_id, SUM(monto) AS total_pagado
	    FROM pagos
	    GROUP BY invitado_id
	) pagos_totales ON i.id = pagos_totales.invitado_id
	ORDER BY p.fecha_pago DESC, p.id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*PaymentWithGuest
	for rows.Next() {
		p := new(PaymentWithGuest)
		if err := rows.Scan(&p.ID, &p.InvitadoID, &p.Monto, &p.MetodoPago, &p.FechaPago,
			&p.InvitadoNombre, &p.HabitacionPrecio, &p.TotalPagado, &p.SaldoPendiente); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
