package repository

import (
	"context"
	"database/sql"
)

// GuestStatusCounts holds the per-status guest tally for the dashboard.
type GuestStatusCounts struct {
	Total      int
	Pagados    int
	Parciales  int
	Pendientes int
}

// Occupancy holds the raw numbers behind the room occupancy percentage.
type Occupancy struct {
	TotalCupos int
	Asignados  int
}

// StatsRepo runs the aggregate queries behind the dashboard. Each method is
// an independent read so the handler can fan them out concurrently.
type StatsRepo struct {
	db *sql.DB
}

func NewStatsRepo(db *sql.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// GuestCounts tallies guests by their cached payment status.
func (r *StatsRepo) GuestCounts(ctx context.Context) (GuestStatusCounts, error) {
	const q = `
	SELECT
	    COUNT(*),
	    COALESCE(SUM(CASE WHEN estado_pago = 'Pagado' THEN 1 ELSE 0 END), 0),
	    COALESCE(SUM(CASE WHEN estado_pago = 'Parcial' THEN 1 ELSE 0 END), 0),
	    COALESCE(SUM(CASE WHEN estado_pago = 'Pendiente' THEN 1 ELSE 0 END), 0)
	FROM invitados`
	var c GuestStatusCounts
	err := r.db.QueryRowContext(ctx, q).Scan(&c.Total, &c.Pagados, &c.Parciales, &c.Pendientes)
	return c, err
}

// TotalCollected sums every recorded payment.
func (r *StatsRepo) TotalCollected(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(monto), 0) FROM pagos").Scan(&total)
	return total, err
}

// TotalPending sums the clamped outstanding balance over all guests with an
// assigned room. Per-guest overpayments never offset other guests' debt.
func (r *StatsRepo) TotalPending(ctx context.Context) (float64, error) {
	const q = `
	SELECT COALESCE(SUM(MAX(h.precio - COALESCE(pagos_totales.total_pagado, 0), 0)), 0)
	FROM invitados i
	JOIN habitaciones h ON i.habitacion_id = h.id
	LEFT JOIN (
	    SELECT invitado_id, SUM(monto) AS total_pagado
	    FROM pagos
	    GROUP BY invitado_id
	) pagos_totales ON i.id = pagos_totales.invitado_id`
	var total float64
	err := r.db.QueryRowContext(ctx, q).Scan(&total)
	return total, err
}

// RoomOccupancy returns available slots across all rooms and the number of
// guests assigned to any room.
func (r *StatsRepo) RoomOccupancy(ctx context.Context) (Occupancy, error) {
	const q = `
	SELECT
	    COALESCE(SUM(h.cupos_disponibles), 0),
	    (SELECT COUNT(*) FROM invitados WHERE habitacion_id IS NOT NULL)
	FROM habitaciones h`
	var o Occupancy
	err := r.db.QueryRowContext(ctx, q).Scan(&o.TotalCupos, &o.Asignados)
	return o, err
}
