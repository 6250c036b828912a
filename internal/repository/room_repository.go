package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Room represents a bookable hotel room in the `habitaciones` table. Rooms
// reference the hotel singleton and are the price source for guest payment
// reconciliation.
type Room struct {
	ID               uint64  `json:"id"`
	HotelID          uint64  `json:"hotel_id"`
	Nombre           string  `json:"nombre"`
	Precio           float64 `json:"precio"`
	Capacidad        int     `json:"capacidad"`
	CuposDisponibles int     `json:"cupos_disponibles"`
}

// ErrRoomNotFound is returned when a room cannot be found.
var ErrRoomNotFound = errors.New("room not found")

// RoomRepo encapsulates all database queries related to rooms.
type RoomRepo struct {
	db *sql.DB
}

func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// Create inserts a new room. The hotel reference defaults to the singleton.
func (r *RoomRepo) Create(ctx context.Context, room *Room) error {
	const q = `INSERT INTO habitaciones (nombre, precio, capacidad, cupos_disponibles)
	           VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, room.Nombre, room.Precio, room.Capacidad, room.CuposDisponibles)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)
	room.HotelID = 1
	return nil
}

// GetByID fetches a room by primary key.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*Room, error) {
	const q = `SELECT id, COALESCE(hotel_id, 1), nombre, precio, capacidad, cupos_disponibles
	           FROM habitaciones WHERE id = ?`
	var room Room
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&room.ID, &room.HotelID, &room.Nombre,
		&room.Precio, &room.Capacidad, &room.CuposDisponibles); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

// List returns all rooms ordered by name.
func (r *RoomRepo) List(ctx context.Context) ([]*Room, error) {
	const q = `SELECT id, COALESCE(hotel_id, 1), nombre, precio, capacidad, cupos_disponibles
	           FROM habitaciones ORDER BY nombre`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Room
	for rows.Next() {
		room := new(Room)
		if err := rows.Scan(&room.ID, &room.HotelID, &room.Nombre, &room.Precio,
			&room.Capacidad, &room.CuposDisponibles); err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the mutable fields of a room. It returns ErrRoomNotFound
// when no row is affected.
func (r *RoomRepo) Update(ctx context.Context, room *Room) error {
	const q = `UPDATE habitaciones
	           SET nombre = ?, precio = ?, capacidad = ?, cupos_disponibles = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, room.Nombre, room.Precio, room.Capacidad,
		room.CuposDisponibles, room.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// Delete removes a room unless any guest still references it. The existence
// check and the delete run in one transaction so a guest assignment created
// in between cannot orphan the reference. Returns ErrConflict while guests
// are assigned and ErrRoomNotFound when the room does not exist.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
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

	var guests int
	if err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM invitados WHERE habitacion_id = ?", id).Scan(&guests); err != nil {
		return err
	}
	if guests > 0 {
		err = ErrConflict
		return err
	}

	var res sql.Result
	if res, err = tx.ExecContext(ctx, "DELETE FROM habitaciones WHERE id = ?", id); err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrRoomNotFound
		return err
	}
	return nil
}

// GuestIDs returns the ids of all guests currently assigned to the room.
// Used to re-reconcile payment status after a price change.
func (r *RoomRepo) GuestIDs(ctx context.Context, id uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM invitados WHERE habitacion_id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uint64
	for rows.Next() {
		var gid uint64
		if err := rows.Scan(&gid); err != nil {
			return nil, err
		}
		out = append(out, gid)
	}
	return out, rows.Err()
}
