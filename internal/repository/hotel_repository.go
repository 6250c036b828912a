package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// Hotel is the singleton hotel row. The included-services list is stored as
// a JSON array in a text column and decoded on read.
type Hotel struct {
	ID                 uint64   `json:"id"`
	Nombre             string   `json:"nombre"`
	Direccion          string   `json:"direccion"`
	ServiciosIncluidos []string `json:"servicios_incluidos"`
}

// ErrHotelNotFound is returned before the first hotel save.
var ErrHotelNotFound = errors.New("hotel not found")

// HotelRepo encapsulates queries for the hotel singleton.
type HotelRepo struct {
	db *sql.DB
}

func NewHotelRepo(db *sql.DB) *HotelRepo {
	return &HotelRepo{db: db}
}

// Get returns the current hotel or ErrHotelNotFound.
func (r *HotelRepo) Get(ctx context.Context) (*Hotel, error) {
	const q = "SELECT id, nombre, direccion, servicios_incluidos FROM hotel WHERE id = 1"
	var h Hotel
	var servicios sql.NullString
	if err := r.db.QueryRowContext(ctx, q).Scan(&h.ID, &h.Nombre, &h.Direccion, &servicios); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHotelNotFound
		}
		return nil, err
	}
	if servicios.Valid && servicios.String != "" {
		// Tolerate malformed JSON from older rows; an empty list is better
		// than failing the whole read.
		_ = json.Unmarshal([]byte(servicios.String), &h.ServiciosIncluidos)
	}
	return &h, nil
}

// Upsert replaces the singleton row with a fixed id of 1.
func (r *HotelRepo) Upsert(ctx context.Context, h *Hotel) error {
	servicios, err := json.Marshal(h.ServiciosIncluidos)
	if err != nil {
		return err
	}
	const q = `INSERT INTO hotel (id, nombre, direccion, servicios_incluidos)
	           VALUES (1, ?, ?, ?)
	           ON CONFLICT(id) DO UPDATE SET
	             nombre = excluded.nombre,
	             direccion = excluded.direccion,
	             servicios_incluidos = excluded.servicios_incluidos`
	if _, err := r.db.ExecContext(ctx, q, h.Nombre, h.Direccion, string(servicios)); err != nil {
		return err
	}
	h.ID = 1
	return nil
}
