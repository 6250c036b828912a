package repository

import (
	"context"
	"database/sql"
	"errors"
)

// WeddingConfig is the singleton wedding configuration row. The table keeps
// at most one row with a fixed id of 1; saves are upserts against that
// identity so concurrent updates can never leave the table empty.
type WeddingConfig struct {
	ID            uint64  `json:"id"`
	NombreNovia   string  `json:"nombre_novia"`
	NombreNovio   string  `json:"nombre_novio"`
	FechaBoda     string  `json:"fecha_boda"`
	HoraBoda      string  `json:"hora_boda"`
	LugarBoda     string  `json:"lugar_boda"`
	ImagenPortada *string `json:"imagen_portada"`
}

// ErrConfigNotFound is returned before the first configuration save.
var ErrConfigNotFound = errors.New("wedding config not found")

// ConfigRepo encapsulates queries for the configuracion_boda singleton.
type ConfigRepo struct {
	db *sql.DB
}

func NewConfigRepo(db *sql.DB) *ConfigRepo {
	return &ConfigRepo{db: db}
}

// Get returns the current configuration or ErrConfigNotFound.
func (r *ConfigRepo) Get(ctx context.Context) (*WeddingConfig, error) {
	const q = `SELECT id, nombre_novia, nombre_novio, fecha_boda, hora_boda, lugar_boda, imagen_portada
	           FROM configuracion_boda WHERE id = 1`
	var c WeddingConfig
	if err := r.db.QueryRowContext(ctx, q).Scan(&c.ID, &c.NombreNovia, &c.NombreNovio,
		&c.FechaBoda, &c.HoraBoda, &c.LugarBoda, &c.ImagenPortada); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Upsert replaces the singleton row in a single statement.
func (r *ConfigRepo) Upsert(ctx context.Context, c *WeddingConfig) error {
	const q = `INSERT INTO configuracion_boda (id, nombre_novia, nombre_novio, fecha_boda, hora_boda, lugar_boda, imagen_portada)
	           VALUES (1, ?, ?, ?, ?, ?, ?)
	           ON CONFLICT(id) DO UPDATE SET
	             nombre_novia = excluded.nombre_novia,
	             nombre_novio = excluded.nombre_novio,
	             fecha_boda = excluded.fecha_boda,
	             hora_boda = excluded.hora_boda,
	             lugar_boda = excluded.lugar_boda,
	             imagen_portada = excluded.imagen_portada`
	if _, err := r.db.ExecContext(ctx, q, c.NombreNovia, c.NombreNovio, c.FechaBoda,
		c.HoraBoda, c.LugarBoda, c.ImagenPortada); err != nil {
		return err
	}
	c.ID = 1
	return nil
}
