package repository

import (
	"context"
	"database/sql"
	"time"
)

// AuditEntry is one immutable row in the `auditoria` table. The application
// only ever inserts and reads; rows are never updated or deleted.
type AuditEntry struct {
	ID           uint64 `json:"id"`
	Tabla        string `json:"tabla"`
	Accion       string `json:"accion"`
	Descripcion  string `json:"descripcion"`
	UsuarioID    uint64 `json:"usuario_id"`
	UsuarioEmail string `json:"usuario_email"`
	Fecha        string `json:"fecha"`
}

// AuditRepo encapsulates queries for the audit trail.
type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Insert appends one audit entry with a server-generated timestamp.
func (r *AuditRepo) Insert(ctx context.Context, e *AuditEntry) error {
	if e.Fecha == "" {
		e.Fecha = time.Now().UTC().Format(time.RFC3339)
	}
	const q = `INSERT INTO auditoria (tabla, accion, descripcion, usuario_id, usuario_email, fecha)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, e.Tabla, e.Accion, e.Descripcion, e.UsuarioID, e.UsuarioEmail, e.Fecha)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		e.ID = uint64(id)
	}
	return nil
}

// List returns the most recent entries, newest first. Ties on the timestamp
// are broken by insertion order.
func (r *AuditRepo) List(ctx context.Context, limit int) ([]*AuditEntry, error) {
	const q = `SELECT id, tabla, accion, COALESCE(descripcion, ''), COALESCE(usuario_id, 0), COALESCE(usuario_email, ''), fecha
	           FROM auditoria ORDER BY fecha DESC, id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*AuditEntry
	for rows.Next() {
		e := new(AuditEntry)
		if err := rows.Scan(&e.ID, &e.Tabla, &e.Accion, &e.Descripcion, &e.UsuarioID, &e.UsuarioEmail, &e.Fecha); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the number of audit entries.
func (r *AuditRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM auditoria").Scan(&n)
	return n, err
}
