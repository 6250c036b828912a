// Package database opens the single-file SQLite store and prepares its
// schema. The whole application state lives in one database file; the
// schema statements below run on every start and are idempotent.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver (no CGO)

	"golang.org/x/crypto/bcrypt"
)

const schema = `
CREATE TABLE IF NOT EXISTS usuarios (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT UNIQUE NOT NULL,
    password TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS configuracion_boda (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    nombre_novia TEXT NOT NULL,
    nombre_novio TEXT NOT NULL,
    fecha_boda DATE NOT NULL,
    hora_boda TIME NOT NULL,
    lugar_boda TEXT NOT NULL,
    imagen_portada TEXT
);

CREATE TABLE IF NOT EXISTS hotel (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    nombre TEXT NOT NULL,
    direccion TEXT NOT NULL,
    servicios_incluidos TEXT
);

CREATE TABLE IF NOT EXISTS habitaciones (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    hotel_id INTEGER DEFAULT 1,
    nombre TEXT NOT NULL,
    precio REAL NOT NULL,
    capacidad INTEGER NOT NULL,
    cupos_disponibles INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS invitados (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    nombre TEXT NOT NULL,
    contacto TEXT NOT NULL,
    habitacion_id INTEGER,
    estado_pago TEXT DEFAULT 'Pendiente',
    FOREIGN KEY (habitacion_id) REFERENCES habitaciones (id)
);

CREATE TABLE IF NOT EXISTS pagos (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    invitado_id INTEGER NOT NULL,
    monto REAL NOT NULL,
    metodo_pago TEXT NOT NULL,
    fecha_pago DATE NOT NULL,
    FOREIGN KEY (invitado_id) REFERENCES invitados (id)
);

CREATE TABLE IF NOT EXISTS auditoria (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    tabla TEXT NOT NULL,
    accion TEXT NOT NULL,
    descripcion TEXT,
    usuario_id INTEGER,
    usuario_email TEXT,
    fecha DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_invitados_habitacion_id ON invitados(habitacion_id);
CREATE INDEX IF NOT EXISTS idx_pagos_invitado_id ON pagos(invitado_id);
CREATE INDEX IF NOT EXISTS idx_auditoria_fecha ON auditoria(fecha);
`

// Open creates the database file (and its parent directory) if needed, runs
// the schema statements and verifies the connection.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer; serializing through one connection
	// avoids SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// SeedAdmin inserts the default administrator account when it does not
// exist yet. The password is stored as a bcrypt hash.
func SeedAdmin(ctx context.Context, db *sql.DB, email, password string, cost int) error {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM usuarios WHERE email = ?", email).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, "INSERT INTO usuarios (email, password) VALUES (?, ?)", email, string(hash))
	return err
}
