package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bodasuite/boda-suite/internal/utils"
)

// User represents an account in the `usuarios` table. Accounts are created
// at registration and only ever read afterwards.
type User struct {
	ID        uint64 `json:"id"`
	Email     string `json:"email"`
	Password  string `json:"-"` // bcrypt hash, never serialized
	CreatedAt string `json:"created_at"`
}

// ErrUserNotFound is returned when no account matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// UserRepo encapsulates all database queries related to accounts.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo constructs a UserRepo with the provided DB handle.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create hashes the password and inserts a new account. It returns
// ErrEmailExists when the email is already registered.
func (r *UserRepo) Create(ctx context.Context, email, password string, bcryptCost int) (uint64, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM usuarios WHERE email = ?", email).Scan(&n); err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, ErrEmailExists
	}

	hash, err := utils.HashPassword(password, bcryptCost)
	if err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, "INSERT INTO usuarios (email, password) VALUES (?, ?)", email, hash)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches an account by email. Returns ErrUserNotFound when the
// email is unknown.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	const q = "SELECT id, email, password, created_at FROM usuarios WHERE email = ?"
	var u User
	if err := r.db.QueryRowContext(ctx, q, email).Scan(&u.ID, &u.Email, &u.Password, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
