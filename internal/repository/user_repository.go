package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/model"
)

// UserRepo provides read access to local user accounts.  The coordinator
// never creates or mutates users; registration lives in another service.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo constructs a UserRepo with the given DB handle.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// ByLogin returns the user with the given login.
func (r *UserRepo) ByLogin(ctx context.Context, login string) (*model.User, error) {
	const q = `SELECT id, login, name, email FROM users WHERE login = ?`
	var u model.User
	err := r.db.QueryRowContext(ctx, q, login).Scan(&u.ID, &u.Login, &u.Name, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
