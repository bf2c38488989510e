package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pntme/Retail-management/internal/domain"
)

// GetUserByUsername returns the user and the stored password hash.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*domain.User, string, error) {
	var u domain.User
	var passwordHash string
	row := r.pool.QueryRow(ctx,
		"SELECT id, username, password, email, role, created_at FROM users WHERE username = $1",
		username)
	err := row.Scan(&u.ID, &u.Username, &passwordHash, &u.Email, &u.Role, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", domain.NotFound("user")
		}
		return nil, "", fmt.Errorf("get user %s: %w", username, err)
	}
	return &u, passwordHash, nil
}

// EnsureDefaultAdmin seeds the admin account on first boot so a fresh
// database is usable immediately.
func (r *Repository) EnsureDefaultAdmin(ctx context.Context, username, passwordHash string) error {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		"INSERT INTO users (id, username, password, role) VALUES ($1, $2, $3, 'admin')",
		uuid.NewString(), username, passwordHash)
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	return nil
}
