package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/talent-pool/internal/types"
)

// GetUserByEmail retrieves an account by email for login. It returns nil, nil when none exists.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	var (
		u    types.User
		hash *string
		role string
	)
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, role, created_at, updated_at FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&u.ID, &u.Name, &u.Email, &hash, &role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if hash != nil {
		u.PasswordHash = *hash
	}
	u.Role = types.Role(role)
	return &u, nil
}

// CreateUser inserts a staff or job-seeker account with a password hash and returns its ID.
func (db *DB) CreateUser(ctx context.Context, name, email, passwordHash string, role types.Role) (uuid.UUID, error) {
	if !role.Valid() {
		return uuid.Nil, fmt.Errorf("invalid role %q", role)
	}
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role) VALUES ($1, $2, NULLIF($3, ''), $4) RETURNING id`,
		name, strings.ToLower(strings.TrimSpace(email)), passwordHash, string(role),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}
