package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/avolkov/cartsync/internal/models"
)

// ErrDuplicateLogin is returned when creating a user whose login is
// already taken, caught at the unique constraint.
var ErrDuplicateLogin = errors.New("login already taken")

// uniqueViolation is the PostgreSQL error code for unique_violation.
const uniqueViolation = "23505"

// PostgresAuthRepository implements user and token storage against a
// PostgreSQL database.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository using
// the provided *sql.DB.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// UserExists returns true if a user with the given login exists.
func (r *PostgresAuthRepository) UserExists(ctx context.Context, login string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE login = $1)
	`, login).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("UserExists: %w", err)
	}
	return exists, nil
}

// CreateUser stores a new user record. A concurrent registration of
// the same login surfaces as ErrDuplicateLogin.
func (r *PostgresAuthRepository) CreateUser(ctx context.Context, user models.User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, login, password_hash) VALUES ($1, $2, $3)
	`, user.ID, user.Login, user.PasswordHash)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateLogin
		}
		return fmt.Errorf("CreateUser: %w", err)
	}
	return nil
}

// UserByLogin fetches a user by login. An unknown login yields
// (nil, nil) so the service can map it to its own credentials error.
func (r *PostgresAuthRepository) UserByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, login, password_hash FROM users WHERE login = $1
	`, login).Scan(&user.ID, &user.Login, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("UserByLogin: %w", err)
	}
	return &user, nil
}

// SaveToken records an issued bearer token for the given user.
func (r *PostgresAuthRepository) SaveToken(ctx context.Context, token, userID string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, created_at) VALUES ($1, $2, now())
	`, token, userID)
	if err != nil {
		return fmt.Errorf("SaveToken: %w", err)
	}
	return nil
}

// UserByToken resolves a bearer token to its owning user ID. Unknown
// tokens return an error, which the middleware maps to 401.
func (r *PostgresAuthRepository) UserByToken(ctx context.Context, token string) (string, error) {
	var userID string
	err := r.DB.QueryRowContext(ctx, `
		SELECT user_id FROM sessions WHERE token = $1
	`, token).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.New("unknown token")
	}
	if err != nil {
		return "", fmt.Errorf("UserByToken: %w", err)
	}
	return userID, nil
}

// DeleteToken revokes an issued bearer token. Deleting an unknown
// token is a no-op.
func (r *PostgresAuthRepository) DeleteToken(ctx context.Context, token string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("DeleteToken: %w", err)
	}
	return nil
}
