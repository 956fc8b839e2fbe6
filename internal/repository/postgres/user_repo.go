package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"snapverse/internal/domain"
	"snapverse/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// userRepository implements repository.UserRepository over Postgres.
type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

// Create inserts a new user. A missing ID is filled with a fresh UUID;
// a duplicate email maps to repository.ErrDuplicate.
func (r *userRepository) Create(ctx context.Context, user *domain.User) (string, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := r.pool.Exec(ctx, `
INSERT INTO users (id, name, email, email_verified, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, user.ID, user.Name, user.Email, user.EmailVerified, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return "", repository.ErrDuplicate
		}
		return "", fmt.Errorf("insert user: %w", err)
	}
	return user.ID, nil
}

// GetByEmail fetches a user by email address.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `
SELECT id, name, email, email_verified, password_hash, created_at, updated_at
FROM users
WHERE email = $1
`, email)
}

// GetByID fetches a user by primary key.
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `
SELECT id, name, email, email_verified, password_hash, created_at, updated_at
FROM users
WHERE id = $1
`, id)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	var user domain.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.EmailVerified,
		&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
