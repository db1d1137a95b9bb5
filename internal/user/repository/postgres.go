package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"freshbonds/backend/internal/user/domain"
)

const userColumns = `id, name, email, password_hash, role, location, farm_name, mobile,
is_active, last_login, login_attempts, lock_until, created_at, updated_at`

// PostgresRepository implements Repository backed by a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, q, id))
}

// GetByEmail looks up an active user by email, case-insensitively. Inactive
// accounts are invisible to authentication.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) AND is_active`
	return r.scanOne(r.pool.QueryRow(ctx, q, email))
}

func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	const q = `
INSERT INTO users (id, name, email, password_hash, role, location, farm_name, mobile,
                   is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`
	_, err := r.pool.Exec(ctx, q,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role),
		nullIfEmpty(u.Location), nullIfEmpty(u.FarmName), nullIfEmpty(u.Mobile),
		u.IsActive, u.CreatedAt)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, u *domain.User) error {
	const q = `
UPDATE users
SET name = $2, location = $3, farm_name = $4, mobile = $5, updated_at = now()
WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, u.ID, u.Name,
		nullIfEmpty(u.Location), nullIfEmpty(u.FarmName), nullIfEmpty(u.Mobile))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordLoginFailure performs the whole failed-attempt transition in one
// conditional UPDATE so concurrent attempts cannot double-apply it.
func (r *PostgresRepository) RecordLoginFailure(ctx context.Context, id string, threshold int, lockFor time.Duration, now time.Time) error {
	const q = `
UPDATE users
SET login_attempts = CASE
        WHEN lock_until IS NOT NULL AND lock_until <= $2 THEN 1
        ELSE login_attempts + 1
    END,
    lock_until = CASE
        WHEN lock_until IS NOT NULL AND lock_until <= $2 THEN NULL
        WHEN lock_until IS NULL AND login_attempts + 1 >= $3 THEN $4
        ELSE lock_until
    END,
    updated_at = $2
WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id, now, threshold, now.Add(lockFor))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) RecordLoginSuccess(ctx context.Context, id string, now time.Time) error {
	const q = `
UPDATE users
SET login_attempts = 0, lock_until = NULL, last_login = $2, updated_at = $2
WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id, now)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*domain.User, error) {
	var (
		u        domain.User
		role     string
		location *string
		farmName *string
		mobile   *string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role,
		&location, &farmName, &mobile,
		&u.IsActive, &u.LastLogin, &u.LoginAttempts, &u.LockUntil,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Role = domain.Role(role)
	u.Location = deref(location)
	u.FarmName = deref(farmName)
	u.Mobile = deref(mobile)
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
