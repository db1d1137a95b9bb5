package repository

import (
	"context"
	"errors"
	"time"

	"freshbonds/backend/internal/user/domain"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned by Create when the email already exists,
	// compared case-insensitively.
	ErrEmailTaken = errors.New("email already registered")
)

// Repository defines persistence for users, including the lockout counters.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail looks up an active user by email, case-insensitively.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	UpdateProfile(ctx context.Context, u *domain.User) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error

	// RecordLoginFailure applies the failed-attempt transition atomically:
	// an expired lock restarts the counter at 1 and clears the lock;
	// otherwise the counter increments, and reaching threshold while
	// unlocked sets lock_until to now+lockFor.
	RecordLoginFailure(ctx context.Context, id string, threshold int, lockFor time.Duration, now time.Time) error
	// RecordLoginSuccess clears the counter and lock and stamps last_login.
	RecordLoginSuccess(ctx context.Context, id string, now time.Time) error
}
