package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

type Role string

const (
	RoleFarmer Role = "farmer"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the closed role set.
func (r Role) Valid() bool {
	return r == RoleFarmer || r == RoleAdmin
}

// ErrValidation tags every constraint violation reported by Validate, so
// callers can branch with errors.Is instead of inspecting message text.
var ErrValidation = errors.New("validation failed")

type validationError string

func (e validationError) Error() string { return string(e) }

func (e validationError) Is(target error) bool { return target == ErrValidation }

// User is the core identity record. PasswordHash never leaves the user
// service in API responses; LoginAttempts and LockUntil are internal lockout
// state mutated only by authentication attempts.
type User struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	Role          Role
	Location      string
	FarmName      string
	Mobile        string
	IsActive      bool
	LastLogin     *time.Time
	LoginAttempts int
	LockUntil     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Locked reports whether the account is locked out at the given instant.
// An expired lock no longer counts; the reset happens lazily on the next
// authentication attempt.
func (u *User) Locked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

var namePattern = regexp.MustCompile(`^[a-zA-Z\s]+$`)

// Validate checks the persistable fields. Called explicitly before Create
// and after profile mutation; there is no implicit pre-save hook.
func (u *User) Validate() error {
	if l := len(strings.TrimSpace(u.Name)); l < 2 || len(u.Name) > 100 {
		return validationError("name must be between 2 and 100 characters")
	}
	if !namePattern.MatchString(u.Name) {
		return validationError("name can only contain letters and spaces")
	}
	if u.Email == "" || len(u.Email) > 255 {
		return validationError("email is required and must be less than 255 characters")
	}
	if u.PasswordHash == "" {
		return validationError("password hash is required")
	}
	if !u.Role.Valid() {
		return validationError("role must be either farmer or admin")
	}
	if u.Role == RoleFarmer {
		if l := len(strings.TrimSpace(u.FarmName)); l < 2 || len(u.FarmName) > 100 {
			return validationError("farm name is required for farmers and must be between 2 and 100 characters")
		}
		if u.Mobile == "" {
			return validationError("mobile number is required for farmers")
		}
	}
	if len(u.Location) > 255 {
		return validationError("location must be less than 255 characters")
	}
	return nil
}

// NormalizeEmail lowercases and trims an email for the case-insensitive
// uniqueness rule.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
