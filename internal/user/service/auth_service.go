package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"freshbonds/backend/internal/audit"
	"freshbonds/backend/internal/security"
	"freshbonds/backend/internal/user/domain"
	userrepo "freshbonds/backend/internal/user/repository"
)

// Sentinel errors for the auth service; the handler maps them to HTTP codes.
var (
	ErrEmailAlreadyRegistered = errors.New("user with this email already exists")
	// ErrInvalidCredentials covers unknown email, wrong password, and locked
	// accounts alike, to prevent account enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

// AuthResult holds the outcome of Register or Login.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// RegisterInput carries the already-validated registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Location string
	FarmName string
	Mobile   string
}

// ProfileUpdate carries the mutable profile fields.
type ProfileUpdate struct {
	Name     string
	Location string
	FarmName string
	Mobile   string
}

// AuthService implements registration, login with lockout, profile access,
// and password change for the user service.
type AuthService struct {
	repo             userrepo.Repository
	hasher           *security.Hasher
	tokens           *security.TokenProvider
	audit            audit.Recorder
	lockoutThreshold int
	lockoutDuration  time.Duration
	now              func() time.Time
}

func NewAuthService(
	repo userrepo.Repository,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	auditor audit.Recorder,
	lockoutThreshold int,
	lockoutDuration time.Duration,
) *AuthService {
	return &AuthService{
		repo:             repo,
		hasher:           hasher,
		tokens:           tokens,
		audit:            auditor,
		lockoutThreshold: lockoutThreshold,
		lockoutDuration:  lockoutDuration,
		now:              time.Now,
	}
}

// Register creates a user and returns a fresh session token alongside it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	now := s.now().UTC()
	hash, err := s.hasher.Hash([]byte(in.Password))
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Email:        domain.NormalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         domain.Role(in.Role),
		Location:     strings.TrimSpace(in.Location),
		Mobile:       strings.TrimSpace(in.Mobile),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if u.Role == domain.RoleFarmer {
		u.FarmName = strings.TrimSpace(in.FarmName)
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, userrepo.ErrEmailTaken) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, err
	}
	s.audit.LogEvent(ctx, u.ID, audit.ActionRegister, "users/"+u.ID, "")

	return s.issueFor(u)
}

// Login authenticates by email and password. The lockout check runs before
// the password comparison, and failure/success is recorded on every path so
// the counters stay consistent across repeated attempts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	now := s.now().UTC()

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			s.audit.LogEvent(ctx, "", audit.ActionLoginFailure, "users", "unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if u.Locked(now) {
		if err := s.repo.RecordLoginFailure(ctx, u.ID, s.lockoutThreshold, s.lockoutDuration, now); err != nil {
			return nil, err
		}
		s.audit.LogEvent(ctx, u.ID, audit.ActionLoginFailure, "users/"+u.ID, "account locked")
		return nil, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(u.PasswordHash, []byte(password)); err != nil {
		if err := s.repo.RecordLoginFailure(ctx, u.ID, s.lockoutThreshold, s.lockoutDuration, now); err != nil {
			return nil, err
		}
		s.audit.LogEvent(ctx, u.ID, audit.ActionLoginFailure, "users/"+u.ID, "wrong password")
		return nil, ErrInvalidCredentials
	}

	if err := s.repo.RecordLoginSuccess(ctx, u.ID, now); err != nil {
		return nil, err
	}
	s.audit.LogEvent(ctx, u.ID, audit.ActionLoginSuccess, "users/"+u.ID, "")

	return s.issueFor(u)
}

// Profile returns the user for id.
func (s *AuthService) Profile(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfile applies the mutable fields and persists them. Role and email
// are immutable here; farm name only applies to farmers.
func (s *AuthService) UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (*domain.User, error) {
	u, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Name = strings.TrimSpace(in.Name)
	u.Location = strings.TrimSpace(in.Location)
	u.Mobile = strings.TrimSpace(in.Mobile)
	if u.Role == domain.RoleFarmer {
		u.FarmName = strings.TrimSpace(in.FarmName)
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.audit.LogEvent(ctx, u.ID, audit.ActionProfileUpdate, "users/"+u.ID, "")
	return u, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	u, err := s.Profile(ctx, id)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(u.PasswordHash, []byte(currentPassword)); err != nil {
		s.audit.LogEvent(ctx, u.ID, audit.ActionPasswordFailure, "users/"+u.ID, "wrong current password")
		return ErrWrongPassword
	}

	hash, err := s.hasher.Hash([]byte(newPassword))
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePasswordHash(ctx, id, hash); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.audit.LogEvent(ctx, u.ID, audit.ActionPasswordChange, "users/"+u.ID, "")
	return nil
}

func (s *AuthService) issueFor(u *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: u, Token: token, ExpiresAt: expiresAt}, nil
}
