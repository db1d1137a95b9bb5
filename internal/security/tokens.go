package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenMalformed is returned when a token cannot be parsed or its signature is invalid.
	ErrTokenMalformed = errors.New("malformed token")
	// ErrTokenExpired is returned when a token's signature is valid but its expiry has passed.
	ErrTokenExpired = errors.New("token expired")
)

// Roles carried in bearer tokens. The user domain mirrors these values in
// its typed Role enum.
const (
	RoleFarmer = "farmer"
	RoleAdmin  = "admin"
)

// Principal is the verified identity carried by a bearer token.
type Principal struct {
	UserID string
	Email  string
	Role   string
}

// AccessClaims holds JWT claims for the bearer token.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// TokenProvider issues and verifies bearer JWTs signed with a single shared
// HS256 secret known only to the authenticating services. Tokens carry
// identity, email, and role for a fixed validity window; there is no refresh
// mechanism, expiry forces re-login.
type TokenProvider struct {
	secret []byte
	issuer string
	ttl    time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

// NewTokenProvider returns a TokenProvider signing with secret. ttl is the
// token validity window (8h in production config).
func NewTokenProvider(secret []byte, issuer string, ttl time.Duration) *TokenProvider {
	return &TokenProvider{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}
}

// Issue builds a signed, time-bounded credential for the given identity.
// Returns the token string and its expiry time.
func (p *TokenProvider) Issue(userID, email, role string) (token string, expiresAt time.Time, err error) {
	now := p.now().UTC()
	expiresAt = now.Add(p.ttl)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: email,
		Role:  role,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = t.SignedString(p.secret)
	return token, expiresAt, err
}

// Verify parses and validates the token and returns its principal.
// Returns ErrTokenExpired when the signature is valid but the expiry has
// passed, and ErrTokenMalformed for every other failure. Callers rely on the
// distinction to give "session expired" vs "invalid session" guidance; the
// HTTP middleware collapses both into one generic 401.
// Verify has no side effects: the same token yields the same result every time.
func (p *TokenProvider) Verify(tokenString string) (*Principal, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return p.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}
	if p.issuer != "" && claims.Issuer != p.issuer {
		return nil, ErrTokenMalformed
	}
	if claims.Subject == "" {
		return nil, ErrTokenMalformed
	}
	return &Principal{UserID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}
