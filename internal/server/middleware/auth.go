// Package middleware holds the HTTP middleware chain: identity extraction,
// token authentication, role and ownership authorization, rate limiting,
// request logging, and the protective headers.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"freshbonds/backend/internal/api"
	"freshbonds/backend/internal/security"
)

const bearerPrefix = "bearer "

// ErrResourceNotFound is returned by a ResourceLoader when no resource
// exists for the id.
var ErrResourceNotFound = errors.New("resource not found")

// Authenticate validates the Bearer token and attaches the identity to the
// request context. Missing, malformed, and expired tokens all produce the
// same generic 401.
func Authenticate(tokens *security.TokenProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				api.Unauthorized(w, "authentication required")
				return
			}
			p, err := tokens.Verify(token)
			if err != nil {
				api.Unauthorized(w, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireRole allows only identities whose role is in the given set. Must
// run after Authenticate.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := GetPrincipal(r.Context())
			if !ok {
				api.Unauthorized(w, "authentication required")
				return
			}
			if !allowed[p.Role] {
				api.Forbidden(w, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ResourceLoader fetches the resource for an ownership check and reports its
// owner. It returns ErrResourceNotFound when the id does not exist.
type ResourceLoader func(ctx context.Context, id string) (resource any, ownerID string, err error)

// RequireOwnership loads the resource named by the {id} URL parameter and
// allows the request only when the caller owns it or is an admin. The
// checks are ordered so a caller cannot probe for existence: syntactically
// bad ids get 400, missing resources 404, and only then does a live
// resource yield 403 for non-owners. The loaded resource is attached to the
// context for the handler.
func RequireOwnership(load ResourceLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := GetPrincipal(r.Context())
			if !ok {
				api.Unauthorized(w, "authentication required")
				return
			}
			id := chi.URLParam(r, "id")
			if uuid.Validate(id) != nil {
				api.BadRequest(w, "invalid resource id format")
				return
			}
			resource, ownerID, err := load(r.Context(), id)
			if err != nil {
				if errors.Is(err, ErrResourceNotFound) {
					api.NotFound(w, "resource not found")
					return
				}
				api.InternalError(w)
				return
			}
			if p.UserID != ownerID && p.Role != security.RoleAdmin {
				api.Forbidden(w, "you do not have permission to modify this resource")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithResource(r.Context(), resource)))
		})
	}
}

func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) <= len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
