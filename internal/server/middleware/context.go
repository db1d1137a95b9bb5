package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"freshbonds/backend/internal/security"
)

type contextKey struct{ name string }

var (
	principalKey = contextKey{"principal"}
	resourceKey  = contextKey{"resource"}
	clientIPKey  = contextKey{"client_ip"}
)

// WithPrincipal returns a context carrying the authenticated identity.
// Handlers read it via GetPrincipal.
func WithPrincipal(ctx context.Context, p *security.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal returns the authenticated identity and true if set.
func GetPrincipal(ctx context.Context) (*security.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*security.Principal)
	return p, ok
}

// WithResource returns a context carrying the resource loaded by an
// ownership check, so the handler does not fetch it a second time.
func WithResource(ctx context.Context, resource any) context.Context {
	return context.WithValue(ctx, resourceKey, resource)
}

// GetResource returns the resource attached by RequireOwnership.
func GetResource(ctx context.Context) any {
	return ctx.Value(resourceKey)
}

// WithClientIP stores the resolved client address for downstream use
// (rate limiting keys, audit records).
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP returns the client address from the context, or "unknown".
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}

// EdgeIP resolves the client address from the socket peer only and stores it
// in the request context. This is the middleware for the gateway, whose peer
// is the untrusted client: forwarding headers sent by the caller carry no
// authority and are ignored, so rate-limit keys cannot be chosen by the
// caller.
func EdgeIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithClientIP(r.Context(), peerIP(r))))
	})
}

// RealIP resolves the client address, trusting the forwarding headers the
// gateway sets, and stores it in the request context. Only for services
// deployed behind the gateway; never install it on the edge.
func RealIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		next.ServeHTTP(w, r.WithContext(WithClientIP(r.Context(), ip)))
	})
}

func peerIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func clientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	return peerIP(r)
}
