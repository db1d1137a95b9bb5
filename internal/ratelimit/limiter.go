// Package ratelimit provides per-client-address request throttling for
// sensitive endpoints. Counting is fixed-window: the first request from an
// address opens a window, subsequent requests increment the same counter
// until the window elapses, then the counter restarts. Bursts across a
// window boundary are accepted behavior.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a limiter check for a single request.
type Decision struct {
	// Allowed reports whether the request may proceed.
	Allowed bool
	// RetryAfter is how long the client must wait before the window resets.
	// Zero when Allowed.
	RetryAfter time.Duration
}

// Limiter throttles requests by an opaque client key, usually the remote
// address. Each endpoint class owns its own Limiter instance so exhausting
// one namespace never affects another.
type Limiter interface {
	// Allow consumes one request slot for key and reports the decision.
	Allow(ctx context.Context, key string) (Decision, error)
}
