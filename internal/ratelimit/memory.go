package ratelimit

import (
	"context"
	"sync"
	"time"
)

type windowEntry struct {
	count   int
	resetAt time.Time
}

// Memory is an in-process fixed-window limiter. Entries for idle addresses
// are swept periodically so the map stays bounded under churn.
type Memory struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	entries map[string]*windowEntry

	now  func() time.Time
	done chan struct{}
	once sync.Once
}

// NewMemory returns a limiter allowing limit requests per window for each
// key. Callers should Close it when the owning server shuts down.
func NewMemory(limit int, window time.Duration) *Memory {
	m := &Memory{
		limit:   limit,
		window:  window,
		entries: make(map[string]*windowEntry),
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go m.sweep()
	return m
}

// Allow implements Limiter.
func (m *Memory) Allow(_ context.Context, key string) (Decision, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || !now.Before(e.resetAt) {
		m.entries[key] = &windowEntry{count: 1, resetAt: now.Add(m.window)}
		return Decision{Allowed: true}, nil
	}

	e.count++
	if e.count > m.limit {
		return Decision{Allowed: false, RetryAfter: e.resetAt.Sub(now)}, nil
	}
	return Decision{Allowed: true}, nil
}

// Close stops the background sweeper.
func (m *Memory) Close() {
	m.once.Do(func() { close(m.done) })
}

func (m *Memory) sweep() {
	interval := m.window
	if interval < time.Minute {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-t.C:
			now := m.now()
			m.mu.Lock()
			for key, e := range m.entries {
				if !now.Before(e.resetAt) {
					delete(m.entries, key)
				}
			}
			m.mu.Unlock()
		}
	}
}
