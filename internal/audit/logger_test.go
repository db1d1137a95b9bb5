package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"freshbonds/backend/internal/audit/domain"
)

type memoryRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
	err     error
}

func (m *memoryRepo) Create(_ context.Context, a *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, a)
	return nil
}

func (m *memoryRepo) ListByUser(_ context.Context, userID string, limit, offset int32) ([]*domain.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.AuditLog
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestLogEventPersistsEntry(t *testing.T) {
	repo := &memoryRepo{}
	l := NewLogger(repo, func(context.Context) string { return "10.0.0.9" }, nil)

	l.LogEvent(context.Background(), "u1", ActionLoginSuccess, "users/u1", "")

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	e := repo.entries[0]
	if e.Action != ActionLoginSuccess || e.UserID != "u1" || e.IP != "10.0.0.9" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Error("entry should have generated ID and timestamp")
	}
}

func TestLogEventIsBestEffort(t *testing.T) {
	repo := &memoryRepo{err: errors.New("db down")}
	l := NewLogger(repo, nil, nil)

	// Must not panic or propagate the repository error.
	l.LogEvent(context.Background(), "u1", ActionRegister, "users/u1", "")
}

func TestLogEventNilExtractor(t *testing.T) {
	repo := &memoryRepo{}
	l := NewLogger(repo, nil, nil)

	l.LogEvent(context.Background(), "", ActionLoginFailure, "users", "unknown email")

	if repo.entries[0].IP != "unknown" {
		t.Errorf("IP = %q, want unknown", repo.entries[0].IP)
	}
}
