// Package audit records security-relevant events (registrations, login
// attempts, profile and password mutations) for later review.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"freshbonds/backend/internal/audit/domain"
	auditrepo "freshbonds/backend/internal/audit/repository"
)

// Actions recorded by the auth and product flows.
const (
	ActionRegister        = "user.register"
	ActionLoginSuccess    = "user.login"
	ActionLoginFailure    = "user.login_failure"
	ActionProfileUpdate   = "user.profile_update"
	ActionPasswordChange  = "user.password_change"
	ActionPasswordFailure = "user.password_change_failure"
	ActionProductCreate   = "product.create"
	ActionProductUpdate   = "product.update"
	ActionProductDelete   = "product.delete"
)

// IPExtractor returns the client IP associated with the request context.
type IPExtractor func(context.Context) string

// Recorder writes a single audit event. LogEvent is best-effort: failures
// are logged and do not affect the caller.
type Recorder interface {
	LogEvent(ctx context.Context, userID, action, resource, metadata string)
}

// Logger implements Recorder using the audit repository and an optional IP
// extractor.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
	log         *zap.Logger
}

// NewLogger returns a Recorder that persists to repo. ipExtractor may be
// nil; then IP is recorded as "unknown".
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor, log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{repo: repo, ipExtractor: ipExtractor, log: log}
}

// LogEvent writes one audit log entry. Errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, userID, action, resource, metadata string) {
	if l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		l.log.Warn("audit event not recorded",
			zap.String("action", action),
			zap.String("resource", resource),
			zap.Error(err))
	}
}

// Nop is a Recorder that discards every event. Used in tests.
type Nop struct{}

func (Nop) LogEvent(context.Context, string, string, string, string) {}
