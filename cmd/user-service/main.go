// user-service serves registration, login, profile, and password endpoints.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"freshbonds/backend/internal/api"
	"freshbonds/backend/internal/audit"
	auditrepo "freshbonds/backend/internal/audit/repository"
	"freshbonds/backend/internal/config"
	"freshbonds/backend/internal/db"
	healthhandler "freshbonds/backend/internal/health/handler"
	"freshbonds/backend/internal/ratelimit"
	"freshbonds/backend/internal/security"
	"freshbonds/backend/internal/server"
	"freshbonds/backend/internal/server/middleware"
	"freshbonds/backend/internal/user/handler"
	userrepo "freshbonds/backend/internal/user/repository"
	"freshbonds/backend/internal/user/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
	}

	tokens := security.NewTokenProvider([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.TokenTTLDuration())
	hasher := security.NewHasher(cfg.BcryptCost)
	users := userrepo.NewPostgresRepository(pool)
	auditor := audit.NewLogger(auditrepo.NewPostgresRepository(pool), middleware.ClientIP, logger)
	svc := service.NewAuthService(users, hasher, tokens, auditor, cfg.LockoutThreshold, cfg.LockoutDurationValue())

	h := handler.New(svc, tokens, api.NewValidator(), logger,
		newLimiter(rdb, "rl:register", cfg.RegisterRateMax, cfg.RegisterWindow()),
		newLimiter(rdb, "rl:login", cfg.LoginRateMax, cfg.LoginWindow()),
		newLimiter(rdb, "rl:password", cfg.PasswordRateMax, cfg.PasswordWindow()),
	)

	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBody(1 << 20))
	h.Routes(r)
	healthhandler.New("user-service", map[string]healthhandler.Pinger{
		"database": healthhandler.PingFunc(pool.Ping),
	}).Routes(r)

	if err := server.New(cfg.UserAddr, r, logger).Run(ctx); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newLimiter picks the Redis fixed-window backend when a client is
// configured, so limits hold across instances; otherwise per-process memory.
func newLimiter(rdb *redis.Client, prefix string, limit int, window time.Duration) ratelimit.Limiter {
	if rdb != nil {
		return ratelimit.NewRedis(rdb, prefix, limit, window)
	}
	return ratelimit.NewMemory(limit, window)
}
