// product-service serves the product catalog with role and ownership checks.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"freshbonds/backend/internal/api"
	"freshbonds/backend/internal/audit"
	auditrepo "freshbonds/backend/internal/audit/repository"
	"freshbonds/backend/internal/config"
	"freshbonds/backend/internal/db"
	healthhandler "freshbonds/backend/internal/health/handler"
	"freshbonds/backend/internal/product/handler"
	productrepo "freshbonds/backend/internal/product/repository"
	"freshbonds/backend/internal/product/service"
	"freshbonds/backend/internal/security"
	"freshbonds/backend/internal/server"
	"freshbonds/backend/internal/server/middleware"
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

	tokens := security.NewTokenProvider([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.TokenTTLDuration())
	auditor := audit.NewLogger(auditrepo.NewPostgresRepository(pool), middleware.ClientIP, logger)
	svc := service.NewProductService(productrepo.NewPostgresRepository(pool), auditor)
	h := handler.New(svc, tokens, api.NewValidator(), logger)

	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBody(5 << 20)) // image URLs plus long descriptions
	h.Routes(r)
	healthhandler.New("product-service", map[string]healthhandler.Pinger{
		"database": healthhandler.PingFunc(pool.Ping),
	}).Routes(r)

	if err := server.New(cfg.ProductAddr, r, logger).Run(ctx); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
