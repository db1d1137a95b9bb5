// gateway fronts the user and product services: reverse proxy, payment stub,
// health endpoints.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"freshbonds/backend/internal/config"
	"freshbonds/backend/internal/gateway"
	healthhandler "freshbonds/backend/internal/health/handler"
	"freshbonds/backend/internal/server"
	"freshbonds/backend/internal/server/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	userURL, err := url.Parse(cfg.UserServiceURL)
	if err != nil {
		logger.Fatal("USER_SERVICE_URL", zap.Error(err))
	}
	productURL, err := url.Parse(cfg.ProductServiceURL)
	if err != nil {
		logger.Fatal("PRODUCT_SERVICE_URL", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	userProxy := gateway.NewProxy("user service", userURL, logger)
	productProxy := gateway.NewProxy("product service", productURL, logger)
	payments := gateway.NewPaymentHandler(gateway.IPGConfig{
		AppName:       cfg.IPGAppName,
		AppID:         cfg.IPGAppID,
		AppToken:      cfg.IPGAppToken,
		HashSalt:      cfg.IPGHashSalt,
		CallbackURL:   cfg.IPGCallbackURL,
		CallbackToken: cfg.IPGCallbackToken,
	}, logger)

	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.EdgeIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBody(1 << 20))

	r.Handle("/api/users", userProxy)
	r.Handle("/api/users/*", userProxy)
	r.Handle("/api/products", productProxy)
	r.Handle("/api/products/*", productProxy)
	r.Route("/api/payment", payments.Routes)
	r.Get("/api", gateway.Index)

	probe := &http.Client{Timeout: 5 * time.Second}
	healthhandler.New("api-gateway", map[string]healthhandler.Pinger{
		"user-service":    pingService(probe, cfg.UserServiceURL),
		"product-service": pingService(probe, cfg.ProductServiceURL),
	}).Routes(r)

	if err := server.New(cfg.GatewayAddr, r, logger).Run(ctx); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// pingService probes a backend's liveness endpoint for the readiness check.
func pingService(client *http.Client, base string) healthhandler.PingFunc {
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/health/live", nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("liveness returned %d", resp.StatusCode)
		}
		return nil
	}
}
