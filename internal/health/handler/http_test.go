package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func probe(t *testing.T, h *Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	h.Routes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}

func TestLiveAlwaysOK(t *testing.T) {
	h := New("user-service", map[string]Pinger{
		"database": PingFunc(func(context.Context) error { return errors.New("down") }),
	})
	rec := probe(t, h, "/health/live")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestReadyReflectsDependencies(t *testing.T) {
	h := New("user-service", map[string]Pinger{
		"database": PingFunc(func(context.Context) error { return nil }),
	})
	if rec := probe(t, h, "/health/ready"); rec.Code != http.StatusOK {
		t.Fatalf("healthy deps: status = %d, want 200", rec.Code)
	}

	h = New("user-service", map[string]Pinger{
		"database": PingFunc(func(context.Context) error { return errors.New("down") }),
	})
	rec := probe(t, h, "/health/ready")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("broken dep: status = %d, want 503", rec.Code)
	}
	var res struct {
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Checks["database"] != "unavailable" {
		t.Errorf("checks = %v", res.Checks)
	}
}
