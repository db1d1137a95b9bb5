package gateway

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"freshbonds/backend/internal/server/middleware"
)

func newProxyServer(t *testing.T, target string) *httptest.Server {
	t.Helper()
	u, err := url.Parse(target)
	if err != nil {
		t.Fatalf("parse target: %v", err)
	}
	p := NewProxy("user service", u, nil)
	srv := httptest.NewServer(middleware.EdgeIP(p))
	t.Cleanup(srv.Close)
	return srv
}

func TestProxyForwardsAndRewritesHeaders(t *testing.T) {
	var got http.Header
	var gotPath string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	srv := newProxyServer(t, backend.URL)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/users/profile", nil)
	req.Header.Set("Cookie", "session=abc")
	req.Header.Set("Authorization", "Bearer tok")
	req.Header.Set("X-Real-IP", "203.0.113.9")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if gotPath != "/api/users/profile" {
		t.Errorf("backend path = %q", gotPath)
	}
	if got.Get("Cookie") != "" {
		t.Error("cookie header reached the backend")
	}
	if got.Get("Authorization") != "Bearer tok" {
		t.Errorf("authorization = %q, want passthrough", got.Get("Authorization"))
	}
	// The gateway resolves the client IP from the socket and overwrites the
	// forwarding headers the caller claimed.
	if got.Get("X-Real-IP") != "127.0.0.1" {
		t.Errorf("X-Real-IP = %q, want socket address", got.Get("X-Real-IP"))
	}
	if got.Get("X-Forwarded-For") != "127.0.0.1" {
		t.Errorf("X-Forwarded-For = %q, want socket address", got.Get("X-Forwarded-For"))
	}
}

func TestProxyAddsSecurityHeadersToResponse(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	srv := newProxyServer(t, backend.URL)

	resp, err := http.Get(srv.URL + "/api/users")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if h := resp.Header.Get("X-Content-Type-Options"); h != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", h)
	}
	if h := resp.Header.Get("X-Frame-Options"); h != "DENY" {
		t.Errorf("X-Frame-Options = %q", h)
	}
}

func TestProxyBackendDown(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	backend.Close() // nothing listening anymore

	srv := newProxyServer(t, backend.URL)

	resp, err := http.Get(srv.URL + "/api/users")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
}
