// Package gateway fronts the user and product services with a reverse proxy
// and hosts the payment-initiation stub.
package gateway

import (
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"go.uber.org/zap"

	"freshbonds/backend/internal/api"
	"freshbonds/backend/internal/server/middleware"
)

// Proxy forwards requests for one backend service. The client IP resolved by
// the gateway is what the backend sees in X-Forwarded-For and X-Real-IP;
// whatever the caller sent in those headers is discarded, as is the Cookie
// header. Bearer tokens pass through untouched.
type Proxy struct {
	name string
	rp   *httputil.ReverseProxy
	log  *zap.Logger
}

// NewProxy builds a reverse proxy for target. name identifies the backend in
// logs and in the 503 body returned when it is unreachable.
func NewProxy(name string, target *url.URL, log *zap.Logger) *Proxy {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Proxy{name: name, log: log}

	p.rp = &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			req.URL.Scheme = target.Scheme
			req.URL.Host = target.Host
			req.Host = target.Host

			ip := middleware.ClientIP(req.Context())
			req.Header.Set("X-Forwarded-For", ip)
			req.Header.Set("X-Real-IP", ip)
			req.Header.Del("Cookie")
		},
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: 30 * time.Second,
			}).DialContext,
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       90 * time.Second,
		},
		ModifyResponse: func(resp *http.Response) error {
			resp.Header.Set("X-Content-Type-Options", "nosniff")
			resp.Header.Set("X-Frame-Options", "DENY")
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			p.log.Error("backend unreachable",
				zap.String("backend", p.name),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			api.WriteError(w, http.StatusServiceUnavailable, p.name+" unavailable, please try again later")
		},
	}
	return p
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.rp.ServeHTTP(w, r)
}
