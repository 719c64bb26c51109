// Package auth enforces a static Bearer token on the endpoints that can burn
// CPU on demand.
package auth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/berocs/GotGeodetics-FukushimaCliffNotes/internal/httputil"
)

// Config holds authentication configuration.
type Config struct {
	Enabled bool
	Token   string
}

// route is a method and path pair. An empty method matches any method.
type route struct {
	method string
	path   string
}

// protected lists the routes that require a token when auth is enabled.
// Conversions, probes, metrics and the SSE stream (EventSource cannot send
// headers; it is bounded per IP instead) stay public.
var protected = []route{
	{http.MethodPost, "/api/v1/trials"},
}

func isProtected(method, path string) bool {
	for _, p := range protected {
		if p.path == path && (p.method == "" || p.method == method) {
			return true
		}
	}
	return false
}

// Middleware returns an HTTP middleware that checks the Bearer token on
// protected routes when auth is enabled. An enabled config with an empty
// token rejects every protected request.
func Middleware(cfg Config, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || !isProtected(r.Method, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")

			if !found || cfg.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(cfg.Token)) != 1 {
				logger.Warn("unauthorized request",
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", httputil.RequestID(r.Context()),
				)
				httputil.WriteError(w, r, logger, http.StatusUnauthorized, "unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
