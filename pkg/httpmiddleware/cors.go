package httpmiddleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig controls the Cross-Origin Resource Sharing headers emitted by
// the CORS middleware.
type CORSConfig struct {
	// AllowOrigins lists permitted origins. A single "*" allows any origin.
	AllowOrigins []string
	// AllowHeaders lists request headers permitted in preflight.
	AllowHeaders []string
	// AllowCredentials emits Access-Control-Allow-Credentials. Incompatible
	// with a wildcard origin: the matched origin is echoed back instead.
	AllowCredentials bool
	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int
}

// CORS returns a middleware that answers preflight OPTIONS requests and adds
// CORS headers to matching cross-origin requests.
func CORS(cfg CORSConfig) Middleware {
	allowAll := len(cfg.AllowOrigins) == 1 && cfg.AllowOrigins[0] == "*"
	allowed := make(map[string]struct{}, len(cfg.AllowOrigins))
	for _, o := range cfg.AllowOrigins {
		allowed[strings.TrimSuffix(o, "/")] = struct{}{}
	}

	allowHeaders := strings.Join(cfg.AllowHeaders, ", ")
	allowMethods := "GET, POST, PATCH, DELETE, OPTIONS"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Origin")

			allowOrigin := ""
			switch {
			case allowAll && !cfg.AllowCredentials:
				allowOrigin = "*"
			case allowAll:
				allowOrigin = origin
			default:
				if _, ok := allowed[strings.TrimSuffix(origin, "/")]; ok {
					allowOrigin = origin
				}
			}
			if allowOrigin == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
			if cfg.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", allowMethods)
				if allowHeaders != "" {
					w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
				}
				if cfg.MaxAge > 0 {
					w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
