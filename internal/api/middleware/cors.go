package middleware

import (
	"net/http"
	"strings"

	"github.com/Togather-Foundation/eventreg/internal/config"
	"github.com/rs/zerolog"
)

// CORS handles Cross-Origin Resource Sharing for browser clients.
//
// With AllowAllOrigins (development) any Origin is echoed back. Otherwise the
// Origin must match CORS_ALLOWED_ORIGINS exactly, ignoring case, and rejected
// origins are logged. Preflight OPTIONS requests get 204 No Content.
func CORS(cfg config.CORSConfig, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// Skip CORS processing if no Origin header (same-origin requests)
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowedOrigin := ""
			originRejected := false
			if cfg.AllowAllOrigins {
				allowedOrigin = origin
			} else {
				if isOriginAllowed(origin, cfg.AllowedOrigins) {
					allowedOrigin = origin
				} else {
					originRejected = true
				}
			}

			if originRejected {
				logger.Warn().
					Str("origin", origin).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Msg("CORS request rejected: origin not in whitelist")
			}

			if allowedOrigin != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, X-Request-ID")
				w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
				w.Header().Add("Vary", "Origin")
				w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isOriginAllowed(origin string, allowedOrigins []string) bool {
	origin = strings.ToLower(strings.TrimSpace(origin))
	for _, allowed := range allowedOrigins {
		if strings.ToLower(strings.TrimSpace(allowed)) == origin {
			return true
		}
	}
	return false
}
