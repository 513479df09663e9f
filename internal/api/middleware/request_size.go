package middleware

import (
	"net/http"
)

// DefaultMaxBodySize caps JSON request bodies at 1MB.
const DefaultMaxBodySize int64 = 1 << 20

// RequestSize limits the size of incoming request bodies.
//
// Bodies over maxBytes make the handler's read fail with *http.MaxBytesError,
// which handlers report as 413 Payload Too Large.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				w.Header().Set("Connection", "close")
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

			next.ServeHTTP(w, r)
		})
	}
}
