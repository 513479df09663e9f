package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type responseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *responseWriter) WriteHeader(statusCode int) {
	if w.status == 0 {
		w.status = statusCode
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

// quietPaths are probed constantly and only logged at debug.
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// RequestLogging logs one line per request through the request-scoped logger,
// falling back to logger when CorrelationID did not run.
func RequestLogging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w}

			next.ServeHTTP(rw, r)

			reqLogger := zerolog.Ctx(r.Context())
			if reqLogger.GetLevel() == zerolog.Disabled {
				reqLogger = &logger
			}

			status := rw.status
			if status == 0 {
				status = http.StatusOK
			}

			var event *zerolog.Event
			switch {
			case quietPaths[r.URL.Path]:
				event = reqLogger.Debug()
			case status >= http.StatusInternalServerError:
				event = reqLogger.Error()
			default:
				event = reqLogger.Info()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", rw.bytes).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
