package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Togather-Foundation/eventreg/internal/api"

// Tracing starts a server span per request, continuing any W3C trace context
// sent by the caller. The span carries method, URL, status and the request id
// when CorrelationID ran first. Responses with status >= 500 mark the span as
// an error.
func Tracing(next http.Handler) http.Handler {
	tracer := otel.Tracer(tracerName)
	propagator := otel.GetTextMapPropagator()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Extract trace context from incoming request headers
		ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		// Start span with semantic conventions for HTTP requests
		spanName := r.Method + " " + r.URL.Path
		ctx, span := tracer.Start(ctx, spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPMethod(r.Method),
				semconv.HTTPURL(r.URL.String()),
				attribute.String("http.user_agent", r.UserAgent()),
				semconv.HTTPScheme(schemeFromRequest(r)),
				semconv.NetHostName(r.Host),
			),
		)
		defer span.End()

		// Add correlation ID to span if available (set by CorrelationID middleware)
		if requestID := GetRequestID(ctx); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}

		// Wrap response writer to capture status code
		ww := &tracingResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK, // Default to 200 if not explicitly set
		}

		req := r.WithContext(ctx)
		next.ServeHTTP(ww, req)

		span.SetAttributes(semconv.HTTPStatusCode(ww.statusCode))
		if req.Pattern != "" {
			span.SetAttributes(semconv.HTTPRoute(req.Pattern))
		}

		if ww.statusCode >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(ww.statusCode))
		} else {
			span.SetStatus(codes.Ok, "")
		}
	})
}

// tracingResponseWriter wraps http.ResponseWriter to capture the status code
type tracingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *tracingResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *tracingResponseWriter) Write(b []byte) (int, error) {
	return w.ResponseWriter.Write(b)
}

// schemeFromRequest determines the HTTP scheme (http or https) from the request
func schemeFromRequest(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
