package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(
		trace.WithSyncer(exporter),
		trace.WithSampler(trace.AlwaysSample()),
	)
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func TestTracing(t *testing.T) {
	exporter := newTestTracer(t)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	handler := CorrelationID(testLogger())(Tracing(mux))

	req := httptest.NewRequest(http.MethodGet, "/api/events/abc", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name != "GET /api/events/abc" {
		t.Errorf("unexpected span name %q", span.Name)
	}

	attrs := map[string]string{}
	for _, attr := range span.Attributes {
		attrs[string(attr.Key)] = attr.Value.Emit()
	}
	if attrs["http.method"] != "GET" {
		t.Errorf("expected http.method=GET, got %q", attrs["http.method"])
	}
	if attrs["http.status_code"] != "200" {
		t.Errorf("expected http.status_code=200, got %q", attrs["http.status_code"])
	}
	if attrs["http.route"] != "GET /api/events/{id}" {
		t.Errorf("expected http.route pattern, got %q", attrs["http.route"])
	}
	if attrs["request_id"] != "req-123" {
		t.Errorf("expected request_id=req-123, got %q", attrs["request_id"])
	}
	if span.Status.Code != codes.Ok {
		t.Errorf("expected Ok status, got %v", span.Status.Code)
	}
}

func TestTracingStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		code   codes.Code
	}{
		{http.StatusNotFound, codes.Ok},
		{http.StatusInternalServerError, codes.Error},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			exporter := newTestTracer(t)
			handler := Tracing(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/events/x", nil))

			spans := exporter.GetSpans()
			if len(spans) != 1 {
				t.Fatalf("expected 1 span, got %d", len(spans))
			}
			if spans[0].Status.Code != tt.code {
				t.Errorf("expected span status %v, got %v", tt.code, spans[0].Status.Code)
			}
		})
	}
}

func TestTracingResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	tw := &tracingResponseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	tw.WriteHeader(http.StatusCreated)

	if tw.statusCode != http.StatusCreated {
		t.Errorf("expected statusCode=201, got %d", tw.statusCode)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected underlying recorder Code=201, got %d", rec.Code)
	}
}
