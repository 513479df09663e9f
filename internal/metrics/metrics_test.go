package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit(t *testing.T) {
	Init("v1.0.0", "abc123", "2026-01-30")

	if testutil.CollectAndCount(AppInfo) == 0 {
		t.Error("AppInfo metric should be registered")
	}
}

func TestHTTPMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	wrapped := HTTPMiddleware(handler)

	req := httptest.NewRequest("GET", "/test", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if testutil.CollectAndCount(HTTPRequestsTotal) == 0 {
		t.Error("HTTPRequestsTotal should have recorded at least one request")
	}
	if testutil.CollectAndCount(HTTPRequestDuration) == 0 {
		t.Error("HTTPRequestDuration should have recorded at least one request")
	}
}

func TestHTTPMiddlewareStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"OK", http.StatusOK},
		{"Not Found", http.StatusNotFound},
		{"Internal Server Error", http.StatusInternalServerError},
		{"Unauthorized", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			})

			wrapped := HTTPMiddleware(handler)
			req := httptest.NewRequest("GET", "/test", nil)
			rec := httptest.NewRecorder()

			wrapped.ServeHTTP(rec, req)

			if rec.Code != tt.statusCode {
				t.Errorf("Expected status %d, got %d", tt.statusCode, rec.Code)
			}
		})
	}
}

type fixedCounts StoreCounts

func (f fixedCounts) Counts() StoreCounts { return StoreCounts(f) }

func TestStoreCollector(t *testing.T) {
	collector := NewStoreCollector(fixedCounts{Users: 3, Events: 2, Registrations: 5})
	collector.collect()

	if got := testutil.ToFloat64(StoreEntities.WithLabelValues("users")); got != 3 {
		t.Errorf("users gauge = %v, want 3", got)
	}
	if got := testutil.ToFloat64(StoreEntities.WithLabelValues("registrations")); got != 5 {
		t.Errorf("registrations gauge = %v, want 5", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		collector.Start(ctx, time.Hour)
		close(done)
	}()
	cancel()
	<-done
}

func TestStoreCollectorNilSource(t *testing.T) {
	collector := NewStoreCollector(nil)
	collector.collect()
	collector.Stop()
}

func TestRecordOperation(t *testing.T) {
	RecordOperation("test_get", time.Now(), nil)
	if testutil.CollectAndCount(StoreOperationDuration) == 0 {
		t.Error("StoreOperationDuration should have recorded at least one operation")
	}

	before := testutil.ToFloat64(StoreErrors.WithLabelValues("test_failed", "canceled"))
	RecordOperation("test_failed", time.Now(), context.Canceled)
	RecordOperation("test_failed", time.Now(), errors.New("boom"))
	if got := testutil.ToFloat64(StoreErrors.WithLabelValues("test_failed", "canceled")); got != before+1 {
		t.Errorf("canceled errors = %v, want %v", got, before+1)
	}
}

func TestResponseWriterStatusCode(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec}

	_, _ = rw.Write([]byte("test"))

	if rw.statusCode != http.StatusOK {
		t.Errorf("Expected status code 200, got %d", rw.statusCode)
	}
}

func TestResponseWriterBytesWritten(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec}

	content := []byte("Hello, World!")
	_, _ = rw.Write(content)

	if rw.bytesWritten != len(content) {
		t.Errorf("Expected %d bytes written, got %d", len(content), rw.bytesWritten)
	}
}
