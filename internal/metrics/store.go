package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store metrics
var (
	// StoreEntities is the number of records held by the in-memory store
	StoreEntities = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_entities",
			Help:      "Number of records held by the store",
		},
		[]string{"kind"}, // kind: users|events|registrations
	)

	// StoreOperationDuration records store operation latency
	StoreOperationDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Store operation duration in seconds",
			// Buckets: 10us, 50us, 100us, 500us, 1ms, 5ms, 10ms, 50ms
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		},
		[]string{"operation"},
	)

	// StoreErrors counts store errors by type
	StoreErrors = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Total number of store errors",
		},
		[]string{"operation", "error_type"},
	)
)

// StoreCounts is a snapshot of record counts.
type StoreCounts struct {
	Users         int
	Events        int
	Registrations int
}

// CountsSource is implemented by stores that can report their size.
type CountsSource interface {
	Counts() StoreCounts
}

// StoreCollector periodically publishes store sizes
type StoreCollector struct {
	source   CountsSource
	stopChan chan struct{}
}

// NewStoreCollector creates a new store metrics collector
func NewStoreCollector(source CountsSource) *StoreCollector {
	return &StoreCollector{
		source:   source,
		stopChan: make(chan struct{}),
	}
}

// Start begins collecting store metrics at the specified interval
func (c *StoreCollector) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.collect()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the metrics collector
func (c *StoreCollector) Stop() {
	close(c.stopChan)
}

func (c *StoreCollector) collect() {
	if c.source == nil {
		return
	}
	counts := c.source.Counts()
	StoreEntities.WithLabelValues("users").Set(float64(counts.Users))
	StoreEntities.WithLabelValues("events").Set(float64(counts.Events))
	StoreEntities.WithLabelValues("registrations").Set(float64(counts.Registrations))
}

// RecordOperation records metrics for a store operation.
//
//	start := time.Now()
//	defer func() { metrics.RecordOperation("create_event", start, err) }()
func RecordOperation(operation string, start time.Time, err error) {
	StoreOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err != nil {
		errorType := "error"
		switch {
		case errors.Is(err, context.Canceled):
			errorType = "canceled"
		case errors.Is(err, context.DeadlineExceeded):
			errorType = "timeout"
		}
		StoreErrors.WithLabelValues(operation, errorType).Inc()
	}
}
