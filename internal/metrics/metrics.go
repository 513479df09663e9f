package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all eventreg metrics
const namespace = "eventreg"

// Registry is the global Prometheus registry for all metrics
var Registry = prometheus.NewRegistry()

// AppInfo is a gauge that exposes application version information as labels
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// AuthAttemptsTotal counts signup and login attempts by outcome.
var AuthAttemptsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of signup and login attempts",
	},
	[]string{"operation", "result"}, // operation: register|login, result: success|failure
)

// EventOperationsTotal counts event catalog operations by outcome.
var EventOperationsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_operations_total",
		Help:      "Total number of event operations",
	},
	[]string{"operation", "result"}, // operation: create|update|delete|register, result: success|not_found|forbidden|conflict|invalid|error
)

// NotificationsTotal counts outbound email notifications by kind and delivery status.
var NotificationsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of email notifications attempted",
	},
	[]string{"kind", "status"}, // status: sent|failed
)

// Init registers runtime collectors and sets version information
func Init(version, commit, buildDate string) {
	// Register default Go metrics (memory, goroutines, GC, etc.)
	Registry.MustRegister(collectors.NewGoCollector())

	// Register process metrics (CPU, memory, file descriptors)
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}
