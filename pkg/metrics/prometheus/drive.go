package prometheus

import (
	"time"

	"github.com/marmos91/dittodrive/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterDriveMetricsConstructor(func() metrics.DriveMetrics {
		if m := NewDriveMetrics(); m != nil {
			return m
		}
		return nil
	})
}

// driveMetrics is the Prometheus implementation of metrics.DriveMetrics.
type driveMetrics struct {
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	permissionDenied  *prometheus.CounterVec
	persists          *prometheus.CounterVec
	persistDuration   prometheus.Histogram
	entries           prometheus.Gauge
}

// NewDriveMetrics creates a new Prometheus-backed DriveMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewDriveMetrics() *driveMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &driveMetrics{
		operations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittodrive_operations_total",
				Help: "Total number of drive operations by operation and status",
			},
			[]string{"operation", "status"}, // status: "success", "error"
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dittodrive_operation_duration_milliseconds",
				Help: "Duration of drive operations in milliseconds",
				Buckets: []float64{
					0.01, // 10us - lookups in a warm tree
					0.1,  // 100us
					1,    // 1ms
					5,    // 5ms
					10,   // 10ms - snapshot writes to badger
					50,   // 50ms
					100,  // 100ms
					500,  // 500ms - snapshot writes to S3
					1000, // 1s
				},
			},
			[]string{"operation"},
		),
		permissionDenied: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittodrive_permission_denied_total",
				Help: "Total number of requests refused for a missing right",
			},
			[]string{"right"}, // "read", "write", "execute", "delete"
		),
		persists: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittodrive_snapshot_writes_total",
				Help: "Total number of snapshot writes by status",
			},
			[]string{"status"},
		),
		persistDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dittodrive_snapshot_write_duration_milliseconds",
				Help:    "Duration of snapshot writes in milliseconds",
				Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
			},
		),
		entries: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "dittodrive_entries",
				Help: "Number of entries in the tree",
			},
		),
	}
}

func (m *driveMetrics) ObserveOperation(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, status(err)).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(float64(duration.Microseconds()) / 1000)
}

func (m *driveMetrics) RecordPermissionDenied(right string) {
	if m == nil {
		return
	}
	m.permissionDenied.WithLabelValues(right).Inc()
}

func (m *driveMetrics) RecordPersist(duration time.Duration, entries int, err error) {
	if m == nil {
		return
	}
	m.persists.WithLabelValues(status(err)).Inc()
	m.persistDuration.Observe(float64(duration.Microseconds()) / 1000)
	if err == nil {
		m.entries.Set(float64(entries))
	}
}

func (m *driveMetrics) SetEntries(n int) {
	if m == nil {
		return
	}
	m.entries.Set(float64(n))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
