package metrics

import (
	"time"
)

// DriveMetrics provides observability for drive operations.
//
// Pass nil to disable metrics collection with zero overhead.
//
// Example usage:
//
//	metrics.InitRegistry()
//	svc := service.New(fs, users, store, metrics.NewDriveMetrics())
type DriveMetrics interface {
	// ObserveOperation records a completed operation.
	//
	// Parameters:
	//   - operation: operation name (e.g., "mkdir", "cat", "rm")
	//   - duration: time taken to serve the request
	//   - err: error returned to the caller, nil on success
	ObserveOperation(operation string, duration time.Duration, err error)

	// RecordPermissionDenied counts a request refused for lacking a right.
	//
	// Parameters:
	//   - right: the missing right ("read", "write", "execute", "delete")
	RecordPermissionDenied(right string)

	// RecordPersist records one snapshot write to the store.
	RecordPersist(duration time.Duration, entries int, err error)

	// SetEntries reports the number of entries in the tree.
	SetEntries(n int)
}

// NewDriveMetrics creates a Prometheus-backed DriveMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called) or the
// prometheus package was not linked in.
func NewDriveMetrics() DriveMetrics {
	if !IsEnabled() || newPrometheusDriveMetrics == nil {
		return nil
	}
	return newPrometheusDriveMetrics()
}

// newPrometheusDriveMetrics is set by pkg/metrics/prometheus. The
// indirection keeps this package free of the implementation.
var newPrometheusDriveMetrics func() DriveMetrics

// RegisterDriveMetricsConstructor registers the Prometheus constructor.
// Called by pkg/metrics/prometheus during package initialization.
func RegisterDriveMetricsConstructor(constructor func() DriveMetrics) {
	newPrometheusDriveMetrics = constructor
}

// ObserveOperation records an operation on m if m is non-nil.
func ObserveOperation(m DriveMetrics, operation string, duration time.Duration, err error) {
	if m != nil {
		m.ObserveOperation(operation, duration, err)
	}
}

// RecordPermissionDenied counts a denial on m if m is non-nil.
func RecordPermissionDenied(m DriveMetrics, right string) {
	if m != nil {
		m.RecordPermissionDenied(right)
	}
}

// RecordPersist records a snapshot write on m if m is non-nil.
func RecordPersist(m DriveMetrics, duration time.Duration, entries int, err error) {
	if m != nil {
		m.RecordPersist(duration, entries, err)
	}
}

// SetEntries reports the tree size on m if m is non-nil.
func SetEntries(m DriveMetrics, n int) {
	if m != nil {
		m.SetEntries(n)
	}
}
