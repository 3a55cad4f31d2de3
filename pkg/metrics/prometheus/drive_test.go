package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittodrive/pkg/metrics"
)

func TestNewDriveMetrics_Disabled(t *testing.T) {
	metrics.Reset()
	assert.Nil(t, NewDriveMetrics())
	assert.Nil(t, metrics.NewDriveMetrics())
}

func TestDriveMetrics(t *testing.T) {
	metrics.Reset()
	metrics.InitRegistry()
	t.Cleanup(metrics.Reset)

	m := NewDriveMetrics()
	require.NotNil(t, m)

	m.ObserveOperation("mkdir", time.Millisecond, nil)
	m.ObserveOperation("mkdir", time.Millisecond, errors.New("boom"))
	m.ObserveOperation("cat", time.Millisecond, nil)
	m.RecordPermissionDenied("write")
	m.RecordPersist(2*time.Millisecond, 5, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("mkdir", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("mkdir", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.permissionDenied.WithLabelValues("write")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persists.WithLabelValues("success")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.entries))

	m.RecordPersist(time.Millisecond, 9, errors.New("boom"))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.entries))
}

func TestDriveMetrics_NilSafe(t *testing.T) {
	var m *driveMetrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("ls", time.Millisecond, nil)
		m.RecordPermissionDenied("read")
		m.RecordPersist(time.Millisecond, 1, nil)
		m.SetEntries(3)
	})
}

func TestNewDriveMetrics_ThroughConstructor(t *testing.T) {
	metrics.Reset()
	metrics.InitRegistry()
	t.Cleanup(metrics.Reset)

	m := metrics.NewDriveMetrics()
	require.NotNil(t, m)
	metrics.ObserveOperation(m, "ls", time.Millisecond, nil)
	metrics.ObserveOperation(nil, "ls", time.Millisecond, nil)
}
