package telemetry

import (
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitProfiling_Disabled(t *testing.T) {
	shutdown, err := InitProfiling(ProfilingConfig{ProfileTypes: []string{"bogus"}})
	require.NoError(t, err)
	assert.NoError(t, shutdown())
}

func TestInitProfiling_RejectsUnknownType(t *testing.T) {
	_, err := InitProfiling(ProfilingConfig{Enabled: true, ProfileTypes: []string{"cpu", "heap"}})
	assert.EqualError(t, err, "unknown profile type: heap")
}

func TestParseProfileTypes(t *testing.T) {
	types, err := parseProfileTypes([]string{"cpu", "goroutines", "block_count"})
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileGoroutines,
		pyroscope.ProfileBlockCount,
	}, types)
}
