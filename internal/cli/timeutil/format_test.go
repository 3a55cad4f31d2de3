package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTime(t *testing.T) {
	now := time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)

	assert.Equal(t, "-", formatTimeAt(time.Time{}, now))
	assert.Contains(t, formatTimeAt(now.Add(-2*time.Hour), now), "(2 hours ago)")
	assert.Contains(t, formatTimeAt(now.Add(-2*time.Hour), now), now.Add(-2*time.Hour).Local().Format(LocalTimeFormat))
	assert.Equal(t, "-", FormatTime(time.Time{}))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "4 entries", FormatSize(4, true))
	assert.Equal(t, "5 B", FormatSize(5, false))
	assert.Equal(t, "2.0 kB", FormatSize(2000, false))
}
