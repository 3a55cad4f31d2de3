// Package timeutil provides time formatting utilities for CLI output.
package timeutil

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// LocalTimeFormat is the format used for displaying local times in CLI output.
const LocalTimeFormat = "Mon Jan 2 15:04:05 2006"

// FormatTime returns t in local time followed by its age, e.g.
// "Mon Mar 4 10:00:00 2024 (2 hours ago)". The zero time renders as "-".
func FormatTime(t time.Time) string {
	return formatTimeAt(t, time.Now())
}

func formatTimeAt(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", t.Local().Format(LocalTimeFormat), humanize.RelTime(t, now, "ago", "from now"))
}

// FormatSize renders an entry size. Directories count entries, not bytes.
func FormatSize(size int, directory bool) string {
	if directory {
		return fmt.Sprintf("%d entries", size)
	}
	return humanize.Bytes(uint64(size))
}
