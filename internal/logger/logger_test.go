package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput redirects text output at info level to a buffer until the
// test ends.
func captureOutput(tb testing.TB) *bytes.Buffer {
	tb.Helper()
	buf := new(bytes.Buffer)

	mu.Lock()
	prevOutput, prevColor, prevFormat := output, color, format
	output, color, format = buf, false, "text"
	mu.Unlock()
	prevLevel := level.Level()
	level.Set(slog.LevelInfo)
	rebuild()

	tb.Cleanup(func() {
		mu.Lock()
		output, color, format = prevOutput, prevColor, prevFormat
		mu.Unlock()
		level.Set(prevLevel)
		rebuild()
	})
	return buf
}

func decodeJSON(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	return entry
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level   string
		visible []string
		hidden  []string
	}{
		{"DEBUG", []string{"debug message", "info message", "warn message", "error message"}, nil},
		{"INFO", []string{"info message", "warn message", "error message"}, []string{"debug message"}},
		{"WARN", []string{"warn message", "error message"}, []string{"debug message", "info message"}},
		{"ERROR", []string{"error message"}, []string{"debug message", "info message", "warn message"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf := captureOutput(t)

			SetLevel(tt.level)
			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")

			out := buf.String()
			for _, s := range tt.visible {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.hidden {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	t.Run("CaseInsensitive", func(t *testing.T) {
		buf := captureOutput(t)

		SetLevel("DeBuG")
		Debug("walking /docs")
		assert.Contains(t, buf.String(), "walking /docs")
	})

	t.Run("IgnoresInvalidValues", func(t *testing.T) {
		buf := captureOutput(t)

		SetLevel("INFO")
		SetLevel("LOUD")
		Debug("hidden")
		Info("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"Warn", slog.LevelWarn, true},
		{"ERROR", slog.LevelError, true},
		{"TRACE", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseLevel(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestTextFormat(t *testing.T) {
	t.Run("TimestampAndLevel", func(t *testing.T) {
		buf := captureOutput(t)

		Warn("snapshot write slow")
		assert.Regexp(t, `^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] \[WARN\] snapshot write slow`, buf.String())
	})

	t.Run("StructuredFields", func(t *testing.T) {
		buf := captureOutput(t)

		Info("entry created", Path("/docs/a.txt"), Size(5), Kind("file"))

		out := buf.String()
		assert.Contains(t, out, "path=/docs/a.txt")
		assert.Contains(t, out, "size=5")
		assert.Contains(t, out, "kind=file")
	})

	t.Run("QuotesValuesWithSpaces", func(t *testing.T) {
		buf := captureOutput(t)

		Info("rendered", "line", "-rw-dr--- a.txt")
		assert.Contains(t, buf.String(), `line="-rw-dr--- a.txt"`)
	})

	t.Run("Groups", func(t *testing.T) {
		buf := captureOutput(t)

		get().With("request", "r1").WithGroup("store").Info("saved", "type", "badger")
		Info("loaded", slog.Group("store", "entries", 3))

		out := buf.String()
		assert.Contains(t, out, "request=r1")
		assert.Contains(t, out, "store.type=badger")
		assert.Contains(t, out, "store.entries=3")
	})

	t.Run("NilErrorOmitted", func(t *testing.T) {
		buf := captureOutput(t)

		Info("done", Err(nil))
		assert.NotContains(t, buf.String(), "error=")
	})
}

func TestJSONFormat(t *testing.T) {
	buf := captureOutput(t)

	require.NoError(t, Init(Config{Format: "JSON"}))
	Info("entry removed", Path("/tmp/x"), Err(errors.New("boom")))

	entry := decodeJSON(t, buf)
	assert.Equal(t, "entry removed", entry["msg"])
	assert.Equal(t, "/tmp/x", entry[KeyPath])
	assert.Equal(t, "boom", entry[KeyError])
	assert.Contains(t, entry, "time")

	buf.Reset()
	require.NoError(t, Init(Config{Format: "xml"}))
	Info("still json")
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestContextLogging(t *testing.T) {
	t.Run("InjectsLogContext", func(t *testing.T) {
		buf := captureOutput(t)
		require.NoError(t, Init(Config{Format: "json"}))

		lc := NewLogContext("cat", "alice").WithPath("/docs/a.txt").WithTrace("abc123", "xyz789")
		WarnCtx(WithContext(context.Background(), lc), "slow request", "extra", "value")

		entry := decodeJSON(t, buf)
		assert.Equal(t, "abc123", entry[KeyTraceID])
		assert.Equal(t, "xyz789", entry[KeySpanID])
		assert.Equal(t, "cat", entry[KeyOperation])
		assert.Equal(t, "alice", entry[KeyPrincipal])
		assert.Equal(t, "/docs/a.txt", entry[KeyPath])
		assert.Equal(t, "value", entry["extra"])
	})

	t.Run("OmitsEmptyFields", func(t *testing.T) {
		buf := captureOutput(t)
		require.NoError(t, Init(Config{Format: "json"}))

		ErrorCtx(WithContext(context.Background(), NewLogContext("stats", "root")), "failed")

		entry := decodeJSON(t, buf)
		assert.Equal(t, "stats", entry[KeyOperation])
		assert.NotContains(t, entry, KeyTraceID)
		assert.NotContains(t, entry, KeyPath)
	})

	t.Run("ContextWithoutLogContext", func(t *testing.T) {
		buf := captureOutput(t)

		require.NotPanics(t, func() {
			//nolint:staticcheck // nil context is tolerated
			WarnCtx(nil, "nil context")
			WarnCtx(context.Background(), "plain context")
		})
		assert.Contains(t, buf.String(), "nil context")
		assert.Contains(t, buf.String(), "plain context")
	})

	t.Run("DebugCtxFiltered", func(t *testing.T) {
		buf := captureOutput(t)

		DebugCtx(context.Background(), "hidden")
		assert.Empty(t, buf.String())
	})
}

func TestLogContext(t *testing.T) {
	lc := NewLogContext("mkdir", "bob")
	assert.False(t, lc.StartTime.IsZero())
	assert.GreaterOrEqual(t, lc.DurationMs(), 0.0)

	withPath := lc.WithPath("/home/bob")
	assert.Equal(t, "/home/bob", withPath.Path)
	assert.Empty(t, lc.Path)
	assert.Equal(t, "bob", withPath.Principal)

	var nilCtx *LogContext
	assert.Nil(t, nilCtx.Clone())
	assert.Nil(t, nilCtx.WithPath("/"))
	assert.Zero(t, nilCtx.DurationMs())
	assert.Nil(t, FromContext(context.Background()))
}

func TestConcurrentLogging(t *testing.T) {
	buf := captureOutput(t)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				Info("concurrent", EntryID(i))
			}
			if i%2 == 0 {
				SetLevel("DEBUG")
			} else {
				SetLevel("INFO")
			}
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, strings.Count(buf.String(), "concurrent"), 200)
}

func TestInit(t *testing.T) {
	t.Run("File", func(t *testing.T) {
		captureOutput(t)

		path := filepath.Join(t.TempDir(), "drive.log")
		require.NoError(t, Init(Config{Level: "DEBUG", Format: "text", Output: path}))
		Debug("to file")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "to file")
	})

	t.Run("UnwritableFile", func(t *testing.T) {
		err := Init(Config{Output: filepath.Join(t.TempDir(), "missing", "drive.log")})
		assert.Error(t, err)
	})

	t.Run("Empty", func(t *testing.T) {
		captureOutput(t)
		assert.NoError(t, Init(Config{}))
	})
}

func BenchmarkLogDisabled(b *testing.B) {
	captureOutput(b)
	SetLevel("ERROR")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Debug("lookup", Path("/docs"))
	}
}

func BenchmarkLogCtx(b *testing.B) {
	captureOutput(b)
	SetLevel("DEBUG")
	ctx := WithContext(context.Background(), NewLogContext("ls", "alice"))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		DebugCtx(ctx, "listed", Entries(i))
	}
}
