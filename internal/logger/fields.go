package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements for log aggregation and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Request
	// ========================================================================
	KeyOperation = "operation" // Drive operation: mkdir, write, cat, rm, etc.
	KeyPrincipal = "principal" // Username the request runs as
	KeyUsername  = "username"  // Account being managed (user add, user delete)

	// ========================================================================
	// Entries
	// ========================================================================
	KeyPath        = "path"        // Full entry path
	KeyEntryID     = "entry_id"    // Entry identifier
	KeyKind        = "kind"        // Entry kind: directory, file, app, link
	KeySize        = "size"        // Entry size as reported by Size()
	KeyPermissions = "permissions" // Rendered permission pair (rwxdr-x-)
	KeyProgram     = "program"     // Program name of an app
	KeyEntries     = "entries"     // Number of entries in the tree

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Drive error code name
	KeyRight      = "right"       // Missing right on permission errors

	// ========================================================================
	// Storage Backend
	// ========================================================================
	KeyStoreType = "store_type" // Snapshot store type: memory, badger, s3
	KeyBucket    = "bucket"     // Cloud bucket name (S3)
	KeyKey       = "key"        // Object key in cloud storage
	KeyRegion    = "region"     // Cloud region
	KeyDatabase  = "database"   // Accounts database type: sqlite, postgres
)

// ============================================================================
// Field constructors for type safety
// These functions provide type-safe construction of slog.Attr values.
// ============================================================================

// ----------------------------------------------------------------------------
// Distributed Tracing
// ----------------------------------------------------------------------------

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// ----------------------------------------------------------------------------
// Request
// ----------------------------------------------------------------------------

// Operation returns a slog.Attr for the drive operation
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Principal returns a slog.Attr for the acting username
func Principal(username string) slog.Attr {
	return slog.String(KeyPrincipal, username)
}

// Username returns a slog.Attr for a managed account
func Username(name string) slog.Attr {
	return slog.String(KeyUsername, name)
}

// ----------------------------------------------------------------------------
// Entries
// ----------------------------------------------------------------------------

// Path returns a slog.Attr for an entry path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// EntryID returns a slog.Attr for an entry identifier
func EntryID(id int) slog.Attr {
	return slog.Int(KeyEntryID, id)
}

// Kind returns a slog.Attr for an entry kind
func Kind(kind string) slog.Attr {
	return slog.String(KeyKind, kind)
}

// Size returns a slog.Attr for an entry size
func Size(s int) slog.Attr {
	return slog.Int(KeySize, s)
}

// Permissions returns a slog.Attr for a rendered permission pair
func Permissions(perms string) slog.Attr {
	return slog.String(KeyPermissions, perms)
}

// Program returns a slog.Attr for an app program
func Program(name string) slog.Attr {
	return slog.String(KeyProgram, name)
}

// Entries returns a slog.Attr for the tree size
func Entries(n int) slog.Attr {
	return slog.Int(KeyEntries, n)
}

// ----------------------------------------------------------------------------
// Operation Metadata
// ----------------------------------------------------------------------------

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a drive error code
func ErrorCode(code string) slog.Attr {
	return slog.String(KeyErrorCode, code)
}

// Right returns a slog.Attr for a missing right
func Right(right string) slog.Attr {
	return slog.String(KeyRight, right)
}

// ----------------------------------------------------------------------------
// Storage Backend
// ----------------------------------------------------------------------------

// StoreType returns a slog.Attr for the snapshot store type
func StoreType(t string) slog.Attr {
	return slog.String(KeyStoreType, t)
}

// Bucket returns a slog.Attr for a cloud bucket name
func Bucket(name string) slog.Attr {
	return slog.String(KeyBucket, name)
}

// Key returns a slog.Attr for an object key
func Key(k string) slog.Attr {
	return slog.String(KeyKey, k)
}

// Region returns a slog.Attr for a cloud region
func Region(r string) slog.Attr {
	return slog.String(KeyRegion, r)
}

// Database returns a slog.Attr for the accounts database type
func Database(t string) slog.Attr {
	return slog.String(KeyDatabase, t)
}
