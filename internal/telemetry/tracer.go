package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanPrefixDrive = "drive."
	SpanPrefixStore = "store."
)

// Attribute keys.
const (
	AttrOperation   = "drive.operation"
	AttrPrincipal   = "drive.principal"
	AttrPath        = "drive.path"
	AttrEntryID     = "drive.entry.id"
	AttrKind        = "drive.entry.kind"
	AttrSize        = "drive.entry.size"
	AttrPermissions = "drive.entry.permissions"
	AttrErrorCode   = "drive.error_code"
	AttrEntries     = "drive.entries"
	AttrStoreType   = "store.type"
	AttrBucket      = "store.bucket"
	AttrStorageKey  = "store.key"
)

func Operation(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

func Principal(username string) attribute.KeyValue {
	return attribute.String(AttrPrincipal, username)
}

func Path(path string) attribute.KeyValue {
	return attribute.String(AttrPath, path)
}

func EntryID(id int) attribute.KeyValue {
	return attribute.Int(AttrEntryID, id)
}

func Kind(kind string) attribute.KeyValue {
	return attribute.String(AttrKind, kind)
}

func Size(size int) attribute.KeyValue {
	return attribute.Int(AttrSize, size)
}

func Permissions(perms string) attribute.KeyValue {
	return attribute.String(AttrPermissions, perms)
}

func ErrorCode(code string) attribute.KeyValue {
	return attribute.String(AttrErrorCode, code)
}

func Entries(n int) attribute.KeyValue {
	return attribute.Int(AttrEntries, n)
}

func StoreType(t string) attribute.KeyValue {
	return attribute.String(AttrStoreType, t)
}

func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

func StorageKey(key string) attribute.KeyValue {
	return attribute.String(AttrStorageKey, key)
}

// Entry describes the entry an operation resolved.
func Entry(id int, kind string, size int, perms string) []attribute.KeyValue {
	return []attribute.KeyValue{EntryID(id), Kind(kind), Size(size), Permissions(perms)}
}

// StartDriveSpan starts a span for a drive operation run by principal.
func StartDriveSpan(ctx context.Context, operation, principal string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+2)
	allAttrs = append(allAttrs, Operation(operation), Principal(principal))
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, SpanPrefixDrive+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(allAttrs...),
	)
}

// StartStoreSpan starts a span for a snapshot store call.
func StartStoreSpan(ctx context.Context, operation, storeType string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+1)
	allAttrs = append(allAttrs, StoreType(storeType))
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, SpanPrefixStore+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(allAttrs...),
	)
}
