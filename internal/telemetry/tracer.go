package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for block-exchange operations.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	// ========================================================================
	// Folder/file attributes
	// ========================================================================
	AttrFolder   = "bep.folder"
	AttrPath     = "bep.path"
	AttrFileType = "bep.file_type"
	AttrSize     = "bep.size"
	AttrDeleted  = "bep.deleted"

	// ========================================================================
	// Block attributes
	// ========================================================================
	AttrBlockOffset = "block.offset"
	AttrBlockSize   = "block.size"
	AttrBlockHash   = "block.hash"
	AttrBlockCount  = "block.count"

	// ========================================================================
	// Version vector attributes
	// ========================================================================
	AttrSequence  = "version.sequence"
	AttrDeviceID  = "version.device_id"
	AttrVectorLen = "version.counter_count"

	// ========================================================================
	// Request/response attributes
	// ========================================================================
	AttrRequestID   = "bep.request_id"
	AttrResponseErr = "bep.response_error"

	// ========================================================================
	// Index store attributes
	// ========================================================================
	AttrContentHash = "indexstore.content_hash"
)

// Span names for operations. Format: <component>.<operation>.
const (
	SpanPushFile       = "upload.push_file"
	SpanPushDir        = "upload.push_dir"
	SpanPushDelete     = "upload.push_delete"
	SpanEmitIndex      = "upload.emit_index_update"
	SpanServeRequest   = "upload.serve_request"
	SpanWaitProgress   = "upload.wait_for_progress_update"
	SpanWaitComplete   = "upload.wait_for_complete"
	SpanObserverClose  = "upload.close"
	SpanDataSourceOpen = "datasource.open"
	SpanDataSourceRead = "datasource.block"
	SpanIndexPush      = "indexstore.push_record"
)

// Folder returns an attribute for the folder name.
func Folder(folder string) attribute.KeyValue {
	return attribute.String(AttrFolder, folder)
}

// Path returns an attribute for the file path.
func Path(path string) attribute.KeyValue {
	return attribute.String(AttrPath, path)
}

// FileSize returns an attribute for a file's total size.
func FileSize(size uint64) attribute.KeyValue {
	return attribute.Int64(AttrSize, int64(size))
}

// BlockOffset returns an attribute for a block's offset.
func BlockOffset(offset uint64) attribute.KeyValue {
	return attribute.Int64(AttrBlockOffset, int64(offset))
}

// BlockSize returns an attribute for a block's byte length.
func BlockSize(size uint32) attribute.KeyValue {
	return attribute.Int64(AttrBlockSize, int64(size))
}

// BlockHash returns an attribute for a block's hex-encoded hash.
func BlockHash(hash []byte) attribute.KeyValue {
	return attribute.String(AttrBlockHash, fmt.Sprintf("%x", hash))
}

// BlockCount returns an attribute for a file's block count.
func BlockCount(n int) attribute.KeyValue {
	return attribute.Int(AttrBlockCount, n)
}

// Sequence returns an attribute for an allocated sequence number.
func Sequence(seq uint64) attribute.KeyValue {
	return attribute.Int64(AttrSequence, int64(seq))
}

// DeviceID returns an attribute for a projected device-id counter key.
func DeviceID(id uint64) attribute.KeyValue {
	return attribute.Int64(AttrDeviceID, int64(id))
}

// RequestID returns an attribute for a BEP request id.
func RequestID(id int32) attribute.KeyValue {
	return attribute.Int64(AttrRequestID, int64(id))
}

// ContentHash returns an attribute for a file's content hash.
func ContentHash(hash string) attribute.KeyValue {
	return attribute.String(AttrContentHash, hash)
}

// StartUploadSpan starts a span for an upload coordinator operation.
func StartUploadSpan(ctx context.Context, name, folder, path string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{Folder(folder), Path(path)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, name, trace.WithAttributes(allAttrs...))
}

// StartDataSourceSpan starts a span for a DataSource operation.
func StartDataSourceSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, name, trace.WithAttributes(attrs...))
}

// StartIndexStoreSpan starts a span for an IndexStore operation.
func StartIndexStoreSpan(ctx context.Context, name, folder, path string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{Folder(folder), Path(path)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, name, trace.WithAttributes(allAttrs...))
}
