package logger

import (
	"fmt"
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
	// Folder & File Operations
	// ========================================================================
	KeyFolder     = "folder"      // Folder ID
	KeyPath       = "path"        // File path within a folder
	KeyOldPath    = "old_path"    // Source path for rename/move operations
	KeyNewPath    = "new_path"    // Destination path for rename/move operations
	KeyType       = "type"        // File type: file, directory
	KeySize       = "size"        // File size in bytes
	KeyDeleted    = "deleted"     // Deletion marker

	// ========================================================================
	// Block Exchange
	// ========================================================================
	KeyBlockOffset  = "block_offset"  // Block offset within a file
	KeyBlockSize    = "block_size"    // Block byte length
	KeyBlockHash    = "block_hash"    // Block hash, hex-encoded
	KeyBlockCount   = "block_count"   // Number of blocks in a file
	KeyContentHash  = "content_hash"  // Whole-file content hash
	KeyRequestID    = "request_id"    // BEP request id
	KeyResponseCode = "response_code" // BEP response code

	// ========================================================================
	// Version Vectors
	// ========================================================================
	KeySequence = "sequence"  // Allocated sequence number
	KeyDeviceID = "device_id" // Projected device id

	// ========================================================================
	// I/O Operations
	// ========================================================================
	KeyOffset       = "offset"        // Generic byte offset
	KeyBytesRead    = "bytes_read"    // Actual bytes read
	KeyBytesWritten = "bytes_written" // Actual bytes written

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeySource     = "source"      // Originating collaborator: channel, indexstore, tempfile
	KeyOperation  = "operation"   // Sub-operation type for complex operations
	KeyAttempt    = "attempt"     // Retry attempt number
	KeyMaxRetries = "max_retries" // Maximum retry attempts

	// ========================================================================
	// Index Store
	// ========================================================================
	KeyStoreType = "store_type" // Store backend: memory, badger
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// Folder returns a slog.Attr for a folder ID
func Folder(folder string) slog.Attr {
	return slog.String(KeyFolder, folder)
}

// Path returns a slog.Attr for a file path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// OldPath returns a slog.Attr for source path in rename/move operations
func OldPath(p string) slog.Attr {
	return slog.String(KeyOldPath, p)
}

// NewPath returns a slog.Attr for destination path in rename/move operations
func NewPath(p string) slog.Attr {
	return slog.String(KeyNewPath, p)
}

// TypeStr returns a slog.Attr for file type
func TypeStr(t string) slog.Attr {
	return slog.String(KeyType, t)
}

// Size returns a slog.Attr for file size
func Size(s uint64) slog.Attr {
	return slog.Uint64(KeySize, s)
}

// Deleted returns a slog.Attr for the deletion marker
func Deleted(d bool) slog.Attr {
	return slog.Bool(KeyDeleted, d)
}

// BlockOffset returns a slog.Attr for a block's offset
func BlockOffset(off uint64) slog.Attr {
	return slog.Uint64(KeyBlockOffset, off)
}

// BlockSize returns a slog.Attr for a block's byte length
func BlockSize(size uint32) slog.Attr {
	return slog.Any(KeyBlockSize, size)
}

// BlockHash returns a slog.Attr for a block hash, hex-encoded
func BlockHash(hash []byte) slog.Attr {
	return slog.String(KeyBlockHash, fmt.Sprintf("%x", hash))
}

// BlockCount returns a slog.Attr for a file's block count
func BlockCount(n int) slog.Attr {
	return slog.Int(KeyBlockCount, n)
}

// ContentHash returns a slog.Attr for a file's content hash
func ContentHash(hash string) slog.Attr {
	return slog.String(KeyContentHash, hash)
}

// RequestID returns a slog.Attr for a BEP request id
func RequestID(id int32) slog.Attr {
	return slog.Int64(KeyRequestID, int64(id))
}

// ResponseCode returns a slog.Attr for a BEP response code
func ResponseCode(code int) slog.Attr {
	return slog.Int(KeyResponseCode, code)
}

// Sequence returns a slog.Attr for an allocated sequence number
func Sequence(seq uint64) slog.Attr {
	return slog.Uint64(KeySequence, seq)
}

// DeviceID returns a slog.Attr for a projected device id
func DeviceID(id uint64) slog.Attr {
	return slog.Uint64(KeyDeviceID, id)
}

// Offset returns a slog.Attr for a generic byte offset
func Offset(off uint64) slog.Attr {
	return slog.Uint64(KeyOffset, off)
}

// BytesRead returns a slog.Attr for actual bytes read
func BytesRead(n int) slog.Attr {
	return slog.Int(KeyBytesRead, n)
}

// BytesWritten returns a slog.Attr for actual bytes written
func BytesWritten(n int) slog.Attr {
	return slog.Int(KeyBytesWritten, n)
}

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

// Source returns a slog.Attr for the originating collaborator
func Source(src string) slog.Attr {
	return slog.String(KeySource, src)
}

// Operation returns a slog.Attr for sub-operation type
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Attempt returns a slog.Attr for retry attempt number
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// MaxRetries returns a slog.Attr for maximum retry attempts
func MaxRetries(n int) slog.Attr {
	return slog.Int(KeyMaxRetries, n)
}

// StoreType returns a slog.Attr for index store backend type
func StoreType(t string) slog.Attr {
	return slog.String(KeyStoreType, t)
}
