// Package engineerrors defines the sentinel errors and contextual wrapper
// used across the block-exchange engine.
package engineerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers should match these with errors.Is through the
// Error wrapper below.
var (
	// ErrFolderNotShared indicates the caller asked to push into a folder
	// the message channel has no subscription for.
	ErrFolderNotShared = errors.New("folder not shared on channel")

	// ErrRecordMismatch indicates a supplied FileInfo's folder/path does not
	// match the operation it was passed to.
	ErrRecordMismatch = errors.New("file record does not match folder/path")

	// ErrHashMismatch indicates DataSource.Block read bytes whose SHA-256
	// does not match the hash the caller expected.
	ErrHashMismatch = errors.New("block hash mismatch")

	// ErrContentMissing indicates a DataSource has no bytes for a requested
	// offset/size pair.
	ErrContentMissing = errors.New("requested block range not available")

	// ErrAlreadyClosed indicates Close was called more than once on the
	// same Observer.
	ErrAlreadyClosed = errors.New("observer already closed")

	// ErrUploadFailed is surfaced by WaitForProgressUpdate/WaitForComplete
	// once upload_error has been set.
	ErrUploadFailed = errors.New("upload failed")

	// ErrWaitInterrupted indicates a wait on the progress condition was
	// interrupted by context cancellation or coordinator shutdown.
	ErrWaitInterrupted = errors.New("wait interrupted")
)

// Error wraps a sentinel error with the folder/path context an engine
// operation was acting on.
type Error struct {
	Op     string
	Folder string
	Path   string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("engine %s: %s (folder=%s, path=%s)", e.Op, e.Err, e.Folder, e.Path)
}

// Unwrap returns the wrapped sentinel error, enabling errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with operation/folder/path context.
func New(op, folder, path string, err error) *Error {
	return &Error{Op: op, Folder: folder, Path: path, Err: err}
}
