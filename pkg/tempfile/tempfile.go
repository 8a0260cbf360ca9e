// Package tempfile implements the TempFileProvider collaborator: a place to
// spill a streamed byte source so it becomes restartable and randomly
// readable before it is handed to a DataSource.
package tempfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Provider issues paths for temporary upload staging files.
type Provider interface {
	// CreateTempFile reserves and returns the path to a new, empty temp
	// file. The caller owns the file and is responsible for writing to it
	// and, per the engine's resource-lifetime policy, for any eventual
	// cleanup.
	CreateTempFile() (string, error)
}

// FSProvider is a Provider backed by a directory on the local filesystem.
type FSProvider struct {
	baseDir string
}

// NewFSProvider returns a Provider that creates files under baseDir,
// creating the directory (and its parents) if it does not already exist.
func NewFSProvider(baseDir string) (*FSProvider, error) {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("tempfile: create base dir %s: %w", baseDir, err)
	}
	return &FSProvider{baseDir: baseDir}, nil
}

// CreateTempFile implements Provider.
func (p *FSProvider) CreateTempFile() (string, error) {
	path := filepath.Join(p.baseDir, "upload-"+uuid.NewString()+".tmp")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("tempfile: create %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("tempfile: close %s: %w", path, err)
	}

	return path, nil
}
