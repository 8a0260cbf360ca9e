// Package datasource implements the DataSource contract: a restartable,
// randomly-readable, lazily-hashed byte source used as the origin of an
// upload's block list.
package datasource

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/blockpeer/syncengine/pkg/block"
	"github.com/blockpeer/syncengine/pkg/engineerrors"
)

// DataSource exposes a file's content as a set of fixed-size, content
// addressed blocks, computed lazily and cached for the lifetime of the
// value. It is safe for concurrent use: Block may be called concurrently
// for different offsets because every call opens its own stream.
type DataSource interface {
	// Open returns a fresh, independent reader positioned at offset 0.
	Open() (io.ReadCloser, error)

	// Size returns the total byte length of the source.
	Size() (uint64, error)

	// Blocks returns the ordered block list.
	Blocks() ([]block.Info, error)

	// Hashes returns the set of block hashes, hex-encoded.
	Hashes() (map[string]struct{}, error)

	// ContentHash returns the source's content hash.
	ContentHash() (string, error)

	// Block reads exactly size bytes at offset and verifies their SHA-256
	// matches expectedHex. A mismatch is an engineerrors.ErrHashMismatch
	// invariant violation: the underlying content changed beneath us.
	Block(offset uint64, size uint32, expectedHex string) ([]byte, error)
}

// cachedFields holds the lazily materialized, memoized derived state shared
// by every DataSource implementation.
type cachedFields struct {
	once        sync.Once
	err         error
	size        uint64
	blocks      []block.Info
	hashes      map[string]struct{}
	contentHash string
}

func (c *cachedFields) materialize(open func() (io.ReadCloser, error)) error {
	c.once.Do(func() {
		r, err := open()
		if err != nil {
			c.err = fmt.Errorf("datasource: open for materialization: %w", err)
			return
		}
		defer r.Close()

		blocks, err := block.Split(r)
		if err != nil {
			c.err = err
			return
		}

		hashes := make(map[string]struct{}, len(blocks))
		var size uint64
		for _, b := range blocks {
			hashes[b.HashHex()] = struct{}{}
			size += uint64(b.Size)
		}

		c.blocks = blocks
		c.hashes = hashes
		c.size = size
		c.contentHash = block.ContentHash(blocks)
	})
	return c.err
}

// verifyBlock opens a fresh stream with open, reads size bytes at offset
// from it and checks the hash. Shared by every implementation's Block method.
func verifyBlock(open func() (io.ReadCloser, error), offset uint64, size uint32, expectedHex string) ([]byte, error) {
	r, err := open()
	if err != nil {
		return nil, fmt.Errorf("datasource: open for block read: %w", err)
	}
	defer r.Close()

	if offset > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(offset)); err != nil {
			return nil, fmt.Errorf("datasource: skip to offset %d: %w", offset, err)
		}
	}

	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("datasource: read %d bytes at offset %d: %w", size, offset, err)
	}

	got := sha256.Sum256(buf)
	gotHex := hex.EncodeToString(got[:])
	if gotHex != expectedHex {
		return nil, fmt.Errorf("%w: expected %s, got %s at offset %d", engineerrors.ErrHashMismatch, expectedHex, gotHex, offset)
	}

	return buf, nil
}

// ============================================================================
// In-memory implementation
// ============================================================================

// memorySource is a DataSource backed by an in-memory byte slice.
type memorySource struct {
	data []byte
	cachedFields
}

// NewInMemory returns a DataSource over data. data is not copied; the caller
// must not mutate it after constructing the source.
func NewInMemory(data []byte) DataSource {
	return &memorySource{data: data}
}

func (m *memorySource) open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.data)), nil
}

func (m *memorySource) Open() (io.ReadCloser, error) { return m.open() }

func (m *memorySource) Size() (uint64, error) {
	if err := m.materialize(m.open); err != nil {
		return 0, err
	}
	return m.size, nil
}

func (m *memorySource) Blocks() ([]block.Info, error) {
	if err := m.materialize(m.open); err != nil {
		return nil, err
	}
	return m.blocks, nil
}

func (m *memorySource) Hashes() (map[string]struct{}, error) {
	if err := m.materialize(m.open); err != nil {
		return nil, err
	}
	return m.hashes, nil
}

func (m *memorySource) ContentHash() (string, error) {
	if err := m.materialize(m.open); err != nil {
		return "", err
	}
	return m.contentHash, nil
}

func (m *memorySource) Block(offset uint64, size uint32, expectedHex string) ([]byte, error) {
	return verifyBlock(m.open, offset, size, expectedHex)
}

// ============================================================================
// On-disk implementation
// ============================================================================

// fileSource is a DataSource backed by a file on disk. Each Open/Block call
// does its own os.Open so concurrent random-access reads never share a file
// cursor.
type fileSource struct {
	path string
	cachedFields
}

// NewOnDisk returns a DataSource over the file at path.
func NewOnDisk(path string) DataSource {
	return &fileSource{path: path}
}

func (f *fileSource) open() (io.ReadCloser, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.path, err)
	}
	return file, nil
}

func (f *fileSource) Open() (io.ReadCloser, error) { return f.open() }

func (f *fileSource) Size() (uint64, error) {
	if info, err := os.Stat(f.path); err == nil {
		return uint64(info.Size()), nil
	}
	if err := f.materialize(f.open); err != nil {
		return 0, err
	}
	return f.size, nil
}

func (f *fileSource) Blocks() ([]block.Info, error) {
	if err := f.materialize(f.open); err != nil {
		return nil, err
	}
	return f.blocks, nil
}

func (f *fileSource) Hashes() (map[string]struct{}, error) {
	if err := f.materialize(f.open); err != nil {
		return nil, err
	}
	return f.hashes, nil
}

func (f *fileSource) ContentHash() (string, error) {
	if err := f.materialize(f.open); err != nil {
		return "", err
	}
	return f.contentHash, nil
}

func (f *fileSource) Block(offset uint64, size uint32, expectedHex string) ([]byte, error) {
	return verifyBlock(f.open, offset, size, expectedHex)
}
