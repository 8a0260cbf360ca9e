// Package block defines constants and helpers for splitting a byte stream into
// fixed-size, content-addressed blocks.
package block

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// Size is the fixed block size in bytes (128KiB). Every block except the
// last one in a file is exactly this size.
const Size = 128 * 1024

// Info describes one block of a file: its offset, size, and SHA-256 hash.
type Info struct {
	Offset uint64
	Size   uint32
	Hash   [32]byte
}

// HashHex returns the lowercase hex encoding of the block hash.
func (i Info) HashHex() string {
	return hex.EncodeToString(i.Hash[:])
}

// Split reads r to EOF and returns one Info per Size-byte block, hashing each
// block as it is read. The final block may be shorter than Size. A reader
// that yields no bytes produces an empty slice, not a synthetic block.
func Split(r io.Reader) ([]Info, error) {
	var blocks []Info
	buf := make([]byte, Size)
	var offset uint64

	for {
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			h := sha256.Sum256(buf[:n])
			blocks = append(blocks, Info{
				Offset: offset,
				Size:   uint32(n),
				Hash:   h,
			})
			offset += uint64(n)
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("split: read at offset %d: %w", offset, err)
		}
		if n < Size {
			break
		}
	}

	return blocks, nil
}

// ContentHash combines the per-block hashes into the single content hash used
// to identify the whole file: hex(SHA-256(join(",", per-block hex hashes))).
func ContentHash(blocks []Info) string {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.HashHex()
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, ",")))
	return hex.EncodeToString(sum[:])
}
