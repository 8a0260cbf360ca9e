package upload

import (
	"fmt"
	"io"
	"os"

	"github.com/blockpeer/syncengine/pkg/bufpool"
	"github.com/blockpeer/syncengine/pkg/datasource"
	"github.com/blockpeer/syncengine/pkg/tempfile"
)

// ByteSource names the one mechanism PushFile uses to obtain a file's bytes.
// Construct one with Bytes, File, or Stream.
type ByteSource interface {
	open(tp tempfile.Provider) (datasource.DataSource, error)
}

type bytesSource struct{ data []byte }

// Bytes wraps in-memory content already held by the caller.
func Bytes(b []byte) ByteSource {
	return bytesSource{data: b}
}

func (s bytesSource) open(tempfile.Provider) (datasource.DataSource, error) {
	return datasource.NewInMemory(s.data), nil
}

type fileSource struct{ path string }

// File wraps content already resting on disk at path.
func File(path string) ByteSource {
	return fileSource{path: path}
}

func (s fileSource) open(tempfile.Provider) (datasource.DataSource, error) {
	return datasource.NewOnDisk(s.path), nil
}

type streamSource struct{ r io.Reader }

// Stream wraps a one-shot reader. It is spilled to a provider-issued temp
// file so the resulting DataSource is restartable and randomly readable.
func Stream(r io.Reader) ByteSource {
	return streamSource{r: r}
}

func (s streamSource) open(tp tempfile.Provider) (datasource.DataSource, error) {
	path, err := tp.CreateTempFile()
	if err != nil {
		return nil, fmt.Errorf("upload: create temp file: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("upload: open temp file %s: %w", path, err)
	}
	copyBuf := bufpool.Get(bufpool.DefaultLargeSize)
	defer bufpool.Put(copyBuf)
	if _, err := io.CopyBuffer(f, s.r, copyBuf); err != nil {
		f.Close()
		return nil, fmt.Errorf("upload: spill stream to %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("upload: close temp file %s: %w", path, err)
	}

	return datasource.NewOnDisk(path), nil
}
