package upload

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockpeer/syncengine/pkg/bep"
	"github.com/blockpeer/syncengine/pkg/block"
	"github.com/blockpeer/syncengine/pkg/channel"
	"github.com/blockpeer/syncengine/pkg/engineerrors"
	"github.com/blockpeer/syncengine/pkg/indexstore"
	"github.com/blockpeer/syncengine/pkg/sequencer"
	"github.com/blockpeer/syncengine/pkg/tempfile"
	"github.com/blockpeer/syncengine/pkg/version"
)

const testFolder = "default"

func newTestCoordinator(t *testing.T, idx indexstore.Store) (*Coordinator, *channel.Channel) {
	t.Helper()
	ch := channel.New(testFolder)
	tf, err := tempfile.NewFSProvider(t.TempDir())
	require.NoError(t, err)

	c := New(ch, sequencer.NewInMemory(0), tf, idx, []byte("local-device"), Config{})
	return c, ch
}

func findIndexUpdate(t *testing.T, ch *channel.Channel) bep.IndexUpdate {
	t.Helper()
	for _, msg := range ch.Outbox() {
		if iu, ok := msg.(bep.IndexUpdate); ok {
			return iu
		}
	}
	t.Fatal("no IndexUpdate found in outbox")
	return bep.IndexUpdate{}
}

// S1 empty file
func TestPushFile_EmptySource(t *testing.T) {
	c, ch := newTestCoordinator(t, nil)

	obs, err := c.PushFile(context.Background(), testFolder, "empty.txt", Bytes(nil), PushOptions{})
	require.NoError(t, err)
	defer obs.Close()

	assert.False(t, obs.Completed())
	assert.Equal(t, 1.0, obs.Progress())

	iu := findIndexUpdate(t, ch)
	require.Len(t, iu.Files, 1)
	assert.Equal(t, bep.FileTypeFile, iu.Files[0].Type)
	assert.Equal(t, uint64(0), iu.Files[0].Size)
	assert.Empty(t, iu.Files[0].Blocks)
}

// S2 single-block file
func TestPushFile_SingleBlock_RequestEchoUpdatesProgress(t *testing.T) {
	c, ch := newTestCoordinator(t, nil)

	data := bytes.Repeat([]byte{0x41}, 1024)
	obs, err := c.PushFile(context.Background(), testFolder, "a.txt", Bytes(data), PushOptions{})
	require.NoError(t, err)
	defer obs.Close()

	iu := findIndexUpdate(t, ch)
	require.Len(t, iu.Files[0].Blocks, 1)
	b := iu.Files[0].Blocks[0]
	assert.Equal(t, uint64(0), b.Offset)
	assert.Equal(t, uint32(1024), b.Size)

	wantHash := sha256.Sum256(data)
	assert.Equal(t, wantHash[:], b.Hash)

	assert.Equal(t, 0.0, obs.Progress())

	ch.Deliver(bep.Request{ID: 1, Folder: testFolder, Name: "a.txt", Offset: 0, Size: 1024, Hash: b.Hash})

	require.Eventually(t, func() bool { return obs.Progress() == 1.0 }, time.Second, time.Millisecond)
}

// S3 multi-block file, requests served out of order
func TestPushFile_MultiBlock_OutOfOrderRequests(t *testing.T) {
	c, ch := newTestCoordinator(t, nil)

	data := make([]byte, 300000)
	for i := range data {
		data[i] = byte(i)
	}
	obs, err := c.PushFile(context.Background(), testFolder, "big.bin", Bytes(data), PushOptions{})
	require.NoError(t, err)
	defer obs.Close()

	iu := findIndexUpdate(t, ch)
	blocks := iu.Files[0].Blocks
	require.Len(t, blocks, 3)
	assert.Equal(t, []uint32{131072, 131072, 37856}, []uint32{blocks[0].Size, blocks[1].Size, blocks[2].Size})
	assert.Equal(t, []uint64{0, 131072, 262144}, []uint64{blocks[0].Offset, blocks[1].Offset, blocks[2].Offset})

	order := []int{2, 1, 0}
	for i, idx := range order {
		b := blocks[idx]
		ch.Deliver(bep.Request{ID: int32(idx), Folder: testFolder, Name: "big.bin", Offset: int64(b.Offset), Size: int32(b.Size), Hash: b.Hash})
		want := float64(i+1) / 3.0
		require.Eventually(t, func() bool { return obs.Progress() == want }, time.Second, time.Millisecond)
	}
}

// S4 hash mismatch surfaces as an error from WaitForProgressUpdate
func TestPushFile_BlockMutatedBeforeRequest_SurfacesError(t *testing.T) {
	c, ch := newTestCoordinator(t, nil)

	data := bytes.Repeat([]byte{0x01}, 1024)
	obs, err := c.PushFile(context.Background(), testFolder, "m.txt", Bytes(data), PushOptions{})
	require.NoError(t, err)
	defer obs.Close()

	iu := findIndexUpdate(t, ch)
	b := iu.Files[0].Blocks[0]

	// mutate the source after its blocks were hashed; Bytes does not copy, so
	// the served block no longer matches the announced hash
	data[0] ^= 0xFF
	ch.Deliver(bep.Request{ID: 1, Folder: testFolder, Name: "m.txt", Offset: int64(b.Offset), Size: int32(b.Size), Hash: b.Hash})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = obs.WaitForProgressUpdate(ctx)
	assert.Error(t, err)
}

// S5 delete appends a counter onto the prior version vector
func TestPushDelete_AppendsVersionCounter(t *testing.T) {
	c, ch := newTestCoordinator(t, nil)

	prev := bep.FileInfo{
		Name: "gone.txt",
		Type: bep.FileTypeFile,
		Version: bep.Vector{Counters: []version.Counter{
			{ID: 0xA, Value: 5},
			{ID: 0xB, Value: 7},
		}},
	}

	obs, err := c.PushDelete(context.Background(), testFolder, "gone.txt", prev)
	require.NoError(t, err)
	defer obs.Close()

	iu := findIndexUpdate(t, ch)
	record := iu.Files[0]
	assert.True(t, record.Deleted)
	require.Len(t, record.Version.Counters, 3)
	assert.Equal(t, uint64(0xA), record.Version.Counters[0].ID)
	assert.Equal(t, uint64(5), record.Version.Counters[0].Value)
	assert.Equal(t, uint64(0xB), record.Version.Counters[1].ID)
	assert.Equal(t, uint64(7), record.Version.Counters[1].Value)
	assert.Equal(t, uint64(1), record.Sequence)
}

// S6 a failed write does not stop other blocks from being attempted
func TestPushFile_WireErrorOnOneBlock_OthersStillServed(t *testing.T) {
	c, ch := newTestCoordinator(t, nil)

	data := make([]byte, 2*block.Size)
	obs, err := c.PushFile(context.Background(), testFolder, "two.bin", Bytes(data), PushOptions{})
	require.NoError(t, err)
	defer obs.Close()

	iu := findIndexUpdate(t, ch)
	blocks := iu.Files[0].Blocks
	require.Len(t, blocks, 2)

	ch.Close() // every subsequent Send resolves with ErrChannelClosed

	for _, b := range blocks {
		ch.Deliver(bep.Request{ID: 1, Folder: testFolder, Name: "two.bin", Offset: int64(b.Offset), Size: int32(b.Size), Hash: b.Hash})
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = obs.WaitForProgressUpdate(ctx)
	assert.ErrorIs(t, err, channel.ErrChannelClosed)
}

func TestPushFile_UnsharedFolder(t *testing.T) {
	c, _ := newTestCoordinator(t, nil)
	_, err := c.PushFile(context.Background(), "not-shared", "a.txt", Bytes([]byte("x")), PushOptions{})
	assert.Error(t, err)
}

func TestPushFile_RemoteEchoCompletesObserver(t *testing.T) {
	idx := indexstore.NewMemStore()
	c, _ := newTestCoordinator(t, idx)

	data := []byte("echo me")
	obs, err := c.PushFile(context.Background(), testFolder, "e.txt", Bytes(data), PushOptions{})
	require.NoError(t, err)
	defer obs.Close()

	blocks, err := block.Split(bytes.NewReader(data))
	require.NoError(t, err)
	wireBlocks := make([]bep.BlockInfo, len(blocks))
	for i, b := range blocks {
		wireBlocks[i] = bep.BlockInfo{Offset: b.Offset, Size: b.Size, Hash: b.Hash[:]}
	}

	idx.Publish(indexstore.AcquiredEvent{
		Folder: testFolder,
		NewRecords: []indexstore.Record{
			{Folder: testFolder, Info: bep.FileInfo{Name: "e.txt", Blocks: wireBlocks}},
		},
	})

	require.Eventually(t, obs.Completed, time.Second, time.Millisecond)
	assert.Equal(t, 1.0, obs.Progress())
}

func TestObserver_DoubleClose(t *testing.T) {
	c, _ := newTestCoordinator(t, nil)
	obs, err := c.PushFile(context.Background(), testFolder, "f.txt", Bytes([]byte("x")), PushOptions{})
	require.NoError(t, err)

	require.NoError(t, obs.Close())
	assert.ErrorIs(t, obs.Close(), engineerrors.ErrAlreadyClosed)
}

func TestObserver_ClosePersistsRecord(t *testing.T) {
	idx := indexstore.NewMemStore()
	c, _ := newTestCoordinator(t, idx)

	obs, err := c.PushFile(context.Background(), testFolder, "p.txt", Bytes([]byte("x")), PushOptions{})
	require.NoError(t, err)
	require.NoError(t, obs.Close())

	_, ok := idx.Get(testFolder, "p.txt")
	assert.True(t, ok)
}

func TestProgressMessage_Format(t *testing.T) {
	c, ch := newTestCoordinator(t, nil)

	data := make([]byte, 3*block.Size)
	obs, err := c.PushFile(context.Background(), testFolder, "m3.bin", Bytes(data), PushOptions{})
	require.NoError(t, err)
	defer obs.Close()

	assert.Equal(t, "0.0% 0/3", obs.ProgressMessage())

	iu := findIndexUpdate(t, ch)
	b := iu.Files[0].Blocks[0]
	ch.Deliver(bep.Request{ID: 1, Folder: testFolder, Name: "m3.bin", Offset: int64(b.Offset), Size: int32(b.Size), Hash: b.Hash})

	require.Eventually(t, func() bool { return obs.ProgressMessage() == "33.3% 1/3" }, time.Second, time.Millisecond)
}

func TestPushDir_WriteOnlyObserverCompletes(t *testing.T) {
	c, ch := newTestCoordinator(t, nil)

	obs, err := c.PushDir(context.Background(), testFolder, "subdir", PushOptions{})
	require.NoError(t, err)
	defer obs.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, obs.WaitForComplete(ctx))

	iu := findIndexUpdate(t, ch)
	assert.Equal(t, bep.FileTypeDirectory, iu.Files[0].Type)
}

func TestContentHashOf_RoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte{0x09}, 5000)
	blocks, err := block.Split(bytes.NewReader(data))
	require.NoError(t, err)

	wireBlocks := make([]bep.BlockInfo, len(blocks))
	for i, b := range blocks {
		wireBlocks[i] = bep.BlockInfo{Offset: b.Offset, Size: b.Size, Hash: b.Hash[:]}
	}

	got, err := contentHashOf(wireBlocks)
	require.NoError(t, err)
	assert.Equal(t, block.ContentHash(blocks), got)
	assert.Len(t, got, hex.EncodedLen(sha256.Size))
}
