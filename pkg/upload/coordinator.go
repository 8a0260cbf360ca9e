// Package upload implements the outbound block-exchange engine: splitting a
// source into content-addressed blocks, announcing it with an IndexUpdate,
// and serving the Requests that follow, while giving the caller an Observer
// to track progress and completion.
package upload

import (
	"context"
	"fmt"
	"time"

	"github.com/blockpeer/syncengine/pkg/bep"
	"github.com/blockpeer/syncengine/pkg/block"
	"github.com/blockpeer/syncengine/pkg/channel"
	"github.com/blockpeer/syncengine/pkg/engineerrors"
	"github.com/blockpeer/syncengine/pkg/indexstore"
	"github.com/blockpeer/syncengine/pkg/metrics"
	"github.com/blockpeer/syncengine/pkg/sequencer"
	"github.com/blockpeer/syncengine/pkg/tempfile"
	"github.com/blockpeer/syncengine/pkg/version"
)

// Default request worker pool sizing, used whenever Config leaves a field
// at its zero value.
const (
	DefaultRequestWorkers = 8
	DefaultQueueSize      = 256
)

// Config tunes the request worker pool every push spins up.
type Config struct {
	// RequestWorkers is the number of goroutines serving Requests for one
	// push concurrently. Defaults to DefaultRequestWorkers.
	RequestWorkers int

	// QueueSize bounds how many Requests may be buffered awaiting a free
	// worker before handle blocks. Defaults to DefaultQueueSize.
	QueueSize int
}

func (c Config) withDefaults() Config {
	if c.RequestWorkers <= 0 {
		c.RequestWorkers = DefaultRequestWorkers
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	return c
}

// PushOptions carries the per-call knobs PushFile needs beyond the source
// bytes themselves.
type PushOptions struct {
	// PrevVersion is the version vector already announced for this
	// folder/path, if any. The emitted vector appends one counter to it.
	PrevVersion version.Vector

	// ReleaseChannelOnClose closes the underlying MessageChannel when the
	// returned Observer is closed. Most callers share one channel across
	// many pushes and leave this false.
	ReleaseChannelOnClose bool
}

// Coordinator drives pushes for one connected peer: one MessageChannel, one
// Sequencer, one TempFileProvider, and (optionally) one IndexStore used for
// remote-echo completion detection.
type Coordinator struct {
	channel       channel.MessageChannel
	sequencer     sequencer.Sequencer
	tempfiles     tempfile.Provider
	indexStore    indexstore.Store
	localDeviceID uint64
	config        Config
	metrics       *metrics.UploadMetrics
}

// New constructs a Coordinator. ch, seq, and tf are required; idx may be nil
// (remote-echo completion detection is then unavailable, and observers
// complete only on write-future resolution for PushDir/PushDelete, and never
// self-complete for PushFile). localDeviceID is this device's raw identity,
// projected once via version.ProjectDeviceID.
func New(ch channel.MessageChannel, seq sequencer.Sequencer, tf tempfile.Provider, idx indexstore.Store, localDeviceID []byte, cfg Config) *Coordinator {
	if ch == nil {
		panic("upload: MessageChannel is required")
	}
	if seq == nil {
		panic("upload: Sequencer is required")
	}
	if tf == nil {
		panic("upload: TempFileProvider is required")
	}

	return &Coordinator{
		channel:       ch,
		sequencer:     seq,
		tempfiles:     tf,
		indexStore:    idx,
		localDeviceID: version.ProjectDeviceID(localDeviceID),
		config:        cfg.withDefaults(),
	}
}

// WithMetrics attaches m (which may be nil) to every push the Coordinator
// starts afterward, and returns the Coordinator for chaining.
func (c *Coordinator) WithMetrics(m *metrics.UploadMetrics) *Coordinator {
	c.metrics = m
	return c
}

func modifiedParts(t time.Time) (int64, int32) {
	ms := t.UnixMilli()
	return ms / 1000, int32(ms%1000) * 1_000_000
}

// contentHashOf recomputes the content hash of a wire block list, so it can
// be compared against the local DataSource's own ContentHash for remote-echo
// matching without assuming the remote carries an explicit content hash
// field of its own.
func contentHashOf(blocks []bep.BlockInfo) (string, error) {
	infos := make([]block.Info, len(blocks))
	for i, b := range blocks {
		if len(b.Hash) != 32 {
			return "", fmt.Errorf("upload: block %d hash is %d bytes, want 32", i, len(b.Hash))
		}
		var h [32]byte
		copy(h[:], b.Hash)
		infos[i] = block.Info{Offset: b.Offset, Size: b.Size, Hash: h}
	}
	return block.ContentHash(infos), nil
}

func emitIndexUpdate(ch channel.MessageChannel, folder string, record bep.FileInfo) (channel.CompletionHandle, bep.FileInfo) {
	handle := ch.Send(bep.IndexUpdate{Folder: folder, Files: []bep.FileInfo{record}})
	return handle, record
}

// PushFile materializes src, splits it into blocks, emits one IndexUpdate
// announcing it, and starts serving Requests for it. It returns immediately
// once the IndexUpdate has been handed to the channel; it does not wait for
// the write to land on the wire.
func (c *Coordinator) PushFile(ctx context.Context, folder, path string, src ByteSource, opts PushOptions) (*Observer, error) {
	if !c.channel.HasFolder(folder) {
		return nil, engineerrors.New("PushFile", folder, path, engineerrors.ErrFolderNotShared)
	}

	ds, err := src.open(c.tempfiles)
	if err != nil {
		return nil, engineerrors.New("PushFile", folder, path, err)
	}

	size, err := ds.Size()
	if err != nil {
		return nil, engineerrors.New("PushFile", folder, path, err)
	}
	blocks, err := ds.Blocks()
	if err != nil {
		return nil, engineerrors.New("PushFile", folder, path, err)
	}

	seq := c.sequencer.Next(folder)
	vector := version.Build(opts.PrevVersion, c.localDeviceID, seq)
	modS, modNS := modifiedParts(time.Now())

	wireBlocks := make([]bep.BlockInfo, len(blocks))
	for i, b := range blocks {
		wireBlocks[i] = bep.BlockInfo{Offset: b.Offset, Size: b.Size, Hash: append([]byte(nil), b.Hash[:]...)}
	}

	record := bep.FileInfo{
		Name:          path,
		Type:          bep.FileTypeFile,
		Size:          size,
		ModifiedS:     modS,
		ModifiedNS:    modNS,
		NoPermissions: true,
		Version:       bep.Vector{Counters: vector.Counters},
		Sequence:      seq,
		Blocks:        wireBlocks,
	}

	state := newUploadState(len(blocks))

	pool := newRequestWorkerPool(folder, path, c.channel, ds, state, c.config.RequestWorkers, c.config.QueueSize, c.metrics)
	reqSubID := c.channel.Subscribe(channel.EventRequest, pool.handle)

	obs := &Observer{
		folder:         folder,
		path:           path,
		record:         record,
		state:          state,
		ch:             c.channel,
		reqSubID:       reqSubID,
		hasReqSub:      true,
		indexStore:     c.indexStore,
		pool:           pool,
		releaseChannel: opts.ReleaseChannelOnClose,
		metrics:        c.metrics,
	}

	if c.indexStore != nil {
		if localHash, hashErr := ds.ContentHash(); hashErr == nil {
			idxSubID := c.indexStore.Subscribe(func(ev indexstore.AcquiredEvent) {
				if ev.Folder != folder {
					return
				}
				for _, rec := range ev.NewRecords {
					if rec.Info.Name != path {
						continue
					}
					remoteHash, err := contentHashOf(rec.Info.Blocks)
					if err == nil && remoteHash == localHash {
						state.markCompleted()
						return
					}
				}
			})
			obs.idxSubID = idxSubID
			obs.hasIdxSub = true
		}
	}

	emitIndexUpdate(c.channel, folder, record)

	if c.metrics != nil {
		c.metrics.UploadStarted()
	}

	return obs, nil
}

// pushWriteOnly is the shared tail of PushDir and PushDelete: emit record,
// track completion against the write future alone, return an Observer with
// no request server or index-echo subscription.
func (c *Coordinator) pushWriteOnly(folder, path string, record bep.FileInfo) *Observer {
	handle, _ := emitIndexUpdate(c.channel, folder, record)

	state := newUploadState(0)
	go func() {
		if err := handle.Wait(context.Background()); err != nil {
			state.setError(err)
		}
		state.markCompleted()
	}()

	return &Observer{
		folder:     folder,
		path:       path,
		record:     record,
		state:      state,
		ch:         c.channel,
		indexStore: c.indexStore,
	}
}

// PushDir announces a directory record for path. The returned Observer's
// Completed reflects only the IndexUpdate write future.
func (c *Coordinator) PushDir(ctx context.Context, folder, path string, opts PushOptions) (*Observer, error) {
	if !c.channel.HasFolder(folder) {
		return nil, engineerrors.New("PushDir", folder, path, engineerrors.ErrFolderNotShared)
	}

	seq := c.sequencer.Next(folder)
	vector := version.Build(opts.PrevVersion, c.localDeviceID, seq)
	modS, modNS := modifiedParts(time.Now())

	record := bep.FileInfo{
		Name:          path,
		Type:          bep.FileTypeDirectory,
		ModifiedS:     modS,
		ModifiedNS:    modNS,
		NoPermissions: true,
		Version:       bep.Vector{Counters: vector.Counters},
		Sequence:      seq,
	}

	return c.pushWriteOnly(folder, path, record), nil
}

// PushDelete announces path as deleted. prev is the last record known for
// path, used both for its type (a deletion still carries the original
// FILE/DIRECTORY type) and as the version vector's predecessor.
func (c *Coordinator) PushDelete(ctx context.Context, folder, path string, prev bep.FileInfo) (*Observer, error) {
	if !c.channel.HasFolder(folder) {
		return nil, engineerrors.New("PushDelete", folder, path, engineerrors.ErrFolderNotShared)
	}

	seq := c.sequencer.Next(folder)
	vector := version.Build(version.Vector{Counters: prev.Version.Counters}, c.localDeviceID, seq)
	modS, modNS := modifiedParts(time.Now())

	record := bep.FileInfo{
		Name:          path,
		Type:          prev.Type,
		Deleted:       true,
		ModifiedS:     modS,
		ModifiedNS:    modNS,
		NoPermissions: true,
		Version:       bep.Vector{Counters: vector.Counters},
		Sequence:      seq,
	}

	return c.pushWriteOnly(folder, path, record), nil
}
