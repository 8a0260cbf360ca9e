package upload

import (
	"context"
	"fmt"
	"sync"

	"github.com/blockpeer/syncengine/pkg/bep"
	"github.com/blockpeer/syncengine/pkg/channel"
	"github.com/blockpeer/syncengine/pkg/engineerrors"
	"github.com/blockpeer/syncengine/pkg/indexstore"
	"github.com/blockpeer/syncengine/pkg/metrics"
)

// Observer is the handle PushFile/PushDir/PushDelete return: a read-only
// window onto one push's progress plus the teardown that must happen once
// the caller is done with it.
type Observer struct {
	folder string
	path   string
	record bep.FileInfo

	state *uploadState

	ch        channel.MessageChannel
	reqSubID  channel.SubscriptionID
	hasReqSub bool

	indexStore indexstore.Store
	idxSubID   indexstore.SubscriptionID
	hasIdxSub  bool

	pool *requestWorkerPool // nil for write-only (directory/delete) pushes

	releaseChannel bool

	metrics *metrics.UploadMetrics

	closeMu sync.Mutex
	closed  bool
}

// Progress returns the current fraction of blocks served, in [0,1].
func (o *Observer) Progress() float64 {
	return o.state.progress()
}

// ProgressMessage renders Progress alongside the raw served/total counts,
// e.g. "66.7% 2/3".
func (o *Observer) ProgressMessage() string {
	sent, total, _, _ := o.state.snapshot()
	return fmt.Sprintf("%.1f%% %d/%d", o.Progress()*100, sent, total)
}

// Completed reports whether the upload has been declared finished, either
// by remote echo or by the write-only record's send completing (whether or
// not that send failed). A terminal error while serving requests does not
// mark a PushFile upload completed.
func (o *Observer) Completed() bool {
	_, _, completed, _ := o.state.snapshot()
	return completed
}

// WaitForProgressUpdate blocks until the next progress-changing event (a
// block served, completion, or a terminal error) or until ctx is done.
func (o *Observer) WaitForProgressUpdate(ctx context.Context) (float64, error) {
	return o.state.waitForUpdate(ctx)
}

// WaitForComplete blocks until Completed() would return true or ctx is done,
// surfacing any terminal error encountered along the way.
func (o *Observer) WaitForComplete(ctx context.Context) error {
	for !o.Completed() {
		if _, err := o.state.waitForUpdate(ctx); err != nil {
			return err
		}
	}
	if _, _, _, err := o.state.snapshot(); err != nil {
		return fmt.Errorf("%w: %w", engineerrors.ErrUploadFailed, err)
	}
	return nil
}

// Close tears down the push: it unsubscribes the request handler and index
// echo listener, stops the request worker pool, and persists the pushed
// record to the index store. It is callable exactly once; a second call
// returns ErrAlreadyClosed rather than silently succeeding.
func (o *Observer) Close() error {
	o.closeMu.Lock()
	if o.closed {
		o.closeMu.Unlock()
		return engineerrors.ErrAlreadyClosed
	}
	o.closed = true
	o.closeMu.Unlock()

	var err error

	if o.hasReqSub {
		o.ch.Unsubscribe(o.reqSubID)
	}
	if o.pool != nil {
		o.pool.stop()
	}
	if o.hasIdxSub {
		o.indexStore.Unsubscribe(o.idxSubID)
	}
	if o.indexStore != nil {
		if pushErr := o.indexStore.PushRecord(o.folder, o.record); pushErr != nil {
			err = fmt.Errorf("upload: persist record %s/%s: %w", o.folder, o.path, pushErr)
		}
	}
	if o.releaseChannel {
		if closeErr := o.ch.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("upload: close channel: %w", closeErr)
		}
	}
	if o.metrics != nil {
		o.metrics.UploadFinished()
	}

	return err
}
