package upload

import (
	"context"
	"encoding/hex"
	"sync"

	"github.com/blockpeer/syncengine/pkg/bep"
	"github.com/blockpeer/syncengine/pkg/channel"
	"github.com/blockpeer/syncengine/pkg/datasource"
	"github.com/blockpeer/syncengine/pkg/metrics"
)

// requestWorkerPool serves incoming BEP Requests for one in-flight push off
// a fixed pool of goroutines, so that a slow Block read or a slow wire write
// for one request never stalls the delivery of requests for other blocks.
type requestWorkerPool struct {
	folder string
	path   string

	ch      channel.MessageChannel
	ds      datasource.DataSource
	state   *uploadState
	metrics *metrics.UploadMetrics

	jobs   chan bep.Request
	stopCh chan struct{}
	wg     sync.WaitGroup
}

func newRequestWorkerPool(folder, path string, ch channel.MessageChannel, ds datasource.DataSource, state *uploadState, workers, queueSize int, m *metrics.UploadMetrics) *requestWorkerPool {
	p := &requestWorkerPool{
		folder:  folder,
		path:    path,
		ch:      ch,
		ds:      ds,
		state:   state,
		metrics: m,
		jobs:    make(chan bep.Request, queueSize),
		stopCh:  make(chan struct{}),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.run()
	}

	return p
}

// handle is the channel.Handler subscribed for EventRequest. It filters to
// this push's folder/path and enqueues everything else for a worker,
// dropping the request on the floor if the pool is already stopping.
func (p *requestWorkerPool) handle(req bep.Request) {
	if req.Folder != p.folder || req.Name != p.path {
		return
	}
	select {
	case p.jobs <- req:
	case <-p.stopCh:
	}
}

func (p *requestWorkerPool) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopCh:
			return
		case req := <-p.jobs:
			p.serve(req)
		}
	}
}

func (p *requestWorkerPool) serve(req bep.Request) {
	hexHash := hex.EncodeToString(req.Hash)

	data, err := p.ds.Block(uint64(req.Offset), uint32(req.Size), hexHash)
	if err != nil {
		if p.metrics != nil {
			p.metrics.RecordBlockVerified(false)
		}
		p.state.setError(err)
		return
	}
	if p.metrics != nil {
		p.metrics.RecordBlockVerified(true)
	}

	handle := p.ch.Send(bep.Response{ID: req.ID, Code: bep.NoError, Data: data})
	if err := handle.Wait(context.Background()); err != nil {
		if p.metrics != nil {
			p.metrics.RecordResponseWriteFailure(p.folder)
		}
		p.state.setError(err)
		return
	}

	p.state.recordSent(hexHash)
	if p.metrics != nil {
		p.metrics.RecordRequestServed(p.folder, "ok")
		p.metrics.RecordProgress(p.folder, p.state.progress())
	}
}

// stop signals every worker to exit and waits for them to drain. Jobs still
// queued are abandoned.
func (p *requestWorkerPool) stop() {
	close(p.stopCh)
	p.wg.Wait()
}
