package upload

import (
	"context"
	"fmt"
	"sync"

	"github.com/blockpeer/syncengine/pkg/engineerrors"
)

// uploadState tracks the observable progress of one push: the set of block
// hashes served so far, the first error encountered (if any), and whether
// the upload has been declared complete. All three are read together under
// one mutex so a waiter never observes a torn view.
type uploadState struct {
	mu   sync.Mutex
	cond *sync.Cond

	sentBlocks  map[string]struct{}
	totalBlocks int

	err       error
	completed bool

	// gen counts every state-changing event (a block sent, an error set, or
	// completion declared). Waiters snapshot gen before blocking and wake
	// once it moves, rather than re-testing the same condition twice.
	gen int
}

func newUploadState(totalBlocks int) *uploadState {
	s := &uploadState{
		sentBlocks:  make(map[string]struct{}),
		totalBlocks: totalBlocks,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// recordSent marks hexHash as served and wakes any parked waiter.
func (s *uploadState) recordSent(hexHash string) {
	s.mu.Lock()
	s.sentBlocks[hexHash] = struct{}{}
	s.gen++
	s.cond.Broadcast()
	s.mu.Unlock()
}

// setError assigns the upload's terminal error exactly once; later calls are
// no-ops. Still wakes waiters so they observe the already-set error sooner.
func (s *uploadState) setError(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.gen++
	s.cond.Broadcast()
	s.mu.Unlock()
}

// markCompleted flips completed to true if it was false, and reports
// whether this call was the one that did so.
func (s *uploadState) markCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed {
		return false
	}
	s.completed = true
	s.gen++
	s.cond.Broadcast()
	return true
}

func (s *uploadState) snapshot() (sent, total int, completed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sentBlocks), s.totalBlocks, s.completed, s.err
}

// progress reports 1.0 once completed, 1.0 for a zero-block upload (there is
// nothing left to serve), and sent/total otherwise.
func (s *uploadState) progress() float64 {
	sent, total, completed, _ := s.snapshot()
	if completed || total == 0 {
		return 1.0
	}
	return float64(sent) / float64(total)
}

// waitForUpdate blocks until the next state-changing event, ctx is done, or
// the state is already terminal, then returns the progress at that point.
// If upload_error has been set, it is returned instead of a progress value,
// wrapped with engineerrors.ErrUploadFailed.
func (s *uploadState) waitForUpdate(ctx context.Context) (float64, error) {
	s.mu.Lock()
	startGen := s.gen
	terminal := s.err != nil || s.completed
	s.mu.Unlock()

	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.cond.Broadcast()
			s.mu.Unlock()
		case <-watchDone:
		}
	}()

	s.mu.Lock()
	for !terminal && s.gen == startGen && ctx.Err() == nil {
		s.cond.Wait()
	}
	err := s.err
	completed := s.completed
	sent := len(s.sentBlocks)
	total := s.totalBlocks
	s.mu.Unlock()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %w", engineerrors.ErrUploadFailed, err)
	}
	if completed || total == 0 {
		return 1.0, nil
	}
	return float64(sent) / float64(total), nil
}
