// Package indexstore implements the IndexStore collaborator: local
// persistence for announced file records, plus the event stream of
// IndexRecordAcquired notifications the Upload Coordinator listens to for
// remote-echo completion detection.
package indexstore

import (
	"github.com/blockpeer/syncengine/pkg/bep"
)

// Record is a locally-held file record, either pushed by this engine or
// acquired from the remote peer's own index.
type Record struct {
	Folder string
	Info   bep.FileInfo
}

// AcquiredEvent is delivered to subscribers when new records arrive from the
// remote peer's index (the "echo" path this engine does not implement
// itself, only observes).
type AcquiredEvent struct {
	Folder     string
	NewRecords []Record
}

// AcquiredHandler is invoked for every AcquiredEvent.
type AcquiredHandler func(AcquiredEvent)

// SubscriptionID identifies a registered AcquiredHandler.
type SubscriptionID uint64

// Store is the narrow persistence and notification surface the engine needs.
// A nil Store is a valid "no index store attached" configuration; callers
// must check for nil before using it (the Upload Coordinator does this).
type Store interface {
	// PushRecord persists info, overwriting any prior record for the same
	// folder/path.
	PushRecord(folder string, info bep.FileInfo) error

	// Subscribe registers handler to be called for every AcquiredEvent and
	// returns a token Unsubscribe accepts.
	Subscribe(handler AcquiredHandler) SubscriptionID

	// Unsubscribe removes a previously registered handler.
	Unsubscribe(id SubscriptionID)

	// Publish delivers an AcquiredEvent to every subscriber. It exists on
	// the interface so implementations backing a real remote-echo path can
	// drive the same notification surface the in-memory test double uses.
	Publish(event AcquiredEvent)
}
