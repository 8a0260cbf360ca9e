package indexstore

import (
	"encoding/json"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/blockpeer/syncengine/pkg/bep"
)

// BadgerStore is a Store backed by an embedded BadgerDB instance, persisting
// every pushed record across restarts. The AcquiredEvent stream is kept
// in-process only (Badger holds records, not pending notifications).
type BadgerStore struct {
	db *badger.DB

	mu        sync.Mutex
	nextSubID SubscriptionID
	handlers  map[SubscriptionID]AcquiredHandler
}

// OpenBadgerStore opens (creating if necessary) a BadgerDB database rooted
// at dir.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("indexstore: open badger at %s: %w", dir, err)
	}
	return &BadgerStore{
		db:       db,
		handlers: make(map[SubscriptionID]AcquiredHandler),
	}, nil
}

// Close releases the underlying database handle.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func recordKey(folder, name string) []byte {
	return []byte("record/" + folder + "/" + name)
}

func (s *BadgerStore) PushRecord(folder string, info bep.FileInfo) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("indexstore: marshal record %s/%s: %w", folder, info.Name, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(folder, info.Name), payload)
	})
}

// Get returns the persisted record for folder/name, if any.
func (s *BadgerStore) Get(folder, name string) (bep.FileInfo, bool, error) {
	var info bep.FileInfo
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(folder, name))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get record %s/%s: %w", folder, name, err)
		}

		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &info); err != nil {
				return fmt.Errorf("unmarshal record %s/%s: %w", folder, name, err)
			}
			found = true
			return nil
		})
	})
	if err != nil {
		return bep.FileInfo{}, false, err
	}

	return info, found, nil
}

func (s *BadgerStore) Subscribe(handler AcquiredHandler) SubscriptionID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.handlers[id] = handler
	return id
}

func (s *BadgerStore) Unsubscribe(id SubscriptionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers, id)
}

func (s *BadgerStore) Publish(event AcquiredEvent) {
	s.mu.Lock()
	handlers := make([]AcquiredHandler, 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}
