package indexstore

import (
	"sync"

	"github.com/blockpeer/syncengine/pkg/bep"
)

// MemStore is an in-memory Store for tests and single-process demos.
type MemStore struct {
	mu      sync.Mutex
	records map[string]map[string]bep.FileInfo // folder -> name -> info

	nextSubID SubscriptionID
	handlers  map[SubscriptionID]AcquiredHandler
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		records:  make(map[string]map[string]bep.FileInfo),
		handlers: make(map[SubscriptionID]AcquiredHandler),
	}
}

func (s *MemStore) PushRecord(folder string, info bep.FileInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byName, ok := s.records[folder]
	if !ok {
		byName = make(map[string]bep.FileInfo)
		s.records[folder] = byName
	}
	byName[info.Name] = info
	return nil
}

// Get returns the locally held record for folder/name, if any.
func (s *MemStore) Get(folder, name string) (bep.FileInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byName, ok := s.records[folder]
	if !ok {
		return bep.FileInfo{}, false
	}
	info, ok := byName[name]
	return info, ok
}

func (s *MemStore) Subscribe(handler AcquiredHandler) SubscriptionID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.handlers[id] = handler
	return id
}

func (s *MemStore) Unsubscribe(id SubscriptionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers, id)
}

func (s *MemStore) Publish(event AcquiredEvent) {
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
