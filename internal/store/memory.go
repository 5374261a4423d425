package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps browser state in process memory. State survives for the
// life of the process only, which matches a single-node development setup.
type MemoryStore struct {
	mu       sync.RWMutex
	browsers map[string]*browserState
	ttl      time.Duration
}

type browserState struct {
	values   map[string]string
	lastSeen time.Time
}

// NewMemoryStore creates a memory store. Browsers idle longer than ttl are
// evicted by a background sweep; a zero ttl disables eviction.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		browsers: make(map[string]*browserState),
		ttl:      ttl,
	}
	if ttl > 0 {
		go s.cleanup()
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, browserID, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.browsers[browserID]
	if !ok {
		return "", false, nil
	}
	v, ok := b.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, browserID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.browsers[browserID]
	if !ok {
		b = &browserState{values: make(map[string]string)}
		s.browsers[browserID] = b
	}
	b.values[key] = value
	b.lastSeen = time.Now()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, browserID string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.browsers[browserID]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(b.values, k)
	}
	b.lastSeen = time.Now()
	return nil
}

// cleanup removes idle browsers periodically
func (s *MemoryStore) cleanup() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-s.ttl)
		s.mu.Lock()
		for id, b := range s.browsers {
			if b.lastSeen.Before(cutoff) {
				delete(s.browsers, id)
			}
		}
		s.mu.Unlock()
	}
}
