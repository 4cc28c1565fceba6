// Package memory provides an in-process implementation of storage.Store.
// Values are kept JSON-encoded so reads never alias caller memory.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/iudanet/wastetrack/internal/client/storage"
)

var _ storage.Store = (*Store)(nil)

// Store is a map-backed key-value store.
type Store struct {
	slots map[storage.Key][]byte
	mu    sync.RWMutex
}

// New creates an empty Store.
func New() *Store {
	return &Store{slots: make(map[storage.Key][]byte)}
}

// Get decodes the value stored under key into dst.
func (s *Store) Get(ctx context.Context, key storage.Key, dst any) error {
	s.mu.RLock()
	data, ok := s.slots[key]
	s.mu.RUnlock()
	if !ok {
		return storage.ErrNotFound
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal slot %q: %w", key, err)
	}
	return nil
}

// Set replaces the value stored under key.
func (s *Store) Set(ctx context.Context, key storage.Key, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal slot %q: %w", key, err)
	}
	s.mu.Lock()
	s.slots[key] = data
	s.mu.Unlock()
	return nil
}

// Remove deletes the slot.
func (s *Store) Remove(ctx context.Context, key storage.Key) error {
	s.mu.Lock()
	delete(s.slots, key)
	s.mu.Unlock()
	return nil
}

// Clear removes every slot.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.slots = make(map[storage.Key][]byte)
	s.mu.Unlock()
	return nil
}

// Len returns the number of occupied slots.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots)
}
