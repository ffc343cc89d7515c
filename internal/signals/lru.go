// Package signals provides SignalStore implementations for FraudGuard.
package signals

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// LRUStore is a thread-safe in-process signal store with TTL support.
// Used as the Community tier store and as the first phase in two-phase mode.
type LRUStore struct {
	mu       sync.RWMutex
	maxSize  int
	items    map[string]*list.Element
	order    *list.List
	counters map[string]*counterEntry
}

type storeEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

type counterEntry struct {
	count     int64
	expiresAt time.Time
}

// NewLRUStore creates a new LRU signal store with the specified max size.
func NewLRUStore(maxSize int) *LRUStore {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &LRUStore{
		maxSize:  maxSize,
		items:    make(map[string]*list.Element),
		order:    list.New(),
		counters: make(map[string]*counterEntry),
	}
}

// Get retrieves a value. Returns nil, nil on a miss.
func (s *LRUStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return nil, nil
	}

	entry := elem.Value.(*storeEntry)
	if time.Now().After(entry.expiresAt) {
		s.removeElement(elem)
		return nil, nil
	}

	// Move to front (most recently used)
	s.order.MoveToFront(elem)
	return entry.value, nil
}

// Set stores a value with TTL.
func (s *LRUStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Update existing entry
	if elem, ok := s.items[key]; ok {
		s.order.MoveToFront(elem)
		entry := elem.Value.(*storeEntry)
		entry.value = value
		entry.expiresAt = time.Now().Add(ttl)
		return nil
	}

	// Add new entry
	entry := &storeEntry{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	elem := s.order.PushFront(entry)
	s.items[key] = elem

	// Evict if over capacity
	for s.order.Len() > s.maxSize {
		s.removeOldest()
	}

	return nil
}

// Delete removes a value.
func (s *LRUStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[key]; ok {
		s.removeElement(elem)
	}
	return nil
}

// IncrementCounter atomically increments a rolling counter.
func (s *LRUStore) IncrementCounter(ctx context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	entry, ok := s.counters[key]

	if !ok || now.After(entry.expiresAt) {
		// Start new counter window
		s.counters[key] = &counterEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
		return 1, nil
	}

	entry.count++
	return entry.count, nil
}

// CounterValue reads a counter without incrementing it.
func (s *LRUStore) CounterValue(ctx context.Context, key string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.counters[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return 0, nil
	}
	return entry.count, nil
}

// Ping checks store health.
func (s *LRUStore) Ping(ctx context.Context) error {
	return nil
}

// Close cleans up the store.
func (s *LRUStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*list.Element)
	s.order = list.New()
	s.counters = make(map[string]*counterEntry)
	return nil
}

// Stats returns store statistics.
func (s *LRUStore) Stats() (size int, capacity int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Len(), s.maxSize
}

func (s *LRUStore) removeElement(elem *list.Element) {
	s.order.Remove(elem)
	entry := elem.Value.(*storeEntry)
	delete(s.items, entry.key)
}

func (s *LRUStore) removeOldest() {
	elem := s.order.Back()
	if elem != nil {
		s.removeElement(elem)
	}
}
