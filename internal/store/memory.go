package store

import (
	"container/list"
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-sdk/internal/weather"
)

// DefaultCapacity is the number of locations a client keeps cached.
const DefaultCapacity = 10

var (
	// ErrInvalidCapacity is returned when a store is created with a non-positive capacity.
	ErrInvalidCapacity = errors.New("store capacity must be greater than zero")
)

// LRUStore is a concurrency-safe, size-bounded in-memory store of weather entries.
// When full, inserting a new location evicts the least recently used one.
type LRUStore struct {
	mu sync.Mutex

	capacity int
	ll       *list.List               // front = most recently used
	data     map[string]*list.Element // key: location key, value: element holding *weather.Entry
}

var _ weather.Store = (*LRUStore)(nil)

// NewLRUStore creates an empty store holding at most capacity locations.
func NewLRUStore(capacity int) (*LRUStore, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &LRUStore{
		capacity: capacity,
		ll:       list.New(),
		data:     make(map[string]*list.Element, capacity),
	}, nil
}

// Get returns the entry for key and marks it as most recently used.
func (s *LRUStore) Get(key string) (weather.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.data[key]
	if !ok {
		return weather.Entry{}, false
	}
	s.ll.MoveToFront(elem)
	return *elem.Value.(*weather.Entry), true
}

// Put inserts or overwrites the entry for key. A new key on a full store
// evicts the least recently used entry before it is inserted.
func (s *LRUStore) Put(key string, payload weather.Payload, now time.Time) weather.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.data[key]; ok {
		s.ll.MoveToFront(elem)
		return s.overwrite(elem, payload, now)
	}

	if s.ll.Len() >= s.capacity {
		s.evict()
	}

	entry := &weather.Entry{Location: key, Payload: payload, FetchedAt: now}
	s.data[key] = s.ll.PushFront(entry)
	return *entry
}

// Replace overwrites an existing entry without changing its recency.
// It reports false and stores nothing if key is not cached.
func (s *LRUStore) Replace(key string, payload weather.Payload, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.data[key]
	if !ok {
		return false
	}
	s.overwrite(elem, payload, now)
	return true
}

// Remove deletes the entry for key if present.
func (s *LRUStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.data[key]; ok {
		s.ll.Remove(elem)
		delete(s.data, key)
	}
}

// Keys returns a snapshot of cached location keys, most recently used first.
func (s *LRUStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, s.ll.Len())
	for e := s.ll.Front(); e != nil; e = e.Next() {
		keys = append(keys, e.Value.(*weather.Entry).Location)
	}
	return keys
}

// Len returns the number of cached locations.
func (s *LRUStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ll.Len()
}

// overwrite swaps in a new entry value; readers holding a copy of the old one are unaffected.
// FetchedAt never moves backwards. Must be called with s.mu held.
func (s *LRUStore) overwrite(elem *list.Element, payload weather.Payload, now time.Time) weather.Entry {
	prev := elem.Value.(*weather.Entry)
	fetchedAt := now
	if prev.FetchedAt.After(now) {
		fetchedAt = prev.FetchedAt
	}
	entry := &weather.Entry{Location: prev.Location, Payload: payload, FetchedAt: fetchedAt}
	elem.Value = entry
	return *entry
}

// evict drops the least recently used entry. Must be called with s.mu held.
func (s *LRUStore) evict() {
	back := s.ll.Back()
	if back == nil {
		return
	}
	entry := s.ll.Remove(back).(*weather.Entry)
	delete(s.data, entry.Location)
}
