// Package cache provides a process-lifetime TTL memo cache with
// get-or-compute semantics.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Store is a thread-safe key/TTL cache. Expired entries are evicted
// lazily on the next lookup of the same key.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	group   singleflight.Group
	now     func() time.Time
}

func New() *Store {
	return &Store{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the live value for key, if any.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the given TTL, replacing any entry.
func (s *Store) Set(key string, value interface{}, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: value, expiresAt: s.now().Add(ttl)}
}

// Forget drops the entry for key, if any.
func (s *Store) Forget(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// GetOrCompute returns the live value for key, or runs compute and caches
// its result for ttl. Compute failures are never cached. Concurrent
// callers on a cold key share a single compute invocation and all receive
// the same result or error.
func (s *Store) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (interface{}, error)) (interface{}, error) {
	if v, ok := s.Get(key); ok {
		return v, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		// A concurrent caller may have stored the value while this one
		// was waiting on the flight group.
		if v, ok := s.Get(key); ok {
			return v, nil
		}

		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}

		s.Set(key, v, ttl)
		return v, nil
	})
	return v, err
}

// Len returns the number of entries, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
