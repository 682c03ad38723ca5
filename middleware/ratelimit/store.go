package ratelimit

import (
	"context"
	"sync"
	"time"
)

type Store interface {
	// Increment adds one hit to key's current window, opening a new window of length period
	// when none is active, and returns the updated count and the window's reset time.
	Increment(key string, period time.Duration) (count int, resetTime time.Time)
	Get(key string) (count int, resetTime time.Time, exists bool)
	Decrement(key string)
	Reset(key string)
}

type MemoryStore struct {
	mu   sync.Mutex
	data map[string]*entry
	now  func() time.Time
}

type entry struct {
	count     int
	resetTime time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]*entry),
		now:  time.Now,
	}
}

func (s *MemoryStore) live(key string) (*entry, bool) {
	e, ok := s.data[key]
	if !ok || !s.now().Before(e.resetTime) {
		return nil, false
	}
	return e, true
}

func (s *MemoryStore) Get(key string) (int, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.live(key); ok {
		return e.count, e.resetTime, true
	}
	return 0, time.Time{}, false
}

func (s *MemoryStore) Increment(key string, period time.Duration) (int, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.live(key); ok {
		e.count++
		return e.count, e.resetTime
	}

	e := &entry{count: 1, resetTime: s.now().Add(period)}
	s.data[key] = e
	return e.count, e.resetTime
}

func (s *MemoryStore) Decrement(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.live(key); ok && e.count > 0 {
		e.count--
	}
}

func (s *MemoryStore) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
}

func (s *MemoryStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, e := range s.data {
		if !now.Before(e.resetTime) {
			delete(s.data, key)
			removed++
		}
	}
	return removed
}

// RunCleanup evicts expired windows every interval until ctx is cancelled.
func (s *MemoryStore) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}
