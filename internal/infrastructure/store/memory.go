package store

import (
	"context"
	"sync"
	"time"

	"github.com/framecart/backend/internal/domain"
)

// storedAnalysis is a single analysis with its expiration.
type storedAnalysis struct {
	analysis   *domain.VideoAnalysis
	expiration time.Time
}

// MemoryStore is a thread-safe in-memory analysis store with TTL support.
// Results live for the process lifetime at most.
type MemoryStore struct {
	data  map[string]storedAnalysis
	mutex sync.RWMutex
}

// NewMemoryStore creates a new in-memory analysis store and starts a
// cleanup goroutine that removes expired entries every 10 minutes.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		data: make(map[string]storedAnalysis),
	}

	go s.cleanupExpired()

	return s
}

// Get retrieves an analysis by id.
func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.VideoAnalysis, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	item, exists := s.data[id]
	if !exists {
		return nil, domain.ErrAnalysisNotFound
	}

	if time.Now().After(item.expiration) {
		return nil, domain.ErrAnalysisNotFound
	}

	return item.analysis, nil
}

// Set stores an analysis under its own id with the given TTL.
func (s *MemoryStore) Set(ctx context.Context, analysis *domain.VideoAnalysis, ttl time.Duration) error {
	if analysis == nil || analysis.ID == "" {
		return domain.ErrInvalidRequest
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[analysis.ID] = storedAnalysis{
		analysis:   analysis,
		expiration: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes an analysis from the store.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.data, id)
	return nil
}

// Size returns the current number of stored analyses.
func (s *MemoryStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

// cleanupExpired removes expired entries from the store periodically.
func (s *MemoryStore) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.mutex.Lock()
		now := time.Now()
		for id, item := range s.data {
			if now.After(item.expiration) {
				delete(s.data, id)
			}
		}
		s.mutex.Unlock()
	}
}
