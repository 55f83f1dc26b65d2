package memory

import (
	"context"
	"sync"
	"time"
)

// EligibilityStore is an in-memory implementation of app.EligibilityStore,
// useful for tests and single-process demos.
type EligibilityStore struct {
	mu         sync.RWMutex
	lastPlayed map[string]time.Time
}

func NewEligibilityStore() *EligibilityStore {
	return &EligibilityStore{
		lastPlayed: make(map[string]time.Time),
	}
}

func (s *EligibilityStore) LastPlayed(_ context.Context, userID string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.lastPlayed[userID]
	return t, ok, nil
}

func (s *EligibilityStore) MarkPlayed(_ context.Context, userID string, playedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPlayed[userID] = playedAt
	return nil
}
