package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps events per user. Events without a user id are dropped
// from the index but still counted.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
	total  int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	if event.UserID == "" {
		return nil
	}
	s.events[event.UserID] = append(s.events[event.UserID], event)
	return nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[userID]...), nil
}

// Total is the number of events appended, including anonymous ones.
func (s *InMemoryStore) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}
