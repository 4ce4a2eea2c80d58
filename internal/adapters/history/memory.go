// Package history provides chat history store adapters.
// Adapters implementing ports.HistoryStore; both are append-only.
package history

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/0xcro3dile/intentbot-go/internal/domain/entities"
)

// sessionLog is one session's turns. Its own lock serializes appends to the
// session without blocking other sessions.
type sessionLog struct {
	mu    sync.RWMutex
	turns []entities.ChatTurn
}

// InMemoryStore keeps every session's turns for the lifetime of the process.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionLog
}

// NewInMemoryStore creates a new in-memory history store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]*sessionLog),
	}
}

// Append records turn at the end of the session's log.
func (s *InMemoryStore) Append(ctx context.Context, sessionID string, turn entities.ChatTurn) error {
	log := s.session(sessionID)

	log.mu.Lock()
	defer log.mu.Unlock()
	log.turns = append(log.turns, turn)
	return nil
}

// List returns a copy of the session's turns in the requested order.
func (s *InMemoryStore) List(ctx context.Context, sessionID string, order entities.Order) ([]entities.ChatTurn, error) {
	s.mu.RLock()
	log, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return []entities.ChatTurn{}, nil
	}

	log.mu.RLock()
	out := make([]entities.ChatTurn, len(log.turns))
	copy(out, log.turns)
	log.mu.RUnlock()

	if order == entities.ReverseChronological {
		slices.Reverse(out)
	}
	return out, nil
}

// Sessions returns the ids of sessions with at least one turn, sorted.
func (s *InMemoryStore) Sessions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *InMemoryStore) session(id string) *sessionLog {
	s.mu.RLock()
	log, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return log
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if log, ok = s.sessions[id]; !ok {
		log = &sessionLog{}
		s.sessions[id] = log
	}
	return log
}
