package persistence

import "sync"

// InMemoryStore is a simple, goroutine-safe SessionStore backed by a
// map. State is lost when the process exits; use the SQLite or Redis
// stores for durability.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]SessionRecord
}

var _ SessionStore = (*InMemoryStore)(nil)

// NewInMemoryStore creates a new InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]SessionRecord)}
}

func (s *InMemoryStore) SaveSession(rec *SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[rec.ID] = *rec
	return nil
}

func (s *InMemoryStore) UpdateSession(rec *SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[rec.ID]; !ok {
		return ErrSessionNotFound
	}
	s.sessions[rec.ID] = *rec
	return nil
}

func (s *InMemoryStore) GetSession(id string) (*SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := rec
	return &out, nil
}

func (s *InMemoryStore) ListSessions(filter SessionFilter) ([]*SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*SessionRecord
	for _, rec := range s.sessions {
		if !matches(&rec, filter) {
			continue
		}
		out := rec
		result = append(result, &out)
	}
	return result, nil
}
