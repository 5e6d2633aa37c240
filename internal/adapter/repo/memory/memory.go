// Package memory holds in-memory repository implementations used by tests
// and by the server when no database is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"townsim/internal/app/ports"
)

type SessionStore struct {
	mu   sync.Mutex
	recs map[string]ports.SessionRecord
}

func NewSessionStore() *SessionStore {
	return &SessionStore{recs: map[string]ports.SessionRecord{}}
}

func (s *SessionStore) GetByID(_ context.Context, sessionID string) (ports.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[sessionID]
	if !ok {
		return ports.SessionRecord{}, ports.ErrNotFound
	}
	return rec, nil
}

func (s *SessionStore) SaveWithVersion(_ context.Context, rec ports.SessionRecord, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.recs[rec.SessionID]
	if expectedVersion == 0 {
		if ok {
			return ports.ErrConflict
		}
		s.recs[rec.SessionID] = rec
		return nil
	}
	if !ok || cur.Version != expectedVersion {
		return ports.ErrConflict
	}
	s.recs[rec.SessionID] = rec
	return nil
}

type SeenSceneStore struct {
	mu   sync.Mutex
	seen map[string]map[string]time.Time
}

func NewSeenSceneStore() *SeenSceneStore {
	return &SeenSceneStore{seen: map[string]map[string]time.Time{}}
}

func (s *SeenSceneStore) MarkSeen(_ context.Context, sessionID, sceneID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[sessionID] == nil {
		s.seen[sessionID] = map[string]time.Time{}
	}
	if _, ok := s.seen[sessionID][sceneID]; !ok {
		s.seen[sessionID][sceneID] = at
	}
	return nil
}

func (s *SeenSceneStore) ListSeen(_ context.Context, sessionID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.seen[sessionID]))
	for id := range s.seen[sessionID] {
		out = append(out, id)
	}
	return out, nil
}

type EventStore struct {
	mu     sync.Mutex
	events map[string][]ports.EventRecord
}

func NewEventStore() *EventStore {
	return &EventStore{events: map[string][]ports.EventRecord{}}
}

func (s *EventStore) Append(_ context.Context, sessionID string, events []ports.EventRecord) error {
	if len(events) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[sessionID] = append(s.events[sessionID], events...)
	return nil
}

func (s *EventStore) ListBySessionID(_ context.Context, sessionID string, limit int) ([]ports.EventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	evts := s.events[sessionID]
	if len(evts) == 0 {
		return nil, ports.ErrNotFound
	}
	if limit > 0 && limit < len(evts) {
		evts = evts[len(evts)-limit:]
	}
	out := make([]ports.EventRecord, len(evts))
	copy(out, evts)
	return out, nil
}

// TxManager satisfies ports.TxManager without transactional semantics.
type TxManager struct{}

func (TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
