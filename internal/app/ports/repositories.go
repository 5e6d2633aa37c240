package ports

import (
	"context"
	"time"
)

// SessionRecord is the persisted form of one running game session. StateBlob
// holds the encoded session state (world snapshot, NPC configs, clock); the
// repo does not interpret it.
type SessionRecord struct {
	SessionID string
	Seed      int64
	ClockAt   time.Time
	StateBlob []byte
	Version   int64
}

type SessionRepository interface {
	GetByID(ctx context.Context, sessionID string) (SessionRecord, error)
	// SaveWithVersion creates the record when expectedVersion is 0, otherwise
	// updates it only if the stored version still matches (ErrConflict).
	SaveWithVersion(ctx context.Context, rec SessionRecord, expectedVersion int64) error
}

type SeenSceneRepository interface {
	MarkSeen(ctx context.Context, sessionID, sceneID string, at time.Time) error
	ListSeen(ctx context.Context, sessionID string) ([]string, error)
}

type EventRecord struct {
	Kind       string
	OccurredAt time.Time
	Payload    map[string]any
}

type EventRepository interface {
	Append(ctx context.Context, sessionID string, events []EventRecord) error
	ListBySessionID(ctx context.Context, sessionID string, limit int) ([]EventRecord, error)
}
