package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"townsim/internal/app/ports"
	"townsim/internal/domain/npc"
	"townsim/internal/domain/world"
)

var ErrInvalidSession = errors.New("invalid session")

// State is everything a session needs to rehydrate: the world topology, the
// NPC roster with their rule configs, and the clock position. Seen scenes and
// the event log live in their own repositories.
type State struct {
	Seed    int64          `json:"seed"`
	ClockAt time.Time      `json:"clock_at"`
	World   world.Snapshot `json:"world"`
	NPCs    []npc.NPC      `json:"npcs"`
}

// Codec turns a State into an opaque blob and back. The gorm repo stores the
// blob without interpreting it.
type Codec interface {
	Encode(st State) ([]byte, error)
	Decode(blob []byte) (State, error)
}

type UseCase struct {
	Sessions ports.SessionRepository
	Tx       ports.TxManager
	Codec    Codec
}

// Save persists the session under optimistic concurrency: expectedVersion 0
// creates, anything else must match the stored version.
func (u UseCase) Save(ctx context.Context, sessionID string, st State, expectedVersion int64) error {
	if sessionID == "" {
		return fmt.Errorf("save: %w: empty session id", ErrInvalidSession)
	}
	blob, err := u.Codec.Encode(st)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sessionID, err)
	}
	rec := ports.SessionRecord{
		SessionID: sessionID,
		Seed:      st.Seed,
		ClockAt:   st.ClockAt,
		StateBlob: blob,
		Version:   expectedVersion + 1,
	}
	save := func(ctx context.Context) error {
		return u.Sessions.SaveWithVersion(ctx, rec, expectedVersion)
	}
	if u.Tx != nil {
		return u.Tx.RunInTx(ctx, save)
	}
	return save(ctx)
}

// Load rehydrates a session state and returns its stored version for the
// next Save call.
func (u UseCase) Load(ctx context.Context, sessionID string) (State, int64, error) {
	rec, err := u.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return State{}, 0, err
	}
	st, err := u.Codec.Decode(rec.StateBlob)
	if err != nil {
		return State{}, 0, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return st, rec.Version, nil
}
