package gormrepo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"townsim/internal/app/ports"
)

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TOWNSIM_DB_DSN")
	if dsn == "" {
		t.Skip("TOWNSIM_DB_DSN is required for integration test")
	}
	return dsn
}

func TestSessionRepo_VersionedSaveLifecycle(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	ctx := context.Background()
	sessionID := "it-session-lifecycle"
	_ = db.Exec("DELETE FROM sessions WHERE session_id = ?", sessionID).Error

	repo := NewSessionRepo(db)
	rec := ports.SessionRecord{
		SessionID: sessionID,
		Seed:      1234,
		ClockAt:   time.Unix(1000, 0).UTC(),
		StateBlob: []byte("blob-v1"),
		Version:   1,
	}
	if err := repo.SaveWithVersion(ctx, rec, 0); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(ctx, sessionID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Seed != 1234 || got.Version != 1 || string(got.StateBlob) != "blob-v1" {
		t.Fatalf("unexpected record: %+v", got)
	}

	rec.StateBlob = []byte("blob-v2")
	rec.Version = 2
	if err := repo.SaveWithVersion(ctx, rec, 1); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := repo.SaveWithVersion(ctx, rec, 1); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected conflict on stale version, got %v", err)
	}

	if _, err := repo.GetByID(ctx, sessionID+"-missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSeenSceneRepo_IdempotentMark(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	ctx := context.Background()
	sessionID := "it-seen-scenes"
	_ = db.Exec("DELETE FROM seen_scenes WHERE session_id = ?", sessionID).Error

	repo := NewSeenSceneRepo(db)
	now := time.Now()
	if err := repo.MarkSeen(ctx, sessionID, "grand-opening", now); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := repo.MarkSeen(ctx, sessionID, "grand-opening", now.Add(time.Hour)); err != nil {
		t.Fatalf("re-mark: %v", err)
	}
	if err := repo.MarkSeen(ctx, sessionID, "first-rain", now); err != nil {
		t.Fatalf("mark second: %v", err)
	}

	seen, err := repo.ListSeen(ctx, sessionID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(seen) != 2 || seen[0] != "grand-opening" || seen[1] != "first-rain" {
		t.Fatalf("unexpected seen list: %v", seen)
	}
}

func TestEventRepo_AppendAndTailLimit(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	ctx := context.Background()
	sessionID := "it-event-log"
	_ = db.Exec("DELETE FROM domain_events WHERE session_id = ?", sessionID).Error

	repo := NewEventRepo(db)
	if err := repo.Append(ctx, sessionID, []ports.EventRecord{
		{Kind: "npc_moved", OccurredAt: time.Unix(100, 0), Payload: map[string]any{"npc": "mara", "to": "market"}},
		{Kind: "scene_resolved", OccurredAt: time.Unix(200, 0), Payload: map[string]any{"scene": "busker"}},
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	all, err := repo.ListBySessionID(ctx, sessionID, 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 || all[0].Kind != "npc_moved" {
		t.Fatalf("expected append order, got %+v", all)
	}
	if all[1].Payload["scene"] != "busker" {
		t.Fatalf("expected payload round trip, got %+v", all[1].Payload)
	}

	tail, err := repo.ListBySessionID(ctx, sessionID, 1)
	if err != nil {
		t.Fatalf("list tail: %v", err)
	}
	if len(tail) != 1 || tail[0].Kind != "scene_resolved" {
		t.Fatalf("expected latest event only, got %+v", tail)
	}

	if _, err := repo.ListBySessionID(ctx, sessionID+"-missing", 0); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not found for empty log, got %v", err)
	}
}

func TestTxManager_RollbackDiscardsSession(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	ctx := context.Background()
	sessionID := "it-tx-rollback"
	_ = db.Exec("DELETE FROM sessions WHERE session_id = ?", sessionID).Error

	txManager := NewTxManager(db)
	repo := NewSessionRepo(db)

	commitErr := txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return repo.SaveWithVersion(txCtx, ports.SessionRecord{
			SessionID: sessionID,
			Seed:      1,
			ClockAt:   time.Unix(0, 0).UTC(),
			StateBlob: []byte("x"),
			Version:   1,
		}, 0)
	})
	if commitErr != nil {
		t.Fatalf("commit tx failed: %v", commitErr)
	}
	if _, err := repo.GetByID(ctx, sessionID); err != nil {
		t.Fatalf("expected committed session, got %v", err)
	}

	rollbackErr := txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := repo.SaveWithVersion(txCtx, ports.SessionRecord{
			SessionID: sessionID + "-rb",
			Seed:      2,
			ClockAt:   time.Unix(0, 0).UTC(),
			StateBlob: []byte("y"),
			Version:   1,
		}, 0); err != nil {
			return err
		}
		return errors.New("force rollback")
	})
	if rollbackErr == nil {
		t.Fatalf("expected rollback error")
	}
	if _, err := repo.GetByID(ctx, sessionID+"-rb"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected rollback to discard session, got %v", err)
	}
}
