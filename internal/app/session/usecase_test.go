package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"townsim/internal/adapter/repo/memory"
	"townsim/internal/adapter/snapshot"
	"townsim/internal/app/ports"
	"townsim/internal/app/session"
	"townsim/internal/domain/npc"
	"townsim/internal/domain/schedule"
	"townsim/internal/domain/world"
)

func sampleState(t *testing.T) session.State {
	t.Helper()
	g := world.NewGraph()
	if err := g.AddLocation(&world.Location{
		ID: "maple-house", Name: "Maple House",
		Places: []world.Place{{ID: "home-mara", Name: "Mara's Flat", Kind: world.PlaceHome}},
	}); err != nil {
		t.Fatalf("add location: %v", err)
	}
	if err := g.AddLocation(&world.Location{ID: "old-mill", Name: "Old Mill"}); err != nil {
		t.Fatalf("add location: %v", err)
	}
	if _, err := g.Connect("maple-house", "old-mill", 7, 840, "Mill Road"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	return session.State{
		Seed:    99,
		ClockAt: time.Date(2026, 8, 24, 9, 30, 0, 0, time.UTC),
		World:   g.Snapshot(),
		NPCs: []npc.NPC{{
			ID:             "mara",
			Name:           "Mara",
			HomeLocationID: "maple-house",
			HomePlaceID:    "home-mara",
			Rules: []schedule.Rule{{
				ID:     "sleep",
				Kind:   schedule.KindHome,
				Target: schedule.Target{Kind: schedule.TargetHome},
				Window: schedule.Window{From: 0, To: 1440},
				Days:   schedule.AllDays,
			}},
		}},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	uc := session.UseCase{
		Sessions: memory.NewSessionStore(),
		Tx:       memory.TxManager{},
		Codec:    snapshot.Codec{},
	}

	st := sampleState(t)
	if err := uc.Save(ctx, "s1", st, 0); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, version, err := uc.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if version != 1 {
		t.Fatalf("expected version 1, got %d", version)
	}
	if got.Seed != 99 || !got.ClockAt.Equal(st.ClockAt) {
		t.Fatalf("unexpected state: seed=%d clock=%v", got.Seed, got.ClockAt)
	}
	if len(got.NPCs) != 1 || got.NPCs[0].ID != "mara" || len(got.NPCs[0].Rules) != 1 {
		t.Fatalf("npc roster did not survive round trip: %+v", got.NPCs)
	}
	if _, err := world.FromSnapshot(got.World); err != nil {
		t.Fatalf("world snapshot did not rehydrate: %v", err)
	}
}

func TestSaveStaleVersionConflicts(t *testing.T) {
	ctx := context.Background()
	uc := session.UseCase{
		Sessions: memory.NewSessionStore(),
		Codec:    snapshot.Codec{},
	}

	st := sampleState(t)
	if err := uc.Save(ctx, "s1", st, 0); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := uc.Save(ctx, "s1", st, 1); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := uc.Save(ctx, "s1", st, 1); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected conflict on stale version, got %v", err)
	}
}

func TestSaveRejectsEmptySessionID(t *testing.T) {
	uc := session.UseCase{Sessions: memory.NewSessionStore(), Codec: snapshot.Codec{}}
	if err := uc.Save(context.Background(), "", session.State{}, 0); !errors.Is(err, session.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestLoadMissingSession(t *testing.T) {
	uc := session.UseCase{Sessions: memory.NewSessionStore(), Codec: snapshot.Codec{}}
	if _, _, err := uc.Load(context.Background(), "nope"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
