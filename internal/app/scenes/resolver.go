package scenes

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"townsim/internal/app/ports"
	"townsim/internal/domain/scene"
)

var (
	ErrNoActiveScene = errors.New("no active scene")
	ErrUnknownChoice = errors.New("unknown choice")
)

// Active is one running scene instance bound to game state.
type Active struct {
	InstanceID string
	Scene      *scene.Scene
	ResolvedAt time.Time
}

// EffectSink applies a choice's effect to shared game state under the game's
// own locking discipline.
type EffectSink interface {
	ApplyEffect(e scene.Effect)
}

// Resolver runs the two-state scene machine: idle until Resolve picks a
// candidate, active until Choose settles it. Randomness comes only from the
// dedicated scene stream; filtering and fallback are deterministic. The
// mutex serializes concurrent HTTP requests over the single machine.
type Resolver struct {
	Catalog   *scene.Catalog
	Fallback  *scene.Scene
	Seen      ports.SeenSceneRepository
	Events    ports.EventRepository
	Metrics   ports.SimMetrics
	Effects   EffectSink
	Rand      *rand.Rand
	SessionID string
	Now       func() time.Time

	mu     sync.Mutex
	active *Active
}

func (r *Resolver) Active() *Active {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Resolve filters the catalog in insertion order, weighted-picks one
// candidate and activates it. With no candidates the designated fallback
// scene activates instead; the fallback is never marked seen.
func (r *Resolver) Resolve(ctx context.Context, st *scene.State) (*Active, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	seen, err := r.seenSet(ctx)
	if err != nil {
		return nil, err
	}
	st.SceneSeen = func(id string) bool { return seen[id] }

	candidates := []*scene.Scene{}
	for _, s := range r.Catalog.Scenes() {
		if s.CanFire(st) {
			candidates = append(candidates, s)
		}
	}

	picked := scene.WeightedPick(candidates, r.Rand)
	if picked == nil {
		picked = r.Fallback
		if picked == nil {
			return nil, fmt.Errorf("no scene candidates and no fallback configured")
		}
		if r.Metrics != nil {
			r.Metrics.RecordSceneFallback()
		}
	} else {
		if r.Metrics != nil {
			r.Metrics.RecordSceneResolved(picked.ID)
		}
		if picked.Once && r.Seen != nil {
			if err := r.Seen.MarkSeen(ctx, r.SessionID, picked.ID, now); err != nil {
				return nil, fmt.Errorf("mark seen %s: %w", picked.ID, err)
			}
		}
	}

	r.active = &Active{InstanceID: uuid.NewString(), Scene: picked, ResolvedAt: now}
	r.appendEvent(ctx, ports.EventRecord{
		Kind:       "scene_resolved",
		OccurredAt: now,
		Payload: map[string]any{
			"scene_id":    picked.ID,
			"instance_id": r.active.InstanceID,
			"fallback":    len(candidates) == 0,
			"location_id": st.LocationID,
		},
	})
	return r.active, nil
}

// Choose applies the selected choice's effect to the game's flag and stat
// bags. A choice with a NextSceneID jumps straight to that scene; otherwise
// the machine returns to idle and the caller resolves again when ready.
//
// Effects go through the sink when one is wired, so the mutation happens
// under the game's lock rather than on the caller's state snapshot.
func (r *Resolver) Choose(ctx context.Context, st *scene.State, choiceID string) (*Active, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil {
		return nil, ErrNoActiveScene
	}
	ch, ok := r.active.Scene.ChoiceByID(choiceID)
	if !ok {
		return nil, fmt.Errorf("scene %s: %w: %s", r.active.Scene.ID, ErrUnknownChoice, choiceID)
	}

	if r.Effects != nil {
		r.Effects.ApplyEffect(ch.Effect)
	} else {
		ch.Effect.Apply(st.Flags, st.Stats)
	}
	now := r.now()
	r.appendEvent(ctx, ports.EventRecord{
		Kind:       "scene_choice",
		OccurredAt: now,
		Payload: map[string]any{
			"scene_id":  r.active.Scene.ID,
			"choice_id": ch.ID,
		},
	})
	r.active = nil

	if ch.NextSceneID == "" {
		return nil, nil
	}
	next, ok := r.Catalog.Get(ch.NextSceneID)
	if !ok {
		return nil, fmt.Errorf("choice %s: %w: next scene %s", ch.ID, ports.ErrNotFound, ch.NextSceneID)
	}
	r.active = &Active{InstanceID: uuid.NewString(), Scene: next, ResolvedAt: now}
	return r.active, nil
}

func (r *Resolver) seenSet(ctx context.Context) (map[string]bool, error) {
	out := map[string]bool{}
	if r.Seen == nil {
		return out, nil
	}
	ids, err := r.Seen.ListSeen(ctx, r.SessionID)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("list seen scenes: %w", err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *Resolver) appendEvent(ctx context.Context, evt ports.EventRecord) {
	if r.Events == nil {
		return
	}
	// Event logging is best effort; a failed append must not kill the scene.
	_ = r.Events.Append(ctx, r.SessionID, []ports.EventRecord{evt})
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
