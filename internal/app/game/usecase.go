// Package game owns the running simulation: the clock cursor, the NPC
// roster, and the player's flag and stat bags. All mutation goes through
// this use case so position updates, event logging and observer fan-out
// stay consistent.
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"townsim/internal/app/ports"
	"townsim/internal/app/scheduling"
	"townsim/internal/domain/gameclock"
	"townsim/internal/domain/npc"
	"townsim/internal/domain/scene"
	"townsim/internal/domain/schedule"
	"townsim/internal/domain/world"
)

var ErrUnknownNPC = errors.New("unknown npc")

// EventPublisher pushes events to connected observers. A nil publisher is
// allowed and means no observers.
type EventPublisher interface {
	Publish(events []ports.EventRecord)
}

type UseCase struct {
	mu sync.Mutex

	graph     *world.Graph
	calendar  gameclock.Calendar
	scheduler *scheduling.Scheduler
	events    ports.EventRepository
	publisher EventPublisher
	sessionID string

	now   time.Time
	npcs  map[string]*npc.NPC
	order []string
	flags map[string]bool
	stats map[string]int
}

type Config struct {
	Graph     *world.Graph
	Calendar  gameclock.Calendar
	Scheduler *scheduling.Scheduler
	Events    ports.EventRepository
	Publisher EventPublisher
	SessionID string
	StartAt   time.Time
	NPCs      []*npc.NPC
}

func New(cfg Config) (*UseCase, error) {
	u := &UseCase{
		graph:     cfg.Graph,
		calendar:  cfg.Calendar,
		scheduler: cfg.Scheduler,
		events:    cfg.Events,
		publisher: cfg.Publisher,
		sessionID: cfg.SessionID,
		now:       cfg.StartAt,
		npcs:      map[string]*npc.NPC{},
		flags:     map[string]bool{},
		stats:     map[string]int{},
	}
	for _, n := range cfg.NPCs {
		if err := n.Validate(); err != nil {
			return nil, err
		}
		if _, ok := u.npcs[n.ID]; ok {
			return nil, fmt.Errorf("npc %s: duplicate id", n.ID)
		}
		if _, ok := cfg.Graph.Location(n.HomeLocationID); !ok {
			return nil, fmt.Errorf("npc %s: home %s: %w", n.ID, n.HomeLocationID, world.ErrUnknownLocation)
		}
		u.npcs[n.ID] = n
		u.order = append(u.order, n.ID)
	}
	return u, nil
}

func (u *UseCase) Now() time.Time {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.now
}

// AdvanceClock moves game time forward and walks every NPC across the slot
// boundaries in the covered interval. Movement events are appended to the
// session log and fanned out to observers.
func (u *UseCase) AdvanceClock(ctx context.Context, d time.Duration) ([]ports.EventRecord, error) {
	if d <= 0 {
		return nil, fmt.Errorf("advance clock: non-positive duration %s", d)
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	from := u.now
	to := from.Add(d)
	all := []ports.EventRecord{}
	for _, id := range u.order {
		events, err := u.scheduler.ApplyTransitions(u.npcs[id], from, to)
		if err != nil {
			return nil, fmt.Errorf("advance %s: %w", id, err)
		}
		all = append(all, events...)
	}
	u.now = to

	if len(all) > 0 {
		if u.events != nil {
			if err := u.events.Append(ctx, u.sessionID, all); err != nil {
				return nil, fmt.Errorf("log events: %w", err)
			}
		}
		if u.publisher != nil {
			u.publisher.Publish(all)
		}
	}
	return all, nil
}

func (u *UseCase) NPC(id string) (*npc.NPC, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	n, ok := u.npcs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNPC, id)
	}
	return n, nil
}

// NPCs returns the roster in registration order.
func (u *UseCase) NPCs() []*npc.NPC {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]*npc.NPC, 0, len(u.order))
	for _, id := range u.order {
		out = append(out, u.npcs[id])
	}
	return out
}

func (u *UseCase) Graph() *world.Graph {
	return u.graph
}

// WeekSchedule returns the NPC's resolved schedule for the week containing
// the current game time.
func (u *UseCase) WeekSchedule(npcID string) ([]schedule.Slot, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	n, ok := u.npcs[npcID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNPC, npcID)
	}
	return u.scheduler.WeekSchedule(n, u.now)
}

// LocationAt answers where an NPC is at an arbitrary instant, past or future.
func (u *UseCase) LocationAt(npcID string, at time.Time) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	n, ok := u.npcs[npcID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownNPC, npcID)
	}
	return u.scheduler.LocationAt(n, at)
}

// SceneState snapshots the game for scene matching at the given location.
// Presence is evaluated against the schedule at the current time, so an NPC
// counts as present even if the loop has not walked them there yet. The flag
// and stat bags are copied, so predicate evaluation on the snapshot never
// races a concurrent effect application.
func (u *UseCase) SceneState(locationID string) *scene.State {
	u.mu.Lock()
	defer u.mu.Unlock()

	flags := make(map[string]bool, len(u.flags))
	for k, v := range u.flags {
		flags[k] = v
	}
	stats := make(map[string]int, len(u.stats))
	for k, v := range u.stats {
		stats[k] = v
	}

	at := u.now
	return &scene.State{
		LocationID:  locationID,
		MinuteOfDay: u.calendar.MinuteOfDay(at),
		Flags:       flags,
		Stats:       stats,
		NPCPresent: func(npcID string) bool {
			u.mu.Lock()
			defer u.mu.Unlock()
			n, ok := u.npcs[npcID]
			if !ok {
				return false
			}
			loc, err := u.scheduler.LocationAt(n, at)
			return err == nil && loc == locationID
		},
		NPCAvailable: func(npcID string) bool {
			u.mu.Lock()
			defer u.mu.Unlock()
			n, ok := u.npcs[npcID]
			return ok && n.Available()
		},
	}
}

// ApplyEffect mutates the shared flag and stat bags under the game lock.
func (u *UseCase) ApplyEffect(e scene.Effect) {
	u.mu.Lock()
	defer u.mu.Unlock()
	e.Apply(u.flags, u.stats)
}

// Flags returns a copy of the flag bag.
func (u *UseCase) Flags() map[string]bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make(map[string]bool, len(u.flags))
	for k, v := range u.flags {
		out[k] = v
	}
	return out
}

// Stats returns a copy of the stat bag.
func (u *UseCase) Stats() map[string]int {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make(map[string]int, len(u.stats))
	for k, v := range u.stats {
		out[k] = v
	}
	return out
}
