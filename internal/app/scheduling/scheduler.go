package scheduling

import (
	"fmt"
	"time"

	"townsim/internal/app/ports"
	"townsim/internal/domain/gameclock"
	"townsim/internal/domain/npc"
	"townsim/internal/domain/rng"
	"townsim/internal/domain/schedule"
	"townsim/internal/domain/world"
)

// Scheduler memoizes resolved weeks per NPC and answers "where is X at
// time T" queries. It is a pure function of (rules, world, week) plus the
// named random stream; it never mutates npc.LocationID itself — the game
// loop does that through ApplyTransitions.
//
// Single-writer discipline: all calls happen on the game loop goroutine.
type Scheduler struct {
	Engine   schedule.Engine
	Calendar gameclock.Calendar
	Streams  rng.Streams
	Metrics  ports.SimMetrics

	cache map[cacheKey][]schedule.Slot
}

// cacheKey identifies one NPC's week, so arbitrary-time queries for past or
// future weeks never evict the current week's memoized schedule.
type cacheKey struct {
	npcID     string
	weekStart int64
}

func New(graph *world.Graph, cal gameclock.Calendar, streams rng.Streams, metrics ports.SimMetrics) *Scheduler {
	return &Scheduler{
		Engine:   schedule.Engine{Graph: graph},
		Calendar: cal,
		Streams:  streams,
		Metrics:  metrics,
		cache:    map[cacheKey][]schedule.Slot{},
	}
}

// WeekSchedule returns the resolved slot list for the week containing now,
// generating and memoizing it on first call or after a week rollover.
func (s *Scheduler) WeekSchedule(n *npc.NPC, now time.Time) ([]schedule.Slot, error) {
	weekStart := s.Calendar.WeekStart(now)
	key := cacheKey{npcID: n.ID, weekStart: weekStart.Unix()}
	if slots, ok := s.cache[key]; ok {
		if s.Metrics != nil {
			s.Metrics.RecordScheduleCacheHit()
		}
		return slots, nil
	}

	stream := s.Streams.Stream(streamName(n.ID, weekStart))
	slots, err := s.Engine.GenerateWeek(n.Rules, n.HomeLocationID, weekStart, stream)
	if err != nil {
		return nil, fmt.Errorf("schedule %s: %w", n.ID, err)
	}
	s.cache[key] = slots
	if s.Metrics != nil {
		s.Metrics.RecordWeekGenerated(n.ID)
	}
	return slots, nil
}

// LocationAt binary-searches the week's slot list for the slot covering the
// given instant. The gapless invariant means a miss should not happen; the
// home location is the defined safe fallback anyway.
func (s *Scheduler) LocationAt(n *npc.NPC, at time.Time) (string, error) {
	slots, err := s.WeekSchedule(n, at)
	if err != nil {
		return "", err
	}
	if slot, ok := findSlot(slots, at); ok {
		return slot.LocationID, nil
	}
	return n.HomeLocationID, nil
}

// SlotAt is LocationAt with the full slot, for callers that need the
// activity or source rule.
func (s *Scheduler) SlotAt(n *npc.NPC, at time.Time) (schedule.Slot, error) {
	slots, err := s.WeekSchedule(n, at)
	if err != nil {
		return schedule.Slot{}, err
	}
	if slot, ok := findSlot(slots, at); ok {
		return slot, nil
	}
	return schedule.Slot{
		From:       at,
		To:         at,
		Activity:   schedule.ActivityHome,
		LocationID: n.HomeLocationID,
	}, nil
}

// ApplyTransitions advances the NPC's position across every slot boundary in
// (from, to], mutating npc.LocationID on the caller's behalf, and returns one
// event per actual location change.
func (s *Scheduler) ApplyTransitions(n *npc.NPC, from, to time.Time) ([]ports.EventRecord, error) {
	if !from.Before(to) {
		return nil, nil
	}
	events := []ports.EventRecord{}
	cursor := from
	for cursor.Before(to) {
		slot, err := s.SlotAt(n, cursor)
		if err != nil {
			return nil, err
		}
		if slot.LocationID != n.LocationID {
			prev := n.LocationID
			n.LocationID = slot.LocationID
			events = append(events, ports.EventRecord{
				Kind:       "npc_moved",
				OccurredAt: slot.From,
				Payload: map[string]any{
					"npc_id":   n.ID,
					"from":     prev,
					"to":       slot.LocationID,
					"activity": slot.Activity,
					"rule_id":  slot.RuleID,
				},
			})
		}
		if !slot.To.After(cursor) {
			break
		}
		cursor = slot.To
	}
	return events, nil
}

// Invalidate drops the cached weeks for one NPC, or for all NPCs when id is
// empty. Used on explicit world reset.
func (s *Scheduler) Invalidate(npcID string) {
	if npcID == "" {
		s.cache = map[cacheKey][]schedule.Slot{}
		return
	}
	for k := range s.cache {
		if k.npcID == npcID {
			delete(s.cache, k)
		}
	}
}

func findSlot(slots []schedule.Slot, at time.Time) (schedule.Slot, bool) {
	lo, hi := 0, len(slots)
	for lo < hi {
		mid := (lo + hi) / 2
		if slots[mid].Contains(at) {
			return slots[mid], true
		}
		if at.Before(slots[mid].From) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return schedule.Slot{}, false
}

func streamName(npcID string, weekStart time.Time) string {
	return "schedule/" + npcID + "/" + weekStart.Format("2006-01-02")
}
