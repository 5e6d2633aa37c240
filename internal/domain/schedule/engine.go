package schedule

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"townsim/internal/domain/gameclock"
	"townsim/internal/domain/world"
)

// Engine turns one NPC's rule set into a gapless weekly timeline. All
// randomness happens while generating proposals; resolving overlaps is fully
// deterministic.
type Engine struct {
	Graph *world.Graph
}

const travelPriority = 1 << 10

type proposal struct {
	start      int // week-relative minutes
	end        int
	priority   int
	seq        int
	activity   string
	locationID string
	ruleID     string
}

type segment struct {
	start      int
	end        int
	priority   int
	activity   string
	locationID string
	ruleID     string
}

// GenerateWeek produces the resolved slot list for the week beginning at
// weekStart. The result always covers [weekStart, weekStart+7d) exactly;
// anything less is reported as ErrBrokenTimeline rather than patched.
func (e Engine) GenerateWeek(rules []Rule, homeLocationID string, weekStart time.Time, rng *rand.Rand) ([]Slot, error) {
	if _, ok := e.Graph.Location(homeLocationID); !ok {
		return nil, fmt.Errorf("generate week: %w: %s", world.ErrUnknownLocation, homeLocationID)
	}
	homeRuleID := ""
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if r.Kind == KindHome && homeRuleID == "" {
			homeRuleID = r.ID
		}
	}

	proposals := e.propose(rules, homeLocationID, rng)
	segs := resolve(proposals)
	segs = e.insertTravel(segs, homeLocationID)
	segs = fillGaps(segs, homeLocationID, homeRuleID)

	slots := make([]Slot, 0, len(segs))
	for _, s := range segs {
		slots = append(slots, Slot{
			From:       gameclock.At(weekStart, s.start),
			To:         gameclock.At(weekStart, s.end),
			Activity:   s.activity,
			LocationID: s.locationID,
			RuleID:     s.ruleID,
		})
	}
	slots = mergeSlots(slots)
	if err := ValidateWeek(slots, weekStart); err != nil {
		return nil, err
	}
	return slots, nil
}

// propose generates candidate intervals for every rule. Home rules propose
// nothing: home is the background that fills whatever remains unclaimed.
// Follow rules are declared but inert.
func (e Engine) propose(rules []Rule, home string, rng *rand.Rand) []proposal {
	out := []proposal{}
	seq := 0
	add := func(r Rule, start, end int, locationID string) {
		if start < 0 {
			start = 0
		}
		if end > gameclock.MinutesPerWeek {
			end = gameclock.MinutesPerWeek
		}
		if start >= end {
			return
		}
		out = append(out, proposal{
			start:      start,
			end:        end,
			priority:   r.Kind.Priority(),
			seq:        seq,
			activity:   r.Kind.String(),
			locationID: locationID,
			ruleID:     r.ID,
		})
		seq++
	}

	for _, r := range rules {
		switch r.Kind {
		case KindFixed:
			loc, ok := e.resolveTarget(r.Target, home, rng)
			if !ok {
				continue
			}
			for _, day := range r.Days.Days() {
				base := day * gameclock.MinutesPerDay
				add(r, base+r.Window.From, base+r.Window.To, loc)
			}

		case KindWeekly:
			loc, ok := e.resolveTarget(r.Target, home, rng)
			if !ok {
				continue
			}
			days := r.Days.Days()
			day := days[rng.Intn(len(days))]
			base := day * gameclock.MinutesPerDay
			add(r, base+r.Window.From, base+r.Window.To, loc)

		case KindDaily:
			loc, ok := e.resolveTarget(r.Target, home, rng)
			if !ok {
				continue
			}
			for _, day := range r.Days.Days() {
				latest := r.Window.To - r.Duration
				if latest < r.Window.From {
					continue
				}
				start := r.Window.From + rng.Intn(latest-r.Window.From+1)
				base := day * gameclock.MinutesPerDay
				add(r, base+start, base+start+r.Duration, loc)
			}

		case KindRandom:
			for _, day := range r.Days.Days() {
				base := day * gameclock.MinutesPerDay
				cursor := r.Window.From
				for {
					loc, ok := e.resolveTarget(r.Target, home, rng)
					if !ok {
						break
					}
					span := r.MinVisit + rng.Intn(r.MaxVisit-r.MinVisit+1)
					travel, _ := e.Graph.TravelMinutes(home, loc)
					// Stop when the rest of the window cannot hold one more
					// visit plus the trip there and back.
					if cursor+travel+span+travel > r.Window.To {
						break
					}
					add(r, base+cursor+travel, base+cursor+travel+span, loc)
					cursor += travel + span + travel
				}
			}

		case KindHome, KindFollow:
			// No proposals.
		}
	}
	return out
}

func (e Engine) resolveTarget(t Target, home string, rng *rand.Rand) (string, bool) {
	switch t.Kind {
	case TargetHome:
		return home, true
	case TargetPlace:
		if t.LocationID != "" {
			_, ok := e.Graph.Location(t.LocationID)
			return t.LocationID, ok
		}
		for _, id := range e.Graph.LocationIDs() {
			loc, _ := e.Graph.Location(id)
			if _, ok := loc.PlaceByID(t.PlaceID); ok {
				return id, true
			}
		}
		return "", false
	case TargetPlaceKind:
		candidates := e.Graph.LocationsWithPlaceKind(t.PlaceKind)
		if len(candidates) == 0 {
			return "", false
		}
		return candidates[rng.Intn(len(candidates))], true
	default:
		// NPC, player and unavailable targets have no standalone placement.
		return "", false
	}
}

// resolve assigns each minute of the week to the winning proposal: highest
// priority first, earlier start breaking ties, original order after that.
// Claiming is first-come on the sorted order, so a lower-priority proposal
// keeps whatever fragments the winners left uncovered.
func resolve(proposals []proposal) []segment {
	sorted := make([]proposal, len(proposals))
	copy(sorted, proposals)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].priority != sorted[j].priority {
			return sorted[i].priority > sorted[j].priority
		}
		if sorted[i].start != sorted[j].start {
			return sorted[i].start < sorted[j].start
		}
		return sorted[i].seq < sorted[j].seq
	})

	winner := make([]int, gameclock.MinutesPerWeek)
	for m := range winner {
		winner[m] = -1
	}
	for idx, p := range sorted {
		for m := p.start; m < p.end; m++ {
			if winner[m] == -1 {
				winner[m] = idx
			}
		}
	}

	segs := []segment{}
	for m := 0; m < gameclock.MinutesPerWeek; {
		idx := winner[m]
		end := m + 1
		for end < gameclock.MinutesPerWeek && winner[end] == idx {
			end++
		}
		if idx >= 0 {
			p := sorted[idx]
			segs = append(segs, segment{
				start:      m,
				end:        end,
				priority:   p.priority,
				activity:   p.activity,
				locationID: p.locationID,
				ruleID:     p.ruleID,
			})
		} else {
			segs = append(segs, segment{start: m, end: end, priority: -1})
		}
		m = end
	}
	return segs
}

// insertTravel adds a transit segment wherever consecutive segments sit at
// different locations. The trip is carved out of the lower-priority side so
// a fixed appointment keeps its full window and the surrounding slack pays
// for the walk. Unclaimed segments count as home for this purpose.
func (e Engine) insertTravel(segs []segment, home string) []segment {
	out := make([]segment, 0, len(segs)+4)
	for _, b := range segs {
		if len(out) == 0 {
			out = append(out, b)
			continue
		}
		a := &out[len(out)-1]
		locA, locB := a.locationID, b.locationID
		if locA == "" {
			locA = home
		}
		if locB == "" {
			locB = home
		}
		if locA == locB {
			out = append(out, b)
			continue
		}
		minutes, ok := e.Graph.TravelMinutes(locA, locB)
		if !ok || minutes <= 0 {
			out = append(out, b)
			continue
		}
		trip := segment{priority: travelPriority, activity: ActivityTravel, locationID: locB}
		if a.priority <= b.priority {
			carve := minutes
			if carve > a.end-a.start {
				carve = a.end - a.start
			}
			a.end -= carve
			trip.start = a.end
			trip.end = trip.start + carve
			if a.end == a.start {
				out = out[:len(out)-1]
			}
			out = append(out, trip, b)
		} else {
			carve := minutes
			if carve > b.end-b.start {
				carve = b.end - b.start
			}
			trip.start = b.start
			trip.end = b.start + carve
			b.start += carve
			out = append(out, trip)
			if b.start < b.end {
				out = append(out, b)
			}
		}
	}
	return out
}

// fillGaps rewrites unclaimed segments as home slots.
func fillGaps(segs []segment, home, homeRuleID string) []segment {
	out := make([]segment, len(segs))
	copy(out, segs)
	for i := range out {
		if out[i].locationID == "" {
			out[i].locationID = home
			out[i].activity = ActivityHome
			out[i].ruleID = homeRuleID
		}
	}
	return out
}
