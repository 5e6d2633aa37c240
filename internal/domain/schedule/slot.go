package schedule

import (
	"errors"
	"fmt"
	"time"

	"townsim/internal/domain/gameclock"
)

var ErrBrokenTimeline = errors.New("schedule timeline violates coverage invariant")

const (
	ActivityHome   = "home"
	ActivityTravel = "travel"
)

// Slot assigns one NPC to one location for a half-open interval [From, To).
type Slot struct {
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	Activity   string    `json:"activity"`
	LocationID string    `json:"location_id"`
	RuleID     string    `json:"rule_id,omitempty"`
}

func (s Slot) Contains(t time.Time) bool {
	return !t.Before(s.From) && t.Before(s.To)
}

// ValidateWeek checks the coverage invariant: slots in order, no gap, no
// overlap, first slot opens at weekStart and last closes exactly one week
// later. A violation is a generation bug and is never patched silently.
func ValidateWeek(slots []Slot, weekStart time.Time) error {
	if len(slots) == 0 {
		return fmt.Errorf("empty week: %w", ErrBrokenTimeline)
	}
	if !slots[0].From.Equal(weekStart) {
		return fmt.Errorf("first slot opens at %s, want week start %s: %w",
			slots[0].From, weekStart, ErrBrokenTimeline)
	}
	weekEnd := weekStart.Add(gameclock.WeekDuration)
	if !slots[len(slots)-1].To.Equal(weekEnd) {
		return fmt.Errorf("last slot closes at %s, want week end %s: %w",
			slots[len(slots)-1].To, weekEnd, ErrBrokenTimeline)
	}
	for i, s := range slots {
		if !s.From.Before(s.To) {
			return fmt.Errorf("slot %d is empty or inverted [%s,%s): %w", i, s.From, s.To, ErrBrokenTimeline)
		}
		if s.LocationID == "" {
			return fmt.Errorf("slot %d has no location: %w", i, ErrBrokenTimeline)
		}
		if i > 0 && !slots[i-1].To.Equal(s.From) {
			return fmt.Errorf("gap or overlap between slot %d and %d (%s vs %s): %w",
				i-1, i, slots[i-1].To, s.From, ErrBrokenTimeline)
		}
	}
	return nil
}

// mergeSlots collapses adjacent slots that describe the same activity at the
// same location from the same rule. Purely an output optimization.
func mergeSlots(slots []Slot) []Slot {
	if len(slots) < 2 {
		return slots
	}
	out := slots[:1]
	for _, s := range slots[1:] {
		last := &out[len(out)-1]
		if last.To.Equal(s.From) && last.Activity == s.Activity &&
			last.LocationID == s.LocationID && last.RuleID == s.RuleID {
			last.To = s.To
			continue
		}
		out = append(out, s)
	}
	return out
}
