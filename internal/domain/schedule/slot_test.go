package schedule

import (
	"errors"
	"testing"

	"townsim/internal/domain/gameclock"
)

func minuteSlot(from, to int, loc string) Slot {
	return Slot{
		From:       gameclock.At(weekStart, from),
		To:         gameclock.At(weekStart, to),
		Activity:   ActivityHome,
		LocationID: loc,
	}
}

func TestValidateWeekAcceptsFullCoverage(t *testing.T) {
	slots := []Slot{
		minuteSlot(0, 5000, "A"),
		minuteSlot(5000, 5010, "B"),
		minuteSlot(5010, gameclock.MinutesPerWeek, "A"),
	}
	if err := ValidateWeek(slots, weekStart); err != nil {
		t.Fatalf("expected valid week, got %v", err)
	}
}

func TestValidateWeekRejectsGap(t *testing.T) {
	slots := []Slot{
		minuteSlot(0, 5000, "A"),
		minuteSlot(5001, gameclock.MinutesPerWeek, "A"),
	}
	if err := ValidateWeek(slots, weekStart); !errors.Is(err, ErrBrokenTimeline) {
		t.Fatalf("expected ErrBrokenTimeline for gap, got %v", err)
	}
}

func TestValidateWeekRejectsOverlap(t *testing.T) {
	slots := []Slot{
		minuteSlot(0, 5000, "A"),
		minuteSlot(4999, gameclock.MinutesPerWeek, "A"),
	}
	if err := ValidateWeek(slots, weekStart); !errors.Is(err, ErrBrokenTimeline) {
		t.Fatalf("expected ErrBrokenTimeline for overlap, got %v", err)
	}
}

func TestValidateWeekRejectsWrongBounds(t *testing.T) {
	late := []Slot{minuteSlot(1, gameclock.MinutesPerWeek, "A")}
	if err := ValidateWeek(late, weekStart); !errors.Is(err, ErrBrokenTimeline) {
		t.Fatalf("expected error for late start, got %v", err)
	}
	short := []Slot{minuteSlot(0, gameclock.MinutesPerWeek-1, "A")}
	if err := ValidateWeek(short, weekStart); !errors.Is(err, ErrBrokenTimeline) {
		t.Fatalf("expected error for short week, got %v", err)
	}
	if err := ValidateWeek(nil, weekStart); !errors.Is(err, ErrBrokenTimeline) {
		t.Fatalf("expected error for empty week, got %v", err)
	}
}

func TestSlotContainsHalfOpen(t *testing.T) {
	s := minuteSlot(100, 200, "A")
	if !s.Contains(gameclock.At(weekStart, 100)) {
		t.Fatalf("expected From to be inside")
	}
	if s.Contains(gameclock.At(weekStart, 200)) {
		t.Fatalf("expected To to be outside")
	}
}

func TestMergeSlotsCollapsesIdenticalRuns(t *testing.T) {
	a := minuteSlot(0, 100, "A")
	b := minuteSlot(100, 200, "A")
	c := minuteSlot(200, 300, "B")
	merged := mergeSlots([]Slot{a, b, c})
	if len(merged) != 2 {
		t.Fatalf("expected 2 slots after merge, got %d", len(merged))
	}
	if !merged[0].From.Equal(a.From) || !merged[0].To.Equal(b.To) {
		t.Fatalf("unexpected merged bounds: %+v", merged[0])
	}
}

func TestMergeSlotsKeepsDistinctRules(t *testing.T) {
	a := minuteSlot(0, 100, "A")
	b := minuteSlot(100, 200, "A")
	b.RuleID = "other"
	merged := mergeSlots([]Slot{a, b})
	if len(merged) != 2 {
		t.Fatalf("expected distinct rules to stay separate, got %d slots", len(merged))
	}
}
