package schedule

import (
	"errors"
	"fmt"

	"townsim/internal/domain/gameclock"
	"townsim/internal/domain/world"
)

var ErrInvalidRule = errors.New("invalid schedule rule")

// Kind identifies a rule variant. The integer value doubles as the rule's
// priority: when two proposals overlap, the higher kind wins the contested
// minutes.
type Kind int

const (
	KindHome Kind = iota
	KindRandom
	KindWeekly
	KindDaily
	KindFixed
	KindFollow
)

func (k Kind) Priority() int {
	return int(k)
}

func (k Kind) String() string {
	switch k {
	case KindHome:
		return "home"
	case KindRandom:
		return "random"
	case KindWeekly:
		return "weekly"
	case KindDaily:
		return "daily"
	case KindFixed:
		return "fixed"
	case KindFollow:
		return "follow"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func KindFromString(s string) (Kind, bool) {
	switch s {
	case "home":
		return KindHome, true
	case "random":
		return KindRandom, true
	case "weekly":
		return KindWeekly, true
	case "daily":
		return KindDaily, true
	case "fixed":
		return KindFixed, true
	case "follow":
		return KindFollow, true
	default:
		return 0, false
	}
}

type TargetKind int

const (
	TargetHome TargetKind = iota
	TargetPlace
	TargetPlaceKind
	TargetNPC
	TargetPlayer
	TargetUnavailable
)

// Target describes where a rule sends the NPC: an explicit place, the NPC's
// home, any location with a place of a given kind, or a person. Person and
// unavailable targets produce no standalone proposals.
type Target struct {
	Kind       TargetKind      `json:"kind"`
	LocationID string          `json:"location_id,omitempty"`
	PlaceID    string          `json:"place_id,omitempty"`
	PlaceKind  world.PlaceKind `json:"place_kind,omitempty"`
	NPCID      string          `json:"npc_id,omitempty"`
}

// Window is a day-relative interval in whole minutes. From is inclusive, To
// exclusive; To may be 1440 meaning end of day.
type Window struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (w Window) Duration() int {
	return w.To - w.From
}

func (w Window) validate() error {
	if w.From < 0 || w.To > gameclock.MinutesPerDay || w.From >= w.To {
		return fmt.Errorf("window [%d,%d): %w", w.From, w.To, ErrInvalidRule)
	}
	return nil
}

// DaySet is a bit set of eligible days, Monday = bit 0.
type DaySet uint8

const (
	Monday DaySet = 1 << iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday

	Weekdays = Monday | Tuesday | Wednesday | Thursday | Friday
	Weekend  = Saturday | Sunday
	AllDays  = Weekdays | Weekend
)

func (d DaySet) Has(day int) bool {
	return d&(1<<uint(day)) != 0
}

func (d DaySet) Count() int {
	n := 0
	for day := 0; day < 7; day++ {
		if d.Has(day) {
			n++
		}
	}
	return n
}

// Days lists the set's members in week order, Monday first.
func (d DaySet) Days() []int {
	out := []int{}
	for day := 0; day < 7; day++ {
		if d.Has(day) {
			out = append(out, day)
		}
	}
	return out
}

// Rule is one author-defined scheduling policy for an NPC. MinVisit and
// MaxVisit bound a random rule's visit length; Duration is a daily rule's
// visit length. All durations are whole minutes.
type Rule struct {
	ID       string `json:"id"`
	Kind     Kind   `json:"kind"`
	Target   Target `json:"target"`
	Window   Window `json:"window"`
	Days     DaySet `json:"days"`
	MinVisit int    `json:"min_visit,omitempty"`
	MaxVisit int    `json:"max_visit,omitempty"`
	Duration int    `json:"duration,omitempty"`
}

// Validate fails fast on malformed definitions; these are authoring errors,
// not runtime conditions.
func (r Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("rule without id: %w", ErrInvalidRule)
	}
	switch r.Kind {
	case KindHome, KindFollow:
		return nil
	case KindFixed, KindWeekly:
		if r.Days == 0 {
			return fmt.Errorf("rule %s: no eligible days: %w", r.ID, ErrInvalidRule)
		}
		return r.Window.validate()
	case KindDaily:
		if r.Days == 0 {
			return fmt.Errorf("rule %s: no eligible days: %w", r.ID, ErrInvalidRule)
		}
		if err := r.Window.validate(); err != nil {
			return fmt.Errorf("rule %s: %w", r.ID, err)
		}
		if r.Duration <= 0 {
			return fmt.Errorf("rule %s: daily rule needs a positive duration: %w", r.ID, ErrInvalidRule)
		}
		return nil
	case KindRandom:
		if r.Days == 0 {
			return fmt.Errorf("rule %s: no eligible days: %w", r.ID, ErrInvalidRule)
		}
		if err := r.Window.validate(); err != nil {
			return fmt.Errorf("rule %s: %w", r.ID, err)
		}
		if r.MinVisit <= 0 || r.MaxVisit < r.MinVisit {
			return fmt.Errorf("rule %s: bad visit bounds [%d,%d]: %w", r.ID, r.MinVisit, r.MaxVisit, ErrInvalidRule)
		}
		return nil
	default:
		return fmt.Errorf("rule %s: unknown kind %d: %w", r.ID, int(r.Kind), ErrInvalidRule)
	}
}
