package npc

import (
	"errors"
	"fmt"

	"townsim/internal/domain/schedule"
)

var ErrInvalidNPC = errors.New("invalid npc definition")

type Pronouns struct {
	Subject    string `json:"subject"`
	Object     string `json:"object"`
	Possessive string `json:"possessive"`
}

// NPC is one simulated resident. LocationID is the mutable current position;
// it belongs to the game loop, which updates it while applying schedule
// transitions. Everything else is fixed at creation.
type NPC struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Gender         string            `json:"gender"`
	Pronouns       Pronouns          `json:"pronouns"`
	Stats          map[string]int    `json:"stats,omitempty"`
	Flags          map[string]bool   `json:"flags,omitempty"`
	LocationID     string            `json:"location_id"`
	HomeLocationID string            `json:"home_location_id"`
	HomePlaceID    string            `json:"home_place_id,omitempty"`
	Rules          []schedule.Rule   `json:"rules,omitempty"`
	Meta           map[string]string `json:"meta,omitempty"`
}

func (n *NPC) StatValue(name string) int {
	return n.Stats[name]
}

func (n *NPC) HasFlag(name string) bool {
	return n.Flags[name]
}

// Available reports whether the NPC can take part in a scene right now.
// An NPC flagged unavailable (sick, away, plot-locked) never satisfies a
// scene's required-NPC check.
func (n *NPC) Available() bool {
	return !n.Flags["unavailable"]
}

// Validate fails fast on authoring mistakes.
func (n *NPC) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("npc without id: %w", ErrInvalidNPC)
	}
	if n.Name == "" {
		return fmt.Errorf("npc %s: missing name: %w", n.ID, ErrInvalidNPC)
	}
	if n.HomeLocationID == "" {
		return fmt.Errorf("npc %s: missing home location: %w", n.ID, ErrInvalidNPC)
	}
	for _, r := range n.Rules {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("npc %s: %w", n.ID, err)
		}
	}
	return nil
}
