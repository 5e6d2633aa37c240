package scene

import (
	"errors"
	"fmt"
)

var ErrInvalidScene = errors.New("invalid scene definition")

// State is the read-only game snapshot a scene is matched against. The core
// never interprets display strings; it only consumes ids, flags and stats.
type State struct {
	LocationID   string
	MinuteOfDay  int
	Flags        map[string]bool
	Stats        map[string]int
	NPCPresent   func(npcID string) bool
	NPCAvailable func(npcID string) bool
	SceneSeen    func(sceneID string) bool
}

// Effect is a data-described mutation a choice applies to game state.
type Effect struct {
	SetFlags map[string]bool `json:"set_flags,omitempty"`
	AddStats map[string]int  `json:"add_stats,omitempty"`
}

func (e Effect) Apply(flags map[string]bool, stats map[string]int) {
	for k, v := range e.SetFlags {
		flags[k] = v
	}
	for k, v := range e.AddStats {
		stats[k] += v
	}
}

type Choice struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Effect      Effect `json:"effect,omitempty"`
	NextSceneID string `json:"next_scene_id,omitempty"`
}

// Scene is an immutable narrative definition. Seen-state for once scenes
// lives on the game's flag storage, not here.
type Scene struct {
	ID         string      `json:"id"`
	Label      string      `json:"label"`
	Locations  []string    `json:"locations,omitempty"`
	Weight     int         `json:"weight"`
	Once       bool        `json:"once,omitempty"`
	Tags       []string    `json:"tags,omitempty"`
	Conditions []Predicate `json:"-"`
	NPCIDs     []string    `json:"npc_ids,omitempty"`
	Choices    []Choice    `json:"choices,omitempty"`
}

// CanFire checks every gate: not already seen for once scenes, location
// match, required NPCs present and available, and all custom conditions.
func (s *Scene) CanFire(st *State) bool {
	if s.Once && st.SceneSeen != nil && st.SceneSeen(s.ID) {
		return false
	}
	if len(s.Locations) > 0 {
		match := false
		for _, loc := range s.Locations {
			if loc == st.LocationID {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}
	for _, id := range s.NPCIDs {
		if st.NPCPresent == nil || !st.NPCPresent(id) {
			return false
		}
		if st.NPCAvailable != nil && !st.NPCAvailable(id) {
			return false
		}
	}
	for _, c := range s.Conditions {
		if !c.Evaluate(st) {
			return false
		}
	}
	return true
}

func (s *Scene) ChoiceByID(id string) (Choice, bool) {
	for _, c := range s.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}

// Catalog is the full ordered list of scene definitions. Iteration order is
// insertion order; the weighted roll depends on it only through the
// cumulative sum.
type Catalog struct {
	scenes []*Scene
	byID   map[string]*Scene
}

func NewCatalog() *Catalog {
	return &Catalog{byID: map[string]*Scene{}}
}

// Add validates at definition time: a missing id or label, a duplicate id or
// a choice without an id is a programmer error surfaced immediately, not a
// runtime condition.
func (c *Catalog) Add(s *Scene) error {
	if s.ID == "" {
		return fmt.Errorf("scene without id: %w", ErrInvalidScene)
	}
	if s.Label == "" {
		return fmt.Errorf("scene %s: missing label: %w", s.ID, ErrInvalidScene)
	}
	if _, ok := c.byID[s.ID]; ok {
		return fmt.Errorf("scene %s: duplicate id: %w", s.ID, ErrInvalidScene)
	}
	if s.Weight <= 0 {
		return fmt.Errorf("scene %s: weight must be positive: %w", s.ID, ErrInvalidScene)
	}
	for _, ch := range s.Choices {
		if ch.ID == "" || ch.Label == "" {
			return fmt.Errorf("scene %s: choice needs id and label: %w", s.ID, ErrInvalidScene)
		}
	}
	c.scenes = append(c.scenes, s)
	c.byID[s.ID] = s
	return nil
}

func (c *Catalog) Get(id string) (*Scene, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Scenes returns definitions in insertion order.
func (c *Catalog) Scenes() []*Scene {
	out := make([]*Scene, len(c.scenes))
	copy(out, c.scenes)
	return out
}

func (c *Catalog) Len() int {
	return len(c.scenes)
}
