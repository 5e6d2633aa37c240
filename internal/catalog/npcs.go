package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"townsim/internal/domain/npc"
	"townsim/internal/domain/schedule"
	"townsim/internal/domain/world"
)

var npcsSchema = mustCompileSchema("npcs.schema.json", `{
  "type": "object",
  "required": ["npcs"],
  "properties": {
    "npcs": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name", "home_location"],
        "properties": {
          "id":            {"type": "string", "minLength": 1},
          "name":          {"type": "string", "minLength": 1},
          "gender":        {"type": "string"},
          "pronouns": {
            "type": "object",
            "properties": {
              "subject":    {"type": "string"},
              "object":     {"type": "string"},
              "possessive": {"type": "string"}
            },
            "additionalProperties": false
          },
          "home_location": {"type": "string", "minLength": 1},
          "home_place":    {"type": "string"},
          "stats":         {"type": "object", "additionalProperties": {"type": "integer"}},
          "flags":         {"type": "object", "additionalProperties": {"type": "boolean"}},
          "meta":          {"type": "object", "additionalProperties": {"type": "string"}},
          "rules": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["id", "kind"],
              "properties": {
                "id":        {"type": "string", "minLength": 1},
                "kind":      {"enum": ["home", "random", "weekly", "daily", "fixed", "follow"]},
                "days":      {"type": "array", "items": {"type": "string"}},
                "window":    {"type": "string", "pattern": "^[0-9]{2}:[0-9]{2}-[0-9]{2}:[0-9]{2}$"},
                "duration":  {"type": "integer", "minimum": 1},
                "min_visit": {"type": "integer", "minimum": 1},
                "max_visit": {"type": "integer", "minimum": 1},
                "target": {
                  "type": "object",
                  "properties": {
                    "home":        {"type": "boolean"},
                    "location":    {"type": "string"},
                    "place":       {"type": "string"},
                    "place_kind":  {"type": "string"},
                    "npc":         {"type": "string"},
                    "player":      {"type": "boolean"},
                    "unavailable": {"type": "boolean"}
                  },
                  "additionalProperties": false
                }
              },
              "additionalProperties": false
            }
          }
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}`)

type npcFile struct {
	NPCs []npcDef `yaml:"npcs"`
}

type npcDef struct {
	ID           string            `yaml:"id"`
	Name         string            `yaml:"name"`
	Gender       string            `yaml:"gender"`
	Pronouns     pronounsDef       `yaml:"pronouns"`
	HomeLocation string            `yaml:"home_location"`
	HomePlace    string            `yaml:"home_place"`
	Stats        map[string]int    `yaml:"stats"`
	Flags        map[string]bool   `yaml:"flags"`
	Meta         map[string]string `yaml:"meta"`
	Rules        []ruleDef         `yaml:"rules"`
}

type pronounsDef struct {
	Subject    string `yaml:"subject"`
	Object     string `yaml:"object"`
	Possessive string `yaml:"possessive"`
}

type ruleDef struct {
	ID       string    `yaml:"id"`
	Kind     string    `yaml:"kind"`
	Days     []string  `yaml:"days"`
	Window   string    `yaml:"window"`
	Duration int       `yaml:"duration"`
	MinVisit int       `yaml:"min_visit"`
	MaxVisit int       `yaml:"max_visit"`
	Target   targetDef `yaml:"target"`
}

type targetDef struct {
	Home        bool   `yaml:"home"`
	Location    string `yaml:"location"`
	Place       string `yaml:"place"`
	PlaceKind   string `yaml:"place_kind"`
	NPC         string `yaml:"npc"`
	Player      bool   `yaml:"player"`
	Unavailable bool   `yaml:"unavailable"`
}

var dayNames = map[string]schedule.DaySet{
	"mon": schedule.Monday, "tue": schedule.Tuesday, "wed": schedule.Wednesday,
	"thu": schedule.Thursday, "fri": schedule.Friday, "sat": schedule.Saturday,
	"sun": schedule.Sunday,
	"weekdays": schedule.Weekdays, "weekend": schedule.Weekend, "all": schedule.AllDays,
}

// LoadNPCs reads and validates the roster file and builds domain NPCs. Every
// NPC starts at home; the game loop moves them from there.
func LoadNPCs(path string) ([]*npc.NPC, error) {
	var f npcFile
	if err := loadValidated(path, npcsSchema, &f); err != nil {
		return nil, err
	}

	out := make([]*npc.NPC, 0, len(f.NPCs))
	seen := map[string]bool{}
	for _, def := range f.NPCs {
		if seen[def.ID] {
			return nil, fmt.Errorf("npc %s: duplicate id: %w", def.ID, ErrInvalidCatalog)
		}
		seen[def.ID] = true

		n := &npc.NPC{
			ID:     def.ID,
			Name:   def.Name,
			Gender: def.Gender,
			Pronouns: npc.Pronouns{
				Subject:    def.Pronouns.Subject,
				Object:     def.Pronouns.Object,
				Possessive: def.Pronouns.Possessive,
			},
			Stats:          def.Stats,
			Flags:          def.Flags,
			LocationID:     def.HomeLocation,
			HomeLocationID: def.HomeLocation,
			HomePlaceID:    def.HomePlace,
			Meta:           def.Meta,
		}
		if n.Stats == nil {
			n.Stats = map[string]int{}
		}
		if n.Flags == nil {
			n.Flags = map[string]bool{}
		}
		for _, rd := range def.Rules {
			r, err := parseRule(rd)
			if err != nil {
				return nil, fmt.Errorf("npc %s: %w", def.ID, err)
			}
			n.Rules = append(n.Rules, r)
		}
		if err := n.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseRule(def ruleDef) (schedule.Rule, error) {
	kind, ok := schedule.KindFromString(def.Kind)
	if !ok {
		return schedule.Rule{}, fmt.Errorf("rule %s: unknown kind %q: %w", def.ID, def.Kind, ErrInvalidCatalog)
	}

	days, err := parseDays(def.Days)
	if err != nil {
		return schedule.Rule{}, fmt.Errorf("rule %s: %w", def.ID, err)
	}

	var window schedule.Window
	if def.Window != "" {
		window, err = parseWindow(def.Window)
		if err != nil {
			return schedule.Rule{}, fmt.Errorf("rule %s: %w", def.ID, err)
		}
	}

	target, err := parseTarget(def.Target)
	if err != nil {
		return schedule.Rule{}, fmt.Errorf("rule %s: %w", def.ID, err)
	}

	r := schedule.Rule{
		ID:       def.ID,
		Kind:     kind,
		Target:   target,
		Window:   window,
		Days:     days,
		MinVisit: def.MinVisit,
		MaxVisit: def.MaxVisit,
		Duration: def.Duration,
	}
	if err := r.Validate(); err != nil {
		return schedule.Rule{}, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return r, nil
}

func parseDays(names []string) (schedule.DaySet, error) {
	var d schedule.DaySet
	for _, name := range names {
		set, ok := dayNames[strings.ToLower(name)]
		if !ok {
			return 0, fmt.Errorf("unknown day %q: %w", name, ErrInvalidCatalog)
		}
		d |= set
	}
	return d, nil
}

// parseWindow turns "HH:MM-HH:MM" into a day-relative window. "24:00" is
// allowed as an end bound.
func parseWindow(s string) (schedule.Window, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return schedule.Window{}, fmt.Errorf("window %q: %w", s, ErrInvalidCatalog)
	}
	from, err := parseClock(parts[0])
	if err != nil {
		return schedule.Window{}, fmt.Errorf("window %q: %w", s, err)
	}
	to, err := parseClock(parts[1])
	if err != nil {
		return schedule.Window{}, fmt.Errorf("window %q: %w", s, err)
	}
	return schedule.Window{From: from, To: to}, nil
}

func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("clock %q: %w", s, ErrInvalidCatalog)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("clock %q: %w", s, ErrInvalidCatalog)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("clock %q: %w", s, ErrInvalidCatalog)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("clock %q out of range: %w", s, ErrInvalidCatalog)
	}
	return h*60 + m, nil
}

func parseTarget(def targetDef) (schedule.Target, error) {
	set := 0
	var t schedule.Target
	if def.Home {
		set++
		t = schedule.Target{Kind: schedule.TargetHome}
	}
	if def.Location != "" || def.Place != "" {
		set++
		t = schedule.Target{Kind: schedule.TargetPlace, LocationID: def.Location, PlaceID: def.Place}
	}
	if def.PlaceKind != "" {
		set++
		t = schedule.Target{Kind: schedule.TargetPlaceKind, PlaceKind: world.PlaceKind(def.PlaceKind)}
	}
	if def.NPC != "" {
		set++
		t = schedule.Target{Kind: schedule.TargetNPC, NPCID: def.NPC}
	}
	if def.Player {
		set++
		t = schedule.Target{Kind: schedule.TargetPlayer}
	}
	if def.Unavailable {
		set++
		t = schedule.Target{Kind: schedule.TargetUnavailable}
	}
	if set > 1 {
		return schedule.Target{}, fmt.Errorf("target sets more than one destination: %w", ErrInvalidCatalog)
	}
	// No destination means home; home and follow rules don't need one.
	return t, nil
}
