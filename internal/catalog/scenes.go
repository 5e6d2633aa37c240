package catalog

import (
	"fmt"

	"townsim/internal/domain/scene"
)

var scenesSchema = mustCompileSchema("scenes.schema.json", `{
  "type": "object",
  "required": ["scenes"],
  "properties": {
    "fallback": {"type": "string", "minLength": 1},
    "scenes": {
      "type": "array",
      "items": {"$ref": "#/$defs/scene"}
    }
  },
  "additionalProperties": false,
  "$defs": {
    "scene": {
      "type": "object",
      "required": ["id", "label"],
      "properties": {
        "id":        {"type": "string", "minLength": 1},
        "label":     {"type": "string", "minLength": 1},
        "locations": {"type": "array", "items": {"type": "string"}},
        "weight":    {"type": "integer", "minimum": 1},
        "once":      {"type": "boolean"},
        "tags":      {"type": "array", "items": {"type": "string"}},
        "npcs":      {"type": "array", "items": {"type": "string"}},
        "when":      {"type": "array", "items": {"$ref": "#/$defs/condition"}},
        "choices": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["id", "label"],
            "properties": {
              "id":    {"type": "string", "minLength": 1},
              "label": {"type": "string", "minLength": 1},
              "next":  {"type": "string"},
              "effect": {
                "type": "object",
                "properties": {
                  "set_flags": {"type": "object", "additionalProperties": {"type": "boolean"}},
                  "add_stats": {"type": "object", "additionalProperties": {"type": "integer"}}
                },
                "additionalProperties": false
              }
            },
            "additionalProperties": false
          }
        }
      },
      "additionalProperties": false
    },
    "condition": {
      "type": "object",
      "properties": {
        "all": {"type": "array", "items": {"$ref": "#/$defs/condition"}},
        "any": {"type": "array", "items": {"$ref": "#/$defs/condition"}},
        "not": {"$ref": "#/$defs/condition"},
        "flag": {
          "type": "object",
          "required": ["name"],
          "properties": {
            "name": {"type": "string", "minLength": 1},
            "is":   {"type": "boolean"}
          },
          "additionalProperties": false
        },
        "stat": {
          "type": "object",
          "required": ["name", "at_least"],
          "properties": {
            "name":     {"type": "string", "minLength": 1},
            "at_least": {"type": "integer"}
          },
          "additionalProperties": false
        },
        "time":        {"type": "string", "pattern": "^[0-9]{2}:[0-9]{2}-[0-9]{2}:[0-9]{2}$"},
        "npc_present": {"type": "string", "minLength": 1}
      },
      "additionalProperties": false,
      "minProperties": 1,
      "maxProperties": 1
    }
  }
}`)

type sceneFile struct {
	Fallback string     `yaml:"fallback"`
	Scenes   []sceneDef `yaml:"scenes"`
}

type sceneDef struct {
	ID        string         `yaml:"id"`
	Label     string         `yaml:"label"`
	Locations []string       `yaml:"locations"`
	Weight    int            `yaml:"weight"`
	Once      bool           `yaml:"once"`
	Tags      []string       `yaml:"tags"`
	NPCs      []string       `yaml:"npcs"`
	When      []conditionDef `yaml:"when"`
	Choices   []choiceDef    `yaml:"choices"`
}

type choiceDef struct {
	ID     string    `yaml:"id"`
	Label  string    `yaml:"label"`
	Next   string    `yaml:"next"`
	Effect effectDef `yaml:"effect"`
}

type effectDef struct {
	SetFlags map[string]bool `yaml:"set_flags"`
	AddStats map[string]int  `yaml:"add_stats"`
}

// conditionDef is one node of the recursive condition tree. Exactly one field
// is set per node; the schema enforces that before decoding.
type conditionDef struct {
	All        []conditionDef `yaml:"all"`
	Any        []conditionDef `yaml:"any"`
	Not        *conditionDef  `yaml:"not"`
	Flag       *flagDef       `yaml:"flag"`
	Stat       *statDef       `yaml:"stat"`
	Time       string         `yaml:"time"`
	NPCPresent string         `yaml:"npc_present"`
}

type flagDef struct {
	Name string `yaml:"name"`
	Is   bool   `yaml:"is"`
}

type statDef struct {
	Name    string `yaml:"name"`
	AtLeast int    `yaml:"at_least"`
}

// LoadScenes reads and validates the scene file. The named fallback must be a
// scene with no gates so resolution always has a landing spot; it is returned
// separately and never entered into the weighted roll.
func LoadScenes(path string) (*scene.Catalog, *scene.Scene, error) {
	var f sceneFile
	if err := loadValidated(path, scenesSchema, &f); err != nil {
		return nil, nil, err
	}
	if f.Fallback == "" {
		return nil, nil, fmt.Errorf("scene file %s: missing fallback: %w", path, ErrInvalidCatalog)
	}

	catalog := scene.NewCatalog()
	var fallback *scene.Scene
	for _, def := range f.Scenes {
		s, err := buildScene(def)
		if err != nil {
			return nil, nil, fmt.Errorf("scene %s: %w", def.ID, err)
		}
		if def.ID == f.Fallback {
			if len(s.Conditions) > 0 || len(s.Locations) > 0 || len(s.NPCIDs) > 0 || s.Once {
				return nil, nil, fmt.Errorf("scene %s: fallback must be ungated: %w", def.ID, ErrInvalidCatalog)
			}
			fallback = s
			continue
		}
		if err := catalog.Add(s); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
	}
	if fallback == nil {
		return nil, nil, fmt.Errorf("scene file %s: fallback %s not defined: %w", path, f.Fallback, ErrInvalidCatalog)
	}
	return catalog, fallback, nil
}

func buildScene(def sceneDef) (*scene.Scene, error) {
	weight := def.Weight
	if weight == 0 {
		weight = 1
	}
	s := &scene.Scene{
		ID:        def.ID,
		Label:     def.Label,
		Locations: def.Locations,
		Weight:    weight,
		Once:      def.Once,
		Tags:      def.Tags,
		NPCIDs:    def.NPCs,
	}
	for _, cd := range def.When {
		p, err := buildPredicate(cd)
		if err != nil {
			return nil, err
		}
		s.Conditions = append(s.Conditions, p)
	}
	for _, ch := range def.Choices {
		s.Choices = append(s.Choices, scene.Choice{
			ID:    ch.ID,
			Label: ch.Label,
			Effect: scene.Effect{
				SetFlags: ch.Effect.SetFlags,
				AddStats: ch.Effect.AddStats,
			},
			NextSceneID: ch.Next,
		})
	}
	return s, nil
}

func buildPredicate(def conditionDef) (scene.Predicate, error) {
	switch {
	case len(def.All) > 0:
		var ps scene.And
		for _, c := range def.All {
			p, err := buildPredicate(c)
			if err != nil {
				return nil, err
			}
			ps = append(ps, p)
		}
		return ps, nil
	case len(def.Any) > 0:
		var ps scene.Or
		for _, c := range def.Any {
			p, err := buildPredicate(c)
			if err != nil {
				return nil, err
			}
			ps = append(ps, p)
		}
		return ps, nil
	case def.Not != nil:
		p, err := buildPredicate(*def.Not)
		if err != nil {
			return nil, err
		}
		return scene.Not{P: p}, nil
	case def.Flag != nil:
		return scene.FlagIs{Name: def.Flag.Name, Want: def.Flag.Is}, nil
	case def.Stat != nil:
		return scene.StatAtLeast{Name: def.Stat.Name, Min: def.Stat.AtLeast}, nil
	case def.Time != "":
		w, err := parseWindow(def.Time)
		if err != nil {
			return nil, err
		}
		return scene.TimeBetween{From: w.From, To: w.To}, nil
	case def.NPCPresent != "":
		return scene.NPCPresent{NPCID: def.NPCPresent}, nil
	default:
		return nil, fmt.Errorf("empty condition: %w", ErrInvalidCatalog)
	}
}
