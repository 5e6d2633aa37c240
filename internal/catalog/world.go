package catalog

import (
	"townsim/internal/domain/rng"
	"townsim/internal/domain/world"
)

var worldSchema = mustCompileSchema("world.schema.json", `{
  "type": "object",
  "required": ["world"],
  "properties": {
    "world": {
      "type": "object",
      "properties": {
        "width":     {"type": "integer", "minimum": 100},
        "height":    {"type": "integer", "minimum": 100},
        "locations": {"type": "integer", "minimum": 2, "maximum": 200},
        "density":   {"type": "number", "minimum": 0, "maximum": 1}
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`)

type worldFile struct {
	World struct {
		Width     int     `yaml:"width"`
		Height    int     `yaml:"height"`
		Locations int     `yaml:"locations"`
		Density   float64 `yaml:"density"`
	} `yaml:"world"`
}

// LoadWorldConfig reads the world generation parameters. Missing fields fall
// back to the generator defaults.
func LoadWorldConfig(path string) (world.GenConfig, error) {
	var f worldFile
	if err := loadValidated(path, worldSchema, &f); err != nil {
		return world.GenConfig{}, err
	}
	return world.GenConfig{
		Width:     f.World.Width,
		Height:    f.World.Height,
		Locations: f.World.Locations,
		Density:   f.World.Density,
	}, nil
}

// BuildWorld generates the town graph from the config, drawing from the
// dedicated worldgen stream so the topology depends only on the master seed.
func BuildWorld(cfg world.GenConfig, streams rng.Streams) (*world.Graph, error) {
	return world.Generate(cfg, streams.Stream("worldgen"))
}
