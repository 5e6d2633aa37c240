package world

import (
	"fmt"
	"math"
	"math/rand"
)

// GenConfig drives procedural world generation. Width and Height are the
// coordinate field in meters; Density in [0,1] adds streets beyond the
// spanning set.
type GenConfig struct {
	Width     int
	Height    int
	Locations int
	Density   float64
}

func DefaultGenConfig() GenConfig {
	return GenConfig{Width: 1200, Height: 900, Locations: 12, Density: 0.3}
}

var locationNames = []string{
	"Old Market", "Riverside", "Station Quarter", "Mill Yard", "Harbor Row",
	"Chapel Green", "Foundry Block", "North Gate", "Willow Court", "Clock Square",
	"Tanner Lane", "Garden District", "Low Bridge", "Copper Hill", "East Commons",
}

var streetNames = []string{
	"Birch Street", "Canal Walk", "King's Road", "Ash Alley", "Long Lane",
	"Cobble Way", "Ferry Street", "Vine Row", "Stone Bridge", "Elder Path",
	"Granary Road", "Miller's Walk", "Dock Street", "Hollow Lane", "Crown Street",
}

var placeKindPool = []PlaceKind{
	PlaceWork, PlaceShop, PlacePark, PlaceBar, PlaceGym, PlaceSchool, PlaceChurch,
}

// Generate builds a connected world from the given config and random source.
// The same config and rng state always produce the same graph. A spanning
// pass guarantees connectivity even at density 0.
func Generate(cfg GenConfig, rng *rand.Rand) (*Graph, error) {
	def := DefaultGenConfig()
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	if cfg.Locations <= 0 {
		cfg.Locations = def.Locations
	}
	if cfg.Locations < 2 {
		return nil, fmt.Errorf("generate: need at least 2 locations, got %d", cfg.Locations)
	}
	if cfg.Density < 0 {
		cfg.Density = 0
	}
	if cfg.Density > 1 {
		cfg.Density = 1
	}

	g := NewGraph()
	for i := 0; i < cfg.Locations; i++ {
		loc := &Location{
			ID:   fmt.Sprintf("loc-%02d", i),
			Name: pickName(locationNames, i),
			X:    rng.Intn(cfg.Width),
			Y:    rng.Intn(cfg.Height),
		}
		loc.Places = genPlaces(loc.ID, rng)
		if err := g.AddLocation(loc); err != nil {
			return nil, err
		}
	}

	ids := g.LocationIDs()

	// Spanning pass: every location after the first attaches to a random
	// earlier one, so the graph is connected regardless of density.
	streetIdx := 0
	for i := 1; i < len(ids); i++ {
		j := rng.Intn(i)
		if err := connectPair(g, ids[i], ids[j], streetIdx); err != nil {
			return nil, err
		}
		streetIdx++
	}

	// Density pass: extra random streets on top of the spanning set.
	extra := int(cfg.Density * float64(len(ids)) * 2)
	for k := 0; k < extra; k++ {
		a := ids[rng.Intn(len(ids))]
		b := ids[rng.Intn(len(ids))]
		if a == b {
			continue
		}
		if _, ok := g.TravelEdge(a, b); ok {
			continue
		}
		if err := connectPair(g, a, b, streetIdx); err != nil {
			return nil, err
		}
		streetIdx++
	}

	return g, nil
}

func connectPair(g *Graph, a, b string, streetIdx int) error {
	la, _ := g.Location(a)
	lb, _ := g.Location(b)
	dx := float64(la.X - lb.X)
	dy := float64(la.Y - lb.Y)
	meters := int(math.Round(math.Hypot(dx, dy)))
	minutes := int(math.Round(float64(meters) / 120.0))
	_, err := g.Connect(a, b, minutes, meters, pickName(streetNames, streetIdx))
	return err
}

func genPlaces(locID string, rng *rand.Rand) []Place {
	n := 1 + rng.Intn(3)
	out := make([]Place, 0, n+1)
	// Every location can house someone.
	out = append(out, Place{
		ID:   locID + "-home",
		Name: "Apartments",
		Kind: PlaceHome,
	})
	for i := 0; i < n; i++ {
		kind := placeKindPool[rng.Intn(len(placeKindPool))]
		out = append(out, Place{
			ID:   fmt.Sprintf("%s-p%d", locID, i),
			Name: string(kind),
			Kind: kind,
		})
	}
	return out
}

func pickName(pool []string, i int) string {
	name := pool[i%len(pool)]
	if i >= len(pool) {
		name = fmt.Sprintf("%s %d", name, i/len(pool)+1)
	}
	return name
}
