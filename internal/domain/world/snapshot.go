package world

import "fmt"

// Snapshot is the serializable node/edge form of a graph. Rebuilding a graph
// from its snapshot reproduces the exact adjacency structure and weights.
type Snapshot struct {
	Locations []LocationSnapshot `json:"locations"`
	Streets   []Street           `json:"streets"`
}

type LocationSnapshot struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Places []Place `json:"places"`
}

func (g *Graph) Snapshot() Snapshot {
	s := Snapshot{
		Locations: make([]LocationSnapshot, 0, len(g.order)),
		Streets:   make([]Street, 0, len(g.streets)),
	}
	for _, id := range g.order {
		loc := g.locations[id]
		places := make([]Place, len(loc.Places))
		copy(places, loc.Places)
		s.Locations = append(s.Locations, LocationSnapshot{
			ID:     loc.ID,
			Name:   loc.Name,
			X:      loc.X,
			Y:      loc.Y,
			Places: places,
		})
	}
	for _, st := range g.streets {
		s.Streets = append(s.Streets, *st)
	}
	return s
}

func FromSnapshot(s Snapshot) (*Graph, error) {
	g := NewGraph()
	for _, ls := range s.Locations {
		places := make([]Place, len(ls.Places))
		copy(places, ls.Places)
		loc := &Location{ID: ls.ID, Name: ls.Name, X: ls.X, Y: ls.Y, Places: places}
		if err := g.AddLocation(loc); err != nil {
			return nil, fmt.Errorf("snapshot location: %w", err)
		}
	}
	for _, st := range s.Streets {
		if _, err := g.Connect(st.A, st.B, st.Minutes, st.Distance, st.Name); err != nil {
			return nil, fmt.Errorf("snapshot street: %w", err)
		}
	}
	return g, nil
}
