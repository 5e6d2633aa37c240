package world

import (
	"errors"
	"fmt"
)

var (
	ErrLocationExists  = errors.New("location already exists")
	ErrUnknownLocation = errors.New("unknown location")
	ErrSelfEdge        = errors.New("street cannot connect a location to itself")
	ErrEdgeExists      = errors.New("street already exists")
)

const (
	MinStreetMinutes  = 1
	MaxStreetMinutes  = 10
	MinStreetDistance = 50
)

type PlaceKind string

const (
	PlaceHome   PlaceKind = "home"
	PlaceWork   PlaceKind = "work"
	PlaceShop   PlaceKind = "shop"
	PlacePark   PlaceKind = "park"
	PlaceBar    PlaceKind = "bar"
	PlaceGym    PlaceKind = "gym"
	PlaceSchool PlaceKind = "school"
	PlaceChurch PlaceKind = "church"
)

// Place is a point of interest inside a location. Immutable after creation.
type Place struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Kind PlaceKind `json:"kind"`
}

// Street is an undirected weighted edge between two locations. Minutes and
// distance are fixed at generation time.
type Street struct {
	A        string `json:"a"`
	B        string `json:"b"`
	Minutes  int    `json:"minutes"`
	Distance int    `json:"distance"`
	Name     string `json:"name"`
}

func (s *Street) other(id string) string {
	if s.A == id {
		return s.B
	}
	return s.A
}

type Location struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Places []Place `json:"places"`

	neighbors map[string]*Street
	order     []string
}

// NeighborIDs returns adjacent location ids in insertion order.
func (l *Location) NeighborIDs() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

func (l *Location) PlaceByKind(kind PlaceKind) (Place, bool) {
	for _, p := range l.Places {
		if p.Kind == kind {
			return p, true
		}
	}
	return Place{}, false
}

func (l *Location) PlaceByID(id string) (Place, bool) {
	for _, p := range l.Places {
		if p.ID == id {
			return p, true
		}
	}
	return Place{}, false
}

// Graph owns every location and street of a generated world. Topology is
// immutable after generation: runtime code only queries it.
type Graph struct {
	locations map[string]*Location
	order     []string
	streets   []*Street
}

func NewGraph() *Graph {
	return &Graph{locations: map[string]*Location{}}
}

func (g *Graph) AddLocation(loc *Location) error {
	if loc.ID == "" {
		return fmt.Errorf("add location: empty id")
	}
	if _, ok := g.locations[loc.ID]; ok {
		return fmt.Errorf("add location %s: %w", loc.ID, ErrLocationExists)
	}
	if loc.neighbors == nil {
		loc.neighbors = map[string]*Street{}
	}
	g.locations[loc.ID] = loc
	g.order = append(g.order, loc.ID)
	return nil
}

// Connect inserts one undirected street and registers it on both endpoints,
// so neighbor symmetry holds by construction. Minutes are clamped to
// [MinStreetMinutes, MaxStreetMinutes] and distance to at least
// MinStreetDistance.
func (g *Graph) Connect(a, b string, minutes, distance int, name string) (*Street, error) {
	if a == b {
		return nil, fmt.Errorf("connect %s-%s: %w", a, b, ErrSelfEdge)
	}
	la, ok := g.locations[a]
	if !ok {
		return nil, fmt.Errorf("connect %s-%s: %w: %s", a, b, ErrUnknownLocation, a)
	}
	lb, ok := g.locations[b]
	if !ok {
		return nil, fmt.Errorf("connect %s-%s: %w: %s", a, b, ErrUnknownLocation, b)
	}
	if _, ok := la.neighbors[b]; ok {
		return nil, fmt.Errorf("connect %s-%s: %w", a, b, ErrEdgeExists)
	}
	if minutes < MinStreetMinutes {
		minutes = MinStreetMinutes
	}
	if minutes > MaxStreetMinutes {
		minutes = MaxStreetMinutes
	}
	if distance < MinStreetDistance {
		distance = MinStreetDistance
	}
	st := &Street{A: a, B: b, Minutes: minutes, Distance: distance, Name: name}
	la.neighbors[b] = st
	la.order = append(la.order, b)
	lb.neighbors[a] = st
	lb.order = append(lb.order, a)
	g.streets = append(g.streets, st)
	return st, nil
}

func (g *Graph) Location(id string) (*Location, bool) {
	loc, ok := g.locations[id]
	return loc, ok
}

// TravelEdge returns the street between two adjacent locations. Symmetric:
// TravelEdge(a, b) and TravelEdge(b, a) return the same street.
func (g *Graph) TravelEdge(a, b string) (*Street, bool) {
	la, ok := g.locations[a]
	if !ok {
		return nil, false
	}
	st, ok := la.neighbors[b]
	return st, ok
}

// LocationIDs returns all location ids in insertion order.
func (g *Graph) LocationIDs() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

func (g *Graph) Streets() []*Street {
	out := make([]*Street, len(g.streets))
	copy(out, g.streets)
	return out
}

func (g *Graph) Len() int {
	return len(g.locations)
}

// LocationsWithPlaceKind returns ids of locations that contain at least one
// place of the given kind, in insertion order.
func (g *Graph) LocationsWithPlaceKind(kind PlaceKind) []string {
	out := []string{}
	for _, id := range g.order {
		if _, ok := g.locations[id].PlaceByKind(kind); ok {
			out = append(out, id)
		}
	}
	return out
}
