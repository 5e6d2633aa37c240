package world

import (
	"errors"
	"testing"
)

func buildTriangle(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph()
	for _, id := range []string{"a", "b", "c"} {
		if err := g.AddLocation(&Location{ID: id, Name: id}); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	if _, err := g.Connect("a", "b", 5, 400, "Birch Street"); err != nil {
		t.Fatalf("connect a-b: %v", err)
	}
	if _, err := g.Connect("b", "c", 3, 200, "Canal Walk"); err != nil {
		t.Fatalf("connect b-c: %v", err)
	}
	return g
}

func TestTravelEdgeSymmetric(t *testing.T) {
	g := buildTriangle(t)

	ab, ok := g.TravelEdge("a", "b")
	if !ok {
		t.Fatalf("expected edge a-b")
	}
	ba, ok := g.TravelEdge("b", "a")
	if !ok {
		t.Fatalf("expected edge b-a")
	}
	if ab != ba {
		t.Fatalf("expected same street both directions, got %v and %v", ab, ba)
	}
	if ab.Minutes != 5 || ab.Distance != 400 {
		t.Fatalf("unexpected edge weights: %+v", ab)
	}
}

func TestTravelEdgeMissing(t *testing.T) {
	g := buildTriangle(t)
	if _, ok := g.TravelEdge("a", "c"); ok {
		t.Fatalf("did not expect direct edge a-c")
	}
	if _, ok := g.TravelEdge("a", "nope"); ok {
		t.Fatalf("did not expect edge to unknown location")
	}
}

func TestConnectRejectsSelfAndDuplicate(t *testing.T) {
	g := buildTriangle(t)
	if _, err := g.Connect("a", "a", 1, 50, "loop"); !errors.Is(err, ErrSelfEdge) {
		t.Fatalf("expected ErrSelfEdge, got %v", err)
	}
	if _, err := g.Connect("b", "a", 1, 50, "dup"); !errors.Is(err, ErrEdgeExists) {
		t.Fatalf("expected ErrEdgeExists, got %v", err)
	}
	if _, err := g.Connect("a", "ghost", 1, 50, "x"); !errors.Is(err, ErrUnknownLocation) {
		t.Fatalf("expected ErrUnknownLocation, got %v", err)
	}
}

func TestConnectClampsWeights(t *testing.T) {
	g := NewGraph()
	_ = g.AddLocation(&Location{ID: "x"})
	_ = g.AddLocation(&Location{ID: "y"})
	st, err := g.Connect("x", "y", 99, 10, "Long Lane")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if st.Minutes != MaxStreetMinutes {
		t.Fatalf("expected minutes clamped to %d, got %d", MaxStreetMinutes, st.Minutes)
	}
	if st.Distance != MinStreetDistance {
		t.Fatalf("expected distance raised to %d, got %d", MinStreetDistance, st.Distance)
	}
}

func TestAddLocationRejectsDuplicate(t *testing.T) {
	g := NewGraph()
	if err := g.AddLocation(&Location{ID: "a"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := g.AddLocation(&Location{ID: "a"}); !errors.Is(err, ErrLocationExists) {
		t.Fatalf("expected ErrLocationExists, got %v", err)
	}
}

func TestLocationsWithPlaceKind(t *testing.T) {
	g := NewGraph()
	_ = g.AddLocation(&Location{ID: "a", Places: []Place{{ID: "a-1", Kind: PlaceBar}}})
	_ = g.AddLocation(&Location{ID: "b", Places: []Place{{ID: "b-1", Kind: PlaceShop}}})
	_ = g.AddLocation(&Location{ID: "c", Places: []Place{{ID: "c-1", Kind: PlaceBar}}})

	got := g.LocationsWithPlaceKind(PlaceBar)
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("expected [a c], got %v", got)
	}
}
