package scene

import (
	"math/rand"
	"testing"
)

func TestWeightedPickDistribution(t *testing.T) {
	a := &Scene{ID: "a", Label: "a", Weight: 1}
	b := &Scene{ID: "b", Label: "b", Weight: 3}
	rng := rand.New(rand.NewSource(42))

	counts := map[string]int{}
	const trials = 10000
	for i := 0; i < trials; i++ {
		counts[WeightedPick([]*Scene{a, b}, rng).ID]++
	}

	ratio := float64(counts["b"]) / float64(counts["a"])
	if ratio < 2.5 || ratio > 3.5 {
		t.Fatalf("expected b roughly 3x as often as a, got ratio %.2f (%v)", ratio, counts)
	}
}

func TestWeightedPickEmptyAndSingle(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if WeightedPick(nil, rng) != nil {
		t.Fatalf("expected nil for empty candidates")
	}
	only := &Scene{ID: "a", Label: "a", Weight: 7}
	for i := 0; i < 10; i++ {
		if WeightedPick([]*Scene{only}, rng) != only {
			t.Fatalf("expected the single candidate every time")
		}
	}
}

func TestWeightedPickDeterministic(t *testing.T) {
	scenes := []*Scene{
		{ID: "a", Label: "a", Weight: 2},
		{ID: "b", Label: "b", Weight: 5},
		{ID: "c", Label: "c", Weight: 1},
	}
	r1 := rand.New(rand.NewSource(9))
	r2 := rand.New(rand.NewSource(9))
	for i := 0; i < 100; i++ {
		if WeightedPick(scenes, r1).ID != WeightedPick(scenes, r2).ID {
			t.Fatalf("same seed diverged at pick %d", i)
		}
	}
}
