package scene

import "math/rand"

// WeightedPick selects one scene with probability proportional to its weight,
// using a single uniform draw against the cumulative sum. Returns nil for an
// empty candidate list.
func WeightedPick(candidates []*Scene, rng *rand.Rand) *Scene {
	total := 0
	for _, s := range candidates {
		total += s.Weight
	}
	if total <= 0 {
		return nil
	}
	roll := rng.Intn(total)
	for _, s := range candidates {
		roll -= s.Weight
		if roll < 0 {
			return s
		}
	}
	return candidates[len(candidates)-1]
}
