package world

// TravelMinutes computes the shortest travel time in minutes between two
// locations over street edges. Ties on total minutes are broken by the lower
// hop count. The second return is false when either id is unknown or no path
// exists.
func (g *Graph) TravelMinutes(from, to string) (int, bool) {
	if _, ok := g.locations[from]; !ok {
		return 0, false
	}
	if _, ok := g.locations[to]; !ok {
		return 0, false
	}
	if from == to {
		return 0, true
	}

	const unreached = int(^uint(0) >> 1)
	dist := map[string]int{from: 0}
	hops := map[string]int{from: 0}
	done := map[string]bool{}

	for {
		// Worlds are small; a linear scan keeps selection deterministic.
		cur := ""
		best, bestHops := unreached, unreached
		for _, id := range g.order {
			if done[id] {
				continue
			}
			d, ok := dist[id]
			if !ok {
				continue
			}
			if d < best || (d == best && hops[id] < bestHops) {
				cur, best, bestHops = id, d, hops[id]
			}
		}
		if cur == "" {
			return 0, false
		}
		if cur == to {
			return best, true
		}
		done[cur] = true

		loc := g.locations[cur]
		for _, nid := range loc.order {
			if done[nid] {
				continue
			}
			st := loc.neighbors[nid]
			nd := best + st.Minutes
			nh := bestHops + 1
			old, seen := dist[nid]
			if !seen || nd < old || (nd == old && nh < hops[nid]) {
				dist[nid] = nd
				hops[nid] = nh
			}
		}
	}
}

// Connected reports whether every location is reachable from every other.
// An empty or single-location graph counts as connected.
func (g *Graph) Connected() bool {
	if len(g.order) <= 1 {
		return true
	}
	seen := map[string]bool{g.order[0]: true}
	queue := []string{g.order[0]}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nid := range g.locations[cur].order {
			if !seen[nid] {
				seen[nid] = true
				queue = append(queue, nid)
			}
		}
	}
	return len(seen) == len(g.order)
}
