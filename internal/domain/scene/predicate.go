package scene

// Predicate is a composable condition over the current game snapshot. Scene
// catalogs carry predicates as data, never as closures, so a catalog can be
// inspected, validated and serialized.
type Predicate interface {
	Evaluate(st *State) bool
}

type And []Predicate

func (p And) Evaluate(st *State) bool {
	for _, c := range p {
		if !c.Evaluate(st) {
			return false
		}
	}
	return true
}

type Or []Predicate

func (p Or) Evaluate(st *State) bool {
	for _, c := range p {
		if c.Evaluate(st) {
			return true
		}
	}
	return false
}

type Not struct {
	P Predicate
}

func (p Not) Evaluate(st *State) bool {
	return !p.P.Evaluate(st)
}

// FlagIs matches a boolean flag on the game's flag bag. An absent flag
// evaluates as false.
type FlagIs struct {
	Name string
	Want bool
}

func (p FlagIs) Evaluate(st *State) bool {
	return st.Flags[p.Name] == p.Want
}

type StatAtLeast struct {
	Name string
	Min  int
}

func (p StatAtLeast) Evaluate(st *State) bool {
	return st.Stats[p.Name] >= p.Min
}

// TimeBetween matches a minute-of-day window. To may be below From, meaning
// the window wraps midnight (e.g. 22:00-02:00).
type TimeBetween struct {
	From int
	To   int
}

func (p TimeBetween) Evaluate(st *State) bool {
	m := st.MinuteOfDay
	if p.From <= p.To {
		return m >= p.From && m < p.To
	}
	return m >= p.From || m < p.To
}

type NPCPresent struct {
	NPCID string
}

func (p NPCPresent) Evaluate(st *State) bool {
	return st.NPCPresent != nil && st.NPCPresent(p.NPCID)
}
