package npc

import (
	"errors"
	"testing"

	"townsim/internal/domain/schedule"
)

func TestValidate(t *testing.T) {
	valid := NPC{
		ID:             "mara",
		Name:           "Mara",
		HomeLocationID: "loc-00",
		Rules: []schedule.Rule{{
			ID:     "work",
			Kind:   schedule.KindFixed,
			Window: schedule.Window{From: 540, To: 1020},
			Days:   schedule.Weekdays,
		}},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid npc, got %v", err)
	}

	cases := map[string]NPC{
		"missing id":   {Name: "X", HomeLocationID: "loc-00"},
		"missing name": {ID: "x", HomeLocationID: "loc-00"},
		"missing home": {ID: "x", Name: "X"},
		"bad rule": {
			ID: "x", Name: "X", HomeLocationID: "loc-00",
			Rules: []schedule.Rule{{ID: "r", Kind: schedule.KindFixed}},
		},
	}
	for name, n := range cases {
		t.Run(name, func(t *testing.T) {
			if err := n.Validate(); !errors.Is(err, ErrInvalidNPC) && !errors.Is(err, schedule.ErrInvalidRule) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAvailable(t *testing.T) {
	n := NPC{ID: "x", Name: "X", HomeLocationID: "loc-00", Flags: map[string]bool{}}
	if !n.Available() {
		t.Fatal("expected available by default")
	}
	n.Flags["unavailable"] = true
	if n.Available() {
		t.Fatal("expected unavailable when flagged")
	}
}
