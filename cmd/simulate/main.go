// Command simulate generates a world and prints one NPC-week offline, for
// tuning catalogs without running the server.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"townsim/internal/app/scheduling"
	"townsim/internal/catalog"
	"townsim/internal/domain/gameclock"
	"townsim/internal/domain/rng"
)

func main() {
	worldFile := flag.String("world", "./configs/world.yaml", "world catalog file")
	npcsFile := flag.String("npcs", "./configs/npcs.yaml", "npc catalog file")
	seed := flag.Int64("seed", 1337, "master seed")
	npcID := flag.String("npc", "", "npc to print (default: all)")
	weekOf := flag.String("week", "", "any RFC3339 instant in the target week (default: now)")
	flag.Parse()

	streams := rng.NewStreams(*seed)
	cal := gameclock.UTC()

	worldCfg, err := catalog.LoadWorldConfig(*worldFile)
	if err != nil {
		log.Fatalf("world catalog: %v", err)
	}
	graph, err := catalog.BuildWorld(worldCfg, streams)
	if err != nil {
		log.Fatalf("build world: %v", err)
	}
	npcs, err := catalog.LoadNPCs(*npcsFile)
	if err != nil {
		log.Fatalf("npc catalog: %v", err)
	}

	at := time.Now().UTC()
	if *weekOf != "" {
		at, err = time.Parse(time.RFC3339, *weekOf)
		if err != nil {
			log.Fatalf("week: %v", err)
		}
	}

	fmt.Printf("world: %d locations, %d streets, seed %d\n", graph.Len(), len(graph.Streets()), *seed)
	for _, id := range graph.LocationIDs() {
		loc, _ := graph.Location(id)
		fmt.Printf("  %-8s %-16s places=%d neighbors=%v\n", id, loc.Name, len(loc.Places), loc.NeighborIDs())
	}

	scheduler := scheduling.New(graph, cal, streams, nil)
	weekStart := cal.WeekStart(at)
	fmt.Printf("\nweek of %s\n", weekStart.Format("2006-01-02"))

	for _, n := range npcs {
		if *npcID != "" && n.ID != *npcID {
			continue
		}
		if _, ok := graph.Location(n.HomeLocationID); !ok {
			log.Fatalf("npc %s: home %s not in generated world", n.ID, n.HomeLocationID)
		}
		slots, err := scheduler.WeekSchedule(n, at)
		if err != nil {
			log.Fatalf("schedule %s: %v", n.ID, err)
		}
		fmt.Printf("\n%s (%s), %d slots\n", n.Name, n.ID, len(slots))
		for _, s := range slots {
			fmt.Printf("  %s  %s - %s  %-8s %s\n",
				s.From.Weekday().String()[:3],
				s.From.Format("15:04"), s.To.Format("15:04"),
				s.Activity, s.LocationID)
		}
	}
}
