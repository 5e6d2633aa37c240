package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"

	httpadapter "townsim/internal/adapter/http"
	metricsinmem "townsim/internal/adapter/metrics/inmemory"
	metricsprom "townsim/internal/adapter/metrics/prom"
	gormrepo "townsim/internal/adapter/repo/gorm"
	"townsim/internal/adapter/repo/memory"
	"townsim/internal/adapter/snapshot"
	"townsim/internal/adapter/ws"
	"townsim/internal/app/game"
	"townsim/internal/app/ports"
	"townsim/internal/app/scenes"
	"townsim/internal/app/scheduling"
	"townsim/internal/app/session"
	"townsim/internal/catalog"
	"townsim/internal/config"
	"townsim/internal/domain/gameclock"
	"townsim/internal/domain/rng"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional)")
	flag.Parse()

	path := *configPath
	if path == "" {
		if _, err := os.Stat("./configs/config.yaml"); err == nil {
			path = "./configs/config.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("timezone %s: %v", cfg.Timezone, err)
	}
	cal := gameclock.New(loc)
	streams := rng.NewStreams(cfg.Seed)

	worldCfg, err := catalog.LoadWorldConfig(cfg.WorldFile)
	if err != nil {
		log.Fatalf("world catalog: %v", err)
	}
	graph, err := catalog.BuildWorld(worldCfg, streams)
	if err != nil {
		log.Fatalf("build world: %v", err)
	}
	npcs, err := catalog.LoadNPCs(cfg.NPCsFile)
	if err != nil {
		log.Fatalf("npc catalog: %v", err)
	}
	sceneCatalog, fallback, err := catalog.LoadScenes(cfg.ScenesFile)
	if err != nil {
		log.Fatalf("scene catalog: %v", err)
	}

	sessions, seen, events, tx := buildRepos(cfg)

	kpiRecorder := metricsinmem.NewRecorder()
	promRecorder, err := metricsprom.NewRecorder()
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}
	metrics := multiMetrics{kpiRecorder, promRecorder}

	hub := ws.NewHub(log.Default())
	defer hub.Close()

	startAt := cal.WeekStart(time.Now().In(loc))
	if cfg.StartAt != "" {
		startAt, err = time.Parse(time.RFC3339, cfg.StartAt)
		if err != nil {
			log.Fatalf("start_at: %v", err)
		}
	}

	scheduler := scheduling.New(graph, cal, streams, metrics)
	gameUC, err := game.New(game.Config{
		Graph:     graph,
		Calendar:  cal,
		Scheduler: scheduler,
		Events:    events,
		Publisher: hub,
		SessionID: cfg.SessionID,
		StartAt:   startAt,
		NPCs:      npcs,
	})
	if err != nil {
		log.Fatalf("game: %v", err)
	}

	resolver := &scenes.Resolver{
		Catalog:   sceneCatalog,
		Fallback:  fallback,
		Seen:      seen,
		Events:    events,
		Metrics:   metrics,
		Effects:   gameUC,
		Rand:      streams.Stream("scene"),
		SessionID: cfg.SessionID,
		Now:       gameUC.Now,
	}

	ensureSession(cfg.SessionID, cfg.Seed, gameUC, session.UseCase{
		Sessions: sessions,
		Tx:       tx,
		Codec:    snapshot.Codec{},
	})

	go serveObserver(cfg.ObserverPort, hub, promRecorder)

	h := httpadapter.Handler{
		Game:     gameUC,
		Resolver: resolver,
		Events:   events,
		KPI:      kpiRecorder,
	}
	s := server.Default(server.WithHostPorts(fmt.Sprintf(":%d", cfg.Port)))
	h.RegisterRoutes(s)

	log.Printf("townsim listening on :%d (observer on :%d, session %s, seed %d)",
		cfg.Port, cfg.ObserverPort, cfg.SessionID, cfg.Seed)
	s.Spin()
}

func buildRepos(cfg *config.Config) (ports.SessionRepository, ports.SeenSceneRepository, ports.EventRepository, ports.TxManager) {
	if cfg.DatabaseDSN == "" {
		log.Println("no database configured, using in-memory repositories")
		return memory.NewSessionStore(), memory.NewSeenSceneStore(), memory.NewEventStore(), memory.TxManager{}
	}

	db, err := gormrepo.OpenPostgres(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	if err := gormrepo.ApplyMigrations(context.Background(), db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations: %v", err)
	}
	return gormrepo.NewSessionRepo(db), gormrepo.NewSeenSceneRepo(db), gormrepo.NewEventRepo(db), gormrepo.NewTxManager(db)
}

// ensureSession seeds the session record on first boot so saves have a
// baseline version to build on.
func ensureSession(sessionID string, seed int64, gameUC *game.UseCase, uc session.UseCase) {
	ctx := context.Background()
	_, _, err := uc.Load(ctx, sessionID)
	if err == nil {
		return
	}
	if !errors.Is(err, ports.ErrNotFound) {
		log.Fatalf("load session %s: %v", sessionID, err)
	}

	st := session.State{
		Seed:    seed,
		ClockAt: gameUC.Now(),
		World:   gameUC.Graph().Snapshot(),
	}
	for _, n := range gameUC.NPCs() {
		st.NPCs = append(st.NPCs, *n)
	}
	if saveErr := uc.Save(ctx, sessionID, st, 0); saveErr != nil {
		log.Fatalf("seed session %s: %v", sessionID, saveErr)
	}
	log.Printf("seeded session %s", sessionID)
}

func serveObserver(port int, hub *ws.Hub, prom *metricsprom.Recorder) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", prom.Handler())
	mux.Handle("/ws", hub.Handler())
	addr := fmt.Sprintf(":%d", port)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("observer listener %s: %v", addr, err)
	}
}

// multiMetrics fans one recording out to every backend.
type multiMetrics []ports.SimMetrics

func (m multiMetrics) RecordWeekGenerated(npcID string) {
	for _, r := range m {
		r.RecordWeekGenerated(npcID)
	}
}

func (m multiMetrics) RecordScheduleCacheHit() {
	for _, r := range m {
		r.RecordScheduleCacheHit()
	}
}

func (m multiMetrics) RecordSceneResolved(sceneID string) {
	for _, r := range m {
		r.RecordSceneResolved(sceneID)
	}
}

func (m multiMetrics) RecordSceneFallback() {
	for _, r := range m {
		r.RecordSceneFallback()
	}
}
