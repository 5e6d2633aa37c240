package inmemory

import "sync"

type Snapshot struct {
	WeeksGenerated    uint64            `json:"weeks_generated"`
	ScheduleCacheHits uint64            `json:"schedule_cache_hits"`
	ScenesResolved    uint64            `json:"scenes_resolved"`
	SceneFallbacks    uint64            `json:"scene_fallbacks"`
	WeeksByNPC        map[string]uint64 `json:"weeks_by_npc"`
	ScenesByID        map[string]uint64 `json:"scenes_by_id"`
}

type Recorder struct {
	mu         sync.Mutex
	weeks      uint64
	cacheHits  uint64
	resolved   uint64
	fallbacks  uint64
	weeksByNPC map[string]uint64
	scenesByID map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		weeksByNPC: map[string]uint64{},
		scenesByID: map[string]uint64{},
	}
}

func (r *Recorder) RecordWeekGenerated(npcID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weeks++
	r.weeksByNPC[npcID]++
}

func (r *Recorder) RecordScheduleCacheHit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cacheHits++
}

func (r *Recorder) RecordSceneResolved(sceneID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolved++
	r.scenesByID[sceneID]++
}

func (r *Recorder) RecordSceneFallback() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		WeeksGenerated:    r.weeks,
		ScheduleCacheHits: r.cacheHits,
		ScenesResolved:    r.resolved,
		SceneFallbacks:    r.fallbacks,
		WeeksByNPC:        make(map[string]uint64, len(r.weeksByNPC)),
		ScenesByID:        make(map[string]uint64, len(r.scenesByID)),
	}
	for k, v := range r.weeksByNPC {
		out.WeeksByNPC[k] = v
	}
	for k, v := range r.scenesByID {
		out.ScenesByID[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
