package inmemory

import "testing"

func TestRecorderSnapshot(t *testing.T) {
	r := NewRecorder()
	r.RecordWeekGenerated("mara")
	r.RecordWeekGenerated("mara")
	r.RecordWeekGenerated("odd-jasper")
	r.RecordScheduleCacheHit()
	r.RecordSceneResolved("busker")
	r.RecordSceneFallback()

	s := r.Snapshot()
	if s.WeeksGenerated != 3 {
		t.Fatalf("expected 3 weeks generated, got %d", s.WeeksGenerated)
	}
	if s.WeeksByNPC["mara"] != 2 || s.WeeksByNPC["odd-jasper"] != 1 {
		t.Fatalf("unexpected per-npc counts: %v", s.WeeksByNPC)
	}
	if s.ScheduleCacheHits != 1 {
		t.Fatalf("expected 1 cache hit, got %d", s.ScheduleCacheHits)
	}
	if s.ScenesResolved != 1 || s.ScenesByID["busker"] != 1 {
		t.Fatalf("unexpected scene counts: %d %v", s.ScenesResolved, s.ScenesByID)
	}
	if s.SceneFallbacks != 1 {
		t.Fatalf("expected 1 fallback, got %d", s.SceneFallbacks)
	}
}
