package prom

import "testing"

func TestRecorderExportsAllFamilies(t *testing.T) {
	r, err := NewRecorder()
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	r.RecordWeekGenerated("mara")
	r.RecordWeekGenerated("mara")
	r.RecordScheduleCacheHit()
	r.RecordSceneResolved("busker")
	r.RecordSceneFallback()

	families, err := r.registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	expected := map[string]bool{
		MetricWeeksGeneratedTotal:    false,
		MetricScheduleCacheHitsTotal: false,
		MetricScenesResolvedTotal:    false,
		MetricSceneFallbacksTotal:    false,
	}
	for _, f := range families {
		if _, ok := expected[f.GetName()]; ok {
			expected[f.GetName()] = true
		}
		if f.GetName() == MetricWeeksGeneratedTotal {
			if len(f.GetMetric()) != 1 {
				t.Fatalf("expected one npc label series, got %d", len(f.GetMetric()))
			}
			if got := f.GetMetric()[0].GetCounter().GetValue(); got != 2 {
				t.Fatalf("expected 2 weeks generated, got %v", got)
			}
		}
	}
	for name, found := range expected {
		if !found {
			t.Fatalf("metric %s not found in gathered metrics", name)
		}
	}
}

func TestRecorderHandlerNotNil(t *testing.T) {
	r, err := NewRecorder()
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	if r.Handler() == nil {
		t.Fatal("expected non-nil handler")
	}
}
