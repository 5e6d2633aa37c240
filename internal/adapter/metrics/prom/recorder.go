// Package prom exports simulation KPIs as Prometheus metrics.
package prom

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	MetricWeeksGeneratedTotal    = "townsim_weeks_generated_total"
	MetricScheduleCacheHitsTotal = "townsim_schedule_cache_hits_total"
	MetricScenesResolvedTotal    = "townsim_scenes_resolved_total"
	MetricSceneFallbacksTotal    = "townsim_scene_fallbacks_total"
)

// Recorder implements the simulation metrics port on top of a private
// Prometheus registry.
type Recorder struct {
	registry       *prometheus.Registry
	weeksGenerated *prometheus.CounterVec
	cacheHits      prometheus.Counter
	scenesResolved *prometheus.CounterVec
	sceneFallbacks prometheus.Counter
}

func NewRecorder() (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		weeksGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricWeeksGeneratedTotal,
				Help: "Number of weekly schedules generated, by NPC",
			},
			[]string{"npc_id"},
		),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricScheduleCacheHitsTotal,
			Help: "Number of schedule lookups served from the per-week cache",
		}),
		scenesResolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricScenesResolvedTotal,
				Help: "Number of scenes resolved, by scene",
			},
			[]string{"scene_id"},
		),
		sceneFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricSceneFallbacksTotal,
			Help: "Number of scene resolutions that fell back to the default scene",
		}),
	}

	collectors := []prometheus.Collector{
		r.weeksGenerated,
		r.cacheHits,
		r.scenesResolved,
		r.sceneFallbacks,
	}
	for _, c := range collectors {
		if err := r.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) RecordWeekGenerated(npcID string) {
	r.weeksGenerated.WithLabelValues(npcID).Inc()
}

func (r *Recorder) RecordScheduleCacheHit() {
	r.cacheHits.Inc()
}

func (r *Recorder) RecordSceneResolved(sceneID string) {
	r.scenesResolved.WithLabelValues(sceneID).Inc()
}

func (r *Recorder) RecordSceneFallback() {
	r.sceneFallbacks.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
