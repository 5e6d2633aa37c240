package ports

// SimMetrics records simulation KPIs. Implementations must be safe to call
// from the request path; a nil recorder is allowed everywhere and means
// "don't record".
type SimMetrics interface {
	RecordWeekGenerated(npcID string)
	RecordScheduleCacheHit()
	RecordSceneResolved(sceneID string)
	RecordSceneFallback()
}
