// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Token metrics
	IncTokenIssued()
	IncTokenRejected(reason string) // reason: "wrong_password", "missing", "invalid"

	// Reading state metrics
	IncFavoriteAdded()
	IncFavoriteRemoved()
	IncChapterFinished()
	IncUserCreated()
	IncStoreError()

	// Image proxy metrics
	IncProxyRequest(status string) // status: "success", "invalid", "failed", "limited"
	AddProxyBytes(n int64)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
