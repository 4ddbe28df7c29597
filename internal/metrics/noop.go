package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncTokenIssued()                {}
func (n *NoopRecorder) IncTokenRejected(reason string) {}
func (n *NoopRecorder) IncFavoriteAdded()              {}
func (n *NoopRecorder) IncFavoriteRemoved()            {}
func (n *NoopRecorder) IncChapterFinished()            {}
func (n *NoopRecorder) IncUserCreated()                {}
func (n *NoopRecorder) IncStoreError()                 {}
func (n *NoopRecorder) IncProxyRequest(status string)  {}
func (n *NoopRecorder) AddProxyBytes(bytes int64)      {}
