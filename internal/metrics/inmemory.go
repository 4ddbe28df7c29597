package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	TokensIssued          uint64
	TokensRejectedWrongPW uint64
	TokensRejectedMissing uint64
	TokensRejectedInvalid uint64

	FavoritesAdded   uint64
	FavoritesRemoved uint64
	ChaptersFinished uint64
	UsersCreated     uint64
	StoreErrors      uint64

	ProxySuccess uint64
	ProxyInvalid uint64
	ProxyFailed  uint64
	ProxyLimited uint64
	ProxyBytes   int64
}

// InMemoryRecorder stores metrics in memory with atomic counters.
type InMemoryRecorder struct {
	tokensIssued          atomic.Uint64
	tokensRejectedWrongPW atomic.Uint64
	tokensRejectedMissing atomic.Uint64
	tokensRejectedInvalid atomic.Uint64

	favoritesAdded   atomic.Uint64
	favoritesRemoved atomic.Uint64
	chaptersFinished atomic.Uint64
	usersCreated     atomic.Uint64
	storeErrors      atomic.Uint64

	proxySuccess atomic.Uint64
	proxyInvalid atomic.Uint64
	proxyFailed  atomic.Uint64
	proxyLimited atomic.Uint64
	proxyBytes   atomic.Int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		TokensIssued:          m.tokensIssued.Load(),
		TokensRejectedWrongPW: m.tokensRejectedWrongPW.Load(),
		TokensRejectedMissing: m.tokensRejectedMissing.Load(),
		TokensRejectedInvalid: m.tokensRejectedInvalid.Load(),
		FavoritesAdded:        m.favoritesAdded.Load(),
		FavoritesRemoved:      m.favoritesRemoved.Load(),
		ChaptersFinished:      m.chaptersFinished.Load(),
		UsersCreated:          m.usersCreated.Load(),
		StoreErrors:           m.storeErrors.Load(),
		ProxySuccess:          m.proxySuccess.Load(),
		ProxyInvalid:          m.proxyInvalid.Load(),
		ProxyFailed:           m.proxyFailed.Load(),
		ProxyLimited:          m.proxyLimited.Load(),
		ProxyBytes:            m.proxyBytes.Load(),
	}
}

// IncTokenIssued increments the issued token counter.
func (m *InMemoryRecorder) IncTokenIssued() {
	m.tokensIssued.Add(1)
}

// IncTokenRejected increments the rejection counter for reason.
// Unknown reasons count as invalid.
func (m *InMemoryRecorder) IncTokenRejected(reason string) {
	switch reason {
	case "wrong_password":
		m.tokensRejectedWrongPW.Add(1)
	case "missing":
		m.tokensRejectedMissing.Add(1)
	default:
		m.tokensRejectedInvalid.Add(1)
	}
}

// IncFavoriteAdded increments the favorites added counter.
func (m *InMemoryRecorder) IncFavoriteAdded() {
	m.favoritesAdded.Add(1)
}

// IncFavoriteRemoved increments the favorites removed counter.
func (m *InMemoryRecorder) IncFavoriteRemoved() {
	m.favoritesRemoved.Add(1)
}

// IncChapterFinished increments the finished chapters counter.
func (m *InMemoryRecorder) IncChapterFinished() {
	m.chaptersFinished.Add(1)
}

// IncUserCreated increments the created users counter.
func (m *InMemoryRecorder) IncUserCreated() {
	m.usersCreated.Add(1)
}

// IncStoreError increments the persistence failure counter.
func (m *InMemoryRecorder) IncStoreError() {
	m.storeErrors.Add(1)
}

// IncProxyRequest increments the proxy counter for status.
func (m *InMemoryRecorder) IncProxyRequest(status string) {
	switch status {
	case "success":
		m.proxySuccess.Add(1)
	case "invalid":
		m.proxyInvalid.Add(1)
	case "limited":
		m.proxyLimited.Add(1)
	default:
		m.proxyFailed.Add(1)
	}
}

// AddProxyBytes adds n to the proxied bytes total.
func (m *InMemoryRecorder) AddProxyBytes(n int64) {
	m.proxyBytes.Add(n)
}
