package metrics

import (
	"sync"
	"testing"
)

func TestInMemoryRecorder_Counts(t *testing.T) {
	m := NewInMemory()

	m.IncTokenIssued()
	m.IncTokenRejected("wrong_password")
	m.IncTokenRejected("missing")
	m.IncTokenRejected("invalid")
	m.IncTokenRejected("something-else")
	m.IncFavoriteAdded()
	m.IncFavoriteRemoved()
	m.IncChapterFinished()
	m.IncUserCreated()
	m.IncStoreError()
	m.IncProxyRequest("success")
	m.IncProxyRequest("invalid")
	m.IncProxyRequest("failed")
	m.IncProxyRequest("limited")
	m.AddProxyBytes(1024)

	snap := m.Snapshot()
	want := Snapshot{
		TokensIssued:          1,
		TokensRejectedWrongPW: 1,
		TokensRejectedMissing: 1,
		TokensRejectedInvalid: 2,
		FavoritesAdded:        1,
		FavoritesRemoved:      1,
		ChaptersFinished:      1,
		UsersCreated:          1,
		StoreErrors:           1,
		ProxySuccess:          1,
		ProxyInvalid:          1,
		ProxyFailed:           1,
		ProxyLimited:          1,
		ProxyBytes:            1024,
	}
	if snap != want {
		t.Errorf("Snapshot() = %+v, want %+v", snap, want)
	}
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	m := NewInMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncFavoriteAdded()
		}()
	}
	wg.Wait()

	if got := m.Snapshot().FavoritesAdded; got != 50 {
		t.Errorf("FavoritesAdded = %d, want 50", got)
	}
}

func TestNoopRecorder_ImplementsRecorder(t *testing.T) {
	var r Recorder = NewNoop()
	r.IncTokenIssued()
	r.AddProxyBytes(10)
}
