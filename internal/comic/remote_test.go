package comic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingServer serves the comic API and counts page requests. If gate is
// non-nil every page request blocks until it is closed.
func countingServer(t *testing.T, pages int, gate chan struct{}) (*httptest.Server, *int64) {
	t.Helper()
	var hits int64
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			atomic.AddInt64(&hits, 1)
			if gate != nil {
				<-gate
			}
			next.ServeHTTP(w, req)
		})
	})
	RegisterRoutes(r, NewLocalFetcher(testCatalog(pages)), nil)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestRemoteFetch(t *testing.T) {
	srv, hits := countingServer(t, 5, nil)
	f := NewRemoteFetcher(srv.URL + "/")

	res, err := f.Fetch(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, res.PageNumber)
	assert.Equal(t, 5, res.TotalPages)
	assert.Equal(t, 2, *res.PrevPage)
	assert.Equal(t, 4, *res.NextPage)
	assert.Len(t, res.Page.Panels, 2)

	// Second call is served from cache.
	again, err := f.Fetch(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, res, again)
	assert.Equal(t, int64(1), atomic.LoadInt64(hits))

	// Mutating a returned result must not corrupt the cache.
	again.Page.Title = "changed"
	third, _ := f.Fetch(context.Background(), 3)
	assert.Equal(t, "Page 3", third.Page.Title)
}

func TestRemoteFetchNoCache(t *testing.T) {
	srv, hits := countingServer(t, 5, nil)
	f := NewRemoteFetcher(srv.URL, WithCacheTTL(0))

	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), 1)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), atomic.LoadInt64(hits))
}

func TestRemoteFetchNotFound(t *testing.T) {
	srv, _ := countingServer(t, 5, nil)
	f := NewRemoteFetcher(srv.URL)

	_, err := f.Fetch(context.Background(), 6)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoteFetchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewRemoteFetcher(srv.URL, WithLogger(nil))
	_, err := f.Fetch(context.Background(), 1)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusInternalServerError, te.Status)
}

func TestRemoteFetchBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := NewRemoteFetcher(srv.URL).Fetch(context.Background(), 1)
	var te *TransportError
	assert.ErrorAs(t, err, &te)
}

func TestRemoteFetchTimeout(t *testing.T) {
	gate := make(chan struct{})
	srv, _ := countingServer(t, 5, gate)
	defer close(gate)

	f := NewRemoteFetcher(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := f.Fetch(context.Background(), 1)
	var te *TransportError
	assert.ErrorAs(t, err, &te)
}

func TestRemoteFetchCollapsesConcurrentRequests(t *testing.T) {
	gate := make(chan struct{})
	srv, hits := countingServer(t, 5, gate)
	f := NewRemoteFetcher(srv.URL, WithCacheTTL(0))

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.Fetch(context.Background(), 2)
			errs <- err
		}()
	}

	// Give every caller time to join the in-flight request.
	require.Eventually(t, func() bool { return atomic.LoadInt64(hits) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int64(1), atomic.LoadInt64(hits))
}

func TestRemoteIndex(t *testing.T) {
	srv, _ := countingServer(t, 4, nil)
	idx, err := NewRemoteFetcher(srv.URL).Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, idx.TotalPages)
}
