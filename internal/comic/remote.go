package comic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/galatea-comics/galatea/internal/logging"
)

const (
	DefaultFetchTimeout = 10 * time.Second
	DefaultCacheTTL     = 5 * time.Minute
)

// RemoteFetcher resolves pages through a galatea server's /api/comic
// endpoint. Successful results are cached and concurrent requests for the
// same page share one round trip.
type RemoteFetcher struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	cache   *cache.Cache
	group   singleflight.Group
	log     *zap.Logger
}

// RemoteOption configures a RemoteFetcher.
type RemoteOption func(*RemoteFetcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(f *RemoteFetcher) { f.client = c }
}

// WithTimeout bounds each round trip.
func WithTimeout(d time.Duration) RemoteOption {
	return func(f *RemoteFetcher) { f.timeout = d }
}

// WithCacheTTL sets how long resolved pages are reused. Zero disables caching.
func WithCacheTTL(d time.Duration) RemoteOption {
	return func(f *RemoteFetcher) {
		if d <= 0 {
			f.cache = nil
			return
		}
		f.cache = cache.New(d, 2*d)
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) RemoteOption {
	return func(f *RemoteFetcher) { f.log = logging.OrNop(l) }
}

// NewRemoteFetcher creates a fetcher for the server at baseURL
// (e.g. "http://localhost:8080").
func NewRemoteFetcher(baseURL string, opts ...RemoteOption) *RemoteFetcher {
	f := &RemoteFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
		timeout: DefaultFetchTimeout,
		cache:   cache.New(DefaultCacheTTL, 2*DefaultCacheTTL),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch implements Fetcher.
func (f *RemoteFetcher) Fetch(ctx context.Context, pageNumber int) (*Result, error) {
	key := strconv.Itoa(pageNumber)
	if f.cache != nil {
		if v, ok := f.cache.Get(key); ok {
			return v.(*Result).Clone(), nil
		}
	}

	ch := f.group.DoChan(key, func() (interface{}, error) {
		// Detached from the first caller so one cancelled reader does not
		// fail everyone sharing the flight.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
		defer cancel()
		res, err := f.get(rctx, pageNumber)
		if err != nil {
			return nil, err
		}
		if f.cache != nil {
			f.cache.Set(key, res, cache.DefaultExpiration)
		}
		return res, nil
	})

	select {
	case <-ctx.Done():
		return nil, &TransportError{URL: f.pageURL(pageNumber), Err: ctx.Err()}
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Result).Clone(), nil
	}
}

// Index implements Indexer.
func (f *RemoteFetcher) Index(ctx context.Context) (*Index, error) {
	url := f.baseURL + "/api/comic"
	rctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(rctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{URL: url, Status: resp.StatusCode}
	}
	var idx Index
	if err := json.NewDecoder(resp.Body).Decode(&idx); err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("decoding index: %w", err)}
	}
	return &idx, nil
}

func (f *RemoteFetcher) pageURL(pageNumber int) string {
	return fmt.Sprintf("%s/api/comic/%d", f.baseURL, pageNumber)
}

func (f *RemoteFetcher) get(ctx context.Context, pageNumber int) (*Result, error) {
	url := f.pageURL(pageNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Warn("page fetch failed", zap.String("url", url), zap.Error(err))
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	f.log.Debug("page fetched",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("page %d: %w", pageNumber, ErrNotFound)
	default:
		return nil, &TransportError{URL: url, Status: resp.StatusCode}
	}

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		Result
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("decoding page: %w", err)}
	}
	if !body.Success {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("server reported failure: %s", body.Error)}
	}
	res := body.Result
	return &res, nil
}
