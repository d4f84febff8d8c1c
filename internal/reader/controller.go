// Package reader owns per-session navigation state for the comic reader:
// which page and panel are current, and how that changes on user input and
// fetch completion.
package reader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/galatea-comics/galatea/internal/comic"
)

// ErrEmptyPage is reported when a resolved page has no panels to show.
var ErrEmptyPage = errors.New("page has no panels")

// Controller is the navigation state machine for one reader session. It is
// the only component that requests pages or moves the panel index.
//
// All methods are safe to call from multiple goroutines. Each fetch is tagged
// with a request sequence number; results for anything but the latest
// request are dropped.
type Controller struct {
	fetcher  comic.Fetcher
	log      *zap.Logger
	listener func(Snapshot)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// notifyMu serialises transitions with listener delivery so listeners
	// observe snapshots in version order. Lock order: notifyMu, then mu.
	notifyMu sync.Mutex

	mu         sync.Mutex
	closed     bool
	seq        uint64
	version    uint64
	changed    chan struct{}
	status     Status
	requested  int
	landOnLast bool
	result     *comic.Result
	panel      int
	errMsg     string
	err        error
}

// Option configures a Controller.
type Option func(*Controller)

// WithListener registers fn to receive every new snapshot. fn runs on the
// goroutine that caused the transition and must not call back into the
// controller synchronously.
func WithListener(fn func(Snapshot)) Option {
	return func(c *Controller) { c.listener = fn }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// New creates a controller in the loading state with no page requested yet.
// Call Request to start.
func New(fetcher comic.Fetcher, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		fetcher: fetcher,
		log:     zap.NewNop(),
		ctx:     ctx,
		cancel:  cancel,
		changed: make(chan struct{}),
		status:  StatusLoading,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request navigates to page n. The controller enters loading immediately
// and any in-flight fetch becomes stale.
func (c *Controller) Request(n int) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	seq := c.beginLocked(n, false)
	c.launchLocked(seq, n)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snap)
}

// RequestRaw navigates using untrusted route text. Input that is not a
// positive integer puts the controller straight into the error state.
func (c *Controller) RequestRaw(s string) {
	n, err := comic.ParsePageNumber(s)
	if err == nil {
		c.Request(n)
		return
	}

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.seq++
	c.requested = 0
	c.landOnLast = false
	c.failLocked(err)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snap)
}

// NextPanel advances one panel, continuing onto the next page's first panel
// at the end of a page. It is a no-op unless the controller is ready, and on
// the last panel of the last page.
func (c *Controller) NextPanel() { c.step(ActionNextPanel) }

// PrevPanel goes back one panel, continuing onto the previous page's last
// panel at the start of a page. It is a no-op unless the controller is
// ready, and on the first panel of the first page.
func (c *Controller) PrevPanel() { c.step(ActionPrevPanel) }

func (c *Controller) step(a Action) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.closed || c.status != StatusReady {
		c.mu.Unlock()
		return
	}
	pos, _ := c.snapshotLocked().Position()
	t := Plan(pos, a)
	if !t.Moved {
		c.mu.Unlock()
		return
	}

	if !t.CrossPage {
		c.panel = t.Panel
		c.bumpLocked()
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.emit(snap)
		return
	}

	seq := c.beginLocked(t.Page, t.LastPanel)
	c.launchLocked(seq, t.Page)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snap)
}

// SetPanelIndex jumps to panel i of the current page, clamped to the page's
// panel range. It is a no-op unless the controller is ready.
func (c *Controller) SetPanelIndex(i int) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.closed || c.status != StatusReady {
		c.mu.Unlock()
		return
	}
	i = ClampPanel(i, len(c.result.Page.Panels))
	if i == c.panel {
		c.mu.Unlock()
		return
	}
	c.panel = i
	c.bumpLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snap)
}

// Retry re-issues the fetch for the current requested page. It only acts in
// the error state.
func (c *Controller) Retry() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.closed || c.status != StatusError {
		c.mu.Unlock()
		return
	}
	n := c.requested
	seq := c.beginLocked(n, c.landOnLast)
	c.launchLocked(seq, n)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snap)
}

// Snapshot returns the current navigation state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Changed returns a channel that is closed on the next state change.
func (c *Controller) Changed() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changed
}

// Await blocks until pred accepts the current snapshot or ctx is done.
func (c *Controller) Await(ctx context.Context, pred func(Snapshot) bool) (Snapshot, error) {
	for {
		c.mu.Lock()
		snap := c.snapshotLocked()
		ch := c.changed
		c.mu.Unlock()

		if pred(snap) {
			return snap, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
}

// Settled reports whether a snapshot is no longer loading.
func Settled(s Snapshot) bool { return s.Status != StatusLoading }

// Close discards any in-flight fetch and waits for fetch goroutines to exit.
// The controller ignores all calls afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
	c.wg.Wait()
}

// beginLocked enters the loading state for page n and returns the new
// request's sequence number.
func (c *Controller) beginLocked(n int, landOnLast bool) uint64 {
	c.seq++
	c.status = StatusLoading
	c.requested = n
	c.landOnLast = landOnLast
	c.result = nil
	c.panel = 0
	c.errMsg = ""
	c.err = nil
	c.bumpLocked()
	return c.seq
}

func (c *Controller) failLocked(err error) {
	c.status = StatusError
	c.result = nil
	c.panel = 0
	c.err = err
	c.errMsg = Describe(err)
	c.bumpLocked()
}

// Describe turns a navigation failure into a message suitable for a reader.
func Describe(err error) string {
	if errors.Is(err, ErrEmptyPage) {
		return "This page has no panels to show."
	}
	return comic.Describe(err)
}

func (c *Controller) bumpLocked() {
	c.version++
	close(c.changed)
	c.changed = make(chan struct{})
}

// launchLocked starts the fetch for request seq. It runs under mu so the
// WaitGroup cannot grow once Close has marked the controller closed.
func (c *Controller) launchLocked(seq uint64, n int) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		res, err := c.fetch(n)
		c.complete(seq, n, res, err)
	}()
}

// fetch calls the fetcher, converting a panic into an error.
func (c *Controller) fetch(n int) (res *comic.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetching page %d: panic: %v", n, r)
		}
	}()
	return c.fetcher.Fetch(c.ctx, n)
}

func (c *Controller) complete(seq uint64, n int, res *comic.Result, err error) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		c.log.Debug("dropping stale page result", zap.Int("page", n), zap.Uint64("seq", seq))
		return
	}

	switch {
	case err != nil:
		c.log.Info("page fetch failed", zap.Int("page", n), zap.Error(err))
		c.failLocked(err)
	case res == nil:
		c.failLocked(fmt.Errorf("page %d: empty result", n))
	case len(res.Page.Panels) == 0:
		c.log.Warn("page has no panels", zap.Int("page", n))
		c.failLocked(fmt.Errorf("page %d: %w", n, ErrEmptyPage))
	default:
		c.status = StatusReady
		c.result = res
		c.panel = 0
		if c.landOnLast {
			c.panel = len(res.Page.Panels) - 1
		}
		c.bumpLocked()
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snap)
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		Version:       c.version,
		Status:        c.status,
		RequestedPage: c.requested,
		PanelIndex:    -1,
	}
	switch c.status {
	case StatusReady:
		r := c.result.Clone()
		s.Page = &r.Page
		s.PanelIndex = c.panel
		s.PanelCount = len(r.Page.Panels)
		s.TotalPages = r.TotalPages
		s.PrevPage = r.PrevPage
		s.NextPage = r.NextPage
	case StatusError:
		s.ErrorMessage = c.errMsg
		s.Err = c.err
	}
	return s
}

func (c *Controller) emit(s Snapshot) {
	if c.listener != nil {
		c.listener(s)
	}
}
