// Package viewmodel turns users listing responses into the tri-state view
// (loading, loaded, error) and tracks the current page and page window.
package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Sternrassler/users-pagination/pkg/client"
	"github.com/Sternrassler/users-pagination/pkg/logging"
	"github.com/Sternrassler/users-pagination/pkg/pagination"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for view transitions.
var (
	viewTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "users_view_transitions_total",
		Help: "Total view state transitions by resulting state",
	}, []string{"state"})

	viewStaleResponsesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "users_view_stale_responses_total",
		Help: "Responses discarded because a newer request was started",
	})
)

// ErrInvalidPage is the cause of an Errored view after asking for a
// negative page.
var ErrInvalidPage = errors.New("page index must be >= 0")

// Fetcher is the data access port the composer reads pages from.
// *client.Client satisfies it.
type Fetcher interface {
	FetchUsers(ctx context.Context, q client.Query) (*client.PageResponse, error)
}

// Config holds the composer configuration.
type Config struct {
	// PageSize is requested on every fetch.
	PageSize int

	// WindowSize is the number of page buttons shown at once.
	WindowSize int
}

// DefaultConfig returns ten users per page and ten page buttons.
func DefaultConfig() Config {
	return Config{
		PageSize:   client.DefaultPageSize,
		WindowSize: pagination.DefaultWindowSize,
	}
}

// Composer drives the users view. All methods are safe for concurrent use.
// Each navigation method blocks until its own request settles and returns
// the view current at that point. When requests overlap, only the most
// recently started one may change the view.
type Composer struct {
	fetcher Fetcher
	config  Config
	logger  zerolog.Logger

	mu          sync.Mutex
	seq         uint64
	view        ViewState
	last        *client.PageResponse
	currentPage int
	window      pagination.Window
	filter      string
	subs        map[int]chan ViewState
	nextSub     int
}

// NewComposer creates a composer in the Loading state.
func NewComposer(fetcher Fetcher, cfg Config, logger zerolog.Logger) (*Composer, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("page_size must be > 0 (got %d)", cfg.PageSize)
	}

	window, err := pagination.NewWindow(cfg.WindowSize)
	if err != nil {
		return nil, err
	}

	c := &Composer{
		fetcher: fetcher,
		config:  cfg,
		logger:  logger.With().Str("component", logging.ComponentView).Logger(),
		window:  window,
		subs:    make(map[int]chan ViewState),
	}
	c.view = c.viewLocked(StateLoading, nil, nil)
	return c, nil
}

// Load shows Loading, then fetches the first unfiltered page.
// Page and window are reset to the start.
func (c *Composer) Load(ctx context.Context) ViewState {
	c.mu.Lock()
	seq := c.beginLocked()
	c.filter = ""
	c.currentPage = 0
	c.window = pagination.WindowFor(0, c.config.WindowSize)
	c.publishLocked(c.viewLocked(StateLoading, nil, nil))
	c.mu.Unlock()

	q := client.DefaultQuery()
	q.Size = c.config.PageSize
	resp, err := c.fetcher.FetchUsers(ctx, q)
	return c.settle(seq, q.Page, nil, resp, err)
}

// GoToPage fetches page with the given name filter. While the request is
// pending the previous page stays visible (marked Pending); on the very
// first load Loading is shown instead. The window is left where it is.
func (c *Composer) GoToPage(ctx context.Context, name string, page int) ViewState {
	return c.goToPage(ctx, name, page, nil)
}

// goToPage fetches page and, when window is non-nil, moves to that window
// together with the page once the response settles. A failed or superseded
// request leaves both page and window unchanged.
func (c *Composer) goToPage(ctx context.Context, name string, page int, window *pagination.Window) ViewState {
	c.mu.Lock()
	seq := c.beginLocked()
	if page < 0 {
		v := c.viewLocked(StateError, nil, fmt.Errorf("%w (got %d)", ErrInvalidPage, page))
		c.publishLocked(v)
		c.mu.Unlock()
		return v
	}
	c.filter = name

	var pending ViewState
	if c.last != nil {
		pending = c.viewLocked(StateLoaded, c.last, nil)
		pending.Pending = true
	} else {
		pending = c.viewLocked(StateLoading, nil, nil)
	}
	if window != nil {
		pending.Window = *window
	}
	c.publishLocked(pending)
	c.mu.Unlock()

	resp, err := c.fetcher.FetchUsers(ctx, client.Query{
		Name: name,
		Page: page,
		Size: c.config.PageSize,
	})
	return c.settle(seq, page, window, resp, err)
}

// StepPage moves one page forward or backward, shifting the window when
// the move crosses a window boundary. Steps before the first or past the
// last known page leave the view untouched.
func (c *Composer) StepPage(ctx context.Context, dir pagination.Direction, name string) ViewState {
	c.mu.Lock()
	current := c.currentPage
	next, window, ok := pagination.Step(current, c.window, dir)
	if ok && dir == pagination.Forward && c.last != nil && next >= c.last.Data.TotalPages {
		ok = false
	}
	if !ok {
		v := c.view
		c.mu.Unlock()
		c.logger.Debug().Int("page", current).Str("direction", dir.String()).Msg("Page step out of range")
		return v
	}
	c.mu.Unlock()

	return c.goToPage(ctx, name, next, &window)
}

// StepWindow moves the window by one window size and jumps to its first
// page. Moving before page 0 or past the last known page is a no-op.
func (c *Composer) StepWindow(ctx context.Context, dir pagination.Direction, name string) ViewState {
	c.mu.Lock()
	window, ok := c.window.Shift(dir)
	if ok && dir == pagination.Forward && c.last != nil && window.Start >= c.last.Data.TotalPages {
		ok = false
	}
	if !ok {
		v := c.view
		c.mu.Unlock()
		c.logger.Debug().Str("direction", dir.String()).Msg("Window step out of range")
		return v
	}
	c.mu.Unlock()

	return c.goToPage(ctx, name, window.Start, &window)
}

// Search applies a new name filter starting from the first page and window.
func (c *Composer) Search(ctx context.Context, name string) ViewState {
	window := pagination.WindowFor(0, c.config.WindowSize)
	return c.goToPage(ctx, name, 0, &window)
}

// State returns the current view.
func (c *Composer) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// CurrentPage returns the index of the last successfully loaded page.
func (c *Composer) CurrentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPage
}

// Window returns the page window on display.
func (c *Composer) Window() pagination.Window {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.window
}

// Filter returns the name filter of the most recent request.
func (c *Composer) Filter() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// LastResponse returns the most recent successful response, or nil.
// It survives Errored views.
func (c *Composer) LastResponse() *client.PageResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Subscribe returns a channel receiving every published view, in order.
// Delivery never blocks the composer: when the buffer is full the view is
// dropped for that subscriber. The returned func unsubscribes and closes
// the channel.
func (c *Composer) Subscribe(buffer int) (<-chan ViewState, func()) {
	if buffer < 1 {
		buffer = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan ViewState, buffer)
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}
}

func (c *Composer) beginLocked() uint64 {
	c.seq++
	return c.seq
}

// settle applies the outcome of request seq unless a newer request has
// been started since.
func (c *Composer) settle(seq uint64, page int, window *pagination.Window, resp *client.PageResponse, err error) ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		viewStaleResponsesTotal.Inc()
		c.logger.Debug().
			Uint64("seq", seq).
			Uint64("latest_seq", c.seq).
			Int("page", page).
			Msg("Discarding superseded response")
		return c.view
	}

	if err != nil {
		c.logger.Error().Err(err).Int("page", page).Msg("Users page failed")
		v := c.viewLocked(StateError, nil, err)
		c.publishLocked(v)
		return v
	}

	if resp == nil || resp.Data == nil {
		err := fmt.Errorf("%w: empty page response", client.ErrMalformedResponse)
		v := c.viewLocked(StateError, nil, err)
		c.publishLocked(v)
		return v
	}

	c.last = resp
	c.currentPage = page
	if window != nil {
		c.window = *window
	}

	c.logger.Info().
		Int("page", page).
		Int("total_pages", resp.Data.TotalPages).
		Int("window_start", c.window.Start).
		Msg("Users page loaded")

	v := c.viewLocked(StateLoaded, resp, nil)
	c.publishLocked(v)
	return v
}

func (c *Composer) viewLocked(state State, resp *client.PageResponse, err error) ViewState {
	return ViewState{
		State:       state,
		Response:    resp,
		Err:         err,
		CurrentPage: c.currentPage,
		Window:      c.window,
	}
}

func (c *Composer) publishLocked(v ViewState) {
	c.view = v
	viewTransitionsTotal.WithLabelValues(string(v.State)).Inc()
	for _, ch := range c.subs {
		select {
		case ch <- v:
		default:
		}
	}
}
