package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for back-off tracking.
var (
	usersRateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "users_rate_limit_blocks_total",
		Help: "Requests refused locally while the backend asked to back off",
	})

	usersRateLimitBackoffSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "users_rate_limit_backoff_seconds",
		Help: "Back-off requested by the most recent 429 response",
	})
)

// Tracker records back-off requests from responses. It is safe for
// concurrent use.
type Tracker struct {
	logger zerolog.Logger
	now    func() time.Time

	mu    sync.Mutex
	state State
}

// NewTracker creates a tracker with no back-off in effect.
func NewTracker(logger zerolog.Logger) *Tracker {
	return &Tracker{
		logger: logger,
		now:    time.Now,
	}
}

// GetState returns a snapshot of the current state.
func (t *Tracker) GetState() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// UpdateFromResponse updates the state from a response status and headers.
// A 429 starts a back-off; any other status ends one early.
func (t *Tracker) UpdateFromResponse(statusCode int, headers http.Header) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()

	if statusCode != http.StatusTooManyRequests {
		if t.state.Throttled > 0 || !t.state.BlockedUntil.IsZero() {
			t.logger.Info().Msg("Backend back-off cleared")
			usersRateLimitBackoffSeconds.Set(0)
		}
		t.state = State{LastUpdate: now}
		return
	}

	wait, ok := ParseRetryAfter(headers.Get("Retry-After"), now)
	if !ok {
		wait = DefaultBackoff
	}

	t.state = State{
		BlockedUntil: now.Add(wait),
		LastUpdate:   now,
		Throttled:    t.state.Throttled + 1,
	}
	usersRateLimitBackoffSeconds.Set(wait.Seconds())

	t.logger.Warn().
		Dur("retry_after", wait).
		Int("throttled", t.state.Throttled).
		Msg("Backend requested back-off")
}

// ShouldAllowRequest reports whether a request may be sent now. When it
// may not, wait is the remaining back-off.
func (t *Tracker) ShouldAllowRequest() (allowed bool, wait time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if !t.state.Blocked(now) {
		return true, 0
	}

	wait = t.state.TimeUntilReset(now)
	usersRateLimitBlocksTotal.Inc()
	t.logger.Debug().Dur("wait", wait).Msg("Request refused during back-off")
	return false, wait
}
