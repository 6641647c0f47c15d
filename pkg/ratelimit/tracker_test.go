package ratelimit

import (
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestTracker(now *time.Time) *Tracker {
	tr := NewTracker(zerolog.Nop())
	tr.now = func() time.Time { return *now }
	return tr
}

func TestTracker_InitiallyAllows(t *testing.T) {
	tr := NewTracker(zerolog.Nop())

	allowed, wait := tr.ShouldAllowRequest()
	if !allowed || wait != 0 {
		t.Errorf("ShouldAllowRequest() = %v, %v; want true, 0", allowed, wait)
	}
}

func TestTracker_BlocksAfter429(t *testing.T) {
	now := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	tr := newTestTracker(&now)

	headers := http.Header{}
	headers.Set("Retry-After", "2")
	tr.UpdateFromResponse(http.StatusTooManyRequests, headers)

	allowed, wait := tr.ShouldAllowRequest()
	if allowed || wait != 2*time.Second {
		t.Errorf("ShouldAllowRequest() = %v, %v; want false, 2s", allowed, wait)
	}

	now = now.Add(1500 * time.Millisecond)
	if _, wait := tr.ShouldAllowRequest(); wait != 500*time.Millisecond {
		t.Errorf("remaining wait = %v, want 500ms", wait)
	}

	now = now.Add(time.Second)
	if allowed, _ := tr.ShouldAllowRequest(); !allowed {
		t.Error("request should be allowed once the back-off expired")
	}
}

func TestTracker_DefaultBackoff(t *testing.T) {
	now := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	tr := newTestTracker(&now)

	tr.UpdateFromResponse(http.StatusTooManyRequests, http.Header{})

	state := tr.GetState()
	if got := state.TimeUntilReset(now); got != DefaultBackoff {
		t.Errorf("TimeUntilReset() = %v, want %v", got, DefaultBackoff)
	}
	if state.Throttled != 1 {
		t.Errorf("Throttled = %d, want 1", state.Throttled)
	}
}

func TestTracker_SuccessClearsBackoff(t *testing.T) {
	now := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	tr := newTestTracker(&now)

	tr.UpdateFromResponse(http.StatusTooManyRequests, http.Header{"Retry-After": []string{"30"}})
	tr.UpdateFromResponse(http.StatusTooManyRequests, http.Header{"Retry-After": []string{"30"}})
	if got := tr.GetState().Throttled; got != 2 {
		t.Errorf("Throttled = %d, want 2", got)
	}

	tr.UpdateFromResponse(http.StatusOK, http.Header{})

	state := tr.GetState()
	if state.Throttled != 0 || state.Blocked(now) {
		t.Errorf("state after success = %+v, want cleared", state)
	}
	if !state.LastUpdate.Equal(now) {
		t.Errorf("LastUpdate = %v, want %v", state.LastUpdate, now)
	}
}
