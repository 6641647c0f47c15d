// Package ratelimit tracks backend back-off requests (429 Too Many Requests
// with Retry-After) and gates outgoing listing requests until they expire.
package ratelimit

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultBackoff applies when a 429 carries no usable Retry-After header.
const DefaultBackoff = 1 * time.Second

// MaxBackoff caps the honoured Retry-After.
const MaxBackoff = 5 * time.Minute

// State is the back-off state of the backend as last reported.
type State struct {
	// BlockedUntil is zero unless the backend asked to back off.
	BlockedUntil time.Time

	// LastUpdate is when a response last changed the state.
	LastUpdate time.Time

	// Throttled counts consecutive 429 responses.
	Throttled int
}

// Blocked reports whether requests must wait at now.
func (s State) Blocked(now time.Time) bool {
	return now.Before(s.BlockedUntil)
}

// TimeUntilReset returns how long requests must still wait at now, or 0.
func (s State) TimeUntilReset(now time.Time) time.Duration {
	if d := s.BlockedUntil.Sub(now); d > 0 {
		return d
	}
	return 0
}

// ParseRetryAfter reads a Retry-After value in delta-seconds or HTTP-date
// form relative to now. ok is false for missing or unparsable values.
func ParseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		return clamp(time.Duration(secs) * time.Second), true
	}

	if at, err := http.ParseTime(value); err == nil {
		return clamp(at.Sub(now)), true
	}
	return 0, false
}

func clamp(d time.Duration) time.Duration {
	switch {
	case d < 0:
		return 0
	case d > MaxBackoff:
		return MaxBackoff
	default:
		return d
	}
}
