package ratelimit

import (
	"testing"
	"time"
)

func TestState_Blocked(t *testing.T) {
	now := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		state     State
		blocked   bool
		remaining time.Duration
	}{
		{"zero state", State{}, false, 0},
		{"in back-off", State{BlockedUntil: now.Add(3 * time.Second)}, true, 3 * time.Second},
		{"expired", State{BlockedUntil: now.Add(-time.Second)}, false, 0},
		{"exactly at reset", State{BlockedUntil: now}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Blocked(now); got != tt.blocked {
				t.Errorf("Blocked() = %v, want %v", got, tt.blocked)
			}
			if got := tt.state.TimeUntilReset(now); got != tt.remaining {
				t.Errorf("TimeUntilReset() = %v, want %v", got, tt.remaining)
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  time.Duration
		ok    bool
	}{
		{"seconds", "2", 2 * time.Second, true},
		{"zero", "0", 0, true},
		{"padded", " 5 ", 5 * time.Second, true},
		{"http date", now.Add(30 * time.Second).Format("Mon, 02 Jan 2006 15:04:05 GMT"), 30 * time.Second, true},
		{"date in the past", now.Add(-time.Minute).Format("Mon, 02 Jan 2006 15:04:05 GMT"), 0, true},
		{"capped", "86400", MaxBackoff, true},
		{"empty", "", 0, false},
		{"negative", "-1", 0, false},
		{"garbage", "soon", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRetryAfter(tt.value, now)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseRetryAfter(%q) = %v, %v; want %v, %v", tt.value, got, ok, tt.want, tt.ok)
			}
		})
	}
}
