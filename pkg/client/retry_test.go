package client

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetryConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:       attempts,
		InitialBackoff:    10 * time.Millisecond,
		MaxBackoff:        40 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxAttempts != 1 {
		t.Errorf("MaxAttempts = %d, want 1 (no retries)", config.MaxAttempts)
	}
	if config.InitialBackoff != 1*time.Second {
		t.Errorf("InitialBackoff = %v, want 1s", config.InitialBackoff)
	}
	if config.MaxBackoff != 30*time.Second {
		t.Errorf("MaxBackoff = %v, want 30s", config.MaxBackoff)
	}
	if config.BackoffMultiplier != 2.0 {
		t.Errorf("BackoffMultiplier = %v, want 2.0", config.BackoffMultiplier)
	}
}

func TestRetryConfig_ForErrorClass(t *testing.T) {
	base := fastRetryConfig(3)

	if got := base.forErrorClass(ErrorClassServer).InitialBackoff; got != 10*time.Millisecond {
		t.Errorf("server InitialBackoff = %v, want 10ms", got)
	}
	if got := base.forErrorClass(ErrorClassRateLimit).InitialBackoff; got != 40*time.Millisecond {
		t.Errorf("rate limit InitialBackoff = %v, want capped 40ms", got)
	}
}

func TestRetryWithBackoff_SingleAttempt(t *testing.T) {
	attempts := 0
	wantErr := errors.New("boom")

	err := retryWithBackoff(context.Background(), DefaultRetryConfig(), func() ErrorClass {
		return ErrorClassServer
	}, func() error {
		attempts++
		return wantErr
	})

	if err != wantErr {
		t.Errorf("err = %v, want the unwrapped attempt error", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetryWithBackoff_SuccessAfterRetry(t *testing.T) {
	attempts := 0

	err := retryWithBackoff(context.Background(), fastRetryConfig(3), func() ErrorClass {
		return ErrorClassServer
	}, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryWithBackoff_MaxAttemptsExhausted(t *testing.T) {
	attempts := 0
	last := &TransportError{StatusCode: 503, ErrorClass: ErrorClassServer, Message: "503"}

	err := retryWithBackoff(context.Background(), fastRetryConfig(3), func() ErrorClass {
		return ErrorClassServer
	}, func() error {
		attempts++
		return last
	})

	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("err = %v, want ErrRetryExhausted", err)
	}
	var te *TransportError
	if !errors.As(err, &te) || te != last {
		t.Errorf("err = %v, want the last TransportError to stay reachable", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryWithBackoff_ClientErrorNoRetry(t *testing.T) {
	attempts := 0

	err := retryWithBackoff(context.Background(), fastRetryConfig(3), func() ErrorClass {
		return ErrorClassClient
	}, func() error {
		attempts++
		return errors.New("not found")
	})

	if err == nil || errors.Is(err, ErrRetryExhausted) {
		t.Errorf("err = %v, want the plain client error", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetryWithBackoff_BackoffActiveNoRetry(t *testing.T) {
	attempts := 0

	err := retryWithBackoff(context.Background(), fastRetryConfig(3), func() ErrorClass {
		return ErrorClassRateLimit
	}, func() error {
		attempts++
		return &TransportError{ErrorClass: ErrorClassRateLimit, Message: "backing off for 1s", Err: ErrBackoffActive}
	})

	if !errors.Is(err, ErrBackoffActive) {
		t.Errorf("err = %v, want ErrBackoffActive", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	config := fastRetryConfig(5)
	config.InitialBackoff = time.Second
	config.MaxBackoff = time.Second

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := retryWithBackoff(ctx, config, func() ErrorClass {
		return ErrorClassNetwork
	}, func() error {
		attempts++
		return errors.New("dial tcp: refused")
	})

	if !errors.Is(err, ErrContextCancelled) {
		t.Errorf("err = %v, want ErrContextCancelled", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled to be wrapped", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Errorf("cancellation took %v, want prompt return", time.Since(start))
	}
}

func TestRetryWithBackoff_ExponentialBackoff(t *testing.T) {
	var stamps []time.Time

	config := fastRetryConfig(4)
	config.MaxBackoff = time.Second

	_ = retryWithBackoff(context.Background(), config, func() ErrorClass {
		return ErrorClassServer
	}, func() error {
		stamps = append(stamps, time.Now())
		return errors.New("fail")
	})

	if len(stamps) != 4 {
		t.Fatalf("attempts = %d, want 4", len(stamps))
	}

	// waits are 10ms, 20ms, 40ms with ±20% jitter
	mins := []time.Duration{8 * time.Millisecond, 16 * time.Millisecond, 32 * time.Millisecond}
	for i, min := range mins {
		gap := stamps[i+1].Sub(stamps[i])
		if gap < min {
			t.Errorf("wait %d = %v, want >= %v", i+1, gap, min)
		}
	}
}
