package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

func TestDoVal_SucceedsFirstTry(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), fastRetry(3), func(context.Context) (string, error) {
		calls++
		return "done", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "done" || calls != 1 {
		t.Errorf("val=%q calls=%d", val, calls)
	}
}

func TestDoVal_RetriesTransient(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), fastRetry(3), func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, NewTransientError(errors.New("503"), 503)
		}
		return 7, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 7 || calls != 3 {
		t.Errorf("val=%d calls=%d", val, calls)
	}
}

func TestDoVal_StopsOnPermanent(t *testing.T) {
	calls := 0
	perm := errors.New("bad request")
	_, err := DoVal(context.Background(), fastRetry(5), func(context.Context) (int, error) {
		calls++
		return 0, perm
	})
	if !errors.Is(err, perm) {
		t.Errorf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoVal_ExhaustsAttempts(t *testing.T) {
	calls := 0
	retries := 0
	cfg := fastRetry(2)
	cfg.OnRetry = func(int, error) { retries++ }
	_, err := DoVal(context.Background(), cfg, func(context.Context) (int, error) {
		calls++
		return 0, NewTransientError(errors.New("429"), 429)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 2 || retries != 1 {
		t.Errorf("calls=%d retries=%d", calls, retries)
	}
}

func TestDoVal_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxAttempts: 5, InitialBackoff: time.Hour, MaxBackoff: time.Hour}
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := DoVal(ctx, cfg, func(context.Context) (int, error) {
		calls++
		return 0, NewTransientError(errors.New("busy"), 503)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBackoff_Capped(t *testing.T) {
	cfg := withRetryDefaults(RetryConfig{InitialBackoff: time.Second, MaxBackoff: 3 * time.Second})
	if got := backoff(0, cfg); got != time.Second {
		t.Errorf("attempt 0 = %v", got)
	}
	if got := backoff(1, cfg); got != 2*time.Second {
		t.Errorf("attempt 1 = %v", got)
	}
	if got := backoff(5, cfg); got != 3*time.Second {
		t.Errorf("attempt 5 = %v", got)
	}
}

func TestFromOracleConfig(t *testing.T) {
	retry, breaker := FromOracleConfig(4, 6, 45)
	if retry.MaxAttempts != 4 {
		t.Errorf("MaxAttempts = %d", retry.MaxAttempts)
	}
	if breaker.Threshold != 6 || breaker.Cooldown != 45*time.Second {
		t.Errorf("breaker = %+v", breaker)
	}

	_, breaker = FromOracleConfig(0, 0, 0)
	b := NewBreaker(breaker)
	if b.cfg.Threshold != 5 || b.cfg.Cooldown != 30*time.Second {
		t.Errorf("defaults not applied: %+v", b.cfg)
	}
}
