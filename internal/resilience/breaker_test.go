package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestBreaker(cfg BreakerConfig) (*Breaker, *time.Time) {
	b := NewBreaker(cfg)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	return b, &now
}

func fail(context.Context) (string, error) { return "", errors.New("boom") }
func ok(context.Context) (string, error)   { return "ok", nil }

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker(BreakerConfig{Threshold: 3, Cooldown: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := Call(ctx, b, fail); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}
	if b.State() != BreakerOpen {
		t.Fatalf("expected open, got %s", b.State())
	}

	called := false
	_, err := Call(ctx, b, func(context.Context) (string, error) {
		called = true
		return "", nil
	})
	if !errors.Is(err, ErrBreakerOpen) {
		t.Errorf("expected ErrBreakerOpen, got %v", err)
	}
	if called {
		t.Error("fn must not run while open")
	}
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	b, _ := newTestBreaker(BreakerConfig{Threshold: 3})
	ctx := context.Background()

	_, _ = Call(ctx, b, fail)
	_, _ = Call(ctx, b, fail)
	if got := b.Failures(); got != 2 {
		t.Fatalf("failures = %d, want 2", got)
	}
	if _, err := Call(ctx, b, ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := b.Failures(); got != 0 {
		t.Errorf("failures = %d, want 0", got)
	}
	if b.State() != BreakerClosed {
		t.Errorf("expected closed, got %s", b.State())
	}
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	var transitions []string
	b, now := newTestBreaker(BreakerConfig{
		Threshold: 1,
		Cooldown:  10 * time.Second,
		OnStateChange: func(from, to BreakerState) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})
	ctx := context.Background()

	_, _ = Call(ctx, b, fail)
	if b.State() != BreakerOpen {
		t.Fatalf("expected open, got %s", b.State())
	}

	*now = now.Add(11 * time.Second)
	if b.State() != BreakerHalfOpen {
		t.Fatalf("expected half-open after cooldown, got %s", b.State())
	}

	val, err := Call(ctx, b, ok)
	if err != nil || val != "ok" {
		t.Fatalf("probe: got %q, %v", val, err)
	}
	if b.State() != BreakerClosed {
		t.Errorf("expected closed after probe, got %s", b.State())
	}

	want := []string{"closed->open", "open->half-open", "half-open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, transitions[i], want[i])
		}
	}
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	b, now := newTestBreaker(BreakerConfig{Threshold: 1, Cooldown: time.Second})
	ctx := context.Background()

	_, _ = Call(ctx, b, fail)
	*now = now.Add(2 * time.Second)
	_, _ = Call(ctx, b, fail)

	if b.State() != BreakerOpen {
		t.Errorf("expected open after failed probe, got %s", b.State())
	}
}

func TestBreaker_ShouldTripFiltersErrors(t *testing.T) {
	ignored := errors.New("ignored")
	b, _ := newTestBreaker(BreakerConfig{
		Threshold:  1,
		ShouldTrip: func(err error) bool { return !errors.Is(err, ignored) },
	})

	_, _ = Call(context.Background(), b, func(context.Context) (int, error) { return 0, ignored })
	if b.State() != BreakerClosed {
		t.Errorf("expected closed, got %s", b.State())
	}
}

func TestBreakerState_String(t *testing.T) {
	tests := map[BreakerState]string{
		BreakerClosed:    "closed",
		BreakerOpen:      "open",
		BreakerHalfOpen:  "half-open",
		BreakerState(42): "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", s, got, want)
		}
	}
}
