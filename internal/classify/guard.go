package classify

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadscout/internal/metrics"
	"github.com/sells-group/leadscout/internal/resilience"
)

// GuardConfig bounds oracle calls.
type GuardConfig struct {
	// Name labels metrics, e.g. the provider name.
	Name string

	// Timeout bounds each attempt. Zero means 60s.
	Timeout time.Duration
	Retry   resilience.RetryConfig
	Breaker resilience.BreakerConfig

	// RPS paces calls with a token bucket. Zero disables pacing.
	RPS float64
}

// Guarded wraps an Oracle with a timeout, transient retries, a circuit
// breaker and optional pacing.
type Guarded struct {
	next    Oracle
	cfg     GuardConfig
	breaker *resilience.Breaker
	limiter *rate.Limiter
}

// Guard wraps next according to cfg.
func Guard(next Oracle, cfg GuardConfig) *Guarded {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Name == "" {
		cfg.Name = "oracle"
	}
	if cfg.Retry.OnRetry == nil {
		cfg.Retry.OnRetry = resilience.RetryLogger(cfg.Name, "complete")
	}

	onChange := cfg.Breaker.OnStateChange
	gauge := metrics.CircuitBreakerState.WithLabelValues(cfg.Name)
	cfg.Breaker.OnStateChange = func(from, to resilience.BreakerState) {
		gauge.Set(breakerCode(to))
		if onChange != nil {
			onChange(from, to)
		}
	}

	g := &Guarded{
		next:    next,
		cfg:     cfg,
		breaker: resilience.NewBreaker(cfg.Breaker),
	}
	if cfg.RPS > 0 {
		burst := int(cfg.RPS)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}
	return g
}

// Complete implements Oracle.
func (g *Guarded) Complete(ctx context.Context, system, text string) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "oracle: rate limit wait")
		}
	}

	start := time.Now()
	out, err := resilience.Call(ctx, g.breaker, func(ctx context.Context) (string, error) {
		return resilience.DoVal(ctx, g.cfg.Retry, func(ctx context.Context) (string, error) {
			attemptCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
			defer cancel()
			return g.next.Complete(attemptCtx, system, text)
		})
	})

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.OracleDuration.WithLabelValues(g.cfg.Name, status).
		Observe(float64(time.Since(start).Milliseconds()))

	if err != nil {
		return "", eris.Wrapf(err, "oracle %s", g.cfg.Name)
	}
	return out, nil
}

// BreakerState reports the state of the wrapped circuit breaker.
func (g *Guarded) BreakerState() resilience.BreakerState {
	return g.breaker.State()
}

func breakerCode(s resilience.BreakerState) float64 {
	switch s {
	case resilience.BreakerHalfOpen:
		return 1
	case resilience.BreakerOpen:
		return 2
	default:
		return 0
	}
}
