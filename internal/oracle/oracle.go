// Package oracle adapts the hosted and local LLM clients to the classifier's
// Oracle interface and checks they are usable before ingestion starts.
package oracle

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/classify"
	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/resilience"
	"github.com/sells-group/leadscout/pkg/anthropic"
	"github.com/sells-group/leadscout/pkg/ollama"
)

// ErrNotReady means the oracle cannot serve requests. It is fatal at startup.
var ErrNotReady = eris.New("oracle not ready")

// Provider is an oracle that can report its own readiness.
type Provider interface {
	classify.Oracle
	Name() string
	Ready(ctx context.Context) error
}

// New builds the configured provider.
func New(cfg *config.Config) (Provider, error) {
	switch cfg.Oracle.Provider {
	case "anthropic":
		client := anthropic.NewClient(cfg.Anthropic.Key)
		return NewAnthropic(client, cfg.Anthropic.Key, cfg.Anthropic.Model, cfg.Oracle.MaxTokens, cfg.Oracle.Temperature), nil
	case "ollama":
		client := ollama.NewClient(ollama.WithBaseURL(cfg.Ollama.BaseURL))
		return NewOllama(client, cfg.Ollama.Model, cfg.Oracle.MaxTokens, cfg.Oracle.Temperature), nil
	default:
		return nil, eris.Wrapf(config.ErrInvalid, "unknown oracle provider %q", cfg.Oracle.Provider)
	}
}

// Guarded wraps p with the timeout, retry, breaker and pacing policy from cfg.
func Guarded(p Provider, cfg config.OracleConfig) *classify.Guarded {
	retry, breaker := resilience.FromOracleConfig(cfg.MaxAttempts, cfg.BreakerThreshold, cfg.BreakerResetSecs)
	return classify.Guard(p, classify.GuardConfig{
		Name:    p.Name(),
		Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
		Retry:   retry,
		Breaker: breaker,
		RPS:     cfg.RPS,
	})
}

// transient marks HTTP failures worth retrying.
func transient(err error, status int) error {
	if resilience.IsTransientHTTPStatus(status) {
		return resilience.NewTransientError(err, status)
	}
	return err
}
