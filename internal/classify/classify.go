// Package classify turns raw message text into a lead verdict by asking an
// oracle and validating its answer.
package classify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/metrics"
	"github.com/sells-group/leadscout/internal/model"
)

// Oracle completes a system instruction plus one user text into free-form
// text. Implementations may fail or time out.
type Oracle interface {
	Complete(ctx context.Context, system, text string) (string, error)
}

// Reason says why a classification failed.
type Reason string

const (
	ReasonOracleUnavailable Reason = "oracle_unavailable"
	ReasonUnparseable       Reason = "unparseable"
	ReasonInvalidShape      Reason = "invalid_shape"
)

// Failure is returned by Classify when no verdict could be produced. It never
// stops ingestion; the message is skipped.
type Failure struct {
	Reason Reason
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("classify: %s: %v", f.Reason, f.Err)
	}
	return "classify: " + string(f.Reason)
}

func (f *Failure) Unwrap() error { return f.Err }

// ReasonOf returns the failure reason carried by err, if any.
func ReasonOf(err error) (Reason, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason, true
	}
	return "", false
}

// Classifier produces verdicts. A returned verdict is always well formed;
// callers only need to check IsLead.
type Classifier struct {
	oracle Oracle
	system string
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithSystemPrompt overrides the instruction sent to the oracle.
func WithSystemPrompt(prompt string) Option {
	return func(c *Classifier) { c.system = prompt }
}

// New creates a Classifier backed by oracle.
func New(oracle Oracle, opts ...Option) *Classifier {
	c := &Classifier{oracle: oracle, system: SystemPrompt}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Classify asks the oracle about text and validates the answer.
func (c *Classifier) Classify(ctx context.Context, text string) (model.Verdict, error) {
	log := zap.L().With(zap.String("component", "classify"))

	raw, err := c.oracle.Complete(ctx, c.system, text)
	if err != nil {
		return model.Verdict{}, c.fail(ReasonOracleUnavailable, err)
	}

	parsed, ok := parseResponse(raw)
	if !ok {
		log.Warn("oracle response is not json", zap.Int("response_len", len(raw)))
		return model.Verdict{}, c.fail(ReasonUnparseable, nil)
	}

	v, ok := decodeVerdict(parsed)
	if !ok {
		log.Warn("oracle response has invalid shape")
		return model.Verdict{}, c.fail(ReasonInvalidShape, nil)
	}

	if !v.IsLead {
		log.Debug("not a lead")
		return v, nil
	}

	v, reason := accept(v)
	if reason != "" {
		metrics.RejectionsTotal.WithLabelValues(reason).Inc()
		log.Warn("lead rejected",
			zap.String("reason", reason),
			zap.String("name", v.Name),
			zap.String("category", v.Category),
		)
		return v, nil
	}

	log.Info("lead detected", zap.String("name", v.Name), zap.String("category", v.Category))
	return v, nil
}

func (c *Classifier) fail(reason Reason, err error) *Failure {
	metrics.ClassifyFailuresTotal.WithLabelValues(string(reason)).Inc()
	return &Failure{Reason: reason, Err: err}
}
