// Package join subscribes the account to the configured sources one at a
// time, pacing joins and retrying once when the platform throttles.
package join

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/messenger"
	"github.com/sells-group/leadscout/internal/metrics"
)

// Joiner is the part of messenger.Client used here.
type Joiner interface {
	Join(ctx context.Context, source string) error
}

// Report lists the sources joined (or already joined) and skipped, in input
// order.
type Report struct {
	Joined  []string
	Skipped []string
}

// Orchestrator runs joins sequentially. It never fails the run.
type Orchestrator struct {
	client   Joiner
	pace     time.Duration
	fallback time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// New creates an Orchestrator that waits pace after every successful join
// and fallback when a throttle signal carries no wait time.
func New(client Joiner, pace, fallback time.Duration) *Orchestrator {
	return &Orchestrator{client: client, pace: pace, fallback: fallback, sleep: Sleep}
}

// JoinAll joins each source in order. Cancelling ctx stops the loop; the
// sources not yet attempted appear in neither list.
func (o *Orchestrator) JoinAll(ctx context.Context, sources []string) Report {
	var rep Report
	if len(sources) == 0 {
		zap.L().Warn("no sources to join")
		return rep
	}

	zap.L().Info("joining sources", zap.Int("count", len(sources)))
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		if o.joinOne(ctx, src) {
			rep.Joined = append(rep.Joined, src)
			if err := o.sleep(ctx, o.pace); err != nil {
				break
			}
		} else {
			rep.Skipped = append(rep.Skipped, src)
		}
	}

	zap.L().Info("finished joining sources",
		zap.Int("joined", len(rep.Joined)),
		zap.Int("skipped", len(rep.Skipped)),
	)
	return rep
}

func (o *Orchestrator) joinOne(ctx context.Context, src string) bool {
	log := zap.L().With(zap.String("source", src))

	err := o.client.Join(ctx, src)
	switch {
	case err == nil:
		record("joined")
		log.Info("joined source")
		return true
	case errors.Is(err, messenger.ErrAlreadyMember):
		record("already_member")
		log.Info("already a member")
		return true
	}

	var throttled *messenger.ThrottledError
	if !errors.As(err, &throttled) {
		record("failed")
		log.Error("join failed", zap.Error(err))
		return false
	}

	wait := throttled.RetryAfter
	if wait <= 0 {
		wait = o.fallback
	}
	record("throttled")
	log.Warn("join throttled, waiting before retry", zap.Duration("wait", wait))
	if err := o.sleep(ctx, wait); err != nil {
		return false
	}

	err = o.client.Join(ctx, src)
	if err == nil || errors.Is(err, messenger.ErrAlreadyMember) {
		record("joined_after_retry")
		log.Info("joined source after retry")
		return true
	}
	record("failed")
	log.Error("join retry failed", zap.Error(err))
	return false
}

func record(outcome string) {
	metrics.JoinsTotal.WithLabelValues(outcome).Inc()
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
