// Package ingest sequences a run: join sources, optionally backfill their
// recent history, then listen for new messages until shutdown. Every message
// goes through the same filter, classify and persist path.
package ingest

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/join"
	"github.com/sells-group/leadscout/internal/lead"
	"github.com/sells-group/leadscout/internal/messenger"
	"github.com/sells-group/leadscout/internal/metrics"
	"github.com/sells-group/leadscout/internal/model"
)

// Classifier turns message text into a verdict.
type Classifier interface {
	Classify(ctx context.Context, text string) (model.Verdict, error)
}

// Persister stores accepted leads at most once.
type Persister interface {
	TryPersist(ctx context.Context, v model.Verdict, msg model.RawMessage, src model.Source) (lead.Outcome, error)
}

// Joiner joins the configured sources.
type Joiner interface {
	JoinAll(ctx context.Context, sources []string) join.Report
}

// ErrStreamClosed is returned by Run when live delivery stops before
// shutdown was requested.
var ErrStreamClosed = eris.New("live message stream closed")

// Options configures a Controller.
type Options struct {
	// Sources is the fixed subscription. Empty means every chat the account
	// is in.
	Sources []string

	AnalyzeHistory   bool
	HistoryLimit     int
	MinMessageLength int

	// HistoryDelay follows each classified history message.
	HistoryDelay time.Duration

	// ChannelDelay follows each backfilled source.
	ChannelDelay time.Duration

	// DisconnectTimeout bounds Disconnect during shutdown. Zero means 10s.
	DisconnectTimeout time.Duration
}

// Controller owns one ingestion run. It processes one message at a time.
type Controller struct {
	client     messenger.Client
	joiner     Joiner
	classifier Classifier
	persister  Persister
	opts       Options
	sleep      func(ctx context.Context, d time.Duration) error

	mu    sync.Mutex
	state State
	stats Stats
}

// New creates an idle Controller.
func New(client messenger.Client, joiner Joiner, classifier Classifier, persister Persister, opts Options) *Controller {
	opts.Sources = slices.Clone(opts.Sources)
	if opts.DisconnectTimeout <= 0 {
		opts.DisconnectTimeout = 10 * time.Second
	}
	metrics.IngestState.Set(float64(StateIdle))
	return &Controller{
		client:     client,
		joiner:     joiner,
		classifier: classifier,
		persister:  persister,
		opts:       opts,
		sleep:      join.Sleep,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stats returns a snapshot of the running counters.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Controller) transition(to State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !canTransition(c.state, to) {
		return eris.Wrapf(ErrIllegalTransition, "%s -> %s", c.state, to)
	}
	zap.L().Info("ingest state changed", zap.Stringer("from", c.state), zap.Stringer("to", to))
	c.state = to
	metrics.IngestState.Set(float64(to))
	return nil
}

// Run executes the whole lifecycle and returns once the controller is
// stopped. Cancelling ctx triggers an orderly shutdown. A Controller runs
// once.
func (c *Controller) Run(ctx context.Context) error {
	if st := c.State(); st != StateIdle {
		return eris.Wrapf(ErrIllegalTransition, "run from %s", st)
	}

	var joined []string
	if len(c.opts.Sources) > 0 {
		joined = c.joiner.JoinAll(ctx, c.opts.Sources).Joined
	}

	if c.opts.AnalyzeHistory && ctx.Err() == nil {
		if err := c.transition(StateBackfilling); err != nil {
			return err
		}
		c.backfill(ctx, joined)
	}

	var runErr error
	if ctx.Err() == nil {
		runErr = c.listen(ctx)
	}

	c.shutdown(ctx)
	return runErr
}

func (c *Controller) listen(ctx context.Context) error {
	if err := c.transition(StateListening); err != nil {
		return err
	}
	if len(c.opts.Sources) == 0 {
		zap.L().Warn("no sources configured, listening to every chat the account is in")
	}

	stream, err := c.client.Subscribe(ctx, c.opts.Sources)
	if err != nil {
		return eris.Wrap(err, "ingest: subscribe")
	}
	zap.L().Info("listening for new messages", zap.Strings("sources", c.opts.Sources))

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-stream:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrStreamClosed
			}
			c.Process(ctx, msg, msg.Source)
		}
	}
}

func (c *Controller) shutdown(ctx context.Context) {
	if err := c.transition(StateShuttingDown); err != nil {
		zap.L().Error("shutdown", zap.Error(err))
		return
	}

	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.DisconnectTimeout)
	defer cancel()
	if err := c.client.Disconnect(dctx); err != nil {
		zap.L().Warn("disconnect failed", zap.Error(err))
	}

	if err := c.transition(StateStopped); err != nil {
		zap.L().Error("shutdown", zap.Error(err))
	}
	st := c.Stats()
	zap.L().Info("ingest stopped",
		zap.Int("received", st.Received),
		zap.Int("persisted", st.Persisted),
		zap.Int("duplicates", st.Duplicates),
	)
}
