package ingest

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/classify"
	"github.com/sells-group/leadscout/internal/filter"
	"github.com/sells-group/leadscout/internal/lead"
	"github.com/sells-group/leadscout/internal/metrics"
	"github.com/sells-group/leadscout/internal/model"
)

// ResultKind says how far a message got through the pipeline.
type ResultKind int

const (
	ResultFiltered ResultKind = iota
	ResultClassifyFailed
	ResultNotLead
	ResultPersisted
	ResultDuplicate
	ResultStorageFailed
)

func (k ResultKind) String() string {
	switch k {
	case ResultFiltered:
		return "filtered"
	case ResultClassifyFailed:
		return "classify_failed"
	case ResultNotLead:
		return "not_lead"
	case ResultPersisted:
		return "persisted"
	case ResultDuplicate:
		return "duplicate"
	case ResultStorageFailed:
		return "storage_failed"
	default:
		return "unknown"
	}
}

// Result describes what happened to one message.
type Result struct {
	Kind         ResultKind
	FilterReason filter.Reason
	FailReason   classify.Reason
	Verdict      model.Verdict
	Err          error
}

// Stats are running counters over every processed message.
type Stats struct {
	Received       int `json:"received"`
	Filtered       int `json:"filtered"`
	ClassifyFailed int `json:"classify_failed"`
	NotLead        int `json:"not_lead"`
	Persisted      int `json:"persisted"`
	Duplicates     int `json:"duplicates"`
	StorageFailed  int `json:"storage_failed"`
}

// Process runs one message through filter, classify and persist, strictly in
// that order. Oracle and storage calls are detached from ctx cancellation so
// shutdown never interrupts a half-written lead.
func (c *Controller) Process(ctx context.Context, msg model.RawMessage, src model.Source) Result {
	mode := "live"
	if c.State() == StateBackfilling {
		mode = "history"
	}
	log := zap.L().With(
		zap.String("mode", mode),
		zap.String("source", src.Label()),
		zap.Int64("message_id", msg.ID),
	)

	res := c.process(context.WithoutCancel(ctx), msg, src, log)
	c.count(res)
	metrics.MessagesTotal.WithLabelValues(mode, res.Kind.String()).Inc()
	return res
}

func (c *Controller) process(ctx context.Context, msg model.RawMessage, src model.Source, log *zap.Logger) Result {
	if reason := filter.Check(msg.Text, c.opts.MinMessageLength); reason != filter.ReasonNone {
		metrics.FilteredTotal.WithLabelValues(string(reason)).Inc()
		log.Debug("message filtered", zap.String("reason", string(reason)))
		return Result{Kind: ResultFiltered, FilterReason: reason}
	}

	log.Debug("classifying message", zap.Int("length", model.CodeUnits(msg.Text)))
	v, err := c.classifier.Classify(ctx, msg.Text)
	if err != nil {
		reason, _ := classify.ReasonOf(err)
		log.Warn("classification failed", zap.String("reason", string(reason)), zap.Error(err))
		return Result{Kind: ResultClassifyFailed, FailReason: reason, Err: err}
	}
	if !v.IsLead {
		return Result{Kind: ResultNotLead, Verdict: v}
	}

	outcome, err := c.persister.TryPersist(ctx, v, msg, src)
	switch outcome {
	case lead.OutcomePersisted:
		return Result{Kind: ResultPersisted, Verdict: v}
	case lead.OutcomeSkippedDuplicate:
		return Result{Kind: ResultDuplicate, Verdict: v}
	default:
		return Result{Kind: ResultStorageFailed, Verdict: v, Err: err}
	}
}

func (c *Controller) count(res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Received++
	switch res.Kind {
	case ResultFiltered:
		c.stats.Filtered++
	case ResultClassifyFailed:
		c.stats.ClassifyFailed++
	case ResultNotLead:
		c.stats.NotLead++
	case ResultPersisted:
		c.stats.Persisted++
	case ResultDuplicate:
		c.stats.Duplicates++
	case ResultStorageFailed:
		c.stats.StorageFailed++
	}
}

// backfill processes the recent history of each source, oldest first. A
// failed fetch skips that source only.
func (c *Controller) backfill(ctx context.Context, sources []string) {
	if len(sources) == 0 {
		zap.L().Warn("no joined sources to backfill")
		return
	}
	zap.L().Info("backfilling recent history",
		zap.Int("sources", len(sources)),
		zap.Int("limit", c.opts.HistoryLimit),
	)

	for _, src := range sources {
		if ctx.Err() != nil {
			return
		}
		log := zap.L().With(zap.String("source", src))

		msgs, err := c.client.FetchHistory(ctx, src, c.opts.HistoryLimit)
		if err != nil {
			log.Error("history fetch failed, skipping source", zap.Error(err))
			continue
		}
		if len(msgs) > c.opts.HistoryLimit {
			msgs = msgs[:c.opts.HistoryLimit]
		}
		msgs = slices.Clone(msgs)
		slices.Reverse(msgs)
		log.Info("fetched history", zap.Int("messages", len(msgs)))

		classified := 0
		for _, m := range msgs {
			if ctx.Err() != nil {
				return
			}
			res := c.Process(ctx, m, m.Source)
			if res.Kind == ResultFiltered {
				continue
			}
			classified++
			if err := c.sleep(ctx, c.opts.HistoryDelay); err != nil {
				return
			}
		}
		log.Info("finished source history", zap.Int("classified", classified))

		if err := c.sleep(ctx, c.opts.ChannelDelay); err != nil {
			return
		}
	}
}
