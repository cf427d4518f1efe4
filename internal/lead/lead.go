// Package lead builds leads from accepted verdicts and persists them at most
// once per dedup identity.
package lead

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/dedup"
	"github.com/sells-group/leadscout/internal/metrics"
	"github.com/sells-group/leadscout/internal/model"
)

// ErrStorageWrite matches every failure to append a lead to storage.
var ErrStorageWrite = eris.New("storage write failed")

// StorageError is returned when the store rejects a lead. It matches
// ErrStorageWrite and unwraps to the driver error.
type StorageError struct {
	Name string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage write failed: append lead %q: %v", e.Name, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports ErrStorageWrite.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageWrite
}

// Outcome is the result of TryPersist.
type Outcome int

const (
	OutcomePersisted Outcome = iota
	OutcomeSkippedDuplicate
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePersisted:
		return "persisted"
	case OutcomeSkippedDuplicate:
		return "duplicate"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Writer appends one lead to durable storage.
type Writer interface {
	AppendLead(ctx context.Context, l model.Lead) error
}

// Permalink returns a public link to a message: by username when the source
// has one, by numeric chat id otherwise, or model.LinkUnavailable.
func Permalink(src model.Source, messageID int64) string {
	if u := strings.TrimPrefix(strings.TrimSpace(src.Username), "@"); u != "" {
		return fmt.Sprintf("https://t.me/%s/%d", u, messageID)
	}
	id := strings.TrimSpace(src.ID)
	if n, err := strconv.ParseInt(id, 10, 64); err == nil && n != 0 {
		return fmt.Sprintf("https://t.me/c/%s/%d", strings.TrimPrefix(id, "-100"), messageID)
	}
	return model.LinkUnavailable
}

// Build assembles a lead. Text fields are trimmed and the original message
// is cut to model.MaxOriginalMessage UTF-16 code units.
func Build(v model.Verdict, msg model.RawMessage, src model.Source, now time.Time) (model.Lead, error) {
	l := model.Lead{
		Name:            strings.TrimSpace(v.Name),
		Phone:           strings.TrimSpace(v.Phone),
		Category:        strings.TrimSpace(v.Category),
		Channel:         strings.TrimSpace(src.Label()),
		MessageLink:     Permalink(src, msg.ID),
		OriginalMessage: strings.TrimSpace(model.TruncateCodeUnits(msg.Text, model.MaxOriginalMessage)),
		DateAdded:       now,
	}
	if l.Name == "" || l.Phone == "" || l.Category == "" {
		return model.Lead{}, eris.New("lead: name, phone and category are required")
	}
	return l, nil
}

// Persister writes leads through a dedup cache.
type Persister struct {
	cache *dedup.Cache
	store Writer
	now   func() time.Time
}

// NewPersister creates a Persister.
func NewPersister(cache *dedup.Cache, store Writer) *Persister {
	return &Persister{cache: cache, store: store, now: time.Now}
}

// TryPersist stores the lead described by v unless its identity was already
// persisted. The cache is only updated after a successful write.
func (p *Persister) TryPersist(ctx context.Context, v model.Verdict, msg model.RawMessage, src model.Source) (Outcome, error) {
	log := zap.L().With(
		zap.String("component", "lead"),
		zap.String("source", src.Label()),
		zap.Int64("message_id", msg.ID),
	)

	if p.cache.Contains(v.Phone, v.Name) {
		metrics.LeadsTotal.WithLabelValues(OutcomeSkippedDuplicate.String()).Inc()
		log.Info("duplicate lead skipped", zap.String("name", v.Name), zap.String("phone", v.Phone))
		return OutcomeSkippedDuplicate, nil
	}

	l, err := Build(v, msg, src, p.now())
	if err != nil {
		metrics.LeadsTotal.WithLabelValues(OutcomeFailed.String()).Inc()
		log.Warn("lead not built", zap.Error(err))
		return OutcomeFailed, err
	}

	if err := p.store.AppendLead(ctx, l); err != nil {
		metrics.LeadsTotal.WithLabelValues(OutcomeFailed.String()).Inc()
		log.Error("lead not stored", zap.String("name", l.Name), zap.Error(err))
		return OutcomeFailed, &StorageError{Name: l.Name, Err: err}
	}

	p.cache.Add(l.Phone, l.Name)
	metrics.LeadsTotal.WithLabelValues(OutcomePersisted.String()).Inc()
	log.Info("lead saved",
		zap.String("name", l.Name),
		zap.String("phone", l.Phone),
		zap.String("category", l.Category),
		zap.String("link", l.MessageLink),
	)
	return OutcomePersisted, nil
}
