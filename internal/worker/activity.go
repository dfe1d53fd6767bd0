package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/admin-console/internal/events"
	"github.com/spec-kit/admin-console/internal/observability"
	"github.com/spec-kit/admin-console/internal/service"
	"github.com/spec-kit/admin-console/internal/session"
)

// Activity is what earlier CLI runs left behind: their request counters and
// the most recent session events.
type Activity struct {
	Metrics observability.Snapshot `json:"metrics"`
	Events  []events.Event         `json:"events"`
}

// ActivityRecorder carries one run's metrics and session events into the
// session store so later runs can report them.
type ActivityRecorder struct {
	store         session.Store
	key           string
	notifications *service.NotificationService
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// StartActivityRecorder registers the notification handlers and returns the
// recorder that persists what they collect.
func StartActivityRecorder(store session.Store, key string, notifications *service.NotificationService, metrics *observability.Metrics, logger *zap.Logger) *ActivityRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	notifications.RegisterHandlers()
	return &ActivityRecorder{
		store:         store,
		key:           key,
		notifications: notifications,
		metrics:       metrics,
		logger:        logger,
	}
}

// Flush merges this run into the stored activity. Runs that did nothing
// leave the store untouched.
func (r *ActivityRecorder) Flush(ctx context.Context) error {
	snap := r.metrics.Snapshot()
	recent := r.notifications.Recent()
	if snap.Total() == 0 && len(snap.Errors) == 0 && len(recent) == 0 {
		return nil
	}

	prev, err := LoadActivity(ctx, r.store, r.key)
	if err != nil {
		// A corrupt record is replaced rather than blocking every later run.
		r.logger.Warn("discarding stored activity", zap.String("key", r.key), zap.Error(err))
		prev = Activity{}
	}

	merged := Activity{
		Metrics: prev.Metrics.Merge(snap),
		Events:  append(prev.Events, recent...),
	}
	if limit := r.notifications.Limit(); len(merged.Events) > limit {
		merged.Events = merged.Events[len(merged.Events)-limit:]
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encode activity: %w", err)
	}
	if err := r.store.Set(ctx, r.key, string(raw)); err != nil {
		return fmt.Errorf("store activity: %w", err)
	}
	r.logger.Debug("activity flushed",
		zap.Int64("requests", merged.Metrics.Total()),
		zap.Int("events", len(merged.Events)))
	return nil
}

// LoadActivity reads the stored activity. Nothing stored yet is not an error.
func LoadActivity(ctx context.Context, store session.Store, key string) (Activity, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, session.ErrNotFound) {
		return Activity{}, nil
	}
	if err != nil {
		return Activity{}, fmt.Errorf("read activity: %w", err)
	}
	var activity Activity
	if err := json.Unmarshal([]byte(raw), &activity); err != nil {
		return Activity{}, fmt.Errorf("decode activity: %w", err)
	}
	return activity, nil
}
