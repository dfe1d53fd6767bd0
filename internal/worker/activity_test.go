package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/admin-console/internal/events"
	"github.com/spec-kit/admin-console/internal/observability"
	"github.com/spec-kit/admin-console/internal/service"
	"github.com/spec-kit/admin-console/internal/session"
)

type run struct {
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	recorder   *ActivityRecorder
}

// newRun wires a recorder the way one CLI invocation does.
func newRun(store session.Store, limit int) run {
	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, zap.NewNop(), limit)
	metrics := observability.NewMetrics()
	return run{
		dispatcher: dispatcher,
		metrics:    metrics,
		recorder:   StartActivityRecorder(store, "activity", notifications, metrics, zap.NewNop()),
	}
}

func TestActivityRecorder_AccumulatesAcrossRuns(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	first := newRun(store, 10)
	first.metrics.RecordRequest("/user/all", "GET", 401, 20*time.Millisecond)
	first.metrics.RecordError("/user/all", "GET", "SESSION_INVALIDATED")
	require.NoError(t, first.dispatcher.Publish(ctx, events.New(events.EventTokenUpdated, events.ReasonInvalidated,
		events.TokenUpdatedPayload{Present: false, Status: 401})))
	require.NoError(t, first.recorder.Flush(ctx))

	second := newRun(store, 10)
	second.metrics.RecordRequest("/user/all", "GET", 401, 40*time.Millisecond)
	second.metrics.RecordRequest("/product/all", "GET", 200, 30*time.Millisecond)
	require.NoError(t, second.dispatcher.Publish(ctx, events.New(events.EventTokenUpdated, events.ReasonLogin, nil)))
	require.NoError(t, second.recorder.Flush(ctx))

	// A status run reads what the others left.
	activity, err := LoadActivity(ctx, store, "activity")
	require.NoError(t, err)
	assert.Equal(t, []observability.Counter{
		{Key: "/product/all|GET|200", Value: 1},
		{Key: "/user/all|GET|401", Value: 2},
	}, activity.Metrics.Requests)
	assert.Equal(t, []observability.Counter{{Key: "/user/all|GET|SESSION_INVALIDATED", Value: 1}}, activity.Metrics.Errors)
	assert.Equal(t, 30*time.Millisecond, activity.Metrics.AverageLatency)
	require.Len(t, activity.Events, 2)
	assert.Equal(t, events.ReasonInvalidated, activity.Events[0].Reason)
	assert.Equal(t, events.ReasonLogin, activity.Events[1].Reason)

	// The token key is untouched.
	_, err = store.Get(ctx, "token")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestActivityRecorder_TrimsEvents(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	for _, reason := range []events.Reason{events.ReasonLogin, events.ReasonLogout, events.ReasonBootCheck} {
		r := newRun(store, 2)
		require.NoError(t, r.dispatcher.Publish(ctx, events.New(events.EventTokenUpdated, reason, nil)))
		require.NoError(t, r.recorder.Flush(ctx))
	}

	activity, err := LoadActivity(ctx, store, "activity")
	require.NoError(t, err)
	require.Len(t, activity.Events, 2)
	assert.Equal(t, events.ReasonLogout, activity.Events[0].Reason)
	assert.Equal(t, events.ReasonBootCheck, activity.Events[1].Reason)
}

func TestActivityRecorder_IdleRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	require.NoError(t, newRun(store, 10).recorder.Flush(ctx))

	_, err := store.Get(ctx, "activity")
	assert.ErrorIs(t, err, session.ErrNotFound)
	activity, err := LoadActivity(ctx, store, "activity")
	require.NoError(t, err)
	assert.Empty(t, activity.Events)
}

func TestActivityRecorder_ReplacesCorruptRecord(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "activity", "{not json"))

	_, err := LoadActivity(ctx, store, "activity")
	require.Error(t, err)

	r := newRun(store, 10)
	r.metrics.RecordRequest("/product/all", "GET", 200, time.Millisecond)
	require.NoError(t, r.recorder.Flush(ctx))

	activity, err := LoadActivity(ctx, store, "activity")
	require.NoError(t, err)
	assert.Equal(t, int64(1), activity.Metrics.Total())
}
