package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/admin-console/internal/events"
)

// NotificationService records session events for the operator: every login,
// logout, invalidation and change made by another console.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger

	mu     sync.Mutex
	recent []events.Event
	limit  int
}

// NewNotificationService creates the service. It keeps the last limit events.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, limit int) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = 50
	}
	return &NotificationService{dispatcher: dispatcher, logger: logger, limit: limit}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTokenUpdated, n.handleTokenUpdated)
	n.dispatcher.Subscribe(events.EventStorageChanged, n.handleStorageChanged)
}

func (n *NotificationService) handleTokenUpdated(_ context.Context, event events.Event) error {
	n.remember(event)
	n.logger.Info("TokenUpdated",
		zap.String("event_id", event.ID),
		zap.String("reason", string(event.Reason)),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleStorageChanged(_ context.Context, event events.Event) error {
	n.remember(event)
	n.logger.Info("StorageChanged",
		zap.String("event_id", event.ID),
		zap.String("reason", string(event.Reason)),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) remember(event events.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.recent = append(n.recent, event)
	if len(n.recent) > n.limit {
		n.recent = n.recent[len(n.recent)-n.limit:]
	}
}

// Limit is how many events are kept.
func (n *NotificationService) Limit() int {
	return n.limit
}

// Recent returns the remembered events, oldest first.
func (n *NotificationService) Recent() []events.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]events.Event(nil), n.recent...)
}
