package application

import (
	"context"

	"github.com/oksasatya/go-social-feed/internal/domain/entity"
)

// Dispatcher fans a user's full notification log out to their live
// connections. Implementations must treat offline targets as a no-op.
// Satisfied by realtime.Hub.
type Dispatcher interface {
	DispatchNotifications(userID string, log []entity.Notification)
}

// EventPublisher emits fire-and-forget domain events.
// Satisfied by helpers.RabbitPublisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}
