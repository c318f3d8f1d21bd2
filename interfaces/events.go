package interfaces

import (
	"context"

	"github.com/customeros/mailvault/internal/enum"
)

type EventPublisher interface {
	PublishDirectEvent(ctx context.Context, entityId string, entityType enum.EntityType, message interface{}) error
	Close() error
}
