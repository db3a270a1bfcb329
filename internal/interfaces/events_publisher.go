package interfaces

import (
	"context"

	"github.com/sheikh-saqib/midas-transaction-engine/internal/models"
)

type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// MessageHandler consumes one raw payload and reports its terminal outcome.
type MessageHandler func(ctx context.Context, payload []byte) models.Outcome

// Feed pulls payloads from a source and hands them to the handler one at a
// time. Run returns when ctx is cancelled or the source is exhausted.
type Feed interface {
	Run(ctx context.Context, handle MessageHandler) error
	Close() error
}
