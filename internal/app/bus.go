package app

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/example/tastesphere/internal/infrastructure/kafka"
	"github.com/example/tastesphere/internal/infrastructure/store"
)

// LocalBus delivers events to in-process handlers in place of Kafka. It is
// used when the whole stack runs in one process.
type LocalBus struct {
	handlers []kafka.MessageHandler
}

func NewLocalBus(handlers ...kafka.MessageHandler) *LocalBus {
	return &LocalBus{handlers: handlers}
}

// Publish hands the event to every handler. All handlers run even when one
// fails; the joined error keeps the event pending for the outbox relay, and
// handlers dedupe redeliveries by event id.
func (b *LocalBus) Publish(ctx context.Context, key string, event any) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	var errs []error
	for _, handle := range b.handlers {
		if err := handle(ctx, []byte(key), value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ store.Publisher = (*LocalBus)(nil)
