package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/tastesphere/internal/clock"
	"github.com/example/tastesphere/internal/infrastructure/kafka"
	"github.com/example/tastesphere/internal/infrastructure/store"
	"github.com/example/tastesphere/internal/viewhistory"
)

// Every runs fn at each interval until ctx is done. Errors are logged and
// the loop keeps going.
func Every(ctx context.Context, interval time.Duration, name string, logger *slog.Logger, fn func(context.Context) error) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("periodic task failed", "task", name, "error", err)
			}
		}
	}
}

// RelayLoop drives the outbox relay of es.
func RelayLoop(ctx context.Context, es *EventStore, interval time.Duration, logger *slog.Logger) {
	Every(ctx, interval, "outbox relay", logger, func(ctx context.Context) error {
		n, err := es.RelayPending(ctx)
		if n > 0 {
			logger.Info("relayed pending events", "count", n)
		}
		return err
	})
}

// PruneLoop removes expired view history entries.
func PruneLoop(ctx context.Context, history viewhistory.Store, c clock.Clock, interval time.Duration, logger *slog.Logger) {
	Every(ctx, interval, "view history prune", logger, func(ctx context.Context) error {
		n, err := history.Prune(ctx, c.Now())
		if n > 0 {
			logger.Info("pruned view history", "removed", n)
		}
		return err
	})
}

// Replay feeds every stored event to handler in append order. It returns
// the number of events that failed.
func Replay(ctx context.Context, es store.EventStoreInterface, handler kafka.MessageHandler, logger *slog.Logger) (int, error) {
	events, err := es.GetAllEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("load events: %w", err)
	}
	logger.Info("replaying events", "count", len(events))

	failed := 0
	for _, event := range events {
		value, err := json.Marshal(event)
		if err != nil {
			return failed, err
		}
		if err := handler(ctx, []byte(event.AggregateID), value); err != nil {
			failed++
			logger.Warn("replay failed", "event_id", event.ID, "event_type", event.EventType, "error", err)
		}
	}
	return failed, nil
}
