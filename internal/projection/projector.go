package projection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/tastesphere/internal/clock"
	"github.com/example/tastesphere/internal/domain/cart"
	"github.com/example/tastesphere/internal/domain/dish"
	"github.com/example/tastesphere/internal/domain/order"
	"github.com/example/tastesphere/internal/domain/review"
	"github.com/example/tastesphere/internal/domain/user"
	"github.com/example/tastesphere/internal/infrastructure/store"
	"github.com/example/tastesphere/internal/readmodel"
	"github.com/example/tastesphere/internal/viewhistory"
)

// ErrMissingReadModel is returned when an event refers to a read model
// that has not been projected yet.
var ErrMissingReadModel = errors.New("read model not found")

// Projector maintains read models from events. Events are delivered at
// least once, so each applied event id is recorded and redeliveries are
// skipped.
type Projector struct {
	readStore store.ReadStoreInterface
	history   viewhistory.Store
	clock     clock.Clock
	logger    *slog.Logger
}

type Option func(*Projector)

// WithViewHistory records dish views in h.
func WithViewHistory(h viewhistory.Store) Option {
	return func(p *Projector) { p.history = h }
}

func WithClock(c clock.Clock) Option {
	return func(p *Projector) { p.clock = c }
}

func NewProjector(readStore store.ReadStoreInterface, opts ...Option) *Projector {
	p := &Projector{
		readStore: readStore,
		clock:     clock.System,
		logger:    slog.Default().With("component", "projector"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HandleEvent has the kafka.MessageHandler signature.
func (p *Projector) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	return p.Project(ctx, event)
}

func (p *Projector) Project(ctx context.Context, event store.Event) error {
	if event.ID != "" {
		_, done, err := p.readStore.Get(ctx, readmodel.CollectionProcessed, event.ID)
		if err != nil {
			return err
		}
		if done {
			p.logger.Debug("skipping redelivered event", "event_id", event.ID, "event_type", event.EventType)
			return nil
		}
	}

	p.logger.Debug("projecting event", "event_type", event.EventType, "aggregate_id", event.AggregateID, "version", event.Version)

	var err error
	switch event.AggregateType {
	case order.AggregateType:
		err = p.handleOrderEvent(ctx, event)
	case dish.AggregateType:
		err = p.handleDishEvent(ctx, event)
	case review.AggregateType:
		err = p.handleReviewEvent(ctx, event)
	case cart.AggregateType:
		err = p.handleCartEvent(ctx, event)
	case user.AggregateType:
		err = p.handleUserEvent(ctx, event)
	}
	if err != nil {
		return fmt.Errorf("project %s %s: %w", event.EventType, event.AggregateID, err)
	}

	if event.ID == "" {
		return nil
	}
	return p.readStore.Set(ctx, readmodel.CollectionProcessed, event.ID, &readmodel.ProcessedEventReadModel{
		EventID:     event.ID,
		AggregateID: event.AggregateID,
		EventType:   event.EventType,
		ProcessedAt: p.clock.Now(),
	})
}

// update applies fn to an existing read model and fails when it is absent.
func update[T any](ctx context.Context, rs store.ReadStoreInterface, collection, id string, fn func(*T)) error {
	found, err := rs.Update(ctx, collection, id, func(current any) any {
		model, ok := current.(*T)
		if !ok {
			return current
		}
		fn(model)
		return model
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s/%s", ErrMissingReadModel, collection, id)
	}
	return nil
}

func get[T any](ctx context.Context, rs store.ReadStoreInterface, collection, id string) (*T, bool, error) {
	current, found, err := rs.Get(ctx, collection, id)
	if err != nil || !found {
		return nil, false, err
	}
	model, ok := current.(*T)
	if !ok {
		return nil, false, fmt.Errorf("unexpected %T in %s", current, collection)
	}
	return model, true, nil
}

func decode[T any](event store.Event) (T, error) {
	var data T
	err := json.Unmarshal(event.Data, &data)
	return data, err
}
