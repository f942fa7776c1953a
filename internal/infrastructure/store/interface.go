package store

import (
	"context"
	"errors"
)

// AnyVersion disables the optimistic concurrency check on Append.
const AnyVersion = -1

// ErrVersionConflict is returned by Append when the aggregate has moved past
// the expected version.
var ErrVersionConflict = errors.New("aggregate version conflict")

// EventStoreInterface defines the interface for event stores
type EventStoreInterface interface {
	// Append stores a new event for the aggregate. expectedVersion is the
	// version the caller loaded; pass AnyVersion to skip the check.
	Append(ctx context.Context, aggregateID, aggregateType, eventType string, expectedVersion int, data any) (*Event, error)
	GetEvents(ctx context.Context, aggregateID string) ([]Event, error)
	GetEventsFromVersion(ctx context.Context, aggregateID string, fromVersion int) ([]Event, error)
	GetAllEvents(ctx context.Context) ([]Event, error)
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error
	GetSnapshot(ctx context.Context, aggregateID string) (*Snapshot, error)
}

// Publisher pushes stored events to the event bus.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// ReadStoreInterface defines the interface for read model storage
type ReadStoreInterface interface {
	// Set stores a read model
	Set(ctx context.Context, collection, id string, data any) error

	// Get retrieves a read model by id
	Get(ctx context.Context, collection, id string) (any, bool, error)

	// GetAll retrieves all items in a collection in insertion order
	GetAll(ctx context.Context, collection string) ([]any, error)

	// Delete removes a read model
	Delete(ctx context.Context, collection, id string) error

	// Update modifies a read model using an update function.
	// Returns false when the record does not exist.
	Update(ctx context.Context, collection, id string, updateFn func(current any) any) (bool, error)
}
