package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event
type Event struct {
	ID            string          `json:"id"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	EventType     string          `json:"event_type"`
	Data          json.RawMessage `json:"data"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
}

// EventStore is an in-memory event store. Events whose publication fails
// are kept pending until RelayPending succeeds.
type EventStore struct {
	mu        sync.RWMutex
	events    map[string][]Event // aggregateID -> events
	snapshots map[string]*Snapshot
	order     []Event
	pending   []Event
	publisher Publisher
	logger    *slog.Logger
}

func NewEventStore(publisher Publisher) *EventStore {
	return &EventStore{
		events:    make(map[string][]Event),
		snapshots: make(map[string]*Snapshot),
		publisher: publisher,
		logger:    slog.Default().With("component", "event_store"),
	}
}

// Append stores an event and publishes it to the event bus
func (es *EventStore) Append(ctx context.Context, aggregateID, aggregateType, eventType string, expectedVersion int, data any) (*Event, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	es.mu.Lock()
	current := len(es.events[aggregateID])
	if expectedVersion != AnyVersion && expectedVersion != current {
		es.mu.Unlock()
		return nil, ErrVersionConflict
	}
	event := Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          jsonData,
		Timestamp:     time.Now(),
		Version:       current + 1,
	}
	es.events[aggregateID] = append(es.events[aggregateID], event)
	es.order = append(es.order, event)
	es.mu.Unlock()

	if es.publisher != nil {
		if err := es.publisher.Publish(ctx, aggregateID, event); err != nil {
			es.logger.Warn("publish failed, event kept pending", "event_id", event.ID, "error", err)
			es.mu.Lock()
			es.pending = append(es.pending, event)
			es.mu.Unlock()
		}
	}

	return &event, nil
}

// RelayPending republishes events whose first publication failed.
// It returns the number of events published.
func (es *EventStore) RelayPending(ctx context.Context) (int, error) {
	if es.publisher == nil {
		return 0, nil
	}

	es.mu.Lock()
	pending := es.pending
	es.pending = nil
	es.mu.Unlock()

	var (
		published int
		failed    []Event
		lastErr   error
	)
	for _, event := range pending {
		if err := es.publisher.Publish(ctx, event.AggregateID, event); err != nil {
			failed = append(failed, event)
			lastErr = err
			continue
		}
		published++
	}

	if len(failed) > 0 {
		es.mu.Lock()
		es.pending = append(failed, es.pending...)
		es.mu.Unlock()
	}
	return published, lastErr
}

// PendingCount returns the number of events waiting to be published.
func (es *EventStore) PendingCount() int {
	es.mu.RLock()
	defer es.mu.RUnlock()
	return len(es.pending)
}

// GetEvents returns all events for an aggregate
func (es *EventStore) GetEvents(ctx context.Context, aggregateID string) ([]Event, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()
	return append([]Event(nil), es.events[aggregateID]...), nil
}

// GetEventsFromVersion returns events with a version greater than fromVersion
func (es *EventStore) GetEventsFromVersion(ctx context.Context, aggregateID string, fromVersion int) ([]Event, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	var events []Event
	for _, event := range es.events[aggregateID] {
		if event.Version > fromVersion {
			events = append(events, event)
		}
	}
	return events, nil
}

// GetAllEvents returns all events in append order
func (es *EventStore) GetAllEvents(ctx context.Context) ([]Event, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()
	return append([]Event(nil), es.order...), nil
}

func (es *EventStore) SaveSnapshot(ctx context.Context, snapshot *Snapshot) error {
	es.mu.Lock()
	defer es.mu.Unlock()
	copied := *snapshot
	es.snapshots[snapshot.AggregateID] = &copied
	return nil
}

func (es *EventStore) GetSnapshot(ctx context.Context, aggregateID string) (*Snapshot, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()
	snapshot, ok := es.snapshots[aggregateID]
	if !ok {
		return nil, nil
	}
	copied := *snapshot
	return &copied, nil
}
