package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/tastesphere/internal/clock"
	"github.com/example/tastesphere/internal/domain/aggregate"
	"github.com/example/tastesphere/internal/infrastructure/store"
	"github.com/google/uuid"
)

// maxWriteAttempts bounds the reload-and-retry loop on version conflicts.
const maxWriteAttempts = 3

type Service struct {
	eventStore store.EventStoreInterface
	clock      clock.Clock
	logger     *slog.Logger
}

type Option func(*Service)

// WithClock sets the time source used for event timestamps.
func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func NewService(es store.EventStoreInterface, opts ...Option) *Service {
	s := &Service{
		eventStore: es,
		clock:      clock.System,
		logger:     slog.Default().With("component", "order_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// loadOrder loads an order by replaying events, using snapshot if available
func (s *Service) loadOrder(ctx context.Context, orderID string) (*Order, error) {
	order, found, err := aggregate.LoadAggregate(ctx, s.eventStore, orderID, func() *Order {
		return &Order{}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// Get returns the current state of an order.
func (s *Service) Get(ctx context.Context, orderID string) (*Order, error) {
	return s.loadOrder(ctx, orderID)
}

func (s *Service) Place(ctx context.Context, userID, sellerID string, items []OrderItem, paymentMethod string) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	var total float64
	for _, item := range items {
		if item.DishID == "" || item.Quantity <= 0 || item.Price < 0 {
			return nil, ErrInvalidItem
		}
		total += item.Price * float64(item.Quantity)
	}

	event := OrderPlaced{
		OrderID:       uuid.New().String(),
		UserID:        userID,
		SellerID:      sellerID,
		Items:         items,
		TotalAmount:   total,
		PaymentMethod: paymentMethod,
		PlacedAt:      s.clock.Now(),
	}

	storedEvent, err := s.eventStore.Append(ctx, event.OrderID, AggregateType, EventOrderPlaced, 0, event)
	if err != nil {
		return nil, err
	}

	order := &Order{}
	if err := order.ApplyEvent(*storedEvent); err != nil {
		return nil, err
	}
	return order, nil
}

// Transition moves the order to target. Version conflicts are retried on
// fresh state; once attempts are exhausted ErrConcurrentModification is
// returned.
func (s *Service) Transition(ctx context.Context, orderID string, target Status, actor, note string) (*Order, error) {
	return s.mutate(ctx, orderID, func(current, next *Order) (string, any, error) {
		if err := ApplyTransition(next, target, actor, note, s.clock.Now()); err != nil {
			return "", nil, err
		}
		entry := next.Timeline[len(next.Timeline)-1]
		return EventOrderStatusChanged, OrderStatusChanged{
			OrderID:   orderID,
			UserID:    current.UserID,
			SellerID:  current.SellerID,
			From:      current.Status,
			To:        target,
			Actor:     actor,
			Note:      note,
			ChangedAt: entry.Timestamp,
		}, nil
	})
}

// RecordPayment updates the payment axis without touching the order status.
func (s *Service) RecordPayment(ctx context.Context, orderID string, status PaymentStatus) (*Order, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentStatus, status)
	}
	return s.mutate(ctx, orderID, func(current, next *Order) (string, any, error) {
		now := s.clock.Now()
		next.PaymentStatus = status
		next.UpdatedAt = now
		return EventPaymentRecorded, PaymentRecorded{
			OrderID:       orderID,
			PaymentStatus: status,
			RecordedAt:    now,
		}, nil
	})
}

// Rate attaches the customer's star rating to a delivered order.
func (s *Service) Rate(ctx context.Context, orderID, userID string, stars int) (*Order, error) {
	if stars < 1 || stars > 5 {
		return nil, ErrInvalidRating
	}
	return s.mutate(ctx, orderID, func(current, next *Order) (string, any, error) {
		if current.UserID != userID {
			return "", nil, ErrNotOrderOwner
		}
		if !current.CanRate() {
			return "", nil, fmt.Errorf("%w: status %s, rating %d", ErrCannotRate, current.Status, current.Rating)
		}
		now := s.clock.Now()
		next.Rating = stars
		next.UpdatedAt = now
		return EventOrderRated, OrderRated{
			OrderID: orderID,
			UserID:  userID,
			Rating:  stars,
			RatedAt: now,
		}, nil
	})
}

// mutate loads the order, lets decide compute the change on a copy and
// appends the resulting event against the loaded version.
func (s *Service) mutate(ctx context.Context, orderID string, decide func(current, next *Order) (string, any, error)) (*Order, error) {
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		current, err := s.loadOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}

		next := current.Clone()
		eventType, data, err := decide(current, next)
		if err != nil {
			return nil, err
		}

		storedEvent, err := s.eventStore.Append(ctx, orderID, AggregateType, eventType, current.Version, data)
		if errors.Is(err, store.ErrVersionConflict) {
			s.logger.Debug("version conflict, retrying", "order_id", orderID, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}

		next.Version = storedEvent.Version
		if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, next, AggregateType); err != nil {
			s.logger.Warn("failed to create snapshot", "order_id", orderID, "error", err)
		}
		return next, nil
	}
	return nil, fmt.Errorf("%w: order %s: %w", ErrConcurrentModification, orderID, store.ErrVersionConflict)
}
