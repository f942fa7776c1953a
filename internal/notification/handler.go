package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/example/tastesphere/internal/clock"
	"github.com/example/tastesphere/internal/domain/order"
	"github.com/example/tastesphere/internal/infrastructure/store"
	"github.com/example/tastesphere/internal/readmodel"
)

// Handler turns order events into notifications. Each (order, status, role)
// is dispatched once; the sent marker is written only after every
// dispatcher succeeded, so a failed delivery is retried on redelivery.
type Handler struct {
	dispatchers []Dispatcher
	readStore   store.ReadStoreInterface
	clock       clock.Clock
	logger      *slog.Logger
}

func NewHandler(readStore store.ReadStoreInterface, c clock.Clock, dispatchers ...Dispatcher) *Handler {
	if c == nil {
		c = clock.System
	}
	return &Handler{
		dispatchers: dispatchers,
		readStore:   readStore,
		clock:       c,
		logger:      slog.Default().With("component", "notifier"),
	}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	return h.Handle(ctx, event)
}

func (h *Handler) Handle(ctx context.Context, event store.Event) error {
	if event.AggregateType != order.AggregateType {
		return nil
	}

	var base Notification
	var sellerID, userID string

	switch event.EventType {
	case order.EventOrderPlaced:
		var e order.OrderPlaced
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return fmt.Errorf("decode %s: %w", event.EventType, err)
		}
		base = Notification{
			OrderID:    e.OrderID,
			Status:     order.StatusPendingSeller,
			Items:      e.Items,
			Total:      e.TotalAmount,
			OccurredAt: e.PlacedAt,
		}
		userID, sellerID = e.UserID, e.SellerID

	case order.EventOrderStatusChanged:
		var e order.OrderStatusChanged
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return fmt.Errorf("decode %s: %w", event.EventType, err)
		}
		base = Notification{
			OrderID:    e.OrderID,
			Status:     e.To,
			Note:       e.Note,
			OccurredAt: e.ChangedAt,
		}
		userID, sellerID = e.UserID, e.SellerID

	default:
		return nil
	}

	for _, role := range Recipients(base.Status) {
		n := base
		n.RecipientRole = role
		n.RecipientID = userID
		if role == RoleSeller {
			n.RecipientID = sellerID
		}
		if err := h.notify(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) notify(ctx context.Context, n Notification) error {
	key := n.Key()
	_, sent, err := h.readStore.Get(ctx, readmodel.CollectionNotifications, key)
	if err != nil {
		return fmt.Errorf("check notification %s: %w", key, err)
	}
	if sent {
		h.logger.Debug("notification already sent", "key", key)
		return nil
	}

	n.Email = h.lookupEmail(ctx, n.RecipientID)

	for _, d := range h.dispatchers {
		if err := d.Dispatch(ctx, n); err != nil {
			return fmt.Errorf("dispatch %s: %w", key, err)
		}
	}

	return h.readStore.Set(ctx, readmodel.CollectionNotifications, key, &readmodel.NotificationReadModel{
		Key:           key,
		OrderID:       n.OrderID,
		Status:        string(n.Status),
		RecipientRole: string(n.RecipientRole),
		RecipientID:   n.RecipientID,
		SentAt:        h.clock.Now(),
	})
}

// lookupEmail resolves a contact address from the users read model. An
// unknown recipient still gets non-email dispatch.
func (h *Handler) lookupEmail(ctx context.Context, id string) string {
	if id == "" {
		return ""
	}
	data, ok, err := h.readStore.Get(ctx, readmodel.CollectionUsers, id)
	if err != nil {
		h.logger.Warn("user lookup failed", "user_id", id, "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	u, ok := data.(*readmodel.UserReadModel)
	if !ok {
		return ""
	}
	return u.Email
}
