package projection

import (
	"context"
	"time"

	"github.com/example/tastesphere/internal/domain/dish"
	"github.com/example/tastesphere/internal/domain/order"
	"github.com/example/tastesphere/internal/infrastructure/store"
	"github.com/example/tastesphere/internal/readmodel"
)

// Order read models are folded with the aggregate's own ApplyEvent so the
// projection can never disagree with the write side.
func (p *Projector) handleOrderEvent(ctx context.Context, event store.Event) error {
	if event.EventType == order.EventOrderPlaced {
		o := &order.Order{}
		if err := o.ApplyEvent(event); err != nil {
			return err
		}
		if err := p.readStore.Set(ctx, readmodel.CollectionOrders, o.ID, toOrderReadModel(o)); err != nil {
			return err
		}
		seen := make(map[string]bool)
		for _, item := range o.Items {
			if !seen[item.DishID] {
				seen[item.DishID] = true
				p.bumpPopularity(ctx, item.DishID, dish.SignalOrder)
			}
		}
		return nil
	}

	var applyErr error
	err := update(ctx, p.readStore, readmodel.CollectionOrders, event.AggregateID, func(rm *readmodel.OrderReadModel) {
		o := fromOrderReadModel(rm)
		if applyErr = o.ApplyEvent(event); applyErr == nil {
			*rm = *toOrderReadModel(o)
		}
	})
	if err != nil {
		return err
	}
	return applyErr
}

func toOrderReadModel(o *order.Order) *readmodel.OrderReadModel {
	items := make([]readmodel.OrderItemReadModel, len(o.Items))
	for i, item := range o.Items {
		items[i] = readmodel.OrderItemReadModel{
			DishID:   item.DishID,
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}
	timeline := make([]readmodel.TimelineEntryReadModel, len(o.Timeline))
	for i, entry := range o.Timeline {
		timeline[i] = readmodel.TimelineEntryReadModel{
			Status:    string(entry.Status),
			Timestamp: entry.Timestamp,
			Actor:     entry.Actor,
			Note:      entry.Note,
		}
	}
	var delivered *time.Time
	if o.ActualDeliveryTime != nil {
		t := *o.ActualDeliveryTime
		delivered = &t
	}
	return &readmodel.OrderReadModel{
		ID:                 o.ID,
		UserID:             o.UserID,
		SellerID:           o.SellerID,
		Items:              items,
		TotalAmount:        o.TotalAmount,
		Status:             string(o.Status),
		PaymentStatus:      string(o.PaymentStatus),
		PaymentMethod:      o.PaymentMethod,
		Timeline:           timeline,
		ProgressPercent:    o.ProgressPercent(),
		ActualDeliveryTime: delivered,
		CancellationReason: o.CancellationReason,
		CancelledBy:        o.CancelledBy,
		Rating:             o.Rating,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

func fromOrderReadModel(rm *readmodel.OrderReadModel) *order.Order {
	items := make([]order.OrderItem, len(rm.Items))
	for i, item := range rm.Items {
		items[i] = order.OrderItem{
			DishID:   item.DishID,
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}
	timeline := make([]order.TimelineEntry, len(rm.Timeline))
	for i, entry := range rm.Timeline {
		timeline[i] = order.TimelineEntry{
			Status:    order.Status(entry.Status),
			Timestamp: entry.Timestamp,
			Actor:     entry.Actor,
			Note:      entry.Note,
		}
	}
	return &order.Order{
		ID:                 rm.ID,
		UserID:             rm.UserID,
		SellerID:           rm.SellerID,
		Status:             order.Status(rm.Status),
		PaymentStatus:      order.PaymentStatus(rm.PaymentStatus),
		PaymentMethod:      rm.PaymentMethod,
		Items:              items,
		TotalAmount:        rm.TotalAmount,
		Timeline:           timeline,
		ActualDeliveryTime: rm.ActualDeliveryTime,
		CancellationReason: rm.CancellationReason,
		CancelledBy:        rm.CancelledBy,
		Rating:             rm.Rating,
		CreatedAt:          rm.CreatedAt,
		UpdatedAt:          rm.UpdatedAt,
	}
}
