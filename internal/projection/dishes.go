package projection

import (
	"context"
	"errors"

	"github.com/example/tastesphere/internal/domain/dish"
	"github.com/example/tastesphere/internal/infrastructure/store"
	"github.com/example/tastesphere/internal/readmodel"
	"github.com/example/tastesphere/internal/viewhistory"
)

func (p *Projector) handleDishEvent(ctx context.Context, event store.Event) error {
	switch event.EventType {
	case dish.EventDishCreated:
		e, err := decode[dish.DishCreated](event)
		if err != nil {
			return err
		}
		rm := &readmodel.DishReadModel{
			ID:        e.DishID,
			SellerID:  e.SellerID,
			Status:    string(dish.StatusActive),
			CreatedAt: e.CreatedAt,
			UpdatedAt: e.CreatedAt,
		}
		applyDetails(rm, e.Details)
		return p.readStore.Set(ctx, readmodel.CollectionDishes, e.DishID, rm)

	case dish.EventDishUpdated:
		e, err := decode[dish.DishUpdated](event)
		if err != nil {
			return err
		}
		return update(ctx, p.readStore, readmodel.CollectionDishes, e.DishID, func(rm *readmodel.DishReadModel) {
			applyDetails(rm, e.Details)
			rm.UpdatedAt = e.UpdatedAt
		})

	case dish.EventDishStatusChanged:
		e, err := decode[dish.DishStatusChanged](event)
		if err != nil {
			return err
		}
		return update(ctx, p.readStore, readmodel.CollectionDishes, e.DishID, func(rm *readmodel.DishReadModel) {
			rm.Status = string(e.Status)
			rm.UpdatedAt = e.ChangedAt
		})

	case dish.EventDishViewed:
		e, err := decode[dish.DishViewed](event)
		if err != nil {
			return err
		}
		if err := update(ctx, p.readStore, readmodel.CollectionDishes, e.DishID, func(rm *readmodel.DishReadModel) {
			rm.ViewCount++
			rm.Popularity += dish.PopularityWeight(dish.SignalView)
		}); err != nil {
			return err
		}
		return p.recordView(ctx, e)
	}
	return nil
}

func (p *Projector) recordView(ctx context.Context, e dish.DishViewed) error {
	if p.history == nil {
		return nil
	}
	_, err := p.history.Record(ctx, viewhistory.View{
		UserID:    e.UserID,
		SessionID: e.SessionID,
		DishID:    e.DishID,
		ViewedAt:  e.ViewedAt,
	})
	if errors.Is(err, viewhistory.ErrAnonymousViewer) {
		p.logger.Warn("view without viewer", "dish_id", e.DishID)
		return nil
	}
	return err
}

// bumpPopularity applies a popularity signal from another aggregate's
// event. A dish that is not projected yet is skipped.
func (p *Projector) bumpPopularity(ctx context.Context, dishID string, signal dish.Signal) {
	err := update(ctx, p.readStore, readmodel.CollectionDishes, dishID, func(rm *readmodel.DishReadModel) {
		rm.Popularity += dish.PopularityWeight(signal)
	})
	if err != nil {
		p.logger.Warn("popularity not updated", "dish_id", dishID, "signal", signal, "error", err)
	}
}

func applyDetails(rm *readmodel.DishReadModel, d dish.Details) {
	rm.Name = d.Name
	rm.Description = d.Description
	rm.Category = d.Category
	rm.Cuisine = d.Cuisine
	rm.DietaryType = d.DietaryType
	rm.SpiceLevel = d.SpiceLevel
	rm.Price = d.Price
}
