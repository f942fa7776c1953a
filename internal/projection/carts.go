package projection

import (
	"context"

	"github.com/example/tastesphere/internal/domain/cart"
	"github.com/example/tastesphere/internal/domain/dish"
	"github.com/example/tastesphere/internal/infrastructure/store"
	"github.com/example/tastesphere/internal/readmodel"
)

func (p *Projector) handleCartEvent(ctx context.Context, event store.Event) error {
	switch event.EventType {
	case cart.EventItemAdded:
		e, err := decode[cart.ItemAddedToCart](event)
		if err != nil {
			return err
		}
		c, found, err := get[readmodel.CartReadModel](ctx, p.readStore, readmodel.CollectionCarts, e.CartID)
		if err != nil {
			return err
		}
		if !found {
			c = &readmodel.CartReadModel{ID: e.CartID, UserID: e.UserID, Items: []readmodel.CartItemReadModel{}}
		}
		added := false
		for i, item := range c.Items {
			if item.DishID == e.DishID {
				c.Items[i].Quantity += e.Quantity
				c.Items[i].Price = e.Price
				added = true
				break
			}
		}
		if !added {
			c.Items = append(c.Items, readmodel.CartItemReadModel{
				DishID:   e.DishID,
				SellerID: e.SellerID,
				Name:     e.Name,
				Quantity: e.Quantity,
				Price:    e.Price,
			})
		}
		c.Total = calculateCartTotal(c.Items)
		if err := p.readStore.Set(ctx, readmodel.CollectionCarts, e.CartID, c); err != nil {
			return err
		}
		p.bumpPopularity(ctx, e.DishID, dish.SignalCartAdd)

	case cart.EventItemRemoved:
		e, err := decode[cart.ItemRemovedFromCart](event)
		if err != nil {
			return err
		}
		return update(ctx, p.readStore, readmodel.CollectionCarts, e.CartID, func(c *readmodel.CartReadModel) {
			items := make([]readmodel.CartItemReadModel, 0, len(c.Items))
			for _, item := range c.Items {
				if item.DishID != e.DishID {
					items = append(items, item)
				}
			}
			c.Items = items
			c.Total = calculateCartTotal(c.Items)
		})

	case cart.EventCartCleared:
		e, err := decode[cart.CartCleared](event)
		if err != nil {
			return err
		}
		return p.readStore.Set(ctx, readmodel.CollectionCarts, e.CartID, &readmodel.CartReadModel{
			ID:     e.CartID,
			UserID: e.UserID,
			Items:  []readmodel.CartItemReadModel{},
		})
	}
	return nil
}

func calculateCartTotal(items []readmodel.CartItemReadModel) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}
