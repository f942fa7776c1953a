package projection

import (
	"context"
	"slices"

	"github.com/example/tastesphere/internal/domain/user"
	"github.com/example/tastesphere/internal/infrastructure/store"
	"github.com/example/tastesphere/internal/readmodel"
)

func (p *Projector) handleUserEvent(ctx context.Context, event store.Event) error {
	switch event.EventType {
	case user.EventUserCreated:
		e, err := decode[user.UserCreated](event)
		if err != nil {
			return err
		}
		return p.readStore.Set(ctx, readmodel.CollectionUsers, e.UserID, &readmodel.UserReadModel{
			ID:        e.UserID,
			Name:      e.Name,
			Email:     e.Email,
			Phone:     e.Phone,
			Wishlist:  []string{},
			CreatedAt: e.CreatedAt,
			UpdatedAt: e.CreatedAt,
		})

	case user.EventUserUpdated:
		e, err := decode[user.UserUpdated](event)
		if err != nil {
			return err
		}
		return update(ctx, p.readStore, readmodel.CollectionUsers, e.UserID, func(u *readmodel.UserReadModel) {
			u.Name = e.Name
			u.Email = e.Email
			u.Phone = e.Phone
			u.UpdatedAt = e.UpdatedAt
		})

	case user.EventPreferencesUpdated:
		e, err := decode[user.PreferencesUpdated](event)
		if err != nil {
			return err
		}
		return update(ctx, p.readStore, readmodel.CollectionUsers, e.UserID, func(u *readmodel.UserReadModel) {
			u.Preferences = readmodel.PreferencesReadModel{
				Cuisines:   e.Preferences.Cuisines,
				Dietary:    e.Preferences.Dietary,
				SpiceLevel: e.Preferences.SpiceLevel,
			}
			u.UpdatedAt = e.UpdatedAt
		})

	case user.EventWishlistItemAdded:
		e, err := decode[user.WishlistItemAdded](event)
		if err != nil {
			return err
		}
		return update(ctx, p.readStore, readmodel.CollectionUsers, e.UserID, func(u *readmodel.UserReadModel) {
			if !slices.Contains(u.Wishlist, e.DishID) {
				u.Wishlist = append(u.Wishlist, e.DishID)
			}
			u.UpdatedAt = e.AddedAt
		})

	case user.EventWishlistItemRemoved:
		e, err := decode[user.WishlistItemRemoved](event)
		if err != nil {
			return err
		}
		return update(ctx, p.readStore, readmodel.CollectionUsers, e.UserID, func(u *readmodel.UserReadModel) {
			u.Wishlist = slices.DeleteFunc(u.Wishlist, func(id string) bool { return id == e.DishID })
			u.UpdatedAt = e.RemovedAt
		})
	}
	return nil
}
