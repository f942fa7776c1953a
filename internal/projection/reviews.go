package projection

import (
	"context"

	"github.com/example/tastesphere/internal/domain/review"
	"github.com/example/tastesphere/internal/infrastructure/store"
	"github.com/example/tastesphere/internal/readmodel"
)

func (p *Projector) handleReviewEvent(ctx context.Context, event store.Event) error {
	var dishID string

	switch event.EventType {
	case review.EventReviewCreated:
		e, err := decode[review.ReviewCreated](event)
		if err != nil {
			return err
		}
		if err := p.readStore.Set(ctx, readmodel.CollectionReviews, e.ReviewID, &readmodel.ReviewReadModel{
			ID:        e.ReviewID,
			UserID:    e.UserID,
			DishID:    e.DishID,
			SellerID:  e.SellerID,
			Rating:    e.Rating,
			Comment:   e.Comment,
			Status:    string(review.StatusActive),
			CreatedAt: e.CreatedAt,
			UpdatedAt: e.CreatedAt,
		}); err != nil {
			return err
		}
		dishID = e.DishID

	case review.EventReviewUpdated:
		e, err := decode[review.ReviewUpdated](event)
		if err != nil {
			return err
		}
		if err := update(ctx, p.readStore, readmodel.CollectionReviews, e.ReviewID, func(rm *readmodel.ReviewReadModel) {
			rm.Rating = e.Rating
			rm.Comment = e.Comment
			rm.UpdatedAt = e.UpdatedAt
		}); err != nil {
			return err
		}
		dishID = e.DishID

	case review.EventReviewStatusChanged:
		e, err := decode[review.ReviewStatusChanged](event)
		if err != nil {
			return err
		}
		if err := update(ctx, p.readStore, readmodel.CollectionReviews, e.ReviewID, func(rm *readmodel.ReviewReadModel) {
			rm.Status = string(e.To)
			rm.UpdatedAt = e.ChangedAt
		}); err != nil {
			return err
		}
		dishID = e.DishID

	default:
		return nil
	}

	return p.refreshDishRating(ctx, dishID)
}

// refreshDishRating recomputes the cached dish rating from all of the
// dish's reviews and stores the result on the dish read model.
func (p *Projector) refreshDishRating(ctx context.Context, dishID string) error {
	all, err := p.readStore.GetAll(ctx, readmodel.CollectionReviews)
	if err != nil {
		return err
	}
	var reviews []review.Review
	for _, item := range all {
		rm, ok := item.(*readmodel.ReviewReadModel)
		if !ok || rm.DishID != dishID {
			continue
		}
		reviews = append(reviews, review.Review{
			ID:     rm.ID,
			DishID: rm.DishID,
			Rating: rm.Rating,
			Status: review.Status(rm.Status),
		})
	}

	summary := review.Summarize(reviews)
	return update(ctx, p.readStore, readmodel.CollectionDishes, dishID, func(rm *readmodel.DishReadModel) {
		rm.Rating = readmodel.RatingReadModel{Average: summary.Average, Count: summary.Count}
	})
}
