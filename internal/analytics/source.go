package analytics

import (
	"context"
	"time"

	"github.com/example/tastesphere/internal/infrastructure/store"
	"github.com/example/tastesphere/internal/readmodel"
)

// ReadStoreSource implements Source by scanning read model collections.
type ReadStoreSource struct {
	readStore store.ReadStoreInterface
}

func NewReadStoreSource(rs store.ReadStoreInterface) *ReadStoreSource {
	return &ReadStoreSource{readStore: rs}
}

func (s *ReadStoreSource) OrdersBySeller(ctx context.Context, sellerID string, from, to time.Time) ([]readmodel.OrderReadModel, error) {
	return readmodel.Collect(ctx, s.readStore, readmodel.CollectionOrders, func(o *readmodel.OrderReadModel) bool {
		return o.SellerID == sellerID && inWindow(o.CreatedAt, from, to)
	})
}

func (s *ReadStoreSource) OrderHistory(ctx context.Context, sellerID string) ([]readmodel.OrderReadModel, error) {
	return readmodel.Collect(ctx, s.readStore, readmodel.CollectionOrders, func(o *readmodel.OrderReadModel) bool {
		return o.SellerID == sellerID
	})
}

func (s *ReadStoreSource) ReviewsBySeller(ctx context.Context, sellerID string, from, to time.Time) ([]readmodel.ReviewReadModel, error) {
	return readmodel.Collect(ctx, s.readStore, readmodel.CollectionReviews, func(r *readmodel.ReviewReadModel) bool {
		return r.SellerID == sellerID && inWindow(r.CreatedAt, from, to)
	})
}

func (s *ReadStoreSource) DishesBySeller(ctx context.Context, sellerID string) ([]readmodel.DishReadModel, error) {
	return readmodel.Collect(ctx, s.readStore, readmodel.CollectionDishes, func(d *readmodel.DishReadModel) bool {
		return d.SellerID == sellerID
	})
}
