package query

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/example/tastesphere/internal/analytics"
	"github.com/example/tastesphere/internal/clock"
	"github.com/example/tastesphere/internal/domain/cart"
	"github.com/example/tastesphere/internal/domain/review"
	"github.com/example/tastesphere/internal/infrastructure/store"
	"github.com/example/tastesphere/internal/readmodel"
	"github.com/example/tastesphere/internal/recommendation"
	"github.com/example/tastesphere/internal/viewhistory"
)

// ErrNotFound is returned when a read model does not exist.
var ErrNotFound = errors.New("not found")

type Handler struct {
	readStore      store.ReadStoreInterface
	history        viewhistory.Store
	clock          clock.Clock
	trendingWindow time.Duration
	recommender    *recommendation.Recommender
	aggregator     *analytics.Aggregator
	logger         *slog.Logger
}

type Option func(*Handler)

func WithViewHistory(h viewhistory.Store) Option {
	return func(q *Handler) { q.history = h }
}

func WithClock(c clock.Clock) Option {
	return func(q *Handler) { q.clock = c }
}

func WithTrendingWindow(d time.Duration) Option {
	return func(q *Handler) { q.trendingWindow = d }
}

func NewHandler(readStore store.ReadStoreInterface, opts ...Option) *Handler {
	h := &Handler{
		readStore: readStore,
		clock:     clock.System,
		logger:    slog.Default().With("component", "query_handler"),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.recommender = recommendation.NewRecommender(readStore, h.clock, h.trendingWindow)
	h.aggregator = analytics.NewAggregator(analytics.NewReadStoreSource(readStore))
	return h
}

// DishFilter narrows ListDishes. Empty fields match everything.
type DishFilter struct {
	SellerID        string
	Category        string
	Cuisine         string
	IncludeInactive bool
}

func (f DishFilter) matches(d *DishReadModel) bool {
	if !f.IncludeInactive && d.Status != "active" {
		return false
	}
	if f.SellerID != "" && d.SellerID != f.SellerID {
		return false
	}
	if f.Category != "" && !strings.EqualFold(d.Category, f.Category) {
		return false
	}
	if f.Cuisine != "" && !strings.EqualFold(d.Cuisine, f.Cuisine) {
		return false
	}
	return true
}

// Dishes
func (h *Handler) GetDish(ctx context.Context, id string) (*DishReadModel, error) {
	return get[DishReadModel](ctx, h.readStore, readmodel.CollectionDishes, id)
}

func (h *Handler) ListDishes(ctx context.Context, filter DishFilter) ([]*DishReadModel, error) {
	return list(ctx, h.readStore, readmodel.CollectionDishes, filter.matches)
}

// Cart
func (h *Handler) GetCart(ctx context.Context, userID string) (*CartReadModel, error) {
	cartID := cart.GetCartID(userID)
	c, err := get[CartReadModel](ctx, h.readStore, readmodel.CollectionCarts, cartID)
	if errors.Is(err, ErrNotFound) {
		return &CartReadModel{
			ID:     cartID,
			UserID: userID,
			Items:  []CartItemReadModel{},
			Total:  0,
		}, nil
	}
	return c, err
}

// Orders
func (h *Handler) GetOrder(ctx context.Context, id string) (*OrderReadModel, error) {
	return get[OrderReadModel](ctx, h.readStore, readmodel.CollectionOrders, id)
}

// ListOrdersByUser returns the user's orders, newest first.
func (h *Handler) ListOrdersByUser(ctx context.Context, userID string) ([]*OrderReadModel, error) {
	orders, err := list(ctx, h.readStore, readmodel.CollectionOrders, func(o *OrderReadModel) bool {
		return o.UserID == userID
	})
	sortNewestFirst(orders)
	return orders, err
}

// ListOrdersBySeller returns the seller's orders, newest first.
func (h *Handler) ListOrdersBySeller(ctx context.Context, sellerID string) ([]*OrderReadModel, error) {
	orders, err := list(ctx, h.readStore, readmodel.CollectionOrders, func(o *OrderReadModel) bool {
		return o.SellerID == sellerID
	})
	sortNewestFirst(orders)
	return orders, err
}

func sortNewestFirst(orders []*OrderReadModel) {
	slices.SortStableFunc(orders, func(a, b *OrderReadModel) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

// Reviews
func (h *Handler) ListReviewsByDish(ctx context.Context, dishID string) ([]*ReviewReadModel, error) {
	reviews, err := list(ctx, h.readStore, readmodel.CollectionReviews, func(r *ReviewReadModel) bool {
		return r.DishID == dishID && r.Status == string(review.StatusActive)
	})
	slices.SortStableFunc(reviews, func(a, b *ReviewReadModel) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	return reviews, err
}

// Users
func (h *Handler) GetUser(ctx context.Context, id string) (*UserReadModel, error) {
	return get[UserReadModel](ctx, h.readStore, readmodel.CollectionUsers, id)
}

// ViewHistory lists the viewer's recent views, newest first. Without a
// configured history store it is always empty.
func (h *Handler) ViewHistory(ctx context.Context, userID, sessionID string, limit int) ([]ViewHistoryReadModel, error) {
	if h.history == nil {
		return []ViewHistoryReadModel{}, nil
	}
	return h.history.History(ctx, userID, sessionID, limit, h.clock.Now())
}

// Scoring and analytics
func (h *Handler) Trending(ctx context.Context, minOrders, limit int) ([]recommendation.Scored, error) {
	return h.recommender.Trending(ctx, minOrders, limit)
}

func (h *Handler) Recommendations(ctx context.Context, userID string, limit int) ([]recommendation.Recommendation, error) {
	return h.recommender.ForUser(ctx, userID, limit)
}

func (h *Handler) SellerAnalytics(ctx context.Context, sellerID string, start, end time.Time) (*analytics.Snapshot, error) {
	return h.aggregator.ComputeSnapshot(ctx, sellerID, start, end)
}

func get[T any](ctx context.Context, rs store.ReadStoreInterface, collection, id string) (*T, error) {
	data, ok, err := rs.Get(ctx, collection, id)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	model, ok := data.(*T)
	if !ok {
		return nil, fmt.Errorf("unexpected %T in %s", data, collection)
	}
	return model, nil
}

func list[T any](ctx context.Context, rs store.ReadStoreInterface, collection string, keep func(*T) bool) ([]*T, error) {
	models, err := readmodel.Collect(ctx, rs, collection, keep)
	if err != nil {
		return nil, err
	}
	result := make([]*T, len(models))
	for i := range models {
		result[i] = &models[i]
	}
	return result, nil
}
