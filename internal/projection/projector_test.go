package projection

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/tastesphere/internal/analytics"
	"github.com/example/tastesphere/internal/clock"
	"github.com/example/tastesphere/internal/domain/cart"
	"github.com/example/tastesphere/internal/domain/dish"
	"github.com/example/tastesphere/internal/domain/order"
	"github.com/example/tastesphere/internal/domain/review"
	"github.com/example/tastesphere/internal/domain/user"
	"github.com/example/tastesphere/internal/infrastructure/store"
	"github.com/example/tastesphere/internal/infrastructure/store/mocks"
	"github.com/example/tastesphere/internal/readmodel"
	"github.com/example/tastesphere/internal/viewhistory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 10, 19, 30, 0, 0, time.UTC)

func newTestProjector(opts ...Option) (*Projector, *mocks.MockReadStore) {
	readStore := mocks.NewMockReadStore()
	opts = append([]Option{WithClock(clock.Fixed(testNow))}, opts...)
	return NewProjector(readStore, opts...), readStore
}

func makeEvent(aggregateType, eventType string, data any) []byte {
	return makeEventWithID(uuid.New().String(), "agg-123", aggregateType, eventType, 1, data)
}

func makeEventWithID(id, aggregateID, aggregateType, eventType string, version int, data any) []byte {
	jsonData, _ := json.Marshal(data)
	event := store.Event{
		ID:            id,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          jsonData,
		Timestamp:     testNow,
		Version:       version,
	}
	result, _ := json.Marshal(event)
	return result
}

func seedDish(rs *mocks.MockReadStore, id string) *readmodel.DishReadModel {
	d := &readmodel.DishReadModel{ID: id, SellerID: "seller-1", Name: "Paneer Tikka", Price: 250, Status: "active"}
	rs.SetData(readmodel.CollectionDishes, id, d)
	return d
}

// ============================================
// Delivery Tests
// ============================================

func TestProjector_InvalidPayload(t *testing.T) {
	projector, _ := newTestProjector()

	err := projector.HandleEvent(context.Background(), nil, []byte("not json"))

	assert.Error(t, err)
}

func TestProjector_UnknownAggregateIsIgnored(t *testing.T) {
	projector, readStore := newTestProjector()

	err := projector.HandleEvent(context.Background(), nil, makeEvent("Unknown", "Whatever", map[string]string{}))

	require.NoError(t, err)
	assert.Len(t, readStore.SetCalls, 1)
	assert.Equal(t, readmodel.CollectionProcessed, readStore.SetCalls[0].Collection)
}

func TestProjector_RedeliveredEventIsSkipped(t *testing.T) {
	projector, readStore := newTestProjector()
	ctx := context.Background()
	seedDish(readStore, "dish-1")

	value := makeEventWithID("evt-1", "dish-1", dish.AggregateType, dish.EventDishViewed, 2, dish.DishViewed{
		DishID: "dish-1", SellerID: "seller-1", UserID: "user-1", ViewedAt: testNow,
	})

	require.NoError(t, projector.HandleEvent(ctx, nil, value))
	require.NoError(t, projector.HandleEvent(ctx, nil, value))

	data, _ := readStore.GetData(readmodel.CollectionDishes, "dish-1")
	d := data.(*readmodel.DishReadModel)
	assert.Equal(t, 1, d.ViewCount)
	assert.Equal(t, 1, d.Popularity)

	marker, ok := readStore.GetData(readmodel.CollectionProcessed, "evt-1")
	require.True(t, ok)
	assert.Equal(t, testNow, marker.(*readmodel.ProcessedEventReadModel).ProcessedAt)
}

func TestProjector_FailedEventIsNotMarked(t *testing.T) {
	projector, readStore := newTestProjector()

	value := makeEventWithID("evt-2", "dish-404", dish.AggregateType, dish.EventDishUpdated, 2, dish.DishUpdated{
		DishID: "dish-404", Details: dish.Details{Name: "Ghost"}, UpdatedAt: testNow,
	})

	err := projector.HandleEvent(context.Background(), nil, value)

	assert.ErrorIs(t, err, ErrMissingReadModel)
	_, marked := readStore.GetData(readmodel.CollectionProcessed, "evt-2")
	assert.False(t, marked)
}

// ============================================
// Order Event Tests
// ============================================

func TestProjector_HandleOrderPlaced(t *testing.T) {
	projector, readStore := newTestProjector()
	seedDish(readStore, "dish-1")
	seedDish(readStore, "dish-2")

	value := makeEventWithID("evt-o1", "order-1", order.AggregateType, order.EventOrderPlaced, 1, order.OrderPlaced{
		OrderID:  "order-1",
		UserID:   "user-1",
		SellerID: "seller-1",
		Items: []order.OrderItem{
			{DishID: "dish-1", Name: "Paneer Tikka", Quantity: 2, Price: 250},
			{DishID: "dish-2", Name: "Naan", Quantity: 1, Price: 40},
			{DishID: "dish-1", Name: "Paneer Tikka", Quantity: 1, Price: 250},
		},
		TotalAmount:   790,
		PaymentMethod: "upi",
		PlacedAt:      testNow,
	})

	err := projector.HandleEvent(context.Background(), nil, value)

	require.NoError(t, err)
	data, ok := readStore.GetData(readmodel.CollectionOrders, "order-1")
	require.True(t, ok)
	o := data.(*readmodel.OrderReadModel)
	assert.Equal(t, "pending_seller", o.Status)
	assert.Equal(t, "pending", o.PaymentStatus)
	assert.Equal(t, 10, o.ProgressPercent)
	assert.Equal(t, 790.0, o.TotalAmount)
	require.Len(t, o.Timeline, 1)
	assert.Equal(t, "user-1", o.Timeline[0].Actor)

	d1, _ := readStore.GetData(readmodel.CollectionDishes, "dish-1")
	assert.Equal(t, 5, d1.(*readmodel.DishReadModel).Popularity)
	d2, _ := readStore.GetData(readmodel.CollectionDishes, "dish-2")
	assert.Equal(t, 5, d2.(*readmodel.DishReadModel).Popularity)
}

func TestProjector_HandleOrderLifecycle(t *testing.T) {
	projector, readStore := newTestProjector()
	ctx := context.Background()

	events := [][]byte{
		makeEventWithID("e1", "order-1", order.AggregateType, order.EventOrderPlaced, 1, order.OrderPlaced{
			OrderID: "order-1", UserID: "user-1", SellerID: "seller-1",
			Items:       []order.OrderItem{{DishID: "dish-9", Quantity: 1, Price: 100}},
			TotalAmount: 100, PlacedAt: testNow,
		}),
		makeEventWithID("e2", "order-1", order.AggregateType, order.EventOrderStatusChanged, 2, order.OrderStatusChanged{
			OrderID: "order-1", From: order.StatusPendingSeller, To: order.StatusSellerAccepted,
			Actor: "seller-1", ChangedAt: testNow.Add(time.Minute),
		}),
		makeEventWithID("e3", "order-1", order.AggregateType, order.EventPaymentRecorded, 3, order.PaymentRecorded{
			OrderID: "order-1", PaymentStatus: order.PaymentCompleted, RecordedAt: testNow.Add(2 * time.Minute),
		}),
	}
	for _, value := range events {
		require.NoError(t, projector.HandleEvent(ctx, nil, value))
	}

	data, _ := readStore.GetData(readmodel.CollectionOrders, "order-1")
	o := data.(*readmodel.OrderReadModel)
	assert.Equal(t, "seller_accepted", o.Status)
	assert.Equal(t, "completed", o.PaymentStatus)
	assert.Equal(t, 25, o.ProgressPercent)
	require.Len(t, o.Timeline, 2)
	assert.Equal(t, "seller-1", o.Timeline[1].Actor)
	assert.Equal(t, testNow.Add(2*time.Minute), o.UpdatedAt)
}

func TestProjector_HandleOrderCancelled(t *testing.T) {
	projector, readStore := newTestProjector()
	readStore.SetData(readmodel.CollectionOrders, "order-1", &readmodel.OrderReadModel{
		ID: "order-1", UserID: "user-1", Status: "pending_seller", PaymentStatus: "pending",
		Timeline: []readmodel.TimelineEntryReadModel{{Status: "pending_seller", Timestamp: testNow, Actor: "user-1"}},
	})

	value := makeEventWithID("e9", "order-1", order.AggregateType, order.EventOrderStatusChanged, 2, order.OrderStatusChanged{
		OrderID: "order-1", From: order.StatusPendingSeller, To: order.StatusCancelledByUser,
		Actor: "user-1", Note: "changed my mind", ChangedAt: testNow.Add(time.Minute),
	})

	require.NoError(t, projector.HandleEvent(context.Background(), nil, value))

	data, _ := readStore.GetData(readmodel.CollectionOrders, "order-1")
	o := data.(*readmodel.OrderReadModel)
	assert.Equal(t, "cancelled_by_user", o.Status)
	assert.Equal(t, "user-1", o.CancelledBy)
	assert.Equal(t, "changed my mind", o.CancellationReason)
}

func TestProjector_OrderEventForMissingOrder(t *testing.T) {
	projector, _ := newTestProjector()

	value := makeEventWithID("e1", "order-x", order.AggregateType, order.EventOrderRated, 5, order.OrderRated{
		OrderID: "order-x", Rating: 4, RatedAt: testNow,
	})

	err := projector.HandleEvent(context.Background(), nil, value)

	assert.ErrorIs(t, err, ErrMissingReadModel)
}

// ============================================
// Dish Event Tests
// ============================================

func TestProjector_HandleDishCreatedAndUpdated(t *testing.T) {
	projector, readStore := newTestProjector()
	ctx := context.Background()

	created := makeEvent(dish.AggregateType, dish.EventDishCreated, dish.DishCreated{
		DishID:   "dish-1",
		SellerID: "seller-1",
		Details: dish.Details{
			Name: "Chole Bhature", Category: "main", Cuisine: "north indian",
			DietaryType: "vegetarian", SpiceLevel: "medium", Price: 180,
		},
		CreatedAt: testNow,
	})
	require.NoError(t, projector.HandleEvent(ctx, nil, created))

	updated := makeEvent(dish.AggregateType, dish.EventDishUpdated, dish.DishUpdated{
		DishID:    "dish-1",
		Details:   dish.Details{Name: "Chole Bhature (2 pc)", Category: "main", Cuisine: "north indian", Price: 200},
		UpdatedAt: testNow.Add(time.Hour),
	})
	require.NoError(t, projector.HandleEvent(ctx, nil, updated))

	data, ok := readStore.GetData(readmodel.CollectionDishes, "dish-1")
	require.True(t, ok)
	d := data.(*readmodel.DishReadModel)
	assert.Equal(t, "Chole Bhature (2 pc)", d.Name)
	assert.Equal(t, 200.0, d.Price)
	assert.Equal(t, "active", d.Status)
	assert.Equal(t, testNow, d.CreatedAt)
	assert.Equal(t, testNow.Add(time.Hour), d.UpdatedAt)
}

func TestProjector_HandleDishStatusChanged(t *testing.T) {
	projector, readStore := newTestProjector()
	seedDish(readStore, "dish-1")

	value := makeEvent(dish.AggregateType, dish.EventDishStatusChanged, dish.DishStatusChanged{
		DishID: "dish-1", Status: dish.StatusInactive, ChangedAt: testNow,
	})

	require.NoError(t, projector.HandleEvent(context.Background(), nil, value))

	data, _ := readStore.GetData(readmodel.CollectionDishes, "dish-1")
	assert.Equal(t, "inactive", data.(*readmodel.DishReadModel).Status)
}

func TestProjector_HandleDishViewedRecordsHistory(t *testing.T) {
	historyStore := mocks.NewMockReadStore()
	history := viewhistory.NewReadStoreHistory(historyStore)
	projector, readStore := newTestProjector(WithViewHistory(history))
	ctx := context.Background()
	seedDish(readStore, "dish-1")

	value := makeEvent(dish.AggregateType, dish.EventDishViewed, dish.DishViewed{
		DishID: "dish-1", SellerID: "seller-1", SessionID: "sess-1", ViewedAt: testNow,
	})
	require.NoError(t, projector.HandleEvent(ctx, nil, value))

	entries, err := history.History(ctx, "", "sess-1", 10, testNow.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "dish-1", entries[0].DishID)
}

func TestProjector_HandleDishViewedWithoutViewer(t *testing.T) {
	history := viewhistory.NewReadStoreHistory(mocks.NewMockReadStore())
	projector, readStore := newTestProjector(WithViewHistory(history))
	seedDish(readStore, "dish-1")

	value := makeEvent(dish.AggregateType, dish.EventDishViewed, dish.DishViewed{
		DishID: "dish-1", ViewedAt: testNow,
	})

	require.NoError(t, projector.HandleEvent(context.Background(), nil, value))
	data, _ := readStore.GetData(readmodel.CollectionDishes, "dish-1")
	assert.Equal(t, 1, data.(*readmodel.DishReadModel).ViewCount)
}

// ============================================
// Review Event Tests
// ============================================

func TestProjector_ReviewsRefreshDishRating(t *testing.T) {
	projector, readStore := newTestProjector()
	ctx := context.Background()
	seedDish(readStore, "dish-1")

	for i, rating := range []int{5, 4, 3} {
		value := makeEvent(review.AggregateType, review.EventReviewCreated, review.ReviewCreated{
			ReviewID:  []string{"r1", "r2", "r3"}[i],
			UserID:    "user-1",
			DishID:    "dish-1",
			SellerID:  "seller-1",
			Rating:    rating,
			CreatedAt: testNow,
		})
		require.NoError(t, projector.HandleEvent(ctx, nil, value))
	}

	data, _ := readStore.GetData(readmodel.CollectionDishes, "dish-1")
	assert.Equal(t, readmodel.RatingReadModel{Average: 4, Count: 3}, data.(*readmodel.DishReadModel).Rating)

	hidden := makeEvent(review.AggregateType, review.EventReviewStatusChanged, review.ReviewStatusChanged{
		ReviewID: "r3", DishID: "dish-1", From: review.StatusActive, To: review.StatusHidden,
		Actor: "moderator", ChangedAt: testNow,
	})
	require.NoError(t, projector.HandleEvent(ctx, nil, hidden))

	data, _ = readStore.GetData(readmodel.CollectionDishes, "dish-1")
	assert.Equal(t, readmodel.RatingReadModel{Average: 4.5, Count: 2}, data.(*readmodel.DishReadModel).Rating)

	edited := makeEvent(review.AggregateType, review.EventReviewUpdated, review.ReviewUpdated{
		ReviewID: "r2", DishID: "dish-1", Rating: 2, Comment: "cold", UpdatedAt: testNow,
	})
	require.NoError(t, projector.HandleEvent(ctx, nil, edited))

	data, _ = readStore.GetData(readmodel.CollectionDishes, "dish-1")
	assert.Equal(t, readmodel.RatingReadModel{Average: 3.5, Count: 2}, data.(*readmodel.DishReadModel).Rating)

	r, _ := readStore.GetData(readmodel.CollectionReviews, "r2")
	assert.Equal(t, "cold", r.(*readmodel.ReviewReadModel).Comment)
}

// ============================================
// Cart Event Tests
// ============================================

func TestProjector_HandleCartEvents(t *testing.T) {
	projector, readStore := newTestProjector()
	ctx := context.Background()
	seedDish(readStore, "dish-1")

	add := func(dishID string, qty int, price float64) {
		value := makeEvent(cart.AggregateType, cart.EventItemAdded, cart.ItemAddedToCart{
			CartID: "cart-user-1", UserID: "user-1", DishID: dishID, SellerID: "seller-1",
			Name: "item", Quantity: qty, Price: price, AddedAt: testNow,
		})
		require.NoError(t, projector.HandleEvent(ctx, nil, value))
	}
	add("dish-1", 2, 250)
	add("dish-2", 1, 40)
	add("dish-1", 1, 250)

	data, ok := readStore.GetData(readmodel.CollectionCarts, "cart-user-1")
	require.True(t, ok)
	c := data.(*readmodel.CartReadModel)
	require.Len(t, c.Items, 2)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, 790.0, c.Total)

	d, _ := readStore.GetData(readmodel.CollectionDishes, "dish-1")
	assert.Equal(t, 4, d.(*readmodel.DishReadModel).Popularity)

	removed := makeEvent(cart.AggregateType, cart.EventItemRemoved, cart.ItemRemovedFromCart{
		CartID: "cart-user-1", UserID: "user-1", DishID: "dish-1", RemovedAt: testNow,
	})
	require.NoError(t, projector.HandleEvent(ctx, nil, removed))

	data, _ = readStore.GetData(readmodel.CollectionCarts, "cart-user-1")
	c = data.(*readmodel.CartReadModel)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 40.0, c.Total)

	cleared := makeEvent(cart.AggregateType, cart.EventCartCleared, cart.CartCleared{
		CartID: "cart-user-1", UserID: "user-1", ClearedAt: testNow,
	})
	require.NoError(t, projector.HandleEvent(ctx, nil, cleared))

	data, _ = readStore.GetData(readmodel.CollectionCarts, "cart-user-1")
	assert.Empty(t, data.(*readmodel.CartReadModel).Items)
}

// ============================================
// User Event Tests
// ============================================

func TestProjector_HandleUserEvents(t *testing.T) {
	projector, readStore := newTestProjector()
	ctx := context.Background()

	steps := []struct {
		eventType string
		data      any
	}{
		{user.EventUserCreated, user.UserCreated{UserID: "user-1", Name: "Asha", Email: "asha@example.com", CreatedAt: testNow}},
		{user.EventUserUpdated, user.UserUpdated{UserID: "user-1", Name: "Asha R", Email: "asha@example.com", Phone: "+91 98", UpdatedAt: testNow}},
		{user.EventPreferencesUpdated, user.PreferencesUpdated{UserID: "user-1", Preferences: user.Preferences{Cuisines: []string{"south indian"}, Dietary: "vegan", SpiceLevel: "hot"}, UpdatedAt: testNow}},
		{user.EventWishlistItemAdded, user.WishlistItemAdded{UserID: "user-1", DishID: "dish-1", AddedAt: testNow}},
		{user.EventWishlistItemAdded, user.WishlistItemAdded{UserID: "user-1", DishID: "dish-2", AddedAt: testNow}},
		{user.EventWishlistItemRemoved, user.WishlistItemRemoved{UserID: "user-1", DishID: "dish-1", RemovedAt: testNow}},
	}
	for _, step := range steps {
		require.NoError(t, projector.HandleEvent(ctx, nil, makeEvent(user.AggregateType, step.eventType, step.data)))
	}

	data, ok := readStore.GetData(readmodel.CollectionUsers, "user-1")
	require.True(t, ok)
	u := data.(*readmodel.UserReadModel)
	assert.Equal(t, "Asha R", u.Name)
	assert.Equal(t, "+91 98", u.Phone)
	assert.Equal(t, []string{"south indian"}, u.Preferences.Cuisines)
	assert.Equal(t, "vegan", u.Preferences.Dietary)
	assert.Equal(t, []string{"dish-2"}, u.Wishlist)
}

func TestProjector_SetErrorIsReturned(t *testing.T) {
	projector, readStore := newTestProjector()
	readStore.SetErr = errors.New("disk full")

	value := makeEvent(user.AggregateType, user.EventUserCreated, user.UserCreated{UserID: "user-1", CreatedAt: testNow})

	err := projector.HandleEvent(context.Background(), nil, value)

	assert.ErrorContains(t, err, "disk full")
}

// ============================================
// Concurrency Tests
// ============================================

func TestProjector_ViewsWhileAnalyticsReads(t *testing.T) {
	readStore := store.NewReadStore()
	projector := NewProjector(readStore, WithClock(clock.Fixed(testNow)))
	source := analytics.NewReadStoreSource(readStore)
	ctx := context.Background()
	require.NoError(t, readStore.Set(ctx, readmodel.CollectionDishes, "dish-1", &readmodel.DishReadModel{
		ID: "dish-1", SellerID: "seller-1", Name: "Paneer Tikka", Price: 250, Status: "active",
	}))

	const views = 100
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < views; i++ {
			value := makeEvent(dish.AggregateType, dish.EventDishViewed, dish.DishViewed{
				DishID: "dish-1", SellerID: "seller-1", UserID: "user-1", ViewedAt: testNow,
			})
			assert.NoError(t, projector.HandleEvent(ctx, nil, value))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < views; i++ {
			dishes, err := source.DishesBySeller(ctx, "seller-1")
			if assert.NoError(t, err) && assert.Len(t, dishes, 1) {
				assert.LessOrEqual(t, dishes[0].ViewCount, views)
			}
		}
	}()
	wg.Wait()

	dishes, err := source.DishesBySeller(ctx, "seller-1")
	require.NoError(t, err)
	require.Len(t, dishes, 1)
	assert.Equal(t, views, dishes[0].ViewCount)
}
