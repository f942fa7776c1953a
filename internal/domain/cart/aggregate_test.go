package cart

import (
	"context"
	"testing"
	"time"

	"github.com/example/tastesphere/internal/clock"
	"github.com/example/tastesphere/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCartService() (*Service, *mocks.MockEventStore) {
	eventStore := mocks.NewMockEventStore()
	service := NewService(eventStore, clock.Fixed(time.Date(2024, 1, 5, 20, 0, 0, 0, time.UTC)))
	return service, eventStore
}

func item(dishID, sellerID string, qty int, price float64) CartItem {
	return CartItem{DishID: dishID, SellerID: sellerID, Name: "dish " + dishID, Quantity: qty, Price: price}
}

// ============================================
// GetCartID Tests
// ============================================

func TestGetCartID(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		expectedID string
	}{
		{"normal user ID", "user-123", "cart-user-123"},
		{"UUID user ID", "550e8400-e29b-41d4-a716-446655440000", "cart-550e8400-e29b-41d4-a716-446655440000"},
		{"empty user ID", "", "cart-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedID, GetCartID(tt.userID))
		})
	}
}

// ============================================
// Add Item Tests
// ============================================

func TestService_AddItem_Success(t *testing.T) {
	service, eventStore := newTestCartService()

	cart, err := service.AddItem(context.Background(), "user-123", item("dish-456", "seller-1", 2, 120))

	require.NoError(t, err)
	require.Len(t, eventStore.AppendCalls, 1)
	call := eventStore.AppendCalls[0]
	assert.Equal(t, EventItemAdded, call.EventType)
	assert.Equal(t, "cart-user-123", call.AggregateID)
	assert.Equal(t, 0, call.ExpectedVersion)

	data := call.Data.(ItemAddedToCart)
	assert.Equal(t, "dish-456", data.DishID)
	assert.Equal(t, "seller-1", data.SellerID)
	assert.Equal(t, 2, data.Quantity)

	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 240.0, cart.Total())
}

func TestService_AddItem_SameDishAccumulates(t *testing.T) {
	service, _ := newTestCartService()
	ctx := context.Background()

	_, err := service.AddItem(ctx, "user-1", item("dish-1", "seller-1", 1, 100))
	require.NoError(t, err)
	cart, err := service.AddItem(ctx, "user-1", item("dish-1", "seller-1", 2, 110))
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 110.0, cart.Items[0].Price)
	assert.Equal(t, 2, cart.Version)
}

func TestService_AddItem_Validation(t *testing.T) {
	service, eventStore := newTestCartService()
	ctx := context.Background()

	_, err := service.AddItem(ctx, "user-1", item("", "seller-1", 1, 10))
	assert.ErrorIs(t, err, ErrInvalidDish)

	_, err = service.AddItem(ctx, "user-1", item("dish-1", "seller-1", 0, 10))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	assert.Empty(t, eventStore.AppendCalls)
}

// ============================================
// Remove / Clear Tests
// ============================================

func TestService_RemoveItem(t *testing.T) {
	service, _ := newTestCartService()
	ctx := context.Background()
	_, _ = service.AddItem(ctx, "user-1", item("dish-1", "seller-1", 1, 100))
	_, _ = service.AddItem(ctx, "user-1", item("dish-2", "seller-1", 1, 50))

	cart, err := service.RemoveItem(ctx, "user-1", "dish-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "dish-2", cart.Items[0].DishID)

	_, err = service.RemoveItem(ctx, "user-1", "dish-1")
	assert.ErrorIs(t, err, ErrItemNotInCart)
}

func TestService_Clear(t *testing.T) {
	service, _ := newTestCartService()
	ctx := context.Background()
	_, _ = service.AddItem(ctx, "user-1", item("dish-1", "seller-1", 1, 100))

	require.NoError(t, service.Clear(ctx, "user-1"))

	cart, err := service.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 2, cart.Version)
}

func TestService_Get_EmptyCart(t *testing.T) {
	service, _ := newTestCartService()

	cart, err := service.Get(context.Background(), "user-new")

	require.NoError(t, err)
	assert.Equal(t, "cart-user-new", cart.ID)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0, cart.Version)
}

// ============================================
// Seller Tests
// ============================================

func TestCart_SellerID(t *testing.T) {
	single := &Cart{Items: []CartItem{item("d1", "s1", 1, 1), item("d2", "s1", 1, 1)}}
	seller, err := single.SellerID()
	require.NoError(t, err)
	assert.Equal(t, "s1", seller)

	mixed := &Cart{Items: []CartItem{item("d1", "s1", 1, 1), item("d2", "s2", 1, 1)}}
	_, err = mixed.SellerID()
	assert.ErrorIs(t, err, ErrMixedSellers)

	_, err = (&Cart{}).SellerID()
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestService_SnapshotAfterTenEvents(t *testing.T) {
	service, eventStore := newTestCartService()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := service.AddItem(ctx, "user-1", item("dish-1", "seller-1", 1, 10))
		require.NoError(t, err)
	}

	require.Len(t, eventStore.SaveSnapshotCalls, 1)
	cart, err := service.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 10, cart.Items[0].Quantity)
}
