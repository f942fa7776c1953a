package dish

import (
	"context"
	"testing"
	"time"

	"github.com/example/tastesphere/internal/clock"
	"github.com/example/tastesphere/internal/infrastructure/store"
	"github.com/example/tastesphere/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestDishService() (*Service, *mocks.MockEventStore) {
	eventStore := mocks.NewMockEventStore()
	return NewService(eventStore, clock.Fixed(testNow)), eventStore
}

func validDetails() Details {
	return Details{
		Name:        "Masala Dosa",
		Description: "Crisp rice crepe with potato filling",
		Category:    "breakfast",
		Cuisine:     "south_indian",
		DietaryType: "veg",
		SpiceLevel:  "medium",
		Price:       120,
	}
}

// ============================================
// Create Dish Tests
// ============================================

func TestService_Create_Success(t *testing.T) {
	service, eventStore := newTestDishService()

	d, err := service.Create(context.Background(), "seller-1", validDetails())

	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "seller-1", d.SellerID)
	assert.Equal(t, StatusActive, d.Status)
	assert.Equal(t, testNow, d.CreatedAt)
	assert.Equal(t, 1, d.Version)
	require.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, EventDishCreated, eventStore.AppendCalls[0].EventType)
}

func TestService_Create_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Details)
		wantErr error
	}{
		{"blank name", func(d *Details) { d.Name = "  " }, ErrInvalidName},
		{"zero price", func(d *Details) { d.Price = 0 }, ErrInvalidPrice},
		{"negative price", func(d *Details) { d.Price = -5 }, ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, eventStore := newTestDishService()
			details := validDetails()
			tt.mutate(&details)

			_, err := service.Create(context.Background(), "seller-1", details)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, eventStore.AppendCalls)
		})
	}
}

// ============================================
// Update / Status Tests
// ============================================

func TestService_Update_OwnerOnly(t *testing.T) {
	service, _ := newTestDishService()
	ctx := context.Background()
	d, err := service.Create(ctx, "seller-1", validDetails())
	require.NoError(t, err)

	changed := validDetails()
	changed.Price = 150

	_, err = service.Update(ctx, d.ID, "seller-2", changed)
	assert.ErrorIs(t, err, ErrNotDishOwner)

	updated, err := service.Update(ctx, d.ID, "seller-1", changed)
	require.NoError(t, err)
	assert.Equal(t, 150.0, updated.Details.Price)
	assert.Equal(t, 2, updated.Version)
}

func TestService_Update_NotFound(t *testing.T) {
	service, _ := newTestDishService()

	_, err := service.Update(context.Background(), "missing", "seller-1", validDetails())

	assert.ErrorIs(t, err, ErrDishNotFound)
}

func TestService_SetStatus(t *testing.T) {
	service, eventStore := newTestDishService()
	ctx := context.Background()
	d, _ := service.Create(ctx, "seller-1", validDetails())

	updated, err := service.SetStatus(ctx, d.ID, "seller-1", StatusInactive)
	require.NoError(t, err)
	assert.Equal(t, StatusInactive, updated.Status)

	// no-op when unchanged
	_, err = service.SetStatus(ctx, d.ID, "seller-1", StatusInactive)
	require.NoError(t, err)
	assert.Len(t, eventStore.AppendCalls, 2)

	_, err = service.SetStatus(ctx, d.ID, "seller-1", Status("archived"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

// ============================================
// View Tests
// ============================================

func TestService_RecordView(t *testing.T) {
	service, eventStore := newTestDishService()
	ctx := context.Background()
	d, _ := service.Create(ctx, "seller-1", validDetails())

	require.NoError(t, service.RecordView(ctx, d.ID, "user-1", "sess-1"))

	last := eventStore.AppendCalls[len(eventStore.AppendCalls)-1]
	assert.Equal(t, EventDishViewed, last.EventType)
	assert.Equal(t, store.AnyVersion, last.ExpectedVersion)
	viewed := last.Data.(DishViewed)
	assert.Equal(t, "user-1", viewed.UserID)
	assert.Empty(t, viewed.SessionID)
	assert.Equal(t, "seller-1", viewed.SellerID)
}

func TestService_RecordView_SessionOnly(t *testing.T) {
	service, eventStore := newTestDishService()
	ctx := context.Background()
	d, _ := service.Create(ctx, "seller-1", validDetails())

	require.NoError(t, service.RecordView(ctx, d.ID, "", "sess-1"))

	viewed := eventStore.AppendCalls[len(eventStore.AppendCalls)-1].Data.(DishViewed)
	assert.Equal(t, "sess-1", viewed.SessionID)
}

func TestService_RecordView_Anonymous(t *testing.T) {
	service, _ := newTestDishService()

	err := service.RecordView(context.Background(), "dish-1", "", "")

	assert.ErrorIs(t, err, ErrAnonymousViewer)
}

func TestService_RecordView_SnapshotsEveryTenEvents(t *testing.T) {
	service, eventStore := newTestDishService()
	ctx := context.Background()
	d, _ := service.Create(ctx, "seller-1", validDetails())

	for i := 0; i < 9; i++ {
		require.NoError(t, service.RecordView(ctx, d.ID, "user-1", ""))
	}

	require.Len(t, eventStore.SaveSnapshotCalls, 1)
	assert.Equal(t, 10, eventStore.SaveSnapshotCalls[0].Version)

	loaded, err := service.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Masala Dosa", loaded.Details.Name)
}

func TestPopularityWeight(t *testing.T) {
	assert.Equal(t, 1, PopularityWeight(SignalView))
	assert.Equal(t, 2, PopularityWeight(SignalCartAdd))
	assert.Equal(t, 5, PopularityWeight(SignalOrder))
	assert.Equal(t, 0, PopularityWeight(Signal("share")))
}
