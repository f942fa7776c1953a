package user

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/example/tastesphere/internal/clock"
	"github.com/example/tastesphere/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService() (*Service, *mocks.MockEventStore) {
	eventStore := mocks.NewMockEventStore()
	service := NewService(eventStore, clock.Fixed(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)))
	return service, eventStore
}

func registerTestUser(t *testing.T, service *Service) *User {
	t.Helper()
	u, err := service.Register(context.Background(), "user-1", "Asha", "asha@example.com", "+91-9000000000")
	require.NoError(t, err)
	return u
}

// ============================================
// Email Validation Tests
// ============================================

func TestIsValidEmail_ValidEmails(t *testing.T) {
	validEmails := []string{
		"test@example.com",
		"user.name@domain.org",
		"user+tag@example.com",
		"user123@test.co.jp",
		"a@b.cd",
		"user_name@domain.com",
		"USER@EXAMPLE.COM",
		"test@subdomain.example.com",
	}

	for _, email := range validEmails {
		t.Run(email, func(t *testing.T) {
			assert.True(t, isValidEmail(email), "Expected %s to be valid", email)
		})
	}
}

func TestIsValidEmail_InvalidEmails(t *testing.T) {
	invalidEmails := []string{
		"",
		"notanemail",
		"@example.com",
		"user@",
		"user@.com",
		"user@domain",
		"user@domain.",
		"user space@example.com",
		"user@exam ple.com",
		strings.Repeat("a", 250) + "@example.com",
	}

	for _, email := range invalidEmails {
		t.Run(email, func(t *testing.T) {
			assert.False(t, isValidEmail(email), "Expected %s to be invalid", email)
		})
	}
}

// ============================================
// Register Tests
// ============================================

func TestService_Register_Success(t *testing.T) {
	service, eventStore := newTestUserService()

	u := registerTestUser(t, service)

	assert.Equal(t, "user-1", u.ID)
	assert.Equal(t, "asha@example.com", u.Email)
	assert.Equal(t, 1, u.Version)

	require.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, EventUserCreated, eventStore.AppendCalls[0].EventType)
	assert.Equal(t, 0, eventStore.AppendCalls[0].ExpectedVersion)
}

func TestService_Register_GeneratesID(t *testing.T) {
	service, _ := newTestUserService()

	u, err := service.Register(context.Background(), "", "Ravi", "ravi@example.com", "")

	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
}

func TestService_Register_Duplicate(t *testing.T) {
	service, _ := newTestUserService()
	registerTestUser(t, service)

	_, err := service.Register(context.Background(), "user-1", "Asha", "asha@example.com", "")

	assert.ErrorIs(t, err, ErrUserExists)
}

func TestService_Register_Validation(t *testing.T) {
	service, eventStore := newTestUserService()
	ctx := context.Background()

	_, err := service.Register(ctx, "u", "", "a@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = service.Register(ctx, "u", "Name", "bad", "")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	assert.Empty(t, eventStore.AppendCalls)
}

// ============================================
// Profile / Preferences Tests
// ============================================

func TestService_UpdateProfile(t *testing.T) {
	service, _ := newTestUserService()
	registerTestUser(t, service)

	u, err := service.UpdateProfile(context.Background(), "user-1", "Asha K", "asha.k@example.com", "")

	require.NoError(t, err)
	assert.Equal(t, "Asha K", u.Name)
	assert.Equal(t, "asha.k@example.com", u.Email)
	assert.Equal(t, 2, u.Version)
}

func TestService_UpdateProfile_NotFound(t *testing.T) {
	service, _ := newTestUserService()

	_, err := service.UpdateProfile(context.Background(), "missing", "Name", "n@example.com", "")

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_UpdatePreferences_Normalizes(t *testing.T) {
	service, _ := newTestUserService()
	registerTestUser(t, service)

	u, err := service.UpdatePreferences(context.Background(), "user-1", Preferences{
		Cuisines:   []string{" Indian", "italian", "indian", ""},
		Dietary:    "Veg ",
		SpiceLevel: "HOT",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"indian", "italian"}, u.Preferences.Cuisines)
	assert.Equal(t, "veg", u.Preferences.Dietary)
	assert.Equal(t, "hot", u.Preferences.SpiceLevel)

	reloaded, err := service.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, u.Preferences, reloaded.Preferences)
}

// ============================================
// Wishlist Tests
// ============================================

func TestService_Wishlist(t *testing.T) {
	service, _ := newTestUserService()
	ctx := context.Background()
	registerTestUser(t, service)

	_, err := service.AddToWishlist(ctx, "user-1", "dish-1")
	require.NoError(t, err)
	u, err := service.AddToWishlist(ctx, "user-1", "dish-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"dish-1", "dish-2"}, u.Wishlist)

	_, err = service.AddToWishlist(ctx, "user-1", "dish-1")
	assert.ErrorIs(t, err, ErrAlreadyInWishlist)

	u, err = service.RemoveFromWishlist(ctx, "user-1", "dish-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"dish-2"}, u.Wishlist)

	_, err = service.RemoveFromWishlist(ctx, "user-1", "dish-1")
	assert.ErrorIs(t, err, ErrNotInWishlist)

	_, err = service.AddToWishlist(ctx, "user-1", "")
	assert.ErrorIs(t, err, ErrInvalidDish)
}
