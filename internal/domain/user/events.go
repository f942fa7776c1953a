package user

import "time"

const (
	EventUserCreated         = "UserCreated"
	EventUserUpdated         = "UserUpdated"
	EventPreferencesUpdated  = "UserPreferencesUpdated"
	EventWishlistItemAdded   = "WishlistItemAdded"
	EventWishlistItemRemoved = "WishlistItemRemoved"
)

// Preferences drive content-based recommendations.
type Preferences struct {
	Cuisines   []string `json:"cuisines"`
	Dietary    string   `json:"dietary"`
	SpiceLevel string   `json:"spice_level"`
}

// UserCreated is emitted when a profile is registered
type UserCreated struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// UserUpdated is emitted when contact details change
type UserUpdated struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PreferencesUpdated struct {
	UserID      string      `json:"user_id"`
	Preferences Preferences `json:"preferences"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type WishlistItemAdded struct {
	UserID  string    `json:"user_id"`
	DishID  string    `json:"dish_id"`
	AddedAt time.Time `json:"added_at"`
}

type WishlistItemRemoved struct {
	UserID    string    `json:"user_id"`
	DishID    string    `json:"dish_id"`
	RemovedAt time.Time `json:"removed_at"`
}
