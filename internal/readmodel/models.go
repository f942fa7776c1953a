package readmodel

import "time"

// Collection names used in the read store
const (
	CollectionOrders        = "orders"
	CollectionDishes        = "dishes"
	CollectionReviews       = "reviews"
	CollectionUsers         = "users"
	CollectionCarts         = "carts"
	CollectionViewHistory   = "view_history"
	CollectionNotifications = "notifications_sent"
	CollectionProcessed     = "processed_events"
)

// NewForCollection returns a pointer to an empty read model for the
// collection, used by stores that decode persisted JSON.
func NewForCollection(collection string) (any, bool) {
	switch collection {
	case CollectionOrders:
		return &OrderReadModel{}, true
	case CollectionDishes:
		return &DishReadModel{}, true
	case CollectionReviews:
		return &ReviewReadModel{}, true
	case CollectionUsers:
		return &UserReadModel{}, true
	case CollectionCarts:
		return &CartReadModel{}, true
	case CollectionViewHistory:
		return &ViewHistoryReadModel{}, true
	case CollectionNotifications:
		return &NotificationReadModel{}, true
	case CollectionProcessed:
		return &ProcessedEventReadModel{}, true
	}
	return nil, false
}

// OrderItemReadModel represents an item in an order
type OrderItemReadModel struct {
	DishID   string  `json:"dish_id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// TimelineEntryReadModel is one recorded status change
type TimelineEntryReadModel struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Note      string    `json:"note,omitempty"`
}

// OrderReadModel is the read model for orders
type OrderReadModel struct {
	ID                 string                   `json:"id"`
	UserID             string                   `json:"user_id"`
	SellerID           string                   `json:"seller_id"`
	Items              []OrderItemReadModel     `json:"items"`
	TotalAmount        float64                  `json:"total_amount"`
	Status             string                   `json:"status"`
	PaymentStatus      string                   `json:"payment_status"`
	PaymentMethod      string                   `json:"payment_method"`
	Timeline           []TimelineEntryReadModel `json:"timeline"`
	ProgressPercent    int                      `json:"progress_percent"`
	ActualDeliveryTime *time.Time               `json:"actual_delivery_time,omitempty"`
	CancellationReason string                   `json:"cancellation_reason,omitempty"`
	CancelledBy        string                   `json:"cancelled_by,omitempty"`
	Rating             int                      `json:"rating,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

// RatingReadModel is the cached rating of a dish
type RatingReadModel struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// DishReadModel is the read model for catalog dishes
type DishReadModel struct {
	ID          string          `json:"id"`
	SellerID    string          `json:"seller_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Cuisine     string          `json:"cuisine"`
	DietaryType string          `json:"dietary_type"`
	SpiceLevel  string          `json:"spice_level"`
	Price       float64         `json:"price"`
	Status      string          `json:"status"`
	Rating      RatingReadModel `json:"rating"`
	Popularity  int             `json:"popularity"`
	ViewCount   int             `json:"view_count"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ReviewReadModel is the read model for reviews
type ReviewReadModel struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	DishID    string    `json:"dish_id"`
	SellerID  string    `json:"seller_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PreferencesReadModel holds a user's stated food preferences
type PreferencesReadModel struct {
	Cuisines   []string `json:"cuisines"`
	Dietary    string   `json:"dietary"`
	SpiceLevel string   `json:"spice_level"`
}

// UserReadModel is the read model for user profiles
type UserReadModel struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Email       string               `json:"email"`
	Phone       string               `json:"phone,omitempty"`
	Preferences PreferencesReadModel `json:"preferences"`
	Wishlist    []string             `json:"wishlist"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// CartItemReadModel represents an item in the cart
type CartItemReadModel struct {
	DishID   string  `json:"dish_id"`
	SellerID string  `json:"seller_id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// CartReadModel is the read model for shopping carts
type CartReadModel struct {
	ID     string              `json:"id"`
	UserID string              `json:"user_id"`
	Items  []CartItemReadModel `json:"items"`
	Total  float64             `json:"total"`
}

// ViewHistoryReadModel is one coalesced dish view
type ViewHistoryReadModel struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	DishID    string    `json:"dish_id"`
	ViewedAt  time.Time `json:"viewed_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NotificationReadModel records a dispatched notification
type NotificationReadModel struct {
	Key           string    `json:"key"`
	OrderID       string    `json:"order_id"`
	Status        string    `json:"status"`
	RecipientRole string    `json:"recipient_role"`
	RecipientID   string    `json:"recipient_id"`
	SentAt        time.Time `json:"sent_at"`
}

// ProcessedEventReadModel marks an event the projector has applied
type ProcessedEventReadModel struct {
	EventID     string    `json:"event_id"`
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	ProcessedAt time.Time `json:"processed_at"`
}
