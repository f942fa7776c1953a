package dish

import "time"

const (
	EventDishCreated       = "DishCreated"
	EventDishUpdated       = "DishUpdated"
	EventDishStatusChanged = "DishStatusChanged"
	EventDishViewed        = "DishViewed"
)

// Details are the seller-editable attributes of a dish.
type Details struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Cuisine     string  `json:"cuisine"`
	DietaryType string  `json:"dietary_type"`
	SpiceLevel  string  `json:"spice_level"`
	Price       float64 `json:"price"`
}

type DishCreated struct {
	DishID    string    `json:"dish_id"`
	SellerID  string    `json:"seller_id"`
	Details   Details   `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

type DishUpdated struct {
	DishID    string    `json:"dish_id"`
	Details   Details   `json:"details"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DishStatusChanged struct {
	DishID    string    `json:"dish_id"`
	Status    Status    `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
}

// DishViewed is emitted for every dish page view. Exactly one of UserID and
// SessionID identifies the viewer.
type DishViewed struct {
	DishID    string    `json:"dish_id"`
	SellerID  string    `json:"seller_id"`
	UserID    string    `json:"user_id,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	ViewedAt  time.Time `json:"viewed_at"`
}
