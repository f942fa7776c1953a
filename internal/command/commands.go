package command

import (
	"github.com/example/tastesphere/internal/domain/dish"
	"github.com/example/tastesphere/internal/domain/order"
	"github.com/example/tastesphere/internal/domain/review"
	"github.com/example/tastesphere/internal/domain/user"
)

// Dish Commands
type CreateDish struct {
	SellerID string       `json:"seller_id"`
	Details  dish.Details `json:"details"`
}

type UpdateDish struct {
	DishID   string       `json:"dish_id"`
	SellerID string       `json:"seller_id"`
	Details  dish.Details `json:"details"`
}

type SetDishStatus struct {
	DishID   string      `json:"dish_id"`
	SellerID string      `json:"seller_id"`
	Status   dish.Status `json:"status"`
}

type ViewDish struct {
	DishID    string `json:"dish_id"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// Cart Commands
type AddToCart struct {
	UserID   string `json:"user_id"`
	DishID   string `json:"dish_id"`
	Quantity int    `json:"quantity"`
}

type RemoveFromCart struct {
	UserID string `json:"user_id"`
	DishID string `json:"dish_id"`
}

type ClearCart struct {
	UserID string `json:"user_id"`
}

// Order Commands
type PlaceOrder struct {
	UserID        string `json:"user_id"`
	PaymentMethod string `json:"payment_method"`
}

type ChangeOrderStatus struct {
	OrderID string       `json:"order_id"`
	ActorID string       `json:"actor_id"`
	Status  order.Status `json:"status"`
	Note    string       `json:"note"`
}

type CancelOrder struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	Reason  string `json:"reason"`
}

type RecordPayment struct {
	OrderID       string              `json:"order_id"`
	ActorID       string              `json:"actor_id"`
	PaymentStatus order.PaymentStatus `json:"payment_status"`
}

type RateOrder struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	Rating  int    `json:"rating"`
}

// Review Commands
type CreateReview struct {
	UserID  string `json:"user_id"`
	DishID  string `json:"dish_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type UpdateReview struct {
	ReviewID string `json:"review_id"`
	UserID   string `json:"user_id"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

type ChangeReviewStatus struct {
	ReviewID  string        `json:"review_id"`
	ActorID   string        `json:"actor_id"`
	ActorRole string        `json:"actor_role"`
	Status    review.Status `json:"status"`
}

// User Commands
type RegisterUser struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
}

type UpdateProfile struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
}

type UpdatePreferences struct {
	UserID      string           `json:"user_id"`
	Preferences user.Preferences `json:"preferences"`
}

type AddToWishlist struct {
	UserID string `json:"user_id"`
	DishID string `json:"dish_id"`
}

type RemoveFromWishlist struct {
	UserID string `json:"user_id"`
	DishID string `json:"dish_id"`
}
