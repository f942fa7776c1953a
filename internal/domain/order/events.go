package order

import "time"

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventPaymentRecorded    = "OrderPaymentRecorded"
	EventOrderRated         = "OrderRated"
)

type OrderItem struct {
	DishID   string  `json:"dish_id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type OrderPlaced struct {
	OrderID       string      `json:"order_id"`
	UserID        string      `json:"user_id"`
	SellerID      string      `json:"seller_id"`
	Items         []OrderItem `json:"items"`
	TotalAmount   float64     `json:"total_amount"`
	PaymentMethod string      `json:"payment_method"`
	PlacedAt      time.Time   `json:"placed_at"`
}

// OrderStatusChanged carries the customer and seller so consumers can
// address notifications without loading the order.
type OrderStatusChanged struct {
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	SellerID  string    `json:"seller_id"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	Actor     string    `json:"actor"`
	Note      string    `json:"note,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

type PaymentRecorded struct {
	OrderID       string        `json:"order_id"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	RecordedAt    time.Time     `json:"recorded_at"`
}

type OrderRated struct {
	OrderID string    `json:"order_id"`
	UserID  string    `json:"user_id"`
	Rating  int       `json:"rating"`
	RatedAt time.Time `json:"rated_at"`
}
