package review

import "time"

const (
	EventReviewCreated       = "ReviewCreated"
	EventReviewUpdated       = "ReviewUpdated"
	EventReviewStatusChanged = "ReviewStatusChanged"
)

type ReviewCreated struct {
	ReviewID  string    `json:"review_id"`
	UserID    string    `json:"user_id"`
	DishID    string    `json:"dish_id"`
	SellerID  string    `json:"seller_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type ReviewUpdated struct {
	ReviewID  string    `json:"review_id"`
	DishID    string    `json:"dish_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ReviewStatusChanged struct {
	ReviewID  string    `json:"review_id"`
	DishID    string    `json:"dish_id"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	Actor     string    `json:"actor"`
	ChangedAt time.Time `json:"changed_at"`
}
