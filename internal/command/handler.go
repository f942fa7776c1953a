package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/tastesphere/internal/auth"
	"github.com/example/tastesphere/internal/domain/cart"
	"github.com/example/tastesphere/internal/domain/dish"
	"github.com/example/tastesphere/internal/domain/order"
	"github.com/example/tastesphere/internal/domain/review"
	"github.com/example/tastesphere/internal/domain/user"
)

var (
	// ErrForbidden is returned when the caller may not act on the aggregate.
	ErrForbidden = errors.New("caller is not allowed to perform this action")
	// ErrDishUnavailable is returned when an inactive dish is added to a cart.
	ErrDishUnavailable = errors.New("dish is not available")
)

type Handler struct {
	dishSvc   *dish.Service
	cartSvc   *cart.Service
	orderSvc  *order.Service
	reviewSvc *review.Service
	userSvc   *user.Service
	logger    *slog.Logger
}

func NewHandler(
	dishSvc *dish.Service,
	cartSvc *cart.Service,
	orderSvc *order.Service,
	reviewSvc *review.Service,
	userSvc *user.Service,
) *Handler {
	return &Handler{
		dishSvc:   dishSvc,
		cartSvc:   cartSvc,
		orderSvc:  orderSvc,
		reviewSvc: reviewSvc,
		userSvc:   userSvc,
		logger:    slog.Default().With("component", "command_handler"),
	}
}

// Read models are updated asynchronously by the projector; every command
// returns the aggregate state the write side holds after the change.

func (h *Handler) CreateDish(ctx context.Context, cmd CreateDish) (*dish.Dish, error) {
	return h.dishSvc.Create(ctx, cmd.SellerID, cmd.Details)
}

func (h *Handler) UpdateDish(ctx context.Context, cmd UpdateDish) (*dish.Dish, error) {
	return h.dishSvc.Update(ctx, cmd.DishID, cmd.SellerID, cmd.Details)
}

func (h *Handler) SetDishStatus(ctx context.Context, cmd SetDishStatus) (*dish.Dish, error) {
	return h.dishSvc.SetStatus(ctx, cmd.DishID, cmd.SellerID, cmd.Status)
}

// ViewDish records a view signal for the dish.
func (h *Handler) ViewDish(ctx context.Context, cmd ViewDish) error {
	return h.dishSvc.RecordView(ctx, cmd.DishID, cmd.UserID, cmd.SessionID)
}

// AddToCart adds a dish at its current catalog price.
func (h *Handler) AddToCart(ctx context.Context, cmd AddToCart) (*cart.Cart, error) {
	d, err := h.dishSvc.Get(ctx, cmd.DishID)
	if err != nil {
		return nil, err
	}
	if d.Status != dish.StatusActive {
		return nil, ErrDishUnavailable
	}

	return h.cartSvc.AddItem(ctx, cmd.UserID, cart.CartItem{
		DishID:   d.ID,
		SellerID: d.SellerID,
		Name:     d.Details.Name,
		Quantity: cmd.Quantity,
		Price:    d.Details.Price,
	})
}

func (h *Handler) RemoveFromCart(ctx context.Context, cmd RemoveFromCart) (*cart.Cart, error) {
	return h.cartSvc.RemoveItem(ctx, cmd.UserID, cmd.DishID)
}

func (h *Handler) ClearCart(ctx context.Context, cmd ClearCart) error {
	return h.cartSvc.Clear(ctx, cmd.UserID)
}

func (h *Handler) GetCart(ctx context.Context, userID string) (*cart.Cart, error) {
	return h.cartSvc.Get(ctx, userID)
}

// PlaceOrder checks out the user's cart. All items must come from one
// seller. The cart is cleared once the order is stored; a failure to clear
// is logged and does not fail the checkout.
func (h *Handler) PlaceOrder(ctx context.Context, cmd PlaceOrder) (*order.Order, error) {
	c, err := h.cartSvc.Get(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	sellerID, err := c.SellerID()
	if errors.Is(err, cart.ErrEmptyCart) {
		return nil, order.ErrEmptyOrder
	}
	if err != nil {
		return nil, err
	}

	items := make([]order.OrderItem, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, order.OrderItem{
			DishID:   item.DishID,
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	o, err := h.orderSvc.Place(ctx, cmd.UserID, sellerID, items, cmd.PaymentMethod)
	if err != nil {
		return nil, err
	}

	if err := h.cartSvc.Clear(ctx, cmd.UserID); err != nil {
		h.logger.Warn("failed to clear cart after checkout", "user_id", cmd.UserID, "order_id", o.ID, "error", err)
	}
	return o, nil
}

// ChangeOrderStatus applies a status change requested by the seller.
// Customers use CancelOrder.
func (h *Handler) ChangeOrderStatus(ctx context.Context, cmd ChangeOrderStatus) (*order.Order, error) {
	if !cmd.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", order.ErrInvalidTransition, cmd.Status)
	}
	if cmd.Status == order.StatusCancelledByUser {
		return h.CancelOrder(ctx, CancelOrder{OrderID: cmd.OrderID, UserID: cmd.ActorID, Reason: cmd.Note})
	}

	o, err := h.orderSvc.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if o.SellerID != cmd.ActorID {
		return nil, ErrForbidden
	}
	return h.orderSvc.Transition(ctx, cmd.OrderID, cmd.Status, cmd.ActorID, cmd.Note)
}

func (h *Handler) CancelOrder(ctx context.Context, cmd CancelOrder) (*order.Order, error) {
	o, err := h.orderSvc.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != cmd.UserID {
		return nil, ErrForbidden
	}
	return h.orderSvc.Transition(ctx, cmd.OrderID, order.StatusCancelledByUser, cmd.UserID, cmd.Reason)
}

// RecordPayment may be issued by either party to the order.
func (h *Handler) RecordPayment(ctx context.Context, cmd RecordPayment) (*order.Order, error) {
	o, err := h.orderSvc.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != cmd.ActorID && o.SellerID != cmd.ActorID {
		return nil, ErrForbidden
	}
	return h.orderSvc.RecordPayment(ctx, cmd.OrderID, cmd.PaymentStatus)
}

func (h *Handler) RateOrder(ctx context.Context, cmd RateOrder) (*order.Order, error) {
	return h.orderSvc.Rate(ctx, cmd.OrderID, cmd.UserID, cmd.Rating)
}

// CreateReview reviews a dish; the seller is taken from the catalog.
func (h *Handler) CreateReview(ctx context.Context, cmd CreateReview) (*review.Review, error) {
	d, err := h.dishSvc.Get(ctx, cmd.DishID)
	if err != nil {
		return nil, err
	}
	return h.reviewSvc.Create(ctx, cmd.UserID, d.ID, d.SellerID, cmd.Rating, cmd.Comment)
}

func (h *Handler) UpdateReview(ctx context.Context, cmd UpdateReview) (*review.Review, error) {
	return h.reviewSvc.Update(ctx, cmd.ReviewID, cmd.UserID, cmd.Rating, cmd.Comment)
}

// ChangeReviewStatus moderates a review. Anyone may report a review and its
// author may delete it; every other change needs an admin.
func (h *Handler) ChangeReviewStatus(ctx context.Context, cmd ChangeReviewStatus) (*review.Review, error) {
	r, err := h.reviewSvc.Get(ctx, cmd.ReviewID)
	if err != nil {
		return nil, err
	}
	if !canModerate(r, cmd) {
		return nil, ErrForbidden
	}
	return h.reviewSvc.ChangeStatus(ctx, cmd.ReviewID, cmd.Status, cmd.ActorID)
}

func canModerate(r *review.Review, cmd ChangeReviewStatus) bool {
	switch {
	case cmd.ActorRole == auth.RoleAdmin:
		return true
	case cmd.Status == review.StatusReported:
		return cmd.ActorID != ""
	case cmd.Status == review.StatusDeleted:
		return r.UserID == cmd.ActorID
	default:
		return false
	}
}

func (h *Handler) RegisterUser(ctx context.Context, cmd RegisterUser) (*user.User, error) {
	return h.userSvc.Register(ctx, cmd.UserID, cmd.Name, cmd.Email, cmd.Phone)
}

func (h *Handler) UpdateProfile(ctx context.Context, cmd UpdateProfile) (*user.User, error) {
	return h.userSvc.UpdateProfile(ctx, cmd.UserID, cmd.Name, cmd.Email, cmd.Phone)
}

func (h *Handler) UpdatePreferences(ctx context.Context, cmd UpdatePreferences) (*user.User, error) {
	return h.userSvc.UpdatePreferences(ctx, cmd.UserID, cmd.Preferences)
}

// AddToWishlist only accepts dishes that exist in the catalog.
func (h *Handler) AddToWishlist(ctx context.Context, cmd AddToWishlist) (*user.User, error) {
	if _, err := h.dishSvc.Get(ctx, cmd.DishID); err != nil {
		return nil, err
	}
	return h.userSvc.AddToWishlist(ctx, cmd.UserID, cmd.DishID)
}

func (h *Handler) RemoveFromWishlist(ctx context.Context, cmd RemoveFromWishlist) (*user.User, error) {
	return h.userSvc.RemoveFromWishlist(ctx, cmd.UserID, cmd.DishID)
}
