package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/example/tastesphere/internal/clock"
	"github.com/example/tastesphere/internal/domain/aggregate"
	"github.com/example/tastesphere/internal/infrastructure/store"
)

const AggregateType = "Cart"

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidDish     = errors.New("dish_id is required")
	ErrItemNotInCart   = errors.New("dish is not in the cart")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrMixedSellers    = errors.New("cart holds dishes from more than one seller")
)

type CartItem struct {
	DishID   string  `json:"dish_id"`
	SellerID string  `json:"seller_id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Cart keeps items in the order they were first added.
type Cart struct {
	ID      string     `json:"id"`
	UserID  string     `json:"user_id"`
	Items   []CartItem `json:"items"`
	Version int        `json:"version"`
}

// GetCartID returns the cart ID for a user
func GetCartID(userID string) string {
	return "cart-" + userID
}

func (c *Cart) GetID() string    { return c.ID }
func (c *Cart) GetVersion() int  { return c.Version }
func (c *Cart) SetVersion(v int) { c.Version = v }

func (c *Cart) indexOf(dishID string) int {
	for i, item := range c.Items {
		if item.DishID == dishID {
			return i
		}
	}
	return -1
}

// Total returns the sum of price * quantity over all items.
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// SellerID returns the single seller all items belong to.
func (c *Cart) SellerID() (string, error) {
	if len(c.Items) == 0 {
		return "", ErrEmptyCart
	}
	seller := c.Items[0].SellerID
	for _, item := range c.Items[1:] {
		if item.SellerID != seller {
			return "", ErrMixedSellers
		}
	}
	return seller, nil
}

// ApplyEvent applies a single event to the cart state (implements aggregate.Aggregate)
func (c *Cart) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventItemAdded:
		var data ItemAddedToCart
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		c.ID = data.CartID
		c.UserID = data.UserID
		// Add or update item quantity
		if i := c.indexOf(data.DishID); i >= 0 {
			c.Items[i].Quantity += data.Quantity
			c.Items[i].Price = data.Price
			c.Items[i].Name = data.Name
		} else {
			c.Items = append(c.Items, CartItem{
				DishID:   data.DishID,
				SellerID: data.SellerID,
				Name:     data.Name,
				Quantity: data.Quantity,
				Price:    data.Price,
			})
		}
	case EventItemRemoved:
		var data ItemRemovedFromCart
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if i := c.indexOf(data.DishID); i >= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
	case EventCartCleared:
		c.Items = nil
	}
	c.Version = event.Version
	return nil
}

type Service struct {
	eventStore store.EventStoreInterface
	clock      clock.Clock
	logger     *slog.Logger
}

func NewService(es store.EventStoreInterface, c clock.Clock) *Service {
	if c == nil {
		c = clock.System
	}
	return &Service{
		eventStore: es,
		clock:      c,
		logger:     slog.Default().With("component", "cart_service"),
	}
}

// Get returns the user's cart. A user without cart events has an empty cart.
func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	cartID := GetCartID(userID)
	cart, _, err := aggregate.LoadAggregate(ctx, s.eventStore, cartID, func() *Cart {
		return &Cart{ID: cartID, UserID: userID}
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) AddItem(ctx context.Context, userID string, item CartItem) (*Cart, error) {
	if item.DishID == "" {
		return nil, ErrInvalidDish
	}
	if item.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	event := ItemAddedToCart{
		CartID:   cart.ID,
		UserID:   userID,
		DishID:   item.DishID,
		SellerID: item.SellerID,
		Name:     item.Name,
		Quantity: item.Quantity,
		Price:    item.Price,
		AddedAt:  s.clock.Now(),
	}
	return s.append(ctx, cart, EventItemAdded, event)
}

func (s *Service) RemoveItem(ctx context.Context, userID, dishID string) (*Cart, error) {
	if dishID == "" {
		return nil, ErrInvalidDish
	}

	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.indexOf(dishID) < 0 {
		return nil, ErrItemNotInCart
	}

	event := ItemRemovedFromCart{
		CartID:    cart.ID,
		UserID:    userID,
		DishID:    dishID,
		RemovedAt: s.clock.Now(),
	}
	return s.append(ctx, cart, EventItemRemoved, event)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	event := CartCleared{
		CartID:    cart.ID,
		UserID:    userID,
		ClearedAt: s.clock.Now(),
	}
	_, err = s.append(ctx, cart, EventCartCleared, event)
	return err
}

func (s *Service) append(ctx context.Context, cart *Cart, eventType string, data any) (*Cart, error) {
	stored, err := s.eventStore.Append(ctx, cart.ID, AggregateType, eventType, cart.Version, data)
	if err != nil {
		return nil, err
	}
	if err := cart.ApplyEvent(*stored); err != nil {
		return nil, err
	}
	// Check if we need to create a snapshot
	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, cart, AggregateType); err != nil {
		s.logger.Warn("failed to create snapshot", "cart_id", cart.ID, "error", err)
	}
	return cart, nil
}
