package user

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/example/tastesphere/internal/clock"
	"github.com/example/tastesphere/internal/domain/aggregate"
	"github.com/example/tastesphere/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "User"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user already exists")
	ErrInvalidEmail      = errors.New("a valid email is required")
	ErrInvalidName       = errors.New("name is required")
	ErrInvalidDish       = errors.New("dish id is required")
	ErrAlreadyInWishlist = errors.New("dish already in wishlist")
	ErrNotInWishlist     = errors.New("dish not in wishlist")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9\-]+(\.[a-zA-Z0-9\-]+)*\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return len(email) <= 254 && emailPattern.MatchString(email)
}

// User is a customer profile: contact details for notifications, plus
// preferences and wishlist for recommendations.
type User struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	Preferences Preferences `json:"preferences"`
	Wishlist    []string    `json:"wishlist"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Version     int         `json:"version"`
}

func (u *User) GetID() string    { return u.ID }
func (u *User) GetVersion() int  { return u.Version }
func (u *User) SetVersion(v int) { u.Version = v }

func (u *User) InWishlist(dishID string) bool { return slices.Contains(u.Wishlist, dishID) }

// ApplyEvent applies a single event to the user state (implements aggregate.Aggregate)
func (u *User) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventUserCreated:
		var data UserCreated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		u.ID = data.UserID
		u.Name = data.Name
		u.Email = data.Email
		u.Phone = data.Phone
		u.CreatedAt = data.CreatedAt
		u.UpdatedAt = data.CreatedAt
	case EventUserUpdated:
		var data UserUpdated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		u.Name = data.Name
		u.Email = data.Email
		u.Phone = data.Phone
		u.UpdatedAt = data.UpdatedAt
	case EventPreferencesUpdated:
		var data PreferencesUpdated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		u.Preferences = data.Preferences
		u.UpdatedAt = data.UpdatedAt
	case EventWishlistItemAdded:
		var data WishlistItemAdded
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if !u.InWishlist(data.DishID) {
			u.Wishlist = append(u.Wishlist, data.DishID)
		}
		u.UpdatedAt = data.AddedAt
	case EventWishlistItemRemoved:
		var data WishlistItemRemoved
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		u.Wishlist = slices.DeleteFunc(u.Wishlist, func(id string) bool { return id == data.DishID })
		u.UpdatedAt = data.RemovedAt
	}
	u.Version = event.Version
	return nil
}

// Service handles user domain operations
type Service struct {
	eventStore store.EventStoreInterface
	clock      clock.Clock
	logger     *slog.Logger
}

// NewService creates a new user service
func NewService(es store.EventStoreInterface, c clock.Clock) *Service {
	if c == nil {
		c = clock.System
	}
	return &Service{
		eventStore: es,
		clock:      c,
		logger:     slog.Default().With("component", "user_service"),
	}
}

func (s *Service) load(ctx context.Context, userID string) (*User, error) {
	u, found, err := aggregate.LoadAggregate(ctx, s.eventStore, userID, func() *User {
		return &User{}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// Get returns the current profile.
func (s *Service) Get(ctx context.Context, userID string) (*User, error) {
	return s.load(ctx, userID)
}

// Register creates a profile. Identity is issued elsewhere, so the caller
// usually supplies the id; an empty id gets a fresh uuid.
func (s *Service) Register(ctx context.Context, userID, name, email, phone string) (*User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if userID == "" {
		userID = uuid.New().String()
	}

	event := UserCreated{
		UserID:    userID,
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: s.clock.Now(),
	}

	stored, err := s.eventStore.Append(ctx, userID, AggregateType, EventUserCreated, 0, event)
	if errors.Is(err, store.ErrVersionConflict) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, err
	}

	u := &User{}
	if err := u.ApplyEvent(*stored); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateProfile updates user contact information
func (s *Service) UpdateProfile(ctx context.Context, userID, name, email, phone string) (*User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	return s.apply(ctx, userID, func(u *User) (string, any, error) {
		return EventUserUpdated, UserUpdated{
			UserID:    userID,
			Name:      name,
			Email:     email,
			Phone:     phone,
			UpdatedAt: s.clock.Now(),
		}, nil
	})
}

func (s *Service) UpdatePreferences(ctx context.Context, userID string, prefs Preferences) (*User, error) {
	prefs.Cuisines = normalize(prefs.Cuisines)
	prefs.Dietary = strings.ToLower(strings.TrimSpace(prefs.Dietary))
	prefs.SpiceLevel = strings.ToLower(strings.TrimSpace(prefs.SpiceLevel))
	return s.apply(ctx, userID, func(u *User) (string, any, error) {
		return EventPreferencesUpdated, PreferencesUpdated{
			UserID:      userID,
			Preferences: prefs,
			UpdatedAt:   s.clock.Now(),
		}, nil
	})
}

func (s *Service) AddToWishlist(ctx context.Context, userID, dishID string) (*User, error) {
	if dishID == "" {
		return nil, ErrInvalidDish
	}
	return s.apply(ctx, userID, func(u *User) (string, any, error) {
		if u.InWishlist(dishID) {
			return "", nil, ErrAlreadyInWishlist
		}
		return EventWishlistItemAdded, WishlistItemAdded{UserID: userID, DishID: dishID, AddedAt: s.clock.Now()}, nil
	})
}

func (s *Service) RemoveFromWishlist(ctx context.Context, userID, dishID string) (*User, error) {
	return s.apply(ctx, userID, func(u *User) (string, any, error) {
		if !u.InWishlist(dishID) {
			return "", nil, ErrNotInWishlist
		}
		return EventWishlistItemRemoved, WishlistItemRemoved{UserID: userID, DishID: dishID, RemovedAt: s.clock.Now()}, nil
	})
}

func (s *Service) apply(ctx context.Context, userID string, decide func(u *User) (string, any, error)) (*User, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	eventType, data, err := decide(u)
	if err != nil {
		return nil, err
	}

	stored, err := s.eventStore.Append(ctx, userID, AggregateType, eventType, u.Version, data)
	if err != nil {
		return nil, err
	}
	if err := u.ApplyEvent(*stored); err != nil {
		return nil, err
	}
	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, u, AggregateType); err != nil {
		s.logger.Warn("failed to create snapshot", "user_id", userID, "error", err)
	}
	return u, nil
}

// normalize lower-cases, trims and de-duplicates while keeping order.
func normalize(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
