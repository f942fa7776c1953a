package dish

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/example/tastesphere/internal/clock"
	"github.com/example/tastesphere/internal/domain/aggregate"
	"github.com/example/tastesphere/internal/infrastructure/store"
	"github.com/example/tastesphere/internal/viewhistory"
	"github.com/google/uuid"
)

const AggregateType = "Dish"

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Signal is an engagement event that raises a dish's popularity.
type Signal string

const (
	SignalView    Signal = "view"
	SignalCartAdd Signal = "cart_add"
	SignalOrder   Signal = "order"
)

var popularityWeights = map[Signal]int{
	SignalView:    1,
	SignalCartAdd: 2,
	SignalOrder:   5,
}

// PopularityWeight returns how much one occurrence of the signal adds to
// the dish popularity counter.
func PopularityWeight(s Signal) int { return popularityWeights[s] }

var (
	ErrDishNotFound    = errors.New("dish not found")
	ErrInvalidName     = errors.New("name is required")
	ErrInvalidPrice    = errors.New("price must be positive")
	ErrInvalidStatus   = errors.New("invalid dish status")
	ErrNotDishOwner    = errors.New("dish belongs to another seller")
	ErrAnonymousViewer = viewhistory.ErrAnonymousViewer
)

type Dish struct {
	ID        string    `json:"id"`
	SellerID  string    `json:"seller_id"`
	Details   Details   `json:"details"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

func (d *Dish) GetID() string    { return d.ID }
func (d *Dish) GetVersion() int  { return d.Version }
func (d *Dish) SetVersion(v int) { d.Version = v }

// ApplyEvent applies a single event to the dish state (implements aggregate.Aggregate)
func (d *Dish) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventDishCreated:
		var data DishCreated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		d.ID = data.DishID
		d.SellerID = data.SellerID
		d.Details = data.Details
		d.Status = StatusActive
		d.CreatedAt = data.CreatedAt
		d.UpdatedAt = data.CreatedAt
	case EventDishUpdated:
		var data DishUpdated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		d.Details = data.Details
		d.UpdatedAt = data.UpdatedAt
	case EventDishStatusChanged:
		var data DishStatusChanged
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		d.Status = data.Status
		d.UpdatedAt = data.ChangedAt
	}
	d.Version = event.Version
	return nil
}

func validateDetails(details Details) error {
	if strings.TrimSpace(details.Name) == "" {
		return ErrInvalidName
	}
	if details.Price <= 0 {
		return ErrInvalidPrice
	}
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
		logger:     slog.Default().With("component", "dish_service"),
	}
}

func (s *Service) load(ctx context.Context, dishID string) (*Dish, error) {
	d, found, err := aggregate.LoadAggregate(ctx, s.eventStore, dishID, func() *Dish {
		return &Dish{}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrDishNotFound
	}
	return d, nil
}

// Get returns the current state of a dish.
func (s *Service) Get(ctx context.Context, dishID string) (*Dish, error) {
	return s.load(ctx, dishID)
}

func (s *Service) Create(ctx context.Context, sellerID string, details Details) (*Dish, error) {
	if err := validateDetails(details); err != nil {
		return nil, err
	}

	event := DishCreated{
		DishID:    uuid.New().String(),
		SellerID:  sellerID,
		Details:   details,
		CreatedAt: s.clock.Now(),
	}

	stored, err := s.eventStore.Append(ctx, event.DishID, AggregateType, EventDishCreated, 0, event)
	if err != nil {
		return nil, err
	}

	d := &Dish{}
	if err := d.ApplyEvent(*stored); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Update(ctx context.Context, dishID, sellerID string, details Details) (*Dish, error) {
	if err := validateDetails(details); err != nil {
		return nil, err
	}

	d, err := s.load(ctx, dishID)
	if err != nil {
		return nil, err
	}
	if d.SellerID != sellerID {
		return nil, ErrNotDishOwner
	}

	event := DishUpdated{DishID: dishID, Details: details, UpdatedAt: s.clock.Now()}
	stored, err := s.eventStore.Append(ctx, dishID, AggregateType, EventDishUpdated, d.Version, event)
	if err != nil {
		return nil, err
	}
	if err := d.ApplyEvent(*stored); err != nil {
		return nil, err
	}
	s.snapshot(ctx, d)
	return d, nil
}

func (s *Service) SetStatus(ctx context.Context, dishID, sellerID string, status Status) (*Dish, error) {
	if status != StatusActive && status != StatusInactive {
		return nil, ErrInvalidStatus
	}

	d, err := s.load(ctx, dishID)
	if err != nil {
		return nil, err
	}
	if d.SellerID != sellerID {
		return nil, ErrNotDishOwner
	}
	if d.Status == status {
		return d, nil
	}

	event := DishStatusChanged{DishID: dishID, Status: status, ChangedAt: s.clock.Now()}
	stored, err := s.eventStore.Append(ctx, dishID, AggregateType, EventDishStatusChanged, d.Version, event)
	if err != nil {
		return nil, err
	}
	if err := d.ApplyEvent(*stored); err != nil {
		return nil, err
	}
	s.snapshot(ctx, d)
	return d, nil
}

// RecordView appends a view signal. Views do not compete with catalog
// edits, so they skip the version check.
func (s *Service) RecordView(ctx context.Context, dishID, userID, sessionID string) error {
	if userID == "" && sessionID == "" {
		return ErrAnonymousViewer
	}

	d, err := s.load(ctx, dishID)
	if err != nil {
		return err
	}

	event := DishViewed{
		DishID:   dishID,
		SellerID: d.SellerID,
		UserID:   userID,
		ViewedAt: s.clock.Now(),
	}
	if userID == "" {
		event.SessionID = sessionID
	}

	stored, err := s.eventStore.Append(ctx, dishID, AggregateType, EventDishViewed, store.AnyVersion, event)
	if err != nil {
		return err
	}
	d.Version = stored.Version
	s.snapshot(ctx, d)
	return nil
}

func (s *Service) snapshot(ctx context.Context, d *Dish) {
	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, d, AggregateType); err != nil {
		s.logger.Warn("failed to create snapshot", "dish_id", d.ID, "error", err)
	}
}
