package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/tastesphere/internal/clock"
	"github.com/example/tastesphere/internal/domain/aggregate"
	"github.com/example/tastesphere/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Review"

type Status string

const (
	StatusActive   Status = "active"
	StatusHidden   Status = "hidden"
	StatusReported Status = "reported"
	StatusDeleted  Status = "deleted"
)

var validTransitions = map[Status][]Status{
	StatusActive:   {StatusHidden, StatusReported, StatusDeleted},
	StatusHidden:   {StatusActive, StatusDeleted},
	StatusReported: {StatusActive, StatusHidden, StatusDeleted},
	StatusDeleted:  {}, // terminal state
}

var (
	ErrReviewNotFound          = errors.New("review not found")
	ErrDuplicateReview         = errors.New("user already reviewed this dish")
	ErrInvalidRating           = errors.New("rating must be between 1 and 5")
	ErrInvalidStatusTransition = errors.New("invalid review status transition")
	ErrNotReviewAuthor         = errors.New("review belongs to another user")
	ErrReviewDeleted           = errors.New("review is deleted")
)

// reviewNamespace scopes the name-based review ids.
var reviewNamespace = uuid.MustParse("8b0f8c1e-4f2a-5d4e-9c8b-2a7d6e5f4c3b")

// ReviewID derives the id of the single review a user may leave on a dish.
func ReviewID(userID, dishID string) string {
	return uuid.NewSHA1(reviewNamespace, []byte(userID+"|"+dishID)).String()
}

type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	DishID    string    `json:"dish_id"`
	SellerID  string    `json:"seller_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

func (r *Review) GetID() string    { return r.ID }
func (r *Review) GetVersion() int  { return r.Version }
func (r *Review) SetVersion(v int) { r.Version = v }

// CanTransitionTo checks if the review can move to the target status
func (r *Review) CanTransitionTo(target Status) bool {
	for _, s := range validTransitions[r.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// ApplyEvent applies a single event to the review state (implements aggregate.Aggregate)
func (r *Review) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventReviewCreated:
		var data ReviewCreated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		r.ID = data.ReviewID
		r.UserID = data.UserID
		r.DishID = data.DishID
		r.SellerID = data.SellerID
		r.Rating = data.Rating
		r.Comment = data.Comment
		r.Status = StatusActive
		r.CreatedAt = data.CreatedAt
		r.UpdatedAt = data.CreatedAt
	case EventReviewUpdated:
		var data ReviewUpdated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		r.Rating = data.Rating
		r.Comment = data.Comment
		r.UpdatedAt = data.UpdatedAt
	case EventReviewStatusChanged:
		var data ReviewStatusChanged
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		r.Status = data.To
		r.UpdatedAt = data.ChangedAt
	}
	r.Version = event.Version
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
		logger:     slog.Default().With("component", "review_service"),
	}
}

func (s *Service) load(ctx context.Context, reviewID string) (*Review, error) {
	r, found, err := aggregate.LoadAggregate(ctx, s.eventStore, reviewID, func() *Review {
		return &Review{}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrReviewNotFound
	}
	return r, nil
}

func (s *Service) Get(ctx context.Context, reviewID string) (*Review, error) {
	return s.load(ctx, reviewID)
}

// Create stores the user's review of a dish. A second review of the same
// dish by the same user fails with ErrDuplicateReview.
func (s *Service) Create(ctx context.Context, userID, dishID, sellerID string, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	event := ReviewCreated{
		ReviewID:  ReviewID(userID, dishID),
		UserID:    userID,
		DishID:    dishID,
		SellerID:  sellerID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: s.clock.Now(),
	}

	stored, err := s.eventStore.Append(ctx, event.ReviewID, AggregateType, EventReviewCreated, 0, event)
	if errors.Is(err, store.ErrVersionConflict) {
		return nil, ErrDuplicateReview
	}
	if err != nil {
		return nil, err
	}

	r := &Review{}
	if err := r.ApplyEvent(*stored); err != nil {
		return nil, err
	}
	return r, nil
}

// Update changes the rating and comment of a review owned by userID.
func (s *Service) Update(ctx context.Context, reviewID, userID string, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	r, err := s.load(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, ErrNotReviewAuthor
	}
	if r.Status == StatusDeleted {
		return nil, ErrReviewDeleted
	}

	event := ReviewUpdated{
		ReviewID:  reviewID,
		DishID:    r.DishID,
		Rating:    rating,
		Comment:   comment,
		UpdatedAt: s.clock.Now(),
	}
	return s.append(ctx, r, EventReviewUpdated, event)
}

// ChangeStatus moves the review through moderation. Deletion is a status
// change like any other so the dish rating is recomputed the same way.
func (s *Service) ChangeStatus(ctx context.Context, reviewID string, target Status, actor string) (*Review, error) {
	r, err := s.load(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !r.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidStatusTransition, r.Status, target)
	}

	event := ReviewStatusChanged{
		ReviewID:  reviewID,
		DishID:    r.DishID,
		From:      r.Status,
		To:        target,
		Actor:     actor,
		ChangedAt: s.clock.Now(),
	}
	return s.append(ctx, r, EventReviewStatusChanged, event)
}

func (s *Service) append(ctx context.Context, r *Review, eventType string, data any) (*Review, error) {
	stored, err := s.eventStore.Append(ctx, r.ID, AggregateType, eventType, r.Version, data)
	if err != nil {
		return nil, err
	}
	if err := r.ApplyEvent(*stored); err != nil {
		return nil, err
	}
	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, r, AggregateType); err != nil {
		s.logger.Warn("failed to create snapshot", "review_id", r.ID, "error", err)
	}
	return r, nil
}
