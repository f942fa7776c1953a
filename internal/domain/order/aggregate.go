package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/tastesphere/internal/infrastructure/store"
)

const AggregateType = "Order"

var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrEmptyOrder             = errors.New("order must have at least one item")
	ErrInvalidItem            = errors.New("order item must have a dish, a positive quantity and a non-negative price")
	ErrInvalidTransition      = errors.New("invalid order status transition")
	ErrConcurrentModification = errors.New("order was modified concurrently")
	ErrCannotRate             = errors.New("order cannot be rated")
	ErrInvalidRating          = errors.New("rating must be between 1 and 5")
	ErrInvalidPaymentStatus   = errors.New("invalid payment status")
	ErrNotOrderOwner          = errors.New("order belongs to another user")
)

// TransitionError describes a rejected status change.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	if e.From.IsTerminal() {
		return fmt.Sprintf("%s: order is %s (terminal)", ErrInvalidTransition, e.From)
	}
	return fmt.Sprintf("%s: cannot transition from %s to %s", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// TimelineEntry records one status change.
type TimelineEntry struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Note      string    `json:"note,omitempty"`
}

type Order struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"user_id"`
	SellerID           string          `json:"seller_id"`
	Status             Status          `json:"status"`
	PaymentStatus      PaymentStatus   `json:"payment_status"`
	PaymentMethod      string          `json:"payment_method"`
	Items              []OrderItem     `json:"items"`
	TotalAmount        float64         `json:"total_amount"`
	Timeline           []TimelineEntry `json:"timeline"`
	ActualDeliveryTime *time.Time      `json:"actual_delivery_time,omitempty"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	CancelledBy        string          `json:"cancelled_by,omitempty"`
	Rating             int             `json:"rating,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Version            int             `json:"version"` // Current event version
}

// Aggregate interface implementation
func (o *Order) GetID() string    { return o.ID }
func (o *Order) GetVersion() int  { return o.Version }
func (o *Order) SetVersion(v int) { o.Version = v }

// CanTransitionTo checks if the order can transition to the target status
func (o *Order) CanTransitionTo(target Status) bool {
	if o.Status.IsTerminal() {
		return false
	}
	if target == StatusCancelledByUser && o.CanCancel() {
		return true
	}
	for _, s := range validTransitions[o.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// CanCancel reports whether the customer may still cancel.
func (o *Order) CanCancel() bool { return cancellableStatuses[o.Status] }

// CanRate reports whether the order is delivered and not yet rated.
func (o *Order) CanRate() bool { return o.Status == StatusDelivered && o.Rating == 0 }

func (o *Order) IsTerminal() bool { return o.Status.IsTerminal() }

func (o *Order) ProgressPercent() int { return o.Status.Progress() }

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = append([]OrderItem(nil), o.Items...)
	c.Timeline = append([]TimelineEntry(nil), o.Timeline...)
	if o.ActualDeliveryTime != nil {
		t := *o.ActualDeliveryTime
		c.ActualDeliveryTime = &t
	}
	return &c
}

// ApplyTransition moves o to target, recording actor and note on the
// timeline at the given instant. A timestamp earlier than the last timeline
// entry is clamped to it. On error o is left unchanged.
func ApplyTransition(o *Order, target Status, actor, note string, at time.Time) error {
	if !o.CanTransitionTo(target) {
		return &TransitionError{From: o.Status, To: target}
	}
	if n := len(o.Timeline); n > 0 && at.Before(o.Timeline[n-1].Timestamp) {
		at = o.Timeline[n-1].Timestamp
	}
	o.recordTransition(target, actor, note, at)
	return nil
}

func (o *Order) recordTransition(target Status, actor, note string, at time.Time) {
	o.Timeline = append(o.Timeline, TimelineEntry{
		Status:    target,
		Timestamp: at,
		Actor:     actor,
		Note:      note,
	})
	o.Status = target
	o.UpdatedAt = at

	switch {
	case target == StatusDelivered:
		if o.ActualDeliveryTime == nil {
			t := at
			o.ActualDeliveryTime = &t
		}
	case target.IsCancelled():
		if o.CancelledBy == "" {
			o.CancelledBy = actor
			o.CancellationReason = note
		}
	case target == StatusPaymentCompleted:
		o.PaymentStatus = PaymentCompleted
	}
}

// ApplyEvent applies a single event to the order state (implements aggregate.Aggregate)
func (o *Order) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventOrderPlaced:
		var data OrderPlaced
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.ID = data.OrderID
		o.UserID = data.UserID
		o.SellerID = data.SellerID
		o.Items = data.Items
		o.TotalAmount = data.TotalAmount
		o.PaymentMethod = data.PaymentMethod
		o.PaymentStatus = PaymentPending
		o.Status = StatusPendingSeller
		o.Timeline = []TimelineEntry{{
			Status:    StatusPendingSeller,
			Timestamp: data.PlacedAt,
			Actor:     data.UserID,
		}}
		o.CreatedAt = data.PlacedAt
		o.UpdatedAt = data.PlacedAt
	case EventOrderStatusChanged:
		var data OrderStatusChanged
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.recordTransition(data.To, data.Actor, data.Note, data.ChangedAt)
	case EventPaymentRecorded:
		var data PaymentRecorded
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.PaymentStatus = data.PaymentStatus
		o.UpdatedAt = data.RecordedAt
	case EventOrderRated:
		var data OrderRated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Rating = data.Rating
		o.UpdatedAt = data.RatedAt
	}
	o.Version = event.Version
	return nil
}
