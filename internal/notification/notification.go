package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/tastesphere/internal/domain/order"
	"github.com/example/tastesphere/internal/email"
)

// Role is who a notification is addressed to.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
)

// Notification is one (order, status, recipient role) message.
type Notification struct {
	OrderID       string
	Status        order.Status
	RecipientRole Role
	RecipientID   string
	// Email is empty when no contact is known; dispatchers that need it skip.
	Email      string
	Note       string
	Items      []order.OrderItem
	Total      float64
	OccurredAt time.Time
}

// Key identifies the notification for de-duplication.
func (n Notification) Key() string {
	return fmt.Sprintf("%s|%s|%s", n.OrderID, n.Status, n.RecipientRole)
}

// Recipients returns the roles notified when an order reaches status. The
// customer hears about every change; the seller hears about new orders and
// customer cancellations.
func Recipients(status order.Status) []Role {
	switch status {
	case order.StatusPendingSeller, order.StatusCancelledByUser:
		return []Role{RoleCustomer, RoleSeller}
	}
	return []Role{RoleCustomer}
}

type message struct {
	headline string
	detail   string
}

var customerMessages = map[order.Status]message{
	order.StatusPendingSeller:     {"Order received", "Your order is waiting for the seller to accept it."},
	order.StatusSellerAccepted:    {"Order accepted", "The seller accepted your order."},
	order.StatusSellerRejected:    {"Order declined", "The seller could not take your order."},
	order.StatusPaymentPending:    {"Payment pending", "Complete your payment so the kitchen can start."},
	order.StatusPaymentCompleted:  {"Payment received", "We received your payment."},
	order.StatusPreparing:         {"Your food is being prepared", "The kitchen has started on your order."},
	order.StatusReady:             {"Order ready", "Your order is packed and waiting for pickup."},
	order.StatusOutForDelivery:    {"Out for delivery", "Your order is on its way."},
	order.StatusDelivered:         {"Order delivered", "Enjoy your meal! You can rate your order now."},
	order.StatusCancelledByUser:   {"Order cancelled", "Your order was cancelled as requested."},
	order.StatusCancelledBySeller: {"Order cancelled by seller", "The seller had to cancel your order."},
}

var sellerMessages = map[order.Status]message{
	order.StatusPendingSeller:   {"New order", "A customer placed an order. Accept or reject it."},
	order.StatusCancelledByUser: {"Order cancelled by customer", "The customer cancelled this order."},
}

func messageFor(n Notification) message {
	messages := customerMessages
	if n.RecipientRole == RoleSeller {
		messages = sellerMessages
	}
	if m, ok := messages[n.Status]; ok {
		return m
	}
	return message{headline: "Order update", detail: fmt.Sprintf("Your order is now %s.", n.Status)}
}

// Dispatcher delivers a notification. Implementations must be safe to call
// again for the same notification.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}

// LogDispatcher writes notifications to the structured log.
type LogDispatcher struct {
	logger *slog.Logger
}

func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogDispatcher{logger: logger.With("component", "notification_log")}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, n Notification) error {
	d.logger.InfoContext(ctx, "notification",
		"order_id", n.OrderID,
		"status", n.Status,
		"recipient_role", n.RecipientRole,
		"recipient_id", n.RecipientID,
		"headline", messageFor(n).headline,
	)
	return nil
}

// Mailer is the subset of email.Service used for delivery.
type Mailer interface {
	SendOrderConfirmation(to, orderID string, total float64, items []email.OrderItem) error
	SendStatusUpdate(to string, update email.StatusUpdate) error
}

// EmailDispatcher mails notifications to recipients with a known address.
type EmailDispatcher struct {
	mailer Mailer
	logger *slog.Logger
}

func NewEmailDispatcher(mailer Mailer) *EmailDispatcher {
	return &EmailDispatcher{
		mailer: mailer,
		logger: slog.Default().With("component", "notification_email"),
	}
}

func (d *EmailDispatcher) Dispatch(ctx context.Context, n Notification) error {
	if n.Email == "" {
		d.logger.Debug("no email address, skipping", "order_id", n.OrderID, "recipient_id", n.RecipientID)
		return nil
	}

	if n.Status == order.StatusPendingSeller && n.RecipientRole == RoleCustomer {
		items := make([]email.OrderItem, len(n.Items))
		for i, item := range n.Items {
			items[i] = email.OrderItem{DishID: item.DishID, Name: item.Name, Quantity: item.Quantity, Price: item.Price}
		}
		return d.mailer.SendOrderConfirmation(n.Email, n.OrderID, n.Total, items)
	}

	m := messageFor(n)
	return d.mailer.SendStatusUpdate(n.Email, email.StatusUpdate{
		OrderID:         n.OrderID,
		Status:          string(n.Status),
		Headline:        m.headline,
		Detail:          m.detail,
		Note:            n.Note,
		ProgressPercent: n.Status.Progress(),
	})
}
