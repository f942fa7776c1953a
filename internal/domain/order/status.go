package order

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPendingSeller     Status = "pending_seller"
	StatusSellerAccepted    Status = "seller_accepted"
	StatusSellerRejected    Status = "seller_rejected"
	StatusPaymentPending    Status = "payment_pending"
	StatusPaymentCompleted  Status = "payment_completed"
	StatusPreparing         Status = "preparing"
	StatusReady             Status = "ready"
	StatusOutForDelivery    Status = "out_for_delivery"
	StatusDelivered         Status = "delivered"
	StatusCancelledByUser   Status = "cancelled_by_user"
	StatusCancelledBySeller Status = "cancelled_by_seller"
)

// PaymentStatus is tracked independently of the order status.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// validTransitions defines allowed state transitions. Customer cancellation
// is governed separately by CanCancel.
var validTransitions = map[Status][]Status{
	StatusPendingSeller:    {StatusSellerAccepted, StatusSellerRejected},
	StatusSellerAccepted:   {StatusPaymentPending, StatusCancelledByUser, StatusCancelledBySeller},
	StatusPaymentPending:   {StatusPaymentCompleted},
	StatusPaymentCompleted: {StatusPreparing, StatusCancelledBySeller},
	StatusPreparing:        {StatusReady, StatusCancelledBySeller},
	StatusReady:            {StatusOutForDelivery},
	StatusOutForDelivery:   {StatusDelivered},
}

var terminalStatuses = map[Status]bool{
	StatusDelivered:         true,
	StatusSellerRejected:    true,
	StatusCancelledByUser:   true,
	StatusCancelledBySeller: true,
}

var cancellableStatuses = map[Status]bool{
	StatusPendingSeller:  true,
	StatusSellerAccepted: true,
	StatusPreparing:      true,
}

var progressPercent = map[Status]int{
	StatusPendingSeller:    10,
	StatusSellerAccepted:   25,
	StatusPaymentPending:   30,
	StatusPaymentCompleted: 40,
	StatusPreparing:        50,
	StatusReady:            70,
	StatusOutForDelivery:   85,
	StatusDelivered:        100,
}

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []Status{
	StatusPendingSeller,
	StatusSellerAccepted,
	StatusSellerRejected,
	StatusPaymentPending,
	StatusPaymentCompleted,
	StatusPreparing,
	StatusReady,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelledByUser,
	StatusCancelledBySeller,
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := progressPercent[s]
	return ok || terminalStatuses[s]
}

// IsTerminal reports whether no transition may leave s.
func (s Status) IsTerminal() bool { return terminalStatuses[s] }

// IsCancelled reports whether s ends the order without delivery.
func (s Status) IsCancelled() bool {
	return s == StatusSellerRejected || s == StatusCancelledByUser || s == StatusCancelledBySeller
}

// IsAcceptedOrLater reports whether s is only reachable after the seller
// accepted the order and is not a cancellation.
func (s Status) IsAcceptedOrLater() bool {
	switch s {
	case StatusSellerAccepted, StatusPaymentPending, StatusPaymentCompleted,
		StatusPreparing, StatusReady, StatusOutForDelivery, StatusDelivered:
		return true
	}
	return false
}

// Progress maps s to a completion percentage. Cancelled and rejected
// orders report 0.
func (s Status) Progress() int { return progressPercent[s] }

// IsValid reports whether p is a known payment status.
func (p PaymentStatus) IsValid() bool {
	return p == PaymentPending || p == PaymentCompleted || p == PaymentFailed
}
