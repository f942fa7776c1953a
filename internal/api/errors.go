package api

import (
	"errors"
	"net/http"

	"github.com/example/tastesphere/internal/analytics"
	"github.com/example/tastesphere/internal/auth"
	"github.com/example/tastesphere/internal/command"
	"github.com/example/tastesphere/internal/domain/cart"
	"github.com/example/tastesphere/internal/domain/dish"
	"github.com/example/tastesphere/internal/domain/order"
	"github.com/example/tastesphere/internal/domain/review"
	"github.com/example/tastesphere/internal/domain/user"
	"github.com/example/tastesphere/internal/infrastructure/store"
	"github.com/example/tastesphere/internal/logging"
	"github.com/example/tastesphere/internal/query"
	"github.com/example/tastesphere/internal/viewhistory"
)

// ErrInvalidParam is returned for malformed request input.
var ErrInvalidParam = errors.New("invalid parameter")

// errorStatuses maps domain errors to HTTP status codes. The first match
// wins, so more specific errors come first.
var errorStatuses = []struct {
	err    error
	status int
}{
	{order.ErrOrderNotFound, http.StatusNotFound},
	{dish.ErrDishNotFound, http.StatusNotFound},
	{review.ErrReviewNotFound, http.StatusNotFound},
	{user.ErrUserNotFound, http.StatusNotFound},
	{query.ErrNotFound, http.StatusNotFound},

	{auth.ErrNoIdentity, http.StatusUnauthorized},
	{command.ErrForbidden, http.StatusForbidden},
	{order.ErrNotOrderOwner, http.StatusForbidden},
	{dish.ErrNotDishOwner, http.StatusForbidden},
	{review.ErrNotReviewAuthor, http.StatusForbidden},

	{order.ErrInvalidTransition, http.StatusConflict},
	{order.ErrConcurrentModification, http.StatusConflict},
	{store.ErrVersionConflict, http.StatusConflict},
	{review.ErrDuplicateReview, http.StatusConflict},
	{review.ErrInvalidStatusTransition, http.StatusConflict},
	{user.ErrUserExists, http.StatusConflict},
	{user.ErrAlreadyInWishlist, http.StatusConflict},

	{order.ErrCannotRate, http.StatusUnprocessableEntity},
	{review.ErrReviewDeleted, http.StatusUnprocessableEntity},
	{command.ErrDishUnavailable, http.StatusUnprocessableEntity},
	{cart.ErrMixedSellers, http.StatusUnprocessableEntity},

	{ErrInvalidParam, http.StatusBadRequest},
	{analytics.ErrInvalidRange, http.StatusBadRequest},
	{analytics.ErrInvalidSeller, http.StatusBadRequest},
	{order.ErrEmptyOrder, http.StatusBadRequest},
	{order.ErrInvalidItem, http.StatusBadRequest},
	{order.ErrInvalidRating, http.StatusBadRequest},
	{order.ErrInvalidPaymentStatus, http.StatusBadRequest},
	{review.ErrInvalidRating, http.StatusBadRequest},
	{dish.ErrInvalidName, http.StatusBadRequest},
	{dish.ErrInvalidPrice, http.StatusBadRequest},
	{dish.ErrInvalidStatus, http.StatusBadRequest},
	{cart.ErrInvalidQuantity, http.StatusBadRequest},
	{cart.ErrInvalidDish, http.StatusBadRequest},
	{cart.ErrItemNotInCart, http.StatusBadRequest},
	{cart.ErrEmptyCart, http.StatusBadRequest},
	{user.ErrInvalidEmail, http.StatusBadRequest},
	{user.ErrInvalidName, http.StatusBadRequest},
	{user.ErrInvalidDish, http.StatusBadRequest},
	{user.ErrNotInWishlist, http.StatusBadRequest},
	{viewhistory.ErrAnonymousViewer, http.StatusBadRequest},
}

// statusFor returns the HTTP status for err; unknown errors are 500.
func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// respondErr writes err as JSON. Internal errors are logged and hidden.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
		message = "internal server error"
	}
	respondJSON(w, status, map[string]string{"error": message})
}
