package api

import (
	"errors"
	"net/http"

	"github.com/example/tastesphere/internal/command"
	"github.com/example/tastesphere/internal/domain/dish"
	"github.com/example/tastesphere/internal/logging"
	"github.com/example/tastesphere/internal/query"
)

func (h *Handlers) ListDishes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dishes, err := h.queryHandler.ListDishes(r.Context(), query.DishFilter{
		SellerID: q.Get("seller_id"),
		Category: q.Get("category"),
		Cuisine:  q.Get("cuisine"),
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, dishes)
}

func (h *Handlers) CreateDish(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var details dish.Details
	if err := decodeJSON(r, &details); err != nil {
		respondErr(w, r, err)
		return
	}

	d, err := h.cmdHandler.CreateDish(r.Context(), command.CreateDish{SellerID: id.UserID, Details: details})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, d)
}

func (h *Handlers) UpdateDish(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var details dish.Details
	if err := decodeJSON(r, &details); err != nil {
		respondErr(w, r, err)
		return
	}

	d, err := h.cmdHandler.UpdateDish(r.Context(), command.UpdateDish{
		DishID:   r.PathValue("id"),
		SellerID: id.UserID,
		Details:  details,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (h *Handlers) SetDishStatus(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var req struct {
		Status dish.Status `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	d, err := h.cmdHandler.SetDishStatus(r.Context(), command.SetDishStatus{
		DishID:   r.PathValue("id"),
		SellerID: id.UserID,
		Status:   req.Status,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

// GetDish returns the dish and records a view for identified viewers. A
// failed view record never fails the read.
func (h *Handlers) GetDish(w http.ResponseWriter, r *http.Request) {
	dishID := r.PathValue("id")
	d, err := h.queryHandler.GetDish(r.Context(), dishID)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	userID, sessionID := viewer(r)
	err = h.cmdHandler.ViewDish(r.Context(), command.ViewDish{DishID: dishID, UserID: userID, SessionID: sessionID})
	if err != nil && !errors.Is(err, dish.ErrAnonymousViewer) {
		logging.FromContext(r.Context()).Warn("failed to record view", "dish_id", dishID, "error", err)
	}

	respondJSON(w, http.StatusOK, d)
}

func (h *Handlers) GetDishReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.queryHandler.ListReviewsByDish(r.Context(), r.PathValue("id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}

func (h *Handlers) GetTrending(w http.ResponseWriter, r *http.Request) {
	opts, err := parseTrendingOptions(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	scored, err := h.queryHandler.Trending(r.Context(), opts.MinOrders, opts.Limit)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, scored)
}
