package api

import (
	"net/http"

	"github.com/example/tastesphere/internal/command"
	"github.com/example/tastesphere/internal/domain/review"
)

func (h *Handlers) CreateReview(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var req struct {
		DishID  string `json:"dish_id"`
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	rv, err := h.cmdHandler.CreateReview(r.Context(), command.CreateReview{
		UserID:  id.UserID,
		DishID:  req.DishID,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, rv)
}

func (h *Handlers) UpdateReview(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	rv, err := h.cmdHandler.UpdateReview(r.Context(), command.UpdateReview{
		ReviewID: r.PathValue("id"),
		UserID:   id.UserID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rv)
}

func (h *Handlers) ChangeReviewStatus(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var req struct {
		Status review.Status `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	rv, err := h.cmdHandler.ChangeReviewStatus(r.Context(), command.ChangeReviewStatus{
		ReviewID:  r.PathValue("id"),
		ActorID:   id.UserID,
		ActorRole: id.Role,
		Status:    req.Status,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rv)
}
