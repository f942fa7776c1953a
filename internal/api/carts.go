package api

import (
	"net/http"

	"github.com/example/tastesphere/internal/command"
)

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var req struct {
		DishID   string `json:"dish_id"`
		Quantity int    `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	c, err := h.cmdHandler.AddToCart(r.Context(), command.AddToCart{
		UserID:   id.UserID,
		DishID:   req.DishID,
		Quantity: req.Quantity,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	c, err := h.cmdHandler.RemoveFromCart(r.Context(), command.RemoveFromCart{
		UserID: id.UserID,
		DishID: r.PathValue("dishId"),
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if err := h.cmdHandler.ClearCart(r.Context(), command.ClearCart{UserID: id.UserID}); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	c, err := h.queryHandler.GetCart(r.Context(), id.UserID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}
