package api

import (
	"net/http"

	"github.com/example/tastesphere/internal/command"
	"github.com/example/tastesphere/internal/domain/user"
)

type profileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// RegisterUser creates the profile of the calling identity.
func (h *Handlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	u, err := h.cmdHandler.RegisterUser(r.Context(), command.RegisterUser{
		UserID: id.UserID,
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, u)
}

func (h *Handlers) GetMe(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	u, err := h.queryHandler.GetUser(r.Context(), id.UserID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	u, err := h.cmdHandler.UpdateProfile(r.Context(), command.UpdateProfile{
		UserID: id.UserID,
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (h *Handlers) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var prefs user.Preferences
	if err := decodeJSON(r, &prefs); err != nil {
		respondErr(w, r, err)
		return
	}

	u, err := h.cmdHandler.UpdatePreferences(r.Context(), command.UpdatePreferences{UserID: id.UserID, Preferences: prefs})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (h *Handlers) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var req struct {
		DishID string `json:"dish_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	u, err := h.cmdHandler.AddToWishlist(r.Context(), command.AddToWishlist{UserID: id.UserID, DishID: req.DishID})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (h *Handlers) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	u, err := h.cmdHandler.RemoveFromWishlist(r.Context(), command.RemoveFromWishlist{
		UserID: id.UserID,
		DishID: r.PathValue("dishId"),
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (h *Handlers) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	recs, err := h.queryHandler.Recommendations(r.Context(), id.UserID, limit)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, recs)
}

// GetHistory lists recent views of the caller or of the anonymous session.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	userID, sessionID := viewer(r)
	entries, err := h.queryHandler.ViewHistory(r.Context(), userID, sessionID, limit)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
