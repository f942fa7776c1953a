package api

import (
	"net/http"

	"github.com/example/tastesphere/internal/command"
	"github.com/example/tastesphere/internal/domain/order"
)

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var req struct {
		PaymentMethod string `json:"payment_method"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondErr(w, r, err)
			return
		}
	}

	o, err := h.cmdHandler.PlaceOrder(r.Context(), command.PlaceOrder{UserID: id.UserID, PaymentMethod: req.PaymentMethod})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	orders, err := h.queryHandler.ListOrdersByUser(r.Context(), id.UserID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetSellerOrders(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	orders, err := h.queryHandler.ListOrdersBySeller(r.Context(), id.UserID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// GetOrder is visible to the customer, the seller and admins.
func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	o, err := h.queryHandler.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if o.UserID != id.UserID && o.SellerID != id.UserID && !isAdmin(id) {
		respondErr(w, r, command.ErrForbidden)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) ChangeOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var req struct {
		Status order.Status `json:"status"`
		Note   string       `json:"note"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	o, err := h.cmdHandler.ChangeOrderStatus(r.Context(), command.ChangeOrderStatus{
		OrderID: r.PathValue("id"),
		ActorID: id.UserID,
		Status:  req.Status,
		Note:    req.Note,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondErr(w, r, err)
			return
		}
	}

	o, err := h.cmdHandler.CancelOrder(r.Context(), command.CancelOrder{
		OrderID: r.PathValue("id"),
		UserID:  id.UserID,
		Reason:  req.Reason,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var req struct {
		PaymentStatus order.PaymentStatus `json:"payment_status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	o, err := h.cmdHandler.RecordPayment(r.Context(), command.RecordPayment{
		OrderID:       r.PathValue("id"),
		ActorID:       id.UserID,
		PaymentStatus: req.PaymentStatus,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) RateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	var req struct {
		Rating int `json:"rating"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	o, err := h.cmdHandler.RateOrder(r.Context(), command.RateOrder{
		OrderID: r.PathValue("id"),
		UserID:  id.UserID,
		Rating:  req.Rating,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}
