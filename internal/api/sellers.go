package api

import "net/http"

// GetSellerAnalytics returns the caller's analytics snapshot.
func (h *Handlers) GetSellerAnalytics(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	rng, err := parseAnalyticsRange(r, h.clock.Now())
	if err != nil {
		respondErr(w, r, err)
		return
	}

	snapshot, err := h.queryHandler.SellerAnalytics(r.Context(), id.UserID, rng.Start, rng.End)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}
