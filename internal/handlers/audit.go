package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// BroadcastsHandler lists the most recent audited broadcasts.
func (h *Handler) BroadcastsHandler(w http.ResponseWriter, r *http.Request) {
	if h.Audit == nil {
		http.Error(w, "Audit log not configured", http.StatusServiceUnavailable)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, 500)
	}

	records, err := h.Audit.RecentBroadcasts(r.Context(), limit)
	if err != nil {
		h.Log.Error("Failed to get broadcasts", zap.Error(err))
		http.Error(w, "Failed to get broadcasts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"broadcasts": records,
		"count":      len(records),
	})
}
