package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"summit-push-go/internal/scheduler"
)

// Schedule is the broadcast scheduler as seen by the admin API.
type Schedule interface {
	Entries() []scheduler.Entry
	Cancel(id string) error
}

type scheduleEntry struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	FireAt  time.Time  `json:"fireAt"`
	State   string     `json:"state"`
	FiredAt *time.Time `json:"firedAt,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// ScheduleHandler lists the scheduled broadcasts and their states.
func (h *Handler) ScheduleHandler(w http.ResponseWriter, r *http.Request) {
	if h.Schedule == nil {
		http.Error(w, "Scheduler not configured", http.StatusServiceUnavailable)
		return
	}

	entries := h.Schedule.Entries()
	out := make([]scheduleEntry, 0, len(entries))
	for _, e := range entries {
		v := scheduleEntry{ID: e.ID, Name: e.Name, FireAt: e.FireAt, State: e.State.String()}
		if !e.FiredAt.IsZero() {
			firedAt := e.FiredAt
			v.FiredAt = &firedAt
		}
		if e.Err != nil {
			v.Error = e.Err.Error()
		}
		out = append(out, v)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"entries": out,
		"count":   len(out),
	})
}

// CancelScheduleHandler cancels a pending broadcast. Entries that already
// fired, were missed or were cancelled answer 409.
func (h *Handler) CancelScheduleHandler(w http.ResponseWriter, r *http.Request) {
	if h.Schedule == nil {
		http.Error(w, "Scheduler not configured", http.StatusServiceUnavailable)
		return
	}

	id := r.PathValue("id")
	switch err := h.Schedule.Cancel(id); {
	case err == nil:
		h.Log.Info("scheduled broadcast cancelled", zap.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, scheduler.ErrNotFound):
		http.Error(w, "Scheduled broadcast not found", http.StatusNotFound)
	case errors.Is(err, scheduler.ErrNotPending):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.Log.Error("Failed to cancel scheduled broadcast", zap.String("id", id), zap.Error(err))
		http.Error(w, "Failed to cancel scheduled broadcast", http.StatusInternalServerError)
	}
}
