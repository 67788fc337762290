package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"summit-push-go/internal/models"
)

// GetVAPIDKeyHandler returns the public VAPID key
func (h *Handler) GetVAPIDKeyHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"publicKey": h.VAPIDPublicKey,
	})
}

// SubscribeHandler registers a browser push subscription
func (h *Handler) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	var sub models.Subscription
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(sub.Endpoint) == "" {
		http.Error(w, "endpoint is required", http.StatusBadRequest)
		return
	}

	h.Core.RegisterSubscription(sub)
	w.WriteHeader(http.StatusOK)
}

// UnsubscribeHandler removes the first subscription whose endpoint contains the key
func (h *Handler) UnsubscribeHandler(w http.ResponseWriter, r *http.Request) {
	h.Core.UnregisterSubscription(r.PathValue("endpointKey"))
	w.WriteHeader(http.StatusOK)
}

// MessageHandler broadcasts a notification to every subscriber. It only fails
// when there were subscribers and every delivery failed; JSON clients get the
// full report.
func (h *Handler) MessageHandler(w http.ResponseWriter, r *http.Request) {
	title := r.PathValue("title")
	msg := r.PathValue("msg")
	category := r.PathValue("type")

	report, err := h.Core.Broadcast(r.Context(), title, msg, category)
	if err != nil {
		h.Log.Error("Error sending notification", zap.Error(err))
		http.Error(w, "Failed to send notification", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if report.AllFailed() {
		h.Log.Error("Error sending notification: every delivery failed",
			zap.String("id", report.ID), zap.Int("total", report.Total))
		status = http.StatusInternalServerError
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(report)
		return
	}
	if status != http.StatusOK {
		http.Error(w, "Failed to send notification", status)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Sent %s: %s.", title, msg)
}
