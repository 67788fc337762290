package push

import (
	"strings"
	"sync"

	"summit-push-go/internal/models"
)

// Registry is the in-memory set of push subscriptions, keyed by endpoint and
// kept in insertion order. Mutations are serialized; List returns a copy.
type Registry struct {
	mu   sync.RWMutex
	subs []models.Subscription
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add stores sub unless an entry with the same endpoint exists.
// It reports whether the registry changed.
func (r *Registry) Add(sub models.Subscription) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.Endpoint == sub.Endpoint {
			return false
		}
	}
	r.subs = append(r.subs, sub)
	subscriptionsGauge.Set(float64(len(r.subs)))
	return true
}

// Remove deletes the first subscription whose endpoint contains key.
//
// Matching is by substring, so a short key can hit an unrelated endpoint that
// happens to contain it, and an empty key matches the first entry. Only one
// entry is removed per call even when several match.
func (r *Registry) Remove(key string) (models.Subscription, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.subs {
		if strings.Contains(s.Endpoint, key) {
			return r.deleteLocked(i), true
		}
	}
	return models.Subscription{}, false
}

// RemoveEndpoint deletes the subscription with exactly this endpoint.
func (r *Registry) RemoveEndpoint(endpoint string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.subs {
		if s.Endpoint == endpoint {
			r.deleteLocked(i)
			return true
		}
	}
	return false
}

func (r *Registry) deleteLocked(i int) models.Subscription {
	removed := r.subs[i]
	r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
	subscriptionsGauge.Set(float64(len(r.subs)))
	return removed
}

// List returns a snapshot in insertion order.
func (r *Registry) List() []models.Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Subscription, len(r.subs))
	copy(out, r.subs)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}
