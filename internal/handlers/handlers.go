package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"summit-push-go/internal/clock"
	"summit-push-go/internal/models"
	"summit-push-go/internal/store"
)

// Core is the push engine behind the HTTP API.
type Core interface {
	RegisterSubscription(sub models.Subscription)
	UnregisterSubscription(endpointKey string)
	Broadcast(ctx context.Context, title, body, category string) (models.DispatchReport, error)
}

type Handler struct {
	Core   Core
	Events *store.EventCatalog
	Auth   *Authenticator
	Log    *zap.Logger
	Clock  clock.Clock

	// Optional collaborators; nil disables the routes that need them.
	Feed     store.EventFeed
	Audit    store.BroadcastLog
	Schedule Schedule

	VAPIDPublicKey string
	StaticDir      string
}

func NewHandler(core Core, events *store.EventCatalog, auth *Authenticator, log *zap.Logger) *Handler {
	return &Handler{
		Core:      core,
		Events:    events,
		Auth:      auth,
		Log:       log,
		Clock:     clock.System{},
		StaticDir: "public",
	}
}

// Routes builds the full HTTP surface.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/event/{summitName}", h.EventHandler)

	// diagnostic
	mux.HandleFunc("POST /api/say-hello", h.SayHelloHandler)
	mux.HandleFunc("POST /api/what-time-is-it", h.WhatTimeHandler)

	mux.HandleFunc("GET /api/vapid-public-key", h.GetVAPIDKeyHandler)
	mux.HandleFunc("POST /api/subscription", h.SubscribeHandler)
	mux.HandleFunc("DELETE /api/subscription/{endpointKey}", h.UnsubscribeHandler)
	mux.HandleFunc("POST /api/message/{title}/{msg}/{type}", h.Auth.Middleware(h.MessageHandler))

	mux.HandleFunc("GET /api/admin/broadcasts", h.Auth.Middleware(h.BroadcastsHandler))
	mux.HandleFunc("GET /api/admin/schedule", h.Auth.Middleware(h.ScheduleHandler))
	mux.HandleFunc("DELETE /api/admin/schedule/{id}", h.Auth.Middleware(h.CancelScheduleHandler))
	mux.HandleFunc("GET /events", h.SSEHandler)

	mux.Handle("/", h.StaticHandler())

	return NoCache(mux)
}
