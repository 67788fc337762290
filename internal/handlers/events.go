package handlers

import (
	"net/http"
)

// jsDateLayout matches JavaScript's Date.prototype.toString.
const jsDateLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"

func (h *Handler) EventHandler(w http.ResponseWriter, r *http.Request) {
	event, ok := h.Events.Get(r.PathValue("summitName"))
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(event)
}

func (h *Handler) SayHelloHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Hello World!"))
}

func (h *Handler) WhatTimeHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(h.Clock.Now().Format(jsDateLayout)))
}
