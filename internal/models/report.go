package models

import "time"

// DeliveryFailure is one endpoint that could not be reached during a dispatch.
type DeliveryFailure struct {
	Endpoint string `json:"endpoint"`
	Error    string `json:"error"`
	Err      error  `json:"-"`
}

// DispatchReport aggregates the outcome of one broadcast.
type DispatchReport struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	Category   string            `json:"category"`
	Icon       string            `json:"icon"`
	Total      int               `json:"total"`
	Sent       int               `json:"sent"`
	Failures   []DeliveryFailure `json:"failures,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
}

func (r DispatchReport) Failed() int { return len(r.Failures) }

// AllFailed reports whether there was at least one target and none was reached.
func (r DispatchReport) AllFailed() bool {
	return r.Total > 0 && r.Sent == 0
}

func (r DispatchReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
