package models

import "time"

// BroadcastRecord is one row of the broadcast audit log.
type BroadcastRecord struct {
	ID        int       `json:"id"`
	ReportID  string    `json:"report_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	Origin    string    `json:"origin"`
	Total     int       `json:"total"`
	Sent      int       `json:"sent"`
	Failed    int       `json:"failed"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
