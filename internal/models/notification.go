package models

import (
	"strings"
	"time"
)

const (
	CategoryCoffee = "coffee"
	CategoryLunch  = "lunch"
	CategoryAlert  = "alert"
)

const DefaultIcon = "./assets/pub-sub/logo.png"

var icons = map[string]string{
	CategoryCoffee: "./assets/pub-sub/coffee.png",
	CategoryLunch:  "./assets/pub-sub/lunch.png",
	CategoryAlert:  "./assets/pub-sub/alert.png",
}

// IconFor maps a category to its icon. Unknown categories get DefaultIcon.
func IconFor(category string) string {
	if icon, ok := icons[strings.ToLower(strings.TrimSpace(category))]; ok {
		return icon
	}
	return DefaultIcon
}

type NotificationData struct {
	DateOfArrival int64 `json:"dateOfArrival"`
	PrimaryKey    int   `json:"primaryKey"`
}

type Notification struct {
	Title   string           `json:"title"`
	Body    string           `json:"body"`
	Icon    string           `json:"icon"`
	Vibrate []int            `json:"vibrate"`
	Data    NotificationData `json:"data"`
}

// NotificationPayload is the JSON document the service worker receives.
type NotificationPayload struct {
	Notification Notification `json:"notification"`
}

func NewNotificationPayload(title, body, category string, now time.Time) NotificationPayload {
	return NotificationPayload{
		Notification: Notification{
			Title:   title,
			Body:    body,
			Icon:    IconFor(category),
			Vibrate: []int{100, 50, 100},
			Data: NotificationData{
				DateOfArrival: now.UnixMilli(),
				PrimaryKey:    1,
			},
		},
	}
}
