package models

import "time"

// NotificationMessage is pushed to live websocket subscribers.
type NotificationMessage struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

const NotificationMessageType = "notification"
