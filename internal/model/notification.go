package model

import "time"

// Notification is a short message for one user.
type Notification struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	RelatedURL *string   `json:"related_url"`
	Timestamp  time.Time `json:"timestamp"`
	UserID     int64     `json:"-"`
}
