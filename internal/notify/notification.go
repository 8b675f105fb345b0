// Package notify stores in-app notifications in redis and fans them out to open streams.
package notify

import "time"

// Notification is one entry of a user's notification list.
type Notification struct {
	ID        string         `json:"id"`
	UserID    uint           `json:"user_id"`
	Kind      string         `json:"kind"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Read      bool           `json:"read"`
}
