package domain

import "time"

// NotificationChannel selects how a notification is delivered server-side.
type NotificationChannel string

const (
	ChannelEmail   NotificationChannel = "email"
	ChannelDesktop NotificationChannel = "desktop"
	ChannelBoth    NotificationChannel = "both"
)

// Notification is a per-user message (reminder, escalation, alert, broadcast).
type Notification struct {
	ID         int                 `json:"id"`
	Type       string              `json:"type"`
	Message    string              `json:"message"`
	Channel    NotificationChannel `json:"channel"`
	Status     string              `json:"status"`
	RetryCount int                 `json:"retry_count"`
	IsRead     bool                `json:"is_read"`
	UserID     int                 `json:"user_id"`
	TaskID     *int                `json:"task_id,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	SentAt     *time.Time          `json:"sent_at,omitempty"`
}

// EntityID implements reconcile.Entity.
func (n Notification) EntityID() int { return n.ID }
