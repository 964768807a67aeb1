package domain

import "encoding/json"

// Push envelope types emitted by the backend's broadcast channel.
const (
	EventTaskChanged         = "task-changed"
	EventTaskRemoved         = "task-removed"
	EventNotificationChanged = "notification-changed"
	EventNotificationRemoved = "notification-removed"
	EventAuditAppended       = "audit-appended"

	// EventTasksRefresh is a coarse signal without a full entity payload.
	// Consumers respond with an authoritative refetch, not an incremental merge.
	EventTasksRefresh = "tasks-refresh"
)

// Envelope is a single push message: a discriminating type tag and an
// entity-shaped payload. It lives only for the duration of dispatch.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Removal is the payload of *-removed envelopes: just the entity id.
type Removal struct {
	ID int `json:"id"`
}
