package domain

import "time"

// AuditEntry is one row of the append-only audit trail. Entries pushed over
// the live channel omit the joined user profile; only REST responses carry it.
type AuditEntry struct {
	ID            int       `json:"id"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityRef     *int      `json:"entity_id,omitempty"`
	Details       string    `json:"details,omitempty"`
	AgentInvolved string    `json:"agent_involved,omitempty"`
	UserID        *int      `json:"user_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	User          *User     `json:"user,omitempty"`
}

// EntityID implements reconcile.Entity. It returns the audit row id, not the
// id of the entity the row describes.
func (a AuditEntry) EntityID() int { return a.ID }
