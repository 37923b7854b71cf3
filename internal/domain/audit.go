package domain

import "time"

// AuditRecord is an immutable log entry describing one create, update, or
// delete action on a tracked entity. Records are append-only; nothing in
// this system updates or deletes them.
type AuditRecord struct {
	ID           int64     `json:"id"`
	EntityName   string    `json:"entity_name"`
	EntityID     string    `json:"entity_id"` // entity key coerced to text
	Action       string    `json:"action"`    // Insert, Update, Delete
	TimestampUtc time.Time `json:"timestamp_utc"`
	Actor        *string   `json:"actor,omitempty"`
	ChangesJSON  *string   `json:"changes_json,omitempty"` // {field: {old, new}}, Update only
}

// FieldChange is one entry of an audit diff payload.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// AuditFilter represents criteria for reading an entity's audit trail
type AuditFilter struct {
	EntityName string `json:"entity_name,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
}
