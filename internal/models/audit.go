package models

import "time"

// AuditAction classifies the logical change an audit entry records.
type AuditAction string

const (
	ActionCreated      AuditAction = "created"
	ActionUpdated      AuditAction = "updated"
	ActionDeleted      AuditAction = "deleted"
	ActionBatchTagged  AuditAction = "batch_tagged"
	ActionSynchronized AuditAction = "synchronized"
)

// AuditLogEntry is an immutable record of one change event. Entries are
// written exactly once per logical change and never updated or deleted by
// the core.
//
// OldSnapshot/NewSnapshot are schema-agnostic key-value captures of the
// entity's relevant fields before and after the change; different entity
// types carry different keys.
type AuditLogEntry struct {
	ID            string         `json:"id" yaml:"id"`
	EntityType    string         `json:"entity_type" yaml:"entity_type"`
	EntityID      string         `json:"entity_id" yaml:"entity_id"`
	Action        AuditAction    `json:"action" yaml:"action"`
	PerformedBy   string         `json:"performed_by" yaml:"performed_by"`
	TimestampUTC  time.Time      `json:"timestamp_utc" yaml:"timestamp_utc"`
	ChangeSummary string         `json:"change_summary" yaml:"change_summary"`
	OldSnapshot   map[string]any `json:"old_snapshot,omitempty" yaml:"old_snapshot,omitempty"`
	NewSnapshot   map[string]any `json:"new_snapshot,omitempty" yaml:"new_snapshot,omitempty"`
	ProjectID     string         `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	Source        string         `json:"source,omitempty" yaml:"source,omitempty"`
}

// AuditFilter narrows an audit query. Fields are conjunctive; zero values
// mean "no constraint" and a zero SinceUTC means all time.
type AuditFilter struct {
	EntityType string
	Action     AuditAction
	SinceUTC   time.Time
}
