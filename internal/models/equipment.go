// Package models defines the domain types shared by the catalog core:
// equipment records, renumbering candidates, audit entries, and hierarchy
// nodes.
package models

import "time"

// Equipment is a tagged physical item tracked per project.
//
// UpstreamID/DownstreamID are single optional references to other equipment
// in the same project. They form a doubly-linked process-flow pointer, not a
// full adjacency list, and the store does not forbid cycles; traversals must
// guard against them.
type Equipment struct {
	ID            string    `json:"id" yaml:"id"`
	ProjectID     string    `json:"project_id" yaml:"project_id"`
	Tag           string    `json:"tag" yaml:"tag"`
	EquipmentType string    `json:"equipment_type" yaml:"equipment_type"`
	Description   string    `json:"description,omitempty" yaml:"description,omitempty"`
	Area          string    `json:"area,omitempty" yaml:"area,omitempty"`
	DrawingID     string    `json:"drawing_id,omitempty" yaml:"drawing_id,omitempty"`
	UpstreamID    string    `json:"upstream_id,omitempty" yaml:"upstream_id,omitempty"`
	DownstreamID  string    `json:"downstream_id,omitempty" yaml:"downstream_id,omitempty"`
	IsActive      bool      `json:"is_active" yaml:"is_active"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"updated_at"`
}

// Snapshot returns the audited view of the equipment for old/new value
// capture. Kept deliberately small: tag, type, description, area and links.
func (e *Equipment) Snapshot() map[string]any {
	return map[string]any{
		"tag":            e.Tag,
		"equipment_type": e.EquipmentType,
		"description":    e.Description,
		"area":           e.Area,
		"upstream_id":    e.UpstreamID,
		"downstream_id":  e.DownstreamID,
	}
}
