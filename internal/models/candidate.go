package models

// RenumberingCandidate is the transient per-session view of one equipment
// record inside a renumbering run. Candidates are derived 1:1 from equipment
// when the filter runs and are never persisted or shared across sessions.
type RenumberingCandidate struct {
	EquipmentID   string `json:"equipment_id" yaml:"equipment_id"`
	CurrentTag    string `json:"current_tag" yaml:"current_tag"`
	EquipmentType string `json:"equipment_type" yaml:"equipment_type"`
	Area          string `json:"area,omitempty" yaml:"area,omitempty"`
	Selected      bool   `json:"selected" yaml:"selected"`
	ProposedTag   string `json:"proposed_tag,omitempty" yaml:"proposed_tag,omitempty"`
}
