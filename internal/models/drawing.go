package models

import "time"

// Drawing is a source document reference. Only the identifying number and
// title are tracked here; drawing file storage lives outside the catalog.
type Drawing struct {
	ID        string    `json:"id" yaml:"id"`
	ProjectID string    `json:"project_id" yaml:"project_id"`
	Number    string    `json:"number" yaml:"number"`
	Title     string    `json:"title,omitempty" yaml:"title,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Line is a process line connecting equipment on a drawing. The hierarchy
// builder accepts line sets alongside equipment but never mutates them.
type Line struct {
	ID        string `json:"id" yaml:"id"`
	ProjectID string `json:"project_id" yaml:"project_id"`
	Number    string `json:"number" yaml:"number"`
	FromID    string `json:"from_id,omitempty" yaml:"from_id,omitempty"`
	ToID      string `json:"to_id,omitempty" yaml:"to_id,omitempty"`
}
