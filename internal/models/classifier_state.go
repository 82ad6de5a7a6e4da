package models

import (
	"time"
)

// DefaultClassifierStateName identifies the single shared classifier model.
const DefaultClassifierStateName = "default"

// ClassifierState persists an exported spam classifier model as a JSON blob
// so training survives process restarts. The storage format is opaque to the
// database; only round-trip fidelity matters.
type ClassifierState struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;size:64" json:"name"`
	Snapshot  string    `gorm:"type:text" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for ClassifierState
func (ClassifierState) TableName() string {
	return "classifier_states"
}
