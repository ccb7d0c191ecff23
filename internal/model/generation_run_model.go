package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RunStatusProcessing = "processing"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
)

// GenerationRun persists one end-to-end execution of the generation
// pipeline. The run ID doubles as the step tracker token, so updates from a
// superseded run can never leak into a newer run's step list.
type GenerationRun struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Model            string    `gorm:"type:varchar(50)" json:"model"`
	JobDescription   string    `gorm:"type:text" json:"job_description"`
	Status           string    `gorm:"type:varchar(50)" json:"status"` // e.g. "processing", "completed", "failed"
	Progress         int       `json:"progress"`
	Steps            string    `gorm:"type:jsonb" json:"steps"`
	Requirements     string    `gorm:"type:jsonb" json:"requirements"`
	MatchedSkills    string    `gorm:"type:jsonb" json:"matched_skills"`
	SuggestedChanges string    `gorm:"type:jsonb" json:"suggested_changes"`
	FinalApplication string    `gorm:"type:text" json:"final_application"`
	Error            string    `gorm:"type:text" json:"error"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
