package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/mark-baumann/JobAgent/internal/pipeline"
)

type GenerateRequest struct {
	APIKey         string `json:"api_key"`
	Model          string `json:"model"`
	JobDescription string `json:"job_description"`
}

type ExportRequest struct {
	Format  string `json:"format"` // "docx" or "pdf"
	Firma   string `json:"firma"`
	Adresse string `json:"adresse"`
	Titel   string `json:"titel"`
}

type GenerationRunDTO struct {
	ID        uuid.UUID                 `json:"id"`
	Model     string                    `json:"model"`
	Status    string                    `json:"status"` // e.g. "processing", "completed", "failed"
	Progress  int                       `json:"progress"`
	Steps     []pipeline.ProcessingStep `json:"steps"`
	Result    *pipeline.AnalysisResult  `json:"result,omitempty"`
	Error     string                    `json:"error,omitempty"`
	CreatedAt time.Time                 `json:"created_at"`
	UpdatedAt time.Time                 `json:"updated_at"`
}
