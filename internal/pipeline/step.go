package pipeline

import (
	"github.com/google/uuid"
)

type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepProcessing StepStatus = "processing"
	StepCompleted  StepStatus = "completed"
	StepError      StepStatus = "error"
)

// stepRank orders statuses so a step can never move backwards.
func stepRank(s StepStatus) int {
	switch s {
	case StepPending:
		return 0
	case StepProcessing:
		return 1
	case StepCompleted, StepError:
		return 2
	}
	return 0
}

type ProcessingStep struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      StepStatus `json:"status"`
	Details     string     `json:"details,omitempty"`
}

// StepUpdate carries partial changes for a single step. Zero-valued fields
// leave the current value untouched.
type StepUpdate struct {
	Status  StepStatus
	Details string
}

const (
	StepValidateInputs      = "validate-inputs"
	StepAnalyzeJob          = "analyze-job"
	StepProcessResume       = "process-resume"
	StepMatchSkills         = "match-skills"
	StepGenerateApplication = "generate-application"
)

func newSteps() []ProcessingStep {
	return []ProcessingStep{
		{
			ID:          StepValidateInputs,
			Title:       "Eingaben validieren",
			Description: "Überprüfung der API-Schlüssel und Eingabedaten",
			Status:      StepPending,
		},
		{
			ID:          StepAnalyzeJob,
			Title:       "Stellenanzeige analysieren",
			Description: "Extrahierung der Anforderungen und Qualifikationen",
			Status:      StepPending,
		},
		{
			ID:          StepProcessResume,
			Title:       "Lebenslauf verarbeiten",
			Description: "Analyse der vorhandenen Qualifikationen",
			Status:      StepPending,
		},
		{
			ID:          StepMatchSkills,
			Title:       "Skills matchen",
			Description: "Abgleich zwischen Anforderungen und Qualifikationen",
			Status:      StepPending,
		},
		{
			ID:          StepGenerateApplication,
			Title:       "Anschreiben generieren",
			Description: "Erstellung des individualisierten Anschreibens",
			Status:      StepPending,
		},
	}
}

// Tracker holds the ordered step list and progress value for a single
// generation run. It is mutated only by the run that owns it; every mutating
// method requires the run token, so updates from a stale run are dropped
// instead of interleaving into a newer run's step list.
type Tracker struct {
	token    uuid.UUID
	steps    []ProcessingStep
	progress int
}

func NewTracker(token uuid.UUID) *Tracker {
	return &Tracker{
		token: token,
		steps: newSteps(),
	}
}

func (t *Tracker) Token() uuid.UUID {
	return t.token
}

// Update applies partial changes to the step with the given id. It reports
// whether the update was applied; stale tokens, unknown ids and backward
// status transitions are no-ops.
func (t *Tracker) Update(token uuid.UUID, id string, changes StepUpdate) bool {
	if token != t.token {
		return false
	}
	for i := range t.steps {
		if t.steps[i].ID != id {
			continue
		}
		if changes.Status != "" {
			if stepRank(changes.Status) < stepRank(t.steps[i].Status) {
				return false
			}
			t.steps[i].Status = changes.Status
		}
		if changes.Details != "" {
			t.steps[i].Details = changes.Details
		}
		return true
	}
	return false
}

// SetProgress raises the progress value. Progress never moves backward
// within a run.
func (t *Tracker) SetProgress(token uuid.UUID, progress int) {
	if token != t.token {
		return
	}
	if progress > 100 {
		progress = 100
	}
	if progress > t.progress {
		t.progress = progress
	}
}

// FailActive marks every step that is still processing as errored. Steps
// that already completed keep their status.
func (t *Tracker) FailActive(token uuid.UUID) {
	if token != t.token {
		return
	}
	for i := range t.steps {
		if t.steps[i].Status == StepProcessing {
			t.steps[i].Status = StepError
		}
	}
}

// Steps returns a copy of the current step list.
func (t *Tracker) Steps() []ProcessingStep {
	steps := make([]ProcessingStep, len(t.steps))
	copy(steps, t.steps)
	return steps
}

func (t *Tracker) Progress() int {
	return t.progress
}
