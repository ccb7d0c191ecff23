package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mark-baumann/JobAgent/internal/dto"
	"github.com/mark-baumann/JobAgent/internal/model"
	"github.com/mark-baumann/JobAgent/internal/pipeline"
	"github.com/mark-baumann/JobAgent/internal/service"
)

type GenerationRunRepositoryInterface interface {
	CreateRun(run *model.GenerationRun) error
	UpdateRun(run *model.GenerationRun) error
	FindRunByID(id string) (*model.GenerationRun, error)
	FindRuns(page, pageSize int) ([]model.GenerationRun, int64, error)
}

type GenerationUsecase struct {
	runRepo GenerationRunRepositoryInterface
	chat    pipeline.ChatClient
	log     *slog.Logger

	// Forwarded to the generator; tests shrink them.
	ValidateDelay time.Duration
	ResumeDelay   time.Duration
}

func NewGenerationUsecase(runRepo GenerationRunRepositoryInterface, chat pipeline.ChatClient, logger *slog.Logger) *GenerationUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerationUsecase{
		runRepo:       runRepo,
		chat:          chat,
		log:           logger,
		ValidateDelay: time.Second,
		ResumeDelay:   1500 * time.Millisecond,
	}
}

// Submit validates the request, persists a fresh run with five pending steps
// and starts the pipeline in the background. On a validation error no run is
// created and no network call is made.
func (uc *GenerationUsecase) Submit(req dto.GenerateRequest) (string, error) {
	if req.APIKey == "" {
		return "", ErrMissingAPIKey
	}
	if req.JobDescription == "" {
		return "", ErrMissingJobText
	}
	if req.Model == "" {
		req.Model = service.DefaultModel
	}
	if !service.ValidModel(req.Model) {
		return "", ErrUnknownModel
	}

	token := uuid.New()
	tracker := pipeline.NewTracker(token)

	run := &model.GenerationRun{
		ID:             token,
		Model:          req.Model,
		JobDescription: req.JobDescription,
		Status:         model.RunStatusProcessing,
		Steps:          marshalSteps(tracker.Steps()),
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := uc.runRepo.CreateRun(run); err != nil {
		return "", err
	}

	go uc.execute(run, tracker, req)

	return run.ID.String(), nil
}

// execute owns the full lifecycle of one run: it drives the generator,
// persists a snapshot after every step mutation and finalizes the run row on
// success or failure.
func (uc *GenerationUsecase) execute(run *model.GenerationRun, tracker *pipeline.Tracker, req dto.GenerateRequest) {
	ctx := context.Background()

	generator := pipeline.NewGenerator(uc.chat, uc.log)
	generator.ValidateDelay = uc.ValidateDelay
	generator.ResumeDelay = uc.ResumeDelay
	generator.OnUpdate = func(t *pipeline.Tracker) {
		run.Steps = marshalSteps(t.Steps())
		run.Progress = t.Progress()
		run.UpdatedAt = time.Now()
		if err := uc.runRepo.UpdateRun(run); err != nil {
			uc.log.Error("failed to persist step snapshot", "run", run.ID, "error", err)
		}
	}

	result, err := generator.Run(ctx, tracker, req.APIKey, req.Model, req.JobDescription)
	if err != nil {
		run.Status = model.RunStatusFailed
		run.Error = "Bei der Generierung ist ein Fehler aufgetreten. Bitte prüfen Sie Ihren API-Schlüssel."
		run.UpdatedAt = time.Now()
		if err := uc.runRepo.UpdateRun(run); err != nil {
			uc.log.Error("failed to finalize failed run", "run", run.ID, "error", err)
		}
		return
	}

	run.Status = model.RunStatusCompleted
	run.Requirements = marshalJSON(result.Requirements)
	run.MatchedSkills = marshalJSON(result.MatchedSkills)
	run.SuggestedChanges = marshalJSON(result.SuggestedChanges)
	run.FinalApplication = result.FinalApplication
	run.UpdatedAt = time.Now()
	if err := uc.runRepo.UpdateRun(run); err != nil {
		uc.log.Error("failed to finalize completed run", "run", run.ID, "error", err)
	}
	uc.log.Info("generation run completed", "run", run.ID, "matched_skills", len(result.MatchedSkills))
}

func (uc *GenerationUsecase) GetRun(id string) (*model.GenerationRun, error) {
	return uc.runRepo.FindRunByID(id)
}

// NormalizePaging clamps paging values to the supported window. Callers that
// report paging metadata must use the normalized values, not the raw query.
func NormalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func (uc *GenerationUsecase) ListRuns(page, pageSize int) ([]model.GenerationRun, int64, error) {
	page, pageSize = NormalizePaging(page, pageSize)
	return uc.runRepo.FindRuns(page, pageSize)
}

// RunDTO decodes the persisted JSON columns into the API shape. A run only
// carries a result once it completed.
func RunDTO(run *model.GenerationRun) dto.GenerationRunDTO {
	out := dto.GenerationRunDTO{
		ID:        run.ID,
		Model:     run.Model,
		Status:    run.Status,
		Progress:  run.Progress,
		Error:     run.Error,
		CreatedAt: run.CreatedAt,
		UpdatedAt: run.UpdatedAt,
	}
	if run.Steps != "" {
		_ = json.Unmarshal([]byte(run.Steps), &out.Steps)
	}
	if run.Status == model.RunStatusCompleted {
		result := &pipeline.AnalysisResult{FinalApplication: run.FinalApplication}
		_ = json.Unmarshal([]byte(run.Requirements), &result.Requirements)
		_ = json.Unmarshal([]byte(run.MatchedSkills), &result.MatchedSkills)
		_ = json.Unmarshal([]byte(run.SuggestedChanges), &result.SuggestedChanges)
		out.Result = result
	}
	return out
}

func marshalSteps(steps []pipeline.ProcessingStep) string {
	return marshalJSON(steps)
}

func marshalJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}
