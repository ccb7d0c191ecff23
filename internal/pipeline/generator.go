package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark-baumann/JobAgent/internal/util"
)

// ChatClient is the single model operation the pipeline needs: one user
// prompt in, one text completion out.
type ChatClient interface {
	Complete(ctx context.Context, apiKey, model, prompt string, temperature float64) (string, error)
}

// Generator runs the fixed five-stage sequence against a Tracker. Stages are
// strictly sequential; any failure marks the in-flight step as errored and
// aborts the run. There is no retry policy.
type Generator struct {
	chat ChatClient
	log  *slog.Logger

	// Synthetic delays for the two stages without a network call. Kept
	// configurable so tests do not have to wait.
	ValidateDelay time.Duration
	ResumeDelay   time.Duration

	// OnUpdate is invoked after every tracker mutation so the caller can
	// persist a snapshot for polling clients.
	OnUpdate func(tracker *Tracker)
}

func NewGenerator(chat ChatClient, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		chat:          chat,
		log:           logger,
		ValidateDelay: time.Second,
		ResumeDelay:   1500 * time.Millisecond,
	}
}

func (g *Generator) notify(tracker *Tracker) {
	if g.OnUpdate != nil {
		g.OnUpdate(tracker)
	}
}

// Run executes one generation run. The caller has already validated the
// inputs; stage 1 only exists as a visible confirmation step.
func (g *Generator) Run(ctx context.Context, tracker *Tracker, apiKey, model, jobDescription string) (*AnalysisResult, error) {
	token := tracker.Token()

	fail := func(stepID string, err error) (*AnalysisResult, error) {
		tracker.Update(token, stepID, StepUpdate{Status: StepError})
		tracker.FailActive(token)
		g.notify(tracker)
		g.log.Error("generation run failed", "run", token, "step", stepID, "error", err)
		return nil, err
	}

	// Stage 1: validate-inputs
	tracker.Update(token, StepValidateInputs, StepUpdate{Status: StepProcessing})
	tracker.SetProgress(token, 10)
	g.notify(tracker)
	if err := sleep(ctx, g.ValidateDelay); err != nil {
		return fail(StepValidateInputs, err)
	}
	tracker.Update(token, StepValidateInputs, StepUpdate{
		Status:  StepCompleted,
		Details: "API-Schlüssel und Eingaben sind gültig",
	})
	tracker.SetProgress(token, 20)
	g.notify(tracker)

	// Stage 2: analyze-job
	tracker.Update(token, StepAnalyzeJob, StepUpdate{Status: StepProcessing})
	g.notify(tracker)
	text, err := g.chat.Complete(ctx, apiKey, model, JobAnalysisPrompt(jobDescription), TemperatureAnalysis)
	if err != nil {
		return fail(StepAnalyzeJob, fmt.Errorf("analyze job: %w", err))
	}
	requirements, err := decodeContract[JobRequirements](StepAnalyzeJob, text)
	if err != nil {
		return fail(StepAnalyzeJob, err)
	}
	tracker.Update(token, StepAnalyzeJob, StepUpdate{
		Status:  StepCompleted,
		Details: fmt.Sprintf("%d technische Anforderungen gefunden", len(requirements.TechnicalRequirements)),
	})
	tracker.SetProgress(token, 40)
	g.notify(tracker)

	// Stage 3: process-resume. No document is analyzed here; the fixed
	// candidate skill list stands in for extraction.
	tracker.Update(token, StepProcessResume, StepUpdate{Status: StepProcessing})
	g.notify(tracker)
	if err := sleep(ctx, g.ResumeDelay); err != nil {
		return fail(StepProcessResume, err)
	}
	skills := CandidateSkills
	tracker.Update(token, StepProcessResume, StepUpdate{
		Status:  StepCompleted,
		Details: fmt.Sprintf("%d Qualifikationen extrahiert", len(skills)),
	})
	tracker.SetProgress(token, 60)
	g.notify(tracker)

	// Stage 4: match-skills
	tracker.Update(token, StepMatchSkills, StepUpdate{Status: StepProcessing})
	g.notify(tracker)
	text, err = g.chat.Complete(ctx, apiKey, model, SkillMatchPrompt(requirements, skills), TemperatureMatching)
	if err != nil {
		return fail(StepMatchSkills, fmt.Errorf("match skills: %w", err))
	}
	match, err := decodeContract[SkillMatchResult](StepMatchSkills, text)
	if err != nil {
		return fail(StepMatchSkills, err)
	}
	tracker.Update(token, StepMatchSkills, StepUpdate{
		Status:  StepCompleted,
		Details: fmt.Sprintf("%d passende Skills gefunden", len(match.MatchedSkills)),
	})
	tracker.SetProgress(token, 80)
	g.notify(tracker)

	// Stage 5: generate-application. Free text, no JSON contract.
	tracker.Update(token, StepGenerateApplication, StepUpdate{Status: StepProcessing})
	g.notify(tracker)
	letter, err := g.chat.Complete(ctx, apiKey, model, ApplicationPrompt(requirements, match.MatchedSkills), TemperatureLetter)
	if err != nil {
		return fail(StepGenerateApplication, fmt.Errorf("generate application: %w", err))
	}
	details := "Individualisiertes Anschreiben erstellt"
	if !letterKeepsFrame(letter) {
		// The frame rule is an instruction to the model, not a hard
		// post-condition. Surface the deviation instead of failing.
		details += " (Hinweis: Einleitung oder Grußformel wurde verändert)"
		g.log.Warn("generated letter does not preserve the base letter frame", "run", token)
	}
	tracker.Update(token, StepGenerateApplication, StepUpdate{
		Status:  StepCompleted,
		Details: details,
	})
	tracker.SetProgress(token, 100)
	g.notify(tracker)

	result := &AnalysisResult{
		Requirements:     concat(requirements.TechnicalRequirements, requirements.ProfessionalRequirements),
		MatchedSkills:    orEmpty(match.MatchedSkills),
		SuggestedChanges: orEmpty(match.RelevantExperiences),
		FinalApplication: letter,
	}
	return result, nil
}

// decodeContract extracts the first balanced JSON object from the model
// output and decodes it into T.
func decodeContract[T any](stepID, text string) (T, error) {
	var out T
	raw, err := util.ExtractJSONObject(text)
	if err != nil {
		return out, &ContractError{Step: stepID, Cause: err}
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, &ContractError{Step: stepID, Cause: err}
	}
	return out, nil
}

// letterKeepsFrame checks that the opening and closing lines of the base
// letter survived the rewrite.
func letterKeepsFrame(letter string) bool {
	lines := strings.Split(BaseApplication, "\n")
	first, last := "", ""
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if first == "" {
			first = strings.TrimSpace(l)
		}
		last = strings.TrimSpace(l)
	}
	return strings.Contains(letter, first) && strings.Contains(letter, last)
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
