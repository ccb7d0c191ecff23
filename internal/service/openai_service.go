package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"
	"github.com/mark-baumann/JobAgent/internal/config"
	"github.com/tidwall/gjson"
)

// Selectable model identifiers. DefaultModel is the recommended tier.
const DefaultModel = "gpt-4o"

var Models = []string{"gpt-4o", "gpt-4o-mini", "gpt-4-turbo", "gpt-3.5-turbo"}

func ValidModel(id string) bool {
	for _, m := range Models {
		if m == id {
			return true
		}
	}
	return false
}

type OpenAIServiceInterface interface {
	Complete(ctx context.Context, apiKey, model, prompt string, temperature float64) (string, error)
}

type OpenAIService struct {
	client *resty.Client
	log    *slog.Logger
}

func NewOpenAIService(logger *slog.Logger) *OpenAIService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAIService{
		client: resty.New().SetBaseURL(config.LoadOpenAIConfig().BaseURL),
		log:    logger,
	}
}

// Complete sends a single user-role prompt and returns the first completion
// text. The API key comes from the caller, never from server config.
func (s *OpenAIService) Complete(ctx context.Context, apiKey, model, prompt string, temperature float64) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"model": model,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
			"temperature": temperature,
		}).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	if resp.IsError() {
		apiMessage := gjson.Get(resp.String(), "error.message").String()
		s.log.Error("chat completion rejected", "status", resp.StatusCode(), "message", apiMessage)
		return "", fmt.Errorf("chat completion failed with status %d: %s", resp.StatusCode(), apiMessage)
	}

	text := gjson.Get(resp.String(), "choices.0.message.content").String()
	if text == "" {
		return "", fmt.Errorf("no completion in model response")
	}
	return text, nil
}
