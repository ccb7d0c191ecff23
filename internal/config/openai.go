package config

import (
	"os"
	"sync"
)

type OpenAIConfig struct {
	BaseURL string
}

var (
	openAIConfig *OpenAIConfig
	openAIOnce   sync.Once
)

// LoadOpenAIConfig only carries the endpoint. The API key itself is supplied
// by the user with every generation request and is never read from the
// environment.
func LoadOpenAIConfig() *OpenAIConfig {
	openAIOnce.Do(func() {
		baseURL := os.Getenv("OPENAI_BASE_URL")
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		openAIConfig = &OpenAIConfig{
			BaseURL: baseURL,
		}
	})
	return openAIConfig
}
