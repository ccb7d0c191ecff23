package config

import (
	"os"
	"sync"
)

type CloudConvertConfig struct {
	APIKey  string
	BaseURL string
}

var (
	cloudConvertConfig *CloudConvertConfig
	cloudConvertOnce   sync.Once
)

func LoadCloudConvertConfig() *CloudConvertConfig {
	cloudConvertOnce.Do(func() {
		baseURL := os.Getenv("CLOUDCONVERT_BASE_URL")
		if baseURL == "" {
			baseURL = "https://api.cloudconvert.com"
		}
		cloudConvertConfig = &CloudConvertConfig{
			APIKey:  os.Getenv("CLOUDCONVERT_API_KEY"),
			BaseURL: baseURL,
		}
	})
	return cloudConvertConfig
}
