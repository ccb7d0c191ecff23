package config

import (
	"os"
	"sync"
)

type ExportConfig struct {
	TemplatePath string
}

var (
	exportConfig *ExportConfig
	exportOnce   sync.Once
)

func LoadExportConfig() *ExportConfig {
	exportOnce.Do(func() {
		path := os.Getenv("TEMPLATE_PATH")
		if path == "" {
			path = "templates/anschreiben.docx"
		}
		exportConfig = &ExportConfig{
			TemplatePath: path,
		}
	})
	return exportConfig
}
