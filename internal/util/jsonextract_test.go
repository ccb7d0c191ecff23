package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      string
		wantError bool
	}{
		{
			name:  "bare object",
			input: `{"matched_skills": ["Go"]}`,
			want:  `{"matched_skills": ["Go"]}`,
		},
		{
			name:  "object wrapped in prose",
			input: "Hier ist die Analyse:\n{\"soft_skills\": []}\nViel Erfolg!",
			want:  `{"soft_skills": []}`,
		},
		{
			name:  "object in markdown fence",
			input: "```json\n{\"technical_requirements\": [\"Python\"]}\n```",
			want:  `{"technical_requirements": ["Python"]}`,
		},
		{
			name:  "braces inside string values",
			input: `{"note": "use {placeholders} like {this}", "items": ["a}b"]}`,
			want:  `{"note": "use {placeholders} like {this}", "items": ["a}b"]}`,
		},
		{
			name:  "escaped quote inside string",
			input: `{"note": "she said \"}\" loudly"}`,
			want:  `{"note": "she said \"}\" loudly"}`,
		},
		{
			name:  "nested objects",
			input: `prefix {"outer": {"inner": {"deep": 1}}} suffix`,
			want:  `{"outer": {"inner": {"deep": 1}}}`,
		},
		{
			name:      "no object at all",
			input:     "Leider kann ich diese Anfrage nicht beantworten.",
			wantError: true,
		},
		{
			name:      "unterminated object",
			input:     `{"technical_requirements": ["Go"`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.input)
			if tt.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n{\"a\":1}\n ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.input))
		})
	}
}
