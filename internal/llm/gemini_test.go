package llm

import (
	"errors"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"hours": map[string]any{"type": "integer"},
			"level": map[string]any{"type": "string", "enum": []any{"Beginner", "Intermediate", "Advanced"}},
			"weeklyHours": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "integer"},
			},
		},
		"required": []any{"title", "hours"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["title"].Type != "STRING" {
		t.Fatalf("expected STRING for title, got %s", schema.Properties["title"].Type)
	}
	if schema.Properties["hours"].Type != "INTEGER" {
		t.Fatalf("expected INTEGER for hours, got %s", schema.Properties["hours"].Type)
	}
	if len(schema.Properties["level"].Enum) != 3 {
		t.Fatalf("expected 3 enum values, got %d", len(schema.Properties["level"].Enum))
	}
	if schema.Properties["weeklyHours"].Type != "ARRAY" {
		t.Fatalf("expected ARRAY for weeklyHours, got %s", schema.Properties["weeklyHours"].Type)
	}
	if schema.Properties["weeklyHours"].Items.Type != "INTEGER" {
		t.Fatalf("expected INTEGER for weeklyHours items, got %s", schema.Properties["weeklyHours"].Items.Type)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
}

func TestBuildGeminiConfig_SamplingAndFormat(t *testing.T) {
	cfg := buildGeminiConfig(Request{
		System:      "be brief",
		Format:      FormatJSON,
		Temperature: 0.5,
		TopP:        0.9,
		TopK:        30,
	})

	if cfg.ResponseMIMEType != "application/json" {
		t.Fatalf("expected JSON mime type, got %q", cfg.ResponseMIMEType)
	}
	if cfg.Temperature == nil || *cfg.Temperature != float32(0.5) {
		t.Fatalf("unexpected temperature: %v", cfg.Temperature)
	}
	if cfg.TopP == nil || *cfg.TopP != float32(0.9) {
		t.Fatalf("unexpected topP: %v", cfg.TopP)
	}
	if cfg.TopK == nil || *cfg.TopK != float32(30) {
		t.Fatalf("unexpected topK: %v", cfg.TopK)
	}
	if cfg.ResponseSchema != nil {
		t.Fatal("expected no response schema for a bare JSON hint")
	}
	if cfg.SystemInstruction == nil || cfg.SystemInstruction.Parts[0].Text != "be brief" {
		t.Fatal("expected system instruction to be set")
	}
}

func TestBuildGeminiConfig_TextLeavesDefaults(t *testing.T) {
	cfg := buildGeminiConfig(Request{})
	if cfg.ResponseMIMEType != "" {
		t.Fatalf("expected no mime type, got %q", cfg.ResponseMIMEType)
	}
	if cfg.Temperature != nil || cfg.TopP != nil || cfg.TopK != nil {
		t.Fatal("expected sampling parameters to be left unset")
	}
}

func TestMapGeminiError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"forbidden", &genai.APIError{Code: 403, Message: "denied"}, func(e error) bool { var a *ErrAuth; return errors.As(e, &a) }},
		{"rate limited", &genai.APIError{Code: 429}, func(e error) bool { var r *ErrRateLimit; return errors.As(e, &r) }},
		{"server", &genai.APIError{Code: 503}, func(e error) bool { var u *ErrProviderUnavailable; return errors.As(e, &u) }},
		{"key in message", errors.New("API key not valid. Please pass a valid API key."), func(e error) bool { var a *ErrAuth; return errors.As(e, &a) }},
		{"network", errors.New("connection reset"), func(e error) bool { var u *ErrProviderUnavailable; return errors.As(e, &u) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapGeminiError(tt.err); !tt.check(got) {
				t.Fatalf("unexpected mapping: %T %v", got, got)
			}
		})
	}
}
