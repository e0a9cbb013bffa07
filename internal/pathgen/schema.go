package pathgen

import "github.com/abhisek/skillroute/internal/llm"

// PathSchema is the minimal shape a decoded response must have before it is
// handed to normalization.
var PathSchema = &llm.Schema{
	Name:        "learning-path",
	Description: "A multi-phase learning path",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pathTitle": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"phases": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"phaseTitle": map[string]any{"type": "string"},
						"steps": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"id":          map[string]any{"type": "string"},
									"title":       map[string]any{"type": "string"},
									"description": map[string]any{"type": "string"},
									"resources": map[string]any{
										"type":  "array",
										"items": map[string]any{"type": "string"},
									},
									"duration": map[string]any{"type": "string"},
								},
							},
						},
					},
				},
			},
			"error": map[string]any{"type": "string"},
		},
		"required": []any{"pathTitle", "phases"},
	},
}
