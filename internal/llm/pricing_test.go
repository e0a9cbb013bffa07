package llm

import (
	"math"
	"testing"
)

func TestLookupCost(t *testing.T) {
	tests := []struct {
		id   string
		want *ModelCost
	}{
		{"gemini-2.5-flash", &ModelCost{0.3, 2.5}},
		{"GPT-4o-mini", &ModelCost{0.15, 0.6}},
		{"gpt-4o-mini-2024-07-18", &ModelCost{0.15, 0.6}},
		{"google/gemini-2.0-flash-exp", &ModelCost{0.1, 0.4}},
		{"claude-haiku-4-5-20251001", &ModelCost{1, 5}},
		{"claude-sonnet-4-20250514", &ModelCost{3, 15}},
		{"claude-sonnet-4-5-20250929", &ModelCost{3, 15}},
		{"mock", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := LookupCost(tt.id)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("LookupCost(%q) = %+v, want nil", tt.id, *got)
				}
				return
			}
			if got == nil || *got != *tt.want {
				t.Fatalf("LookupCost(%q) = %v, want %+v", tt.id, got, *tt.want)
			}
		})
	}
}

func TestModelCost_Cost(t *testing.T) {
	c := ModelCost{InputPerMTok: 0.3, OutputPerMTok: 2.5}
	got := c.Cost(1_000_000, 200_000)
	if math.Abs(got-0.8) > 1e-9 {
		t.Fatalf("Cost = %v, want 0.8", got)
	}
}
