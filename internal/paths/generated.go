package paths

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// GeneratedPath is the raw shape the model is asked to produce.
type GeneratedPath struct {
	PathTitle string           `json:"pathTitle"`
	Phases    []GeneratedPhase `json:"phases"`
	Error     string           `json:"error,omitempty"`
}

// GeneratedPhase is a phase as produced by the model.
type GeneratedPhase struct {
	PhaseTitle string          `json:"phaseTitle"`
	Steps      []GeneratedStep `json:"steps"`
}

// GeneratedStep is a step as produced by the model. ID may be missing or
// duplicated.
type GeneratedStep struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Resources   []string `json:"resources"`
	Duration    string   `json:"duration"`
}

// ErrEmptyPath is returned when the model produced no phases.
var ErrEmptyPath = errors.New("The AI couldn't generate a path with the provided information. Please try refining your input.")

// RejectedError carries the model's own error message. A response with an
// error field is never persisted, even when it also has phases.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string { return e.Message }

// Normalize turns a generated path into a LearningPath ready to persist:
// fresh id, timestamps, completed=false, unique non-empty step ids and an
// empty journal.
func Normalize(gen *GeneratedPath, input Input, now time.Time) (*LearningPath, error) {
	if gen == nil {
		return nil, ErrEmptyPath
	}
	if msg := strings.TrimSpace(gen.Error); msg != "" {
		return nil, &RejectedError{Message: msg}
	}
	if len(gen.Phases) == 0 {
		return nil, ErrEmptyPath
	}

	ms := now.UnixMilli()
	p := &LearningPath{
		ID:             NewPathID(now),
		PathTitle:      resolveTitle(gen.PathTitle, input.TargetGoal),
		Phases:         make([]Phase, len(gen.Phases)),
		CreatedAt:      ms,
		UpdatedAt:      ms,
		JournalEntries: []JournalEntry{},
	}

	seen := make(map[string]bool)
	for pi, gp := range gen.Phases {
		steps := make([]Step, len(gp.Steps))
		for si, gs := range gp.Steps {
			id := strings.TrimSpace(gs.ID)
			if id == "" || seen[id] {
				id = fallbackStepID(ms, pi, si, seen)
			}
			seen[id] = true

			resources := gs.Resources
			if resources == nil {
				resources = []string{}
			}
			steps[si] = Step{
				ID:          id,
				Title:       gs.Title,
				Description: gs.Description,
				Resources:   resources,
				Duration:    gs.Duration,
				Completed:   false,
			}
		}
		p.Phases[pi] = Phase{PhaseTitle: gp.PhaseTitle, Steps: steps}
	}

	return p, nil
}

func resolveTitle(title, goal string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	if g := strings.TrimSpace(goal); g != "" {
		return g + " Learning Path"
	}
	return DefaultTitle
}

func fallbackStepID(ms int64, phase, step int, seen map[string]bool) string {
	id := fmt.Sprintf("step_%d_%d_%d", ms, phase, step)
	for n := 1; seen[id]; n++ {
		id = fmt.Sprintf("step_%d_%d_%d_%d", ms, phase, step, n)
	}
	return id
}
